package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/aretw0/inquest"
	"github.com/aretw0/inquest/internal/logging"
	"github.com/aretw0/inquest/pkg/adapters/middleware"
	"github.com/aretw0/inquest/pkg/adapters/mockmodel"
	"github.com/aretw0/inquest/pkg/adapters/openai"
	redisstore "github.com/aretw0/inquest/pkg/adapters/redis"
	"github.com/aretw0/inquest/pkg/ports"
	"github.com/aretw0/inquest/pkg/scorer"
)

var rootCmd = &cobra.Command{
	Use:   "inquest",
	Short: "Inquest runs solver plans against model backends",
	Long: `Inquest executes evaluation tasks: declarative plans of solvers
(prompt shaping, generation, critique) over lists of samples, with
bounded concurrency, retries and guaranteed cleanup.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("model", "", "Model name (default: OPENAI_MODEL)")
	rootCmd.PersistentFlags().Bool("mock", false, "Use the scripted mock backend instead of a real model")
	rootCmd.PersistentFlags().String("mock-reply", "mock completion", "Completion returned by the mock backend")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for run storage (default: in-memory)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int("max-connections", 0, "Max concurrent generations (0 = engine default)")
	rootCmd.PersistentFlags().Int("max-retries", -1, "Max retries for transient generation faults (-1 = engine default)")
	rootCmd.PersistentFlags().Int("max-messages", 0, "Conversation-length ceiling per run (0 = unlimited)")
	rootCmd.PersistentFlags().String("store-key", "", "Base64 AES-256 key to encrypt stored runs (default: INQUEST_STORE_KEY)")
	rootCmd.PersistentFlags().StringArray("mask", nil, "Regexp masked in stored runs before they reach the store (repeatable)")
}

// newEngine builds an engine from the persistent flags.
func newEngine(cmd *cobra.Command, extra ...inquest.Option) (*inquest.Engine, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	var client ports.ModelClient
	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		reply, _ := cmd.Flags().GetString("mock-reply")
		client = mockmodel.Constant(reply)
	} else {
		model, _ := cmd.Flags().GetString("model")
		if model != "" {
			client = openai.NewFromEnv(openai.WithModel(model))
		} else {
			client = openai.NewFromEnv()
		}
		if client.Name() == "" {
			return nil, fmt.Errorf("no model configured: set --model or OPENAI_MODEL, or pass --mock")
		}
	}

	opts := []inquest.Option{inquest.WithLogger(logger)}
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		opts = append(opts, inquest.WithStore(redisstore.New(addr, "", 0)))
	}
	if n, _ := cmd.Flags().GetInt("max-connections"); n > 0 {
		opts = append(opts, inquest.WithMaxConnections(n))
	}
	if n, _ := cmd.Flags().GetInt("max-retries"); n >= 0 {
		opts = append(opts, inquest.WithMaxRetries(n))
	}
	if n, _ := cmd.Flags().GetInt("max-messages"); n > 0 {
		opts = append(opts, inquest.WithMaxMessages(n))
	}

	mws, err := storeMiddleware(cmd)
	if err != nil {
		return nil, err
	}
	if len(mws) > 0 {
		opts = append(opts, inquest.WithStoreMiddleware(mws...))
	}
	opts = append(opts, extra...)

	return inquest.New(client, opts...)
}

// storeMiddleware builds run-store decorators from the --mask and
// --store-key flags. Masking runs before encryption.
func storeMiddleware(cmd *cobra.Command) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if patterns, _ := cmd.Flags().GetStringArray("mask"); len(patterns) > 0 {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(patterns))
	}

	keyText, _ := cmd.Flags().GetString("store-key")
	if keyText == "" {
		keyText = os.Getenv("INQUEST_STORE_KEY")
	}
	if keyText != "" {
		key, err := base64.StdEncoding.DecodeString(keyText)
		if err != nil {
			return nil, fmt.Errorf("invalid store key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("store key must be 32 bytes (AES-256), got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	return mws, nil
}

// scorerOption turns a --score-pattern flag value into an engine option.
func scorerOption(pattern string) (inquest.Option, error) {
	s, err := scorer.Pattern(pattern)
	if err != nil {
		return nil, err
	}
	return inquest.WithScorer(s), nil
}

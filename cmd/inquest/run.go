package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/inquest"
	"github.com/aretw0/inquest/internal/presentation/tui"
	"github.com/aretw0/inquest/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <task.yaml>",
	Short: "Execute an evaluation task from a YAML file",
	Long: `Loads a task definition (name, plan, samples), builds the plan
through the solver registry and executes it over every sample.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		task, err := inquest.LoadTask(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if epochs, _ := cmd.Flags().GetInt("epochs"); epochs > 0 {
			task.Epochs = epochs
		}

		var engineOpts []inquest.Option
		if pattern, _ := cmd.Flags().GetString("score-pattern"); pattern != "" {
			opt, err := scorerOption(pattern)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			engineOpts = append(engineOpts, opt)
		}

		engine, err := newEngine(cmd, engineOpts...)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var runnerOpts []inquest.RunnerOption
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			runnerOpts = append(runnerOpts, inquest.WithConcurrency(n))
		}
		if failFast, _ := cmd.Flags().GetBool("fail-fast"); failFast {
			runnerOpts = append(runnerOpts, inquest.WithFailFast())
		}
		runner := inquest.NewRunner(engine, runnerOpts...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		jsonMode, _ := cmd.Flags().GetBool("json")
		pretty := !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))
		if pretty {
			tui.PrintBanner(inquest.Version)
		}

		report, runErr := runner.Run(ctx, task)
		if report == nil {
			fmt.Printf("Error: %v\n", runErr)
			os.Exit(1)
		}

		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			printReport(report, pretty)
		}

		if runErr != nil {
			fmt.Printf("Error: %v\n", runErr)
			os.Exit(1)
		}
		if report.Summarize().Failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("epochs", 0, "Repeat every sample this many times (overrides the task file)")
	runCmd.Flags().Int("concurrency", 0, "Samples running at once (default 4)")
	runCmd.Flags().Bool("fail-fast", false, "Abort remaining samples after the first failed run")
	runCmd.Flags().Bool("json", false, "Print the full report as JSON")
	runCmd.Flags().String("score-pattern", "", "Regex with a capture group used to score completions against targets")
}

// printReport writes a human-readable summary. With a tty, the transcript
// summary is rendered as markdown and the status lines are colored.
func printReport(report *inquest.Report, pretty bool) {
	summary := report.Summarize()

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", report.Task)
	fmt.Fprintf(&md, "%d runs in %s: %d succeeded, %d failed, %d cancelled",
		summary.Total, report.Elapsed.Round(time.Millisecond), summary.Succeeded, summary.Failed, summary.Cancelled)
	if summary.Scored > 0 {
		fmt.Fprintf(&md, " | score %d/%d correct", summary.Correct, summary.Scored)
	}
	md.WriteString("\n")

	if pretty {
		render := tui.NewRenderer()
		if out, err := render(md.String()); err == nil {
			fmt.Print(out)
		} else {
			fmt.Println(md.String())
		}
	} else {
		fmt.Println(md.String())
	}

	p := termenv.ColorProfile()
	for _, run := range report.Runs {
		line := fmt.Sprintf("  %-9s %s", run.Status, run.ID)
		if run.State != nil {
			line += "  sample=" + run.State.SampleID
		}
		if run.Score != nil {
			line += fmt.Sprintf("  score=%s answer=%q", run.Score.Value, run.Score.Answer)
		}
		if run.Error != "" {
			line += "  " + run.Error
		}
		if !pretty {
			fmt.Println(line)
			continue
		}
		switch run.Status {
		case domain.RunStatusSuccess:
			fmt.Println(termenv.String(line).Foreground(p.Color("#22c55e")))
		case domain.RunStatusCancelled:
			fmt.Println(termenv.String(line).Foreground(p.Color("#eab308")))
		default:
			fmt.Println(termenv.String(line).Foreground(p.Color("#ef4444")))
		}
	}
}

// Package middleware provides composable RunStore decorators for
// store-level concerns that apply regardless of the backing adapter:
// encryption at rest and PII masking of persisted conversations.
package middleware

import "github.com/aretw0/inquest/pkg/ports"

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

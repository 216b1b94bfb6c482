// SPDX-License-Identifier: Apache-2.0

// Package action executes ordered package action plans with all-or-nothing
// rollback. Handlers are pluggable per action type; the pipeline itself is
// agnostic to what a handler does.
package action

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/packforge/packforge/internal/pack"
)

// Type names a kind of package action. The enumeration is open: callers may
// register handlers for types the pipeline does not ship.
type Type string

const (
	TypeDownload  Type = "download"
	TypeInstall   Type = "install"
	TypeUninstall Type = "uninstall"
	TypePurge     Type = "purge"
)

// Action is one step of an execution plan. Immutable once constructed; the
// plan's order is caller-determined.
type Action struct {
	Type     Type
	Identity pack.Identity
	// Payload carries handler-specific parameters (e.g. a download request).
	Payload any
}

// Handler implements forward execution and compensating rollback for one
// action type. Execute must observe ctx and may abort mid-operation; the
// pipeline treats that as an ordinary failure. Rollback is never cancellable.
type Handler interface {
	Execute(ctx context.Context, act Action, log *zerolog.Logger) error
	Rollback(act Action, log *zerolog.Logger) error
}

// Registry maps action types to handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Type]Handler)}
}

// Register binds a handler to an action type, replacing any previous binding.
func (r *Registry) Register(t Type, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// Lookup returns the handler bound to an action type.
func (r *Registry) Lookup(t Type) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[t]
	return h, ok
}

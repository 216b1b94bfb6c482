// SPDX-License-Identifier: Apache-2.0

package action

import (
	"context"

	"github.com/rs/zerolog"
)

// Pipeline executes action plans sequentially against a handler registry.
// A single plan never runs concurrently with itself; independent plans may
// run from separate goroutines against the same registry.
type Pipeline struct {
	registry *Registry
}

// NewPipeline returns a Pipeline over the given registry.
func NewPipeline(registry *Registry) *Pipeline {
	return &Pipeline{registry: registry}
}

// Execute runs the plan in order. Actions without a registered handler are
// logged and skipped. The first handler failure stops the plan: every action
// that already succeeded is rolled back in reverse order, rollback failures
// are logged but never escalated, and the originally captured error is
// returned unwrapped so callers can distinguish the root cause.
func (p *Pipeline) Execute(ctx context.Context, plan []Action, log *zerolog.Logger) error {
	var executed []Action
	var failure error

	for _, act := range plan {
		h, ok := p.registry.Lookup(act.Type)
		if !ok {
			log.Info().
				Str("type", string(act.Type)).
				Str("package", act.Identity.String()).
				Msg("no handler registered for action, skipping")
			continue
		}

		if err := h.Execute(ctx, act, log); err != nil {
			failure = err
			break
		}
		executed = append(executed, act)
	}

	if failure == nil {
		return nil
	}

	p.rollback(executed, log)
	return failure
}

// rollback compensates the executed prefix in reverse order. Best-effort:
// it always walks the full list.
func (p *Pipeline) rollback(executed []Action, log *zerolog.Logger) {
	if len(executed) == 0 {
		return
	}

	log.Warn().Int("count", len(executed)).Msg("rolling back previously executed actions")

	for i := len(executed) - 1; i >= 0; i-- {
		act := executed[i]

		h, ok := p.registry.Lookup(act.Type)
		if !ok {
			log.Warn().
				Str("type", string(act.Type)).
				Str("package", act.Identity.String()).
				Msg("no handler registered for rollback, skipping")
			continue
		}

		if err := h.Rollback(act, log); err != nil {
			log.Warn().
				Err(err).
				Str("type", string(act.Type)).
				Str("package", act.Identity.String()).
				Msg("rollback failed")
		}
	}
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/flow"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/render"
)

// StepSource builds the render model for one step against the current
// submission state. Hosts typically close over an orchestrator snapshot.
type StepSource func(step int, state model.SubmissionState) (render.StepView, error)

// RunSession drives a multi-step session to submission: each step is
// prompted, values flow into the session, and validation failures re-prompt
// the offending step. Returns ErrAborted when the user declines the final
// confirmation.
func (r *Renderer) RunSession(ctx context.Context, session *flow.Session, steps StepSource) error {
	if session == nil {
		return errors.New("tui: session is required")
	}
	if steps == nil {
		return errors.New("tui: step source is required")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		view, err := steps(session.CurrentStep(), session.State())
		if err != nil {
			return fmt.Errorf("tui: build step view: %w", err)
		}

		values, err := r.Collect(ctx, view)
		if err != nil {
			return err
		}
		for name, value := range values {
			session.SetValue(name, value)
		}

		if session.CurrentStep() < session.Steps() {
			if err := session.Next(ctx); err != nil {
				if r.reportValidation(ctx, err) {
					continue
				}
				return err
			}
			continue
		}

		confirmed, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit the form?", Default: true})
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}

		if err := session.Submit(ctx); err != nil {
			var failure *flow.ValidationFailure
			if errors.As(err, &failure) {
				if !r.reportValidation(ctx, err) {
					return err
				}
				if jumpErr := session.JumpTo(ctx, failure.Step); jumpErr != nil {
					return jumpErr
				}
				continue
			}
			return err
		}
		return nil
	}
}

// reportValidation prints a validation failure and reports whether the error
// was one.
func (r *Renderer) reportValidation(ctx context.Context, err error) bool {
	var failure *flow.ValidationFailure
	if !errors.As(err, &failure) {
		return false
	}
	if len(failure.Missing) > 0 {
		_ = r.driver.Info(ctx, fmt.Sprintf("Missing required fields: %s", strings.Join(failure.Missing, ", ")))
	}
	for _, violation := range failure.Violations {
		_ = r.driver.Info(ctx, violation)
	}
	return true
}

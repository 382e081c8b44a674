package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepresearch-go/deepresearch/pkg/graph"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
	"github.com/deepresearch-go/deepresearch/pkg/tasks"
	"github.com/deepresearch-go/deepresearch/pkg/trace"
)

// ResumeOptions re-drives an existing session to completion.
type ResumeOptions struct {
	SessionID    string
	Customizer   graph.Customizer
	TraceEnabled bool
}

// Resume requires the session to already exist; it re-activates tracing
// if requested (a fresh collector is attached rather than an attempt to
// reconstruct prior-process event history, since the collector is a
// live, non-persisted facet of Context — see rcontext.Context).
func (o *Orchestrator) Resume(ctx context.Context, opts ResumeOptions) (SessionOutcome, error) {
	sess, err := o.Storage.Get(ctx, opts.SessionID)
	if err != nil {
		if errors.Is(err, rerrors.ErrNotFound) {
			return SessionOutcome{}, fmt.Errorf("%w: unknown session %q", rerrors.ErrInputValidation, opts.SessionID)
		}
		return SessionOutcome{}, fmt.Errorf("%w: load session %q: %v", rerrors.ErrStorageError, opts.SessionID, err)
	}

	var collector *trace.Collector
	if opts.TraceEnabled {
		collector = trace.NewCollector(true)
		sess.Context.SetTraceCollector(collector)
		_ = sess.Context.Set(tasks.KeyTraceEnabled, true)
		if err := o.Storage.Save(ctx, sess); err != nil {
			return SessionOutcome{}, fmt.Errorf("%w: %v", rerrors.ErrStorageError, err)
		}
	}

	engine, err := o.buildEngine(opts.Customizer)
	if err != nil {
		return SessionOutcome{}, err
	}

	return o.driveToCompletion(ctx, engine, opts.SessionID, collector)
}

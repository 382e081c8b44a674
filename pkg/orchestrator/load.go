package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// LoadOptions identifies the session to materialize without executing
// anything.
type LoadOptions struct {
	SessionID string
}

// Load returns the current SessionOutcome view of a session without
// driving any execution.
func (o *Orchestrator) Load(ctx context.Context, opts LoadOptions) (SessionOutcome, error) {
	sess, err := o.Storage.Get(ctx, opts.SessionID)
	if err != nil {
		if errors.Is(err, rerrors.ErrNotFound) {
			return SessionOutcome{}, fmt.Errorf("%w: unknown session %q", rerrors.ErrInputValidation, opts.SessionID)
		}
		return SessionOutcome{}, fmt.Errorf("%w: load session %q: %v", rerrors.ErrStorageError, opts.SessionID, err)
	}
	return extractOutcome(sess), nil
}

// DeleteOptions identifies the session to remove.
type DeleteOptions struct {
	SessionID string
}

// Delete fails if the session is missing; otherwise removes it.
func (o *Orchestrator) Delete(ctx context.Context, opts DeleteOptions) error {
	if _, err := o.Storage.Get(ctx, opts.SessionID); err != nil {
		if errors.Is(err, rerrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown session %q", rerrors.ErrInputValidation, opts.SessionID)
		}
		return fmt.Errorf("%w: load session %q: %v", rerrors.ErrStorageError, opts.SessionID, err)
	}
	if err := o.Storage.Delete(ctx, opts.SessionID); err != nil {
		return fmt.Errorf("%w: delete session %q: %v", rerrors.ErrStorageError, opts.SessionID, err)
	}
	return nil
}

// IngestOptions forwards documents to the Retrieval Layer for a session.
type IngestOptions struct {
	SessionID string
	Docs      []IngestDoc
}

// IngestDoc mirrors retrieval.IngestDocument at the orchestrator
// boundary so callers don't need to import the retrieval package.
type IngestDoc struct {
	ID     string
	Text   string
	Source string
}

// Ingest forwards to the Retrieval Layer.
func (o *Orchestrator) Ingest(ctx context.Context, opts IngestOptions) error {
	return o.Retrieval.Ingest(ctx, opts.SessionID, toIngestDocuments(opts.Docs))
}

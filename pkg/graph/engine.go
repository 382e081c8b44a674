package graph

import (
	"context"
	"fmt"

	"github.com/deepresearch-go/deepresearch/pkg/rcontext"
	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// Session is the persisted workflow session the Engine drives. Storage
// implementations load and save this struct directly; the Engine reads
// CurrentTaskID and Context and writes CurrentTaskID, Status, and
// FailureReason.
type Session struct {
	ID            string
	CurrentTaskID string
	Status        Status
	Context       *rcontext.Context
	FailureReason string
}

// Store is the subset of the Session Storage contract the Engine needs to
// drive a run: load the current snapshot, persist after every step.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// Engine drives one Graph's execution loop over persisted Sessions.
type Engine struct {
	graph *Graph
}

// NewEngine binds a validated Graph to an execution Engine.
func NewEngine(g *Graph) *Engine {
	return &Engine{graph: g}
}

// Run drives sessionID's Session to a terminal or waiting status: load,
// run the current task, persist, decide the next node via its outgoing
// edge, and repeat. It returns the status the session ended the call in.
func (e *Engine) Run(ctx context.Context, store Store, sessionID string) (Status, error) {
	for {
		sess, err := store.Get(ctx, sessionID)
		if err != nil {
			return StatusFailed, fmt.Errorf("%w: load session %q: %v", rerrors.ErrStorageError, sessionID, err)
		}

		task, ok := e.graph.nodes[sess.CurrentTaskID]
		if !ok {
			return StatusFailed, fmt.Errorf("%w: unknown current task %q", rerrors.ErrGraphExecution, sess.CurrentTaskID)
		}

		result, err := task.Run(ctx, sess.Context)
		if err != nil {
			sess.Status = StatusFailed
			sess.FailureReason = err.Error()
			_ = store.Save(ctx, sess)
			return StatusFailed, fmt.Errorf("%w: task %q: %v", rerrors.ErrGraphExecution, task.ID(), err)
		}

		switch result.NextAction {
		case End:
			sess.Status = StatusCompleted
			if saveErr := store.Save(ctx, sess); saveErr != nil {
				return StatusFailed, fmt.Errorf("%w: %v", rerrors.ErrStorageError, saveErr)
			}
			return StatusCompleted, nil

		case ErrorAction:
			sess.Status = StatusFailed
			sess.FailureReason = result.ErrMessage
			if saveErr := store.Save(ctx, sess); saveErr != nil {
				return StatusFailed, fmt.Errorf("%w: %v", rerrors.ErrStorageError, saveErr)
			}
			return StatusFailed, fmt.Errorf("%w: %s", rerrors.ErrGraphExecution, result.ErrMessage)

		case WaitingForInput:
			sess.Status = StatusWaitingForInput
			if saveErr := store.Save(ctx, sess); saveErr != nil {
				return StatusFailed, fmt.Errorf("%w: %v", rerrors.ErrStorageError, saveErr)
			}
			return StatusWaitingForInput, nil

		default: // ContinueAndExecute
			next, hasEdge := e.graph.nextNodeID(task.ID(), sess.Context)
			if !hasEdge {
				sess.Status = StatusFailed
				sess.FailureReason = fmt.Sprintf("task %q has no outgoing edge", task.ID())
				_ = store.Save(ctx, sess)
				return StatusFailed, fmt.Errorf("%w: task %q has no outgoing edge", rerrors.ErrGraphExecution, task.ID())
			}
			sess.CurrentTaskID = next
			sess.Status = StatusRunning
			if saveErr := store.Save(ctx, sess); saveErr != nil {
				return StatusFailed, fmt.Errorf("%w: %v", rerrors.ErrStorageError, saveErr)
			}
		}
	}
}

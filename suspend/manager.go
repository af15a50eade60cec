package suspend

import (
	"context"
	"time"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/engine"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/module"
)

// Manager wires a Store and a Resumer around engine.Engine's Resume
// operation so callers get the full resume protocol (claim, load,
// replay, persist-or-clear, release) in one call instead of assembling it
// themselves at every call site.
type Manager struct {
	store   Store
	resumer *Resumer
	engine  *engine.Engine
}

// NewManager builds a Manager over the given store and engine.
func NewManager(store Store, e *engine.Engine) *Manager {
	return &Manager{store: store, resumer: NewResumer(), engine: e}
}

// Suspend persists a freshly-suspended execution's snapshot.
func (m *Manager) Suspend(ctx context.Context, snap *engine.Snapshot) error {
	return m.store.Save(ctx, &State{Snapshot: snap, SuspendedAt: time.Now()})
}

// Clear deletes executionId's persisted snapshot, for a caller that resumed
// an execution from a snapshot it already held (bypassing Resume's
// claim/load) and now needs the store's copy, if any, removed on a terminal
// outcome.
func (m *Manager) Clear(ctx context.Context, executionID string) error {
	return m.store.Delete(ctx, executionID)
}

// Resume claims executionId, loads its snapshot, replays it with
// additionalInputs/resolvedNodes, and persists the outcome: a re-suspension
// overwrites the stored snapshot, any other terminal status deletes it. The
// claim is always released, on every return path.
func (m *Manager) Resume(ctx context.Context, executionID string, additionalInputs, resolvedNodes map[string]ctype.Value, callables map[string]module.Callable, currentStructuralHash string, opts engine.Options) (*engine.DataSignature, error) {
	if err := m.resumer.Claim(executionID); err != nil {
		return nil, err
	}
	defer m.resumer.Release(executionID)

	state, err := m.store.Load(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, goerrors.PipelineNotFound(executionID)
	}

	sig, err := m.engine.Resume(ctx, state.Snapshot, additionalInputs, resolvedNodes, callables, currentStructuralHash, opts)
	if err != nil {
		return nil, err
	}

	if sig.Status == engine.ExecSuspended && sig.SuspendedState != nil {
		if err := m.store.Save(ctx, &State{Snapshot: sig.SuspendedState, SuspendedAt: time.Now()}); err != nil {
			return nil, err
		}
	} else {
		if err := m.store.Delete(ctx, executionID); err != nil {
			return nil, err
		}
	}
	return sig, nil
}

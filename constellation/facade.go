package constellation

import (
	"bytes"
	"context"
	"time"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/engine"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/logger"
	"github.com/constellation-engine/core/observability"
	"github.com/constellation-engine/core/storage"
	"github.com/constellation-engine/core/suspend"
)

// Engine is the public facade (§6): it exposes run/resume/register over the
// execution engine (C5), the suspension subsystem (C6), the pipeline store
// and module registry (Catalog, C3/C4), generalizing kbukum-gokit's pattern
// of a thin service-layer type that wraps an engine.Engine plus its stores
// and adds tracing/metrics once at the boundary rather than per internal
// call.
type Engine struct {
	Config  *EngineConfig
	Catalog *Catalog
	Suspend *suspend.Manager
	Events  *EventPublisher
	Archive storage.Storage

	core    *engine.Engine
	metrics *observability.Metrics
	log     *logger.Logger
}

// New assembles a facade Engine. suspendStore and archive may be nil
// (archive is only consulted when Config.SnapshotArchiveThresholdBytes > 0);
// events may be nil to disable lifecycle publishing; metrics may be nil to
// disable operation recording.
func New(cfg *EngineConfig, catalog *Catalog, suspendStore suspend.Store, archive storage.Storage, events *EventPublisher, metrics *observability.Metrics, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefault(cfg.Name)
	}
	core := engine.New(cfg.Parallelism, log)
	return &Engine{
		Config:  cfg,
		Catalog: catalog,
		Suspend: suspend.NewManager(suspendStore, core),
		Events:  events,
		Archive: archive,
		core:    core,
		metrics: metrics,
		log:     log.WithComponent("constellation"),
	}
}

// RunRequest is the run operation's input (§6 "run").
type RunRequest struct {
	ExecutionID    string
	PipelineRef    string // structural hash or alias name
	ProvidedInputs map[string]ctype.Value
	Options        engine.Options
}

// Run resolves PipelineRef to a stored Image, resolves its module nodes against the
// Catalog, and drives a fresh execution to completion, suspension, or
// failure. The request's Options.Debug is overridden by Config.DebugMode()
// whenever the caller leaves it at its zero value, so a deployment's
// configured debug level applies unless a caller opts into a stricter one
// explicitly.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*engine.DataSignature, error) {
	if err := validateExecutionID(req.ExecutionID); err != nil {
		return nil, err
	}
	img, err := e.Catalog.Resolve(req.PipelineRef)
	if err != nil {
		return nil, err
	}
	callables, err := e.Catalog.Callables(img)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Debug == engine.DebugOff {
		opts.Debug = e.Config.DebugMode()
	}

	ctx, span := observability.StartSpan(ctx, "constellation.run")
	defer span.End()
	start := time.Now()

	sig, err := e.core.Run(ctx, req.ExecutionID, img.StructuralHash, img.DagSpec, img.ModuleOptions, callables, req.ProvidedInputs, opts)
	e.recordOutcome(ctx, "run", start, sig, err)
	if err != nil {
		return nil, err
	}

	if sig.Status == engine.ExecSuspended {
		if err := e.persistSuspension(ctx, sig); err != nil {
			return nil, err
		}
		if e.Events != nil {
			e.Events.Suspended(ctx, sig)
		}
	} else if e.Events != nil {
		e.Events.Terminal(ctx, sig)
	}
	return sig, nil
}

// ResumeRequest is the resume operation's input (§6 "resume").
type ResumeRequest struct {
	ExecutionID        string
	CurrentPipelineRef string // structural hash or alias of the pipeline as currently registered
	AdditionalInputs   map[string]ctype.Value
	ResolvedNodes      map[string]ctype.Value
	Options            engine.Options
}

// Resume loads the suspended Snapshot for req.ExecutionID, resolves the
// pipeline's current module set, and continues execution (§4.5.8). A
// re-suspended execution is persisted back to the suspend store by
// suspend.Manager.Resume; a terminal outcome clears it. This path writes no
// archive copy, whatever the snapshot's size.
func (e *Engine) Resume(ctx context.Context, req ResumeRequest) (*engine.DataSignature, error) {
	if err := validateExecutionID(req.ExecutionID); err != nil {
		return nil, err
	}
	img, err := e.Catalog.Resolve(req.CurrentPipelineRef)
	if err != nil {
		return nil, err
	}
	callables, err := e.Catalog.Callables(img)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Debug == engine.DebugOff {
		opts.Debug = e.Config.DebugMode()
	}

	ctx, span := observability.StartSpan(ctx, "constellation.resume")
	defer span.End()
	start := time.Now()

	sig, err := e.Suspend.Resume(ctx, req.ExecutionID, req.AdditionalInputs, req.ResolvedNodes, callables, img.StructuralHash, opts)
	e.recordOutcome(ctx, "resume", start, sig, err)
	if err != nil {
		return nil, err
	}

	if sig.Status == engine.ExecSuspended {
		if e.Events != nil {
			e.Events.Suspended(ctx, sig)
		}
	} else if e.Events != nil {
		e.Events.Resumed(ctx, sig)
		e.Events.Terminal(ctx, sig)
	}
	return sig, nil
}

// ResumeSnapshotRequest is the direct-snapshot resume operation's input
// (§6 "resume(snapshot, ...)" — distinct from Resume's "resumeFromStore
// (handle, ...)", for a caller that already holds the Snapshot itself
// rather than a bare executionId the suspend store must look up).
type ResumeSnapshotRequest struct {
	Snapshot           *engine.Snapshot
	CurrentPipelineRef string // structural hash or alias of the pipeline as currently registered
	AdditionalInputs   map[string]ctype.Value
	ResolvedNodes      map[string]ctype.Value
	Options            engine.Options
}

// ResumeSnapshot continues execution from a caller-supplied Snapshot without
// consulting the suspend store for it, bypassing the at-most-one-resumer
// claim the store-backed Resume enforces (the caller is assumed to already
// hold exclusive access to the snapshot it passes in). The outcome is still
// persisted or cleared through the suspend store, so a later store-backed
// Resume observes the result; a re-suspension goes through persistSuspension
// and so, unlike Resume, also gets an archive copy when oversized.
func (e *Engine) ResumeSnapshot(ctx context.Context, req ResumeSnapshotRequest) (*engine.DataSignature, error) {
	if req.Snapshot == nil {
		return nil, goerrors.ValidationError("snapshot is required")
	}
	img, err := e.Catalog.Resolve(req.CurrentPipelineRef)
	if err != nil {
		return nil, err
	}
	callables, err := e.Catalog.Callables(img)
	if err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Debug == engine.DebugOff {
		opts.Debug = e.Config.DebugMode()
	}

	ctx, span := observability.StartSpan(ctx, "constellation.resume_snapshot")
	defer span.End()
	start := time.Now()

	sig, err := e.core.Resume(ctx, req.Snapshot, req.AdditionalInputs, req.ResolvedNodes, callables, img.StructuralHash, opts)
	e.recordOutcome(ctx, "resume_snapshot", start, sig, err)
	if err != nil {
		return nil, err
	}

	if sig.Status == engine.ExecSuspended {
		if err := e.persistSuspension(ctx, sig); err != nil {
			return nil, err
		}
		if e.Events != nil {
			e.Events.Suspended(ctx, sig)
		}
	} else {
		if err := e.Suspend.Clear(ctx, req.Snapshot.ExecutionID); err != nil {
			return nil, err
		}
		if e.Events != nil {
			e.Events.Resumed(ctx, sig)
			e.Events.Terminal(ctx, sig)
		}
	}
	return sig, nil
}

func (e *Engine) recordOutcome(ctx context.Context, operation string, start time.Time, sig *engine.DataSignature, err error) {
	status := "error"
	if err == nil && sig != nil {
		status = string(sig.Status)
	}
	if e.metrics != nil {
		e.metrics.RecordOperation(ctx, e.Config.Name, operation, status, time.Since(start))
		if err != nil {
			e.metrics.RecordError(ctx, "engine", operation)
		}
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
}

// persistSuspension saves sig.SuspendedState to the suspend store, which
// remains the single source of truth Resume reads from regardless of size.
// When the encoded snapshot exceeds Config.SnapshotArchiveThresholdBytes and
// an Archive is wired, a durable copy is additionally written to the
// storage.Storage overflow backend for backup/audit purposes — an oversized
// snapshot still resumes from the fast store, but an operator can recover
// it from Archive if the store is ever lost.
func (e *Engine) persistSuspension(ctx context.Context, sig *engine.DataSignature) error {
	if err := e.Suspend.Suspend(ctx, sig.SuspendedState); err != nil {
		return err
	}
	if e.Config.SnapshotArchiveThresholdBytes <= 0 || e.Archive == nil {
		return nil
	}

	encoded, err := suspend.Encode(&suspend.State{Snapshot: sig.SuspendedState, SuspendedAt: time.Now()})
	if err != nil {
		return err
	}
	if len(encoded) <= e.Config.SnapshotArchiveThresholdBytes {
		return nil
	}

	key := "snapshots/" + sig.ExecutionID + ".json"
	if err := e.Archive.Upload(ctx, key, bytes.NewReader(encoded)); err != nil {
		return goerrors.Codec("archive oversized snapshot", err)
	}
	e.log.Info("archived oversized snapshot", map[string]interface{}{
		"executionId": sig.ExecutionID, "bytes": len(encoded), "key": key,
	})
	return nil
}

// Package engine implements the execution engine (C5): the per-module state
// machine, ready-queue scheduler, inline-transform short-circuit evaluation,
// and suspension triggering described by §4.5. It generalizes
// kbukum-gokit's dag.Engine (batch/streaming level-by-level executor) from a
// single acyclic "all nodes run every level" model into a readiness-driven
// scheduler where modules become runnable independently as their inputs
// arrive, can retry with backoff, and can suspend instead of failing.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/logger"
	"github.com/constellation-engine/core/module"
	"github.com/constellation-engine/core/resilience"
)

// Engine executes a single DagSpec run. It holds no per-run mutable state of
// its own; each Run call builds a fresh execution.
type Engine struct {
	// Parallelism bounds the number of modules running concurrently across
	// the whole execution (0 = unlimited). Per-module Concurrency caps from
	// ModuleCallOptions further restrict a single module's own concurrency.
	Parallelism int
	Log         *logger.Logger
}

// New creates an Engine with the given global parallelism bound.
func New(parallelism int, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefault("engine")
	}
	return &Engine{Parallelism: parallelism, Log: log.WithComponent("engine")}
}

// Run executes spec to completion, suspension, or failure (§4.5). callables
// must contain a resolved Callable for every module id in spec.Modules
// (module.Registry.InitModules produces this map).
func (e *Engine) Run(
	ctx context.Context,
	executionID string,
	structuralHash string,
	spec *dagspec.DagSpec,
	moduleOptions map[string]dagspec.ModuleCallOptions,
	callables map[string]module.Callable,
	providedInputs map[string]ctype.Value,
	opts Options,
) (*DataSignature, error) {
	localIndex, err := dagspec.LocalIndices(spec, moduleOptions)
	if err != nil {
		return nil, err
	}

	run := &runState{
		ctx:            ctx,
		executionID:    executionID,
		structuralHash: structuralHash,
		spec:           spec,
		moduleOptions:  moduleOptions,
		callables:      callables,
		localIndex:     localIndex,
		dataValues:     make(map[string]ctype.Value),
		resolution:     make(map[string]ResolutionSource),
		moduleStatus:   make(map[string]ModuleStatus, len(spec.Modules)),
		timings:        make(map[string]time.Duration),
		moduleSem:      make(map[string]chan struct{}),
		rateLimiters:   make(map[string]*resilience.RateLimiter),
		log:            e.Log,
		opts:           opts,
	}
	if e.Parallelism > 0 {
		run.globalSem = make(chan struct{}, e.Parallelism)
	}

	run.providedInputs = make(map[string]ctype.Value, len(providedInputs))
	for id, dn := range spec.Data {
		if dn.InlineTransform != nil {
			continue
		}
		if v, ok := providedInputs[id]; ok {
			run.dataValues[id] = v
			run.resolution[id] = ResolutionInput
			run.providedInputs[id] = v
		}
	}
	for id := range spec.Modules {
		run.moduleStatus[id] = StatusPending
	}

	return run.drive()
}

// Resume continues a suspended execution from snap, merging additionalInputs
// and resolvedNodes before re-entering the scheduler (§4.5.8).
func (e *Engine) Resume(ctx context.Context, snap *Snapshot, additionalInputs map[string]ctype.Value, resolvedNodes map[string]ctype.Value, callables map[string]module.Callable, currentStructuralHash string, opts Options) (*DataSignature, error) {
	if snap.StructuralHash != currentStructuralHash {
		return nil, goerrors.PipelineChanged(snap.StructuralHash, currentStructuralHash)
	}
	for id := range additionalInputs {
		if _, already := snap.ProvidedInputs[id]; already {
			return nil, goerrors.ValidationError("input already provided: " + id)
		}
	}

	localIndex, err := dagspec.LocalIndices(snap.DagSpec, snap.ModuleOptions)
	if err != nil {
		return nil, err
	}

	run := &runState{
		ctx:            ctx,
		executionID:    snap.ExecutionID,
		structuralHash: snap.StructuralHash,
		spec:           snap.DagSpec,
		moduleOptions:  snap.ModuleOptions,
		callables:      callables,
		localIndex:     localIndex,
		dataValues:     make(map[string]ctype.Value),
		resolution:     make(map[string]ResolutionSource),
		moduleStatus:   make(map[string]ModuleStatus, len(snap.DagSpec.Modules)),
		timings:        make(map[string]time.Duration),
		moduleSem:      make(map[string]chan struct{}),
		rateLimiters:   make(map[string]*resilience.RateLimiter),
		log:            e.Log,
		opts:           opts,
		resumptionCount: snap.ResumptionCount + 1,
	}
	if e.Parallelism > 0 {
		run.globalSem = make(chan struct{}, e.Parallelism)
	}

	run.providedInputs = make(map[string]ctype.Value, len(snap.ProvidedInputs)+len(additionalInputs))
	for id, v := range snap.ComputedValues {
		run.dataValues[id] = v
		run.resolution[id] = ResolutionComputed
	}
	for id, v := range snap.ProvidedInputs {
		run.dataValues[id] = v
		run.resolution[id] = ResolutionInput
		run.providedInputs[id] = v
	}
	for id, v := range additionalInputs {
		run.dataValues[id] = v
		run.resolution[id] = ResolutionInput
		run.providedInputs[id] = v
	}
	for id, v := range resolvedNodes {
		run.dataValues[id] = v
		run.resolution[id] = ResolutionManual
	}
	for id, status := range snap.ModuleStatuses {
		if status == StatusSuspended {
			status = StatusPending
		}
		run.moduleStatus[id] = status
	}

	return run.drive()
}

// runState holds the mutable state of one execution.
type runState struct {
	ctx             context.Context
	executionID     string
	structuralHash  string
	resumptionCount int
	spec            *dagspec.DagSpec
	moduleOptions   map[string]dagspec.ModuleCallOptions
	callables       map[string]module.Callable
	localIndex      map[string]int
	log             *logger.Logger
	opts            Options
	providedInputs  map[string]ctype.Value

	mu           sync.Mutex
	dataValues   map[string]ctype.Value
	resolution   map[string]ResolutionSource
	moduleStatus map[string]ModuleStatus
	timings      map[string]time.Duration

	globalSem    chan struct{}
	moduleSem    map[string]chan struct{}
	rateLimiters map[string]*resilience.RateLimiter
}

// rateLimiterFor lazily builds the resilience.RateLimiter backing moduleID's
// ThrottleCount/ThrottlePerMs (§4.5.2: "ThrottleCount requests per
// ThrottlePerMs milliseconds"), or returns nil if the module has no
// throttle configured.
func (r *runState) rateLimiterFor(moduleID string) *resilience.RateLimiter {
	opts := r.moduleOptions[moduleID]
	if opts.ThrottleCount <= 0 || opts.ThrottlePerMs <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rl, ok := r.rateLimiters[moduleID]
	if !ok {
		rate := float64(opts.ThrottleCount) / (float64(opts.ThrottlePerMs) / 1000.0)
		rl = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name: moduleID, Rate: rate, Burst: opts.ThrottleCount,
		})
		r.rateLimiters[moduleID] = rl
	}
	return rl
}

func (r *runState) hasValue(dataID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.dataValues[dataID]
	return ok
}

func (r *runState) getValue(dataID string) (ctype.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.dataValues[dataID]
	return v, ok
}

func (r *runState) setValue(dataID string, v ctype.Value, source ResolutionSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dataValues[dataID] = v
	r.resolution[dataID] = source
}

func (r *runState) getStatus(id string) ModuleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moduleStatus[id]
}

func (r *runState) setStatus(id string, s ModuleStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moduleStatus[id] = s
}

// drive runs the scheduler to quiescence: every round it evaluates newly
// ready inline transforms, promotes Pending modules whose inputs are all
// present to Waiting, executes the current Waiting batch concurrently, and
// repeats until no module remains in {Pending, Waiting, Running}.
func (r *runState) drive() (*DataSignature, error) {
	inputsOf, outputsOf := buildEdgeIndex(r.spec)

	for {
		r.evaluateReadyTransforms(r.spec)

		if err := r.ctx.Err(); err != nil {
			r.cancelRunning()
			return r.signature(ExecFailed), nil
		}

		batch := r.readyBatch(inputsOf)
		if len(batch) == 0 {
			if r.allTerminal() {
				break
			}
			// Nothing runnable and not all terminal: required inputs are
			// missing and cannot be produced. Suspend (§4.5.7).
			return r.suspend(inputsOf)
		}

		r.runBatch(batch, inputsOf, outputsOf)
	}

	return r.signature(r.finalStatus())
}

// buildEdgeIndex resolves, for every module id, the ordered (param name,
// data id) inputs and (field name, data id) outputs, using each data node's
// per-module nickname (§4.5.4 step 1).
func buildEdgeIndex(spec *dagspec.DagSpec) (map[string][]paramBinding, map[string][]paramBinding) {
	inputsOf := make(map[string][]paramBinding)
	outputsOf := make(map[string][]paramBinding)
	for _, e := range spec.InEdges {
		dn := spec.Data[e.DataID]
		name := dn.Nicknames[e.ModuleID]
		inputsOf[e.ModuleID] = append(inputsOf[e.ModuleID], paramBinding{Name: name, DataID: e.DataID})
	}
	for _, e := range spec.OutEdges {
		dn := spec.Data[e.DataID]
		name := dn.Nicknames[e.ModuleID]
		outputsOf[e.ModuleID] = append(outputsOf[e.ModuleID], paramBinding{Name: name, DataID: e.DataID})
	}
	return inputsOf, outputsOf
}

type paramBinding struct {
	Name   string
	DataID string
}

// evaluateReadyTransforms computes every inline-transform data node whose
// TransformInputs are all present and which has not yet been computed.
func (r *runState) evaluateReadyTransforms(spec *dagspec.DagSpec) {
	progress := true
	for progress {
		progress = false
		for id, dn := range spec.Data {
			if dn.InlineTransform == nil || r.hasValue(id) {
				continue
			}
			inputs := make(map[string]ctype.Value, len(dn.TransformInputs))
			ready := true
			for name, srcID := range dn.TransformInputs {
				v, ok := r.getValue(srcID)
				if !ok {
					ready = false
					break
				}
				inputs[name] = v
			}
			if !ready {
				continue
			}
			v, err := evaluateInline(dn.InlineTransform, inputs)
			if err != nil {
				r.log.Warn("inline transform failed", map[string]interface{}{"data": id, "error": err.Error()})
				continue
			}
			r.setValue(id, v, ResolutionInlineTransform)
			progress = true
		}
	}
}

// readyBatch collects every module in Pending whose inputs are all present
// (promoting it to Waiting) and returns the Waiting set ordered by
// (priority descending, canonical local index ascending) per §4.5.2/§5.
func (r *runState) readyBatch(inputsOf map[string][]paramBinding) []string {
	var batch []string
	for id, status := range r.snapshotStatuses() {
		if status != StatusPending {
			continue
		}
		allPresent := true
		for _, b := range inputsOf[id] {
			if !r.hasValue(b.DataID) {
				allPresent = false
				break
			}
		}
		if allPresent {
			r.setStatus(id, StatusWaiting)
			batch = append(batch, id)
		}
	}

	sort.Slice(batch, func(i, j int) bool {
		pi := r.moduleOptions[batch[i]].Priority
		pj := r.moduleOptions[batch[j]].Priority
		if pi != pj {
			return pi > pj
		}
		return r.localIndex[batch[i]] < r.localIndex[batch[j]]
	})
	return batch
}

func (r *runState) snapshotStatuses() map[string]ModuleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]ModuleStatus, len(r.moduleStatus))
	for k, v := range r.moduleStatus {
		out[k] = v
	}
	return out
}

// runBatch executes every module in batch concurrently, bounded by the
// engine's global semaphore and each module's own Concurrency cap.
func (r *runState) runBatch(batch []string, inputsOf, outputsOf map[string][]paramBinding) {
	var wg sync.WaitGroup
	for _, id := range batch {
		wg.Add(1)
		go func(moduleID string) {
			defer wg.Done()
			r.acquire(moduleID)
			defer r.release(moduleID)
			r.executeModule(moduleID, inputsOf[moduleID], outputsOf[moduleID])
		}(id)
	}
	wg.Wait()
}

func (r *runState) acquire(moduleID string) {
	if r.globalSem != nil {
		r.globalSem <- struct{}{}
	}
	limit := r.moduleOptions[moduleID].Concurrency
	if limit > 0 {
		r.mu.Lock()
		sem, ok := r.moduleSem[moduleID]
		if !ok {
			sem = make(chan struct{}, limit)
			r.moduleSem[moduleID] = sem
		}
		r.mu.Unlock()
		sem <- struct{}{}
	}
}

func (r *runState) release(moduleID string) {
	limit := r.moduleOptions[moduleID].Concurrency
	if limit > 0 {
		r.mu.Lock()
		sem := r.moduleSem[moduleID]
		r.mu.Unlock()
		<-sem
	}
	if r.globalSem != nil {
		<-r.globalSem
	}
}

// executeModule runs one module's full §4.5.4 step sequence: gather inputs,
// optionally type-check (debug mode), apply delay, call with timeout,
// retry/backoff on recoverable failure, write outputs or cascade-skip on
// terminal failure.
func (r *runState) executeModule(moduleID string, inputs []paramBinding, outputs []paramBinding) {
	r.setStatus(moduleID, StatusRunning)
	start := time.Now()

	spec := r.spec.Modules[moduleID]
	callOpts := r.moduleOptions[moduleID]
	callable := r.callables[moduleID]

	in := make(map[string]ctype.Value, len(inputs))
	for _, b := range inputs {
		v, _ := r.getValue(b.DataID)
		in[b.Name] = v
	}

	if r.opts.Debug == DebugFull {
		if err := checkInputTypes(spec, in); err != nil {
			r.failModule(moduleID, outputs, err, callOpts)
			return
		}
	} else if r.opts.Debug == DebugErrorsOnly {
		if err := checkInputTypes(spec, in); err != nil {
			r.log.Warn("input type violation", map[string]interface{}{"module": moduleID, "error": err.Error()})
		}
	}

	if callOpts.DelayMs > 0 {
		select {
		case <-time.After(time.Duration(callOpts.DelayMs) * time.Millisecond):
		case <-r.ctx.Done():
			r.setStatus(moduleID, StatusCancelled)
			return
		}
	}

	timeoutMs := callOpts.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = spec.Config.ModuleTimeoutMs
	}

	maxAttempts := callOpts.Retry + 1
	var out map[string]ctype.Value
	var callErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callCtx := r.ctx
		var cancel context.CancelFunc
		if timeoutMs > 0 {
			callCtx, cancel = context.WithTimeout(r.ctx, time.Duration(timeoutMs)*time.Millisecond)
		}
		if rl := r.rateLimiterFor(moduleID); rl != nil {
			if err := rl.Wait(callCtx); err != nil {
				callErr = err
				if cancel != nil {
					cancel()
				}
				break
			}
		}
		out, callErr = callable.Call(callCtx, in)
		if cancel != nil {
			cancel()
		}
		if callErr == nil {
			break
		}
		if r.ctx.Err() != nil {
			r.setStatus(moduleID, StatusCancelled)
			return
		}
		if !resilience.DefaultRetryIf(callErr) || attempt == maxAttempts {
			break
		}
		backoff := computeBackoff(callOpts.Backoff, callOpts.DelayMs, attempt)
		select {
		case <-time.After(backoff):
		case <-r.ctx.Done():
			r.setStatus(moduleID, StatusCancelled)
			return
		}
	}

	r.mu.Lock()
	r.timings[moduleID] = time.Since(start)
	r.mu.Unlock()

	if callErr != nil {
		r.failModule(moduleID, outputs, goerrors.ModuleExecution(moduleID, callErr), callOpts)
		return
	}

	for _, b := range outputs {
		v, ok := out[b.Name]
		if !ok {
			r.failModule(moduleID, outputs, goerrors.DataNotFound(b.Name), callOpts)
			return
		}
		r.setValue(b.DataID, v, ResolutionComputed)
	}
	r.setStatus(moduleID, StatusCompleted)
}

// failModule marks moduleID terminal per OnError (§4.5.4 step 5) and
// cascade-skips every transitive dependent that can never now receive its
// inputs (§7 DataNotFound policy).
func (r *runState) failModule(moduleID string, outputs []paramBinding, cause error, callOpts dagspec.ModuleCallOptions) {
	r.log.Warn("module execution failed", map[string]interface{}{"module": moduleID, "error": cause.Error()})
	if callOpts.OnError == dagspec.OnErrorSkip {
		r.setStatus(moduleID, StatusSkipped)
	} else {
		r.setStatus(moduleID, StatusFailed)
	}
	r.cascadeSkip(moduleID, outputs)
}

// cascadeSkip marks every data node this failed/skipped module would have
// produced as permanently unresolvable, then skips any module that consumes
// one of those data nodes, recursing transitively.
func (r *runState) cascadeSkip(moduleID string, outputs []paramBinding) {
	unresolved := make([]string, 0, len(outputs))
	for _, b := range outputs {
		unresolved = append(unresolved, b.DataID)
	}

	for len(unresolved) > 0 {
		dataID := unresolved[0]
		unresolved = unresolved[1:]
		for _, e := range r.spec.InEdges {
			if e.DataID != dataID {
				continue
			}
			depID := e.ModuleID
			status := r.getStatus(depID)
			if status.Terminal() {
				continue
			}
			r.setStatus(depID, StatusSkipped)
			for _, e2 := range r.spec.OutEdges {
				if e2.ModuleID == depID {
					unresolved = append(unresolved, e2.DataID)
				}
			}
		}
	}
}

func (r *runState) cancelRunning() {
	for id, status := range r.snapshotStatuses() {
		if status == StatusRunning || status == StatusWaiting {
			r.setStatus(id, StatusCancelled)
		}
	}
}

func (r *runState) allTerminal() bool {
	for _, status := range r.snapshotStatuses() {
		if !status.Terminal() {
			return false
		}
	}
	return true
}

func (r *runState) finalStatus() ExecutionStatus {
	failed := false
	for _, status := range r.snapshotStatuses() {
		if status == StatusFailed || status == StatusCancelled {
			failed = true
		}
	}
	if failed {
		return ExecFailed
	}
	for _, out := range r.spec.DeclaredOutputs {
		dataID := r.spec.OutputBindings[out]
		if !r.hasValue(dataID) {
			return ExecPartiallyComplete
		}
	}
	return ExecCompleted
}

// suspend halts scheduling and produces a Suspended DataSignature carrying a
// Snapshot (§4.5.7). Every Pending module still missing inputs is marked
// Suspended.
func (r *runState) suspend(inputsOf map[string][]paramBinding) (*DataSignature, error) {
	var missing []string
	for id, status := range r.snapshotStatuses() {
		if status != StatusPending {
			continue
		}
		r.setStatus(id, StatusSuspended)
		for _, b := range inputsOf[id] {
			if !r.hasValue(b.DataID) {
				missing = append(missing, b.DataID)
			}
		}
	}
	sort.Strings(missing)

	sig := r.signature(ExecSuspended)
	sig.MissingInputs = missing
	sig.SuspendedState = &Snapshot{
		ExecutionID:     r.executionID,
		StructuralHash:  r.structuralHash,
		ResumptionCount: r.resumptionCount,
		DagSpec:         r.spec,
		ModuleOptions:   r.moduleOptions,
		ProvidedInputs:  copyValues(r.providedInputs),
		ComputedValues:  r.copyComputed(),
		ModuleStatuses:  r.snapshotStatuses(),
	}
	return sig, nil
}

func (r *runState) copyComputed() map[string]ctype.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]ctype.Value, len(r.dataValues))
	for id, v := range r.dataValues {
		if r.resolution[id] == ResolutionComputed || r.resolution[id] == ResolutionInlineTransform {
			out[id] = v
		}
	}
	return out
}

func copyValues(m map[string]ctype.Value) map[string]ctype.Value {
	out := make(map[string]ctype.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *runState) signature(status ExecutionStatus) *DataSignature {
	computed := make(map[string]ctype.Value)
	r.mu.Lock()
	for id, v := range r.dataValues {
		computed[id] = v
	}
	statuses := make(map[string]ModuleStatus, len(r.moduleStatus))
	for id, s := range r.moduleStatus {
		statuses[id] = s
	}
	r.mu.Unlock()

	outputs := make(map[string]ctype.Value)
	var pending []string
	for _, out := range r.spec.DeclaredOutputs {
		dataID := r.spec.OutputBindings[out]
		if v, ok := computed[dataID]; ok {
			outputs[out] = v
		} else {
			pending = append(pending, out)
		}
	}

	meta := Metadata{}
	if r.opts.IncludeTimings {
		r.mu.Lock()
		meta.Timings = make(map[string]time.Duration, len(r.timings))
		for k, v := range r.timings {
			meta.Timings[k] = v
		}
		r.mu.Unlock()
	}
	if r.opts.IncludeProvenance || r.opts.IncludeResolutionSources {
		r.mu.Lock()
		src := make(map[string]ResolutionSource, len(r.resolution))
		for k, v := range r.resolution {
			src[k] = v
		}
		r.mu.Unlock()
		if r.opts.IncludeProvenance {
			meta.Provenance = src
		}
		if r.opts.IncludeResolutionSources {
			meta.ResolutionSources = src
		}
	}

	return &DataSignature{
		ExecutionID:     r.executionID,
		StructuralHash:  r.structuralHash,
		ResumptionCount: r.resumptionCount,
		Status:          status,
		Inputs:          copyValues(r.providedInputs),
		ComputedNodes:   computed,
		Outputs:         outputs,
		PendingOutputs:  pending,
		ModuleStatuses:  statuses,
		Metadata:        meta,
	}
}

// checkInputTypes re-validates that in's values match spec.Consumes, the
// debug-mode defensive check of §4.5.4 step 2.
func checkInputTypes(spec dagspec.ModuleNodeSpec, in map[string]ctype.Value) error {
	for _, nt := range spec.Consumes {
		v, ok := in[nt.Name]
		if !ok {
			return goerrors.InputValidation(nt.Name, "missing required input")
		}
		if v.Type().String() != nt.Sig {
			return goerrors.TypeMismatch(nt.Name, nt.Sig, v.Type().String())
		}
	}
	return nil
}

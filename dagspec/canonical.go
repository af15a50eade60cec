package dagspec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	goerrors "github.com/constellation-engine/core/errors"
)

// canonNode is one node (module or data) in the unified graph walked to
// assign local indices and emit the canonical text form. It generalizes
// kbukum-gokit's dag.BuildLevels, which only ever topo-sorts a single kind
// of node (Node); here modules and data nodes share one dependency graph.
type canonNode struct {
	id        string
	kind      string // "module" or "data"
	name      string
	sig       string // ordered type signature used for canonicalization
	tieBreak  string // secondary sort key (inline-transform kind tag, etc)
	dependsOn []string // ids this node depends on
	optsFP    string
}

// buildCanonGraph flattens a DagSpec's modules and data nodes into one
// dependency graph: data -> module via InEdges, module -> data via
// OutEdges, and data -> data via TransformInputs (inline transforms).
func buildCanonGraph(d *DagSpec, moduleOptions map[string]ModuleCallOptions) (map[string]*canonNode, error) {
	nodes := make(map[string]*canonNode, len(d.Modules)+len(d.Data))

	for id, m := range d.Modules {
		consumesSig := namedTypesSig(m.Consumes)
		producesSig := namedTypesSig(m.Produces)
		nodes[id] = &canonNode{
			id:   id,
			kind: "module",
			name: m.Metadata.Name,
			sig:  fmt.Sprintf("consumes(%s)produces(%s)", consumesSig, producesSig),
			tieBreak: consumesSig + "|" + producesSig,
			optsFP:   optionsFingerprint(moduleOptions[id]),
		}
	}
	for id, dn := range d.Data {
		tag := ""
		if dn.InlineTransform != nil {
			tag = string(dn.InlineTransform.Kind)
		}
		nodes[id] = &canonNode{
			id:       id,
			kind:     "data",
			name:     dn.Name,
			sig:      dn.TypeSig,
			tieBreak: tag,
			optsFP:   tag,
		}
	}

	// data -> module: a module depends on every data node wired to it via InEdges.
	for _, e := range d.InEdges {
		mod, ok := nodes[e.ModuleID]
		if !ok {
			return nil, goerrors.NodeNotFound(e.ModuleID)
		}
		if _, ok := nodes[e.DataID]; !ok {
			return nil, goerrors.NodeNotFound(e.DataID)
		}
		mod.dependsOn = append(mod.dependsOn, e.DataID)
	}
	// module -> data: a produced data node depends on the module that writes it.
	for _, e := range d.OutEdges {
		dn, ok := nodes[e.DataID]
		if !ok {
			return nil, goerrors.NodeNotFound(e.DataID)
		}
		if _, ok := nodes[e.ModuleID]; !ok {
			return nil, goerrors.NodeNotFound(e.ModuleID)
		}
		dn.dependsOn = append(dn.dependsOn, e.ModuleID)
	}
	// data -> data via inline transform inputs.
	for id, dn := range d.Data {
		if dn.InlineTransform == nil {
			continue
		}
		node := nodes[id]
		inputIDs := make([]string, 0, len(dn.TransformInputs))
		for _, dataID := range dn.TransformInputs {
			inputIDs = append(inputIDs, dataID)
		}
		sort.Strings(inputIDs)
		for _, depID := range inputIDs {
			if _, ok := nodes[depID]; !ok {
				return nil, goerrors.NodeNotFound(depID)
			}
			node.dependsOn = append(node.dependsOn, depID)
		}
	}

	for _, n := range nodes {
		sort.Strings(n.dependsOn)
	}
	return nodes, nil
}

func namedTypesSig(nts []NamedType) string {
	parts := make([]string, len(nts))
	for i, nt := range nts {
		parts[i] = nt.Name + ":" + nt.Sig
	}
	return strings.Join(parts, ",")
}

func optionsFingerprint(o ModuleCallOptions) string {
	return fmt.Sprintf(
		"retry=%d,timeoutMs=%d,delayMs=%d,backoff=%s,cacheMs=%d,cacheBackend=%s,"+
			"throttleCount=%d,throttlePerMs=%d,concurrency=%d,onError=%s,lazyEval=%t,"+
			"priority=%d,batchSize=%d,batchTimeoutMs=%d,window=%d,checkpointMs=%d,joinStrategy=%s",
		o.Retry, o.TimeoutMs, o.DelayMs, o.Backoff, o.CacheMs, o.CacheBackend,
		o.ThrottleCount, o.ThrottlePerMs, o.Concurrency, o.OnError, o.LazyEval,
		o.Priority, o.BatchSize, o.BatchTimeoutMs, o.Window, o.CheckpointMs, o.JoinStrategy,
	)
}

// assignLocalIndices performs a topological traversal of the unified graph,
// breaking ties among simultaneously-eligible nodes by (name, sig,
// tieBreak) so the assignment is deterministic and independent of map
// iteration order or UUID values. Returns the ordered node ids (index i has
// local index i) or a CycleDetected error.
func assignLocalIndices(nodes map[string]*canonNode) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for id, n := range nodes {
		inDegree[id] = len(n.dependsOn)
		for _, dep := range n.dependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool {
			a, b := nodes[ready[i]], nodes[ready[j]]
			if a.name != b.name {
				return a.name < b.name
			}
			if a.sig != b.sig {
				return a.sig < b.sig
			}
			return a.tieBreak < b.tieBreak
		})
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, goerrors.CycleDetected(len(order), len(nodes))
	}
	return order, nil
}

// StructuralHash computes the structural hash of a DagSpec: a SHA-256 hex
// digest over the canonical text form (§4.2). Two DagSpecs that differ only
// by UUID renaming, map iteration order, or description/tag metadata
// produce byte-identical canonical text and therefore the same hash.
func StructuralHash(d *DagSpec, moduleOptions map[string]ModuleCallOptions) (string, error) {
	text, err := CanonicalText(d, moduleOptions)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalText renders the canonical textual representation used for
// structural hashing and as the DagSpec text format (§6): one line per node
// in topological order, `node local-index kind name sig=... inputs=[...]
// opts=...`, followed by one `output name local-index` line per declared
// output.
func CanonicalText(d *DagSpec, moduleOptions map[string]ModuleCallOptions) (string, error) {
	nodes, err := buildCanonGraph(d, moduleOptions)
	if err != nil {
		return "", err
	}
	order, err := assignLocalIndices(nodes)
	if err != nil {
		return "", err
	}

	localIndex := make(map[string]int, len(order))
	for i, id := range order {
		localIndex[id] = i
	}

	var b strings.Builder
	for i, id := range order {
		n := nodes[id]
		depIdx := make([]int, len(n.dependsOn))
		for j, dep := range n.dependsOn {
			depIdx[j] = localIndex[dep]
		}
		sort.Ints(depIdx)
		parts := make([]string, len(depIdx))
		for j, idx := range depIdx {
			parts[j] = fmt.Sprintf("%d", idx)
		}
		fmt.Fprintf(&b, "node %d %s %s sig=%s inputs=[%s] opts=%s\n", i, n.kind, n.name, n.sig, strings.Join(parts, ","), n.optsFP)
	}

	for _, name := range d.DeclaredOutputs {
		dataID, ok := d.OutputBindings[name]
		if !ok {
			return "", goerrors.NodeNotFound(name)
		}
		idx, ok := localIndex[dataID]
		if !ok {
			return "", goerrors.NodeNotFound(dataID)
		}
		fmt.Fprintf(&b, "output %s %d\n", name, idx)
	}
	return b.String(), nil
}

// LocalIndices returns the canonical local index assigned to every module and
// data node id in d, for use as the scheduler's deterministic ready-queue
// tiebreak (§4.5.2/§5 "ties in the ready queue are broken by canonical local
// index").
func LocalIndices(d *DagSpec, moduleOptions map[string]ModuleCallOptions) (map[string]int, error) {
	nodes, err := buildCanonGraph(d, moduleOptions)
	if err != nil {
		return nil, err
	}
	order, err := assignLocalIndices(nodes)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(order))
	for i, id := range order {
		out[id] = i
	}
	return out, nil
}

// SyntacticHash computes the SHA-256 hex digest of verbatim compiler-emitted
// source text. Returns "" if sourceText is empty, matching §3's "empty if
// unavailable".
func SyntacticHash(sourceText string) string {
	if sourceText == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sourceText))
	return hex.EncodeToString(sum[:])
}

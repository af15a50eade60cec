package module

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/constellation-engine/core/errors"
)

// key identifies a registered module by component name and major.minor
// version, following semver ordering (§3 Component Metadata).
type key struct {
	name  string
	major int
	minor int
}

// Entry is one registered module: its identity, declared signature, and the
// Callable that runs it. consumes/produces are carried here (not just on
// the Callable) because the registry hash (§4.4) is defined over them.
type Entry struct {
	Name          string
	Major, Minor  int
	ConsumesSig   string // namedTypesSig-style ordered "name:sig,name:sig"
	ProducesSig   string
	Callable      Callable
}

// Registry maps component identities to Entries. Mirrors dag.Registry's
// mutex-guarded map shape, extended with a version axis and a registry-hash
// used to detect when a loaded pipeline's module set no longer matches what
// is registered.
type Registry struct {
	mu    sync.RWMutex
	items map[key]Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[key]Entry)}
}

// Register adds an Entry. Registering the same name+version twice
// overwrites the previous entry, matching the teacher's
// dag.Registry.Register semantics (last write wins).
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key{name: e.Name, major: e.Major, minor: e.Minor}] = e
}

// Deregister removes a module by name+version.
func (r *Registry) Deregister(name string, major, minor int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key{name: name, major: major, minor: minor})
}

// Get retrieves an Entry by exact name+version.
func (r *Registry) Get(name string, major, minor int) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[key{name: name, major: major, minor: minor}]
	if !ok {
		return Entry{}, goerrors.NodeNotFound(fmt.Sprintf("%s@%d.%d", name, major, minor))
	}
	return e, nil
}

// List returns sorted "name@major.minor" identifiers of all registered
// modules, mirroring dag.Registry.List's sorted-names contract.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for k := range r.items {
		names = append(names, fmt.Sprintf("%s@%d.%d", k.name, k.major, k.minor))
	}
	sort.Strings(names)
	return names
}

// Hash returns the registry hash (§4.4): SHA-256 over the ordered set of
// (name, major, minor, consumes signature, produces signature) tuples.
// Consulted by the pipeline store's syntactic index to detect when the
// registered module set no longer matches what a cached compile assumed.
func (r *Registry) Hash() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]key, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		if keys[i].major != keys[j].major {
			return keys[i].major < keys[j].major
		}
		return keys[i].minor < keys[j].minor
	})

	h := sha256.New()
	for _, k := range keys {
		e := r.items[k]
		fmt.Fprintf(h, "%s|%d|%d|%s|%s\n", e.Name, e.Major, e.Minor, e.ConsumesSig, e.ProducesSig)
	}
	return hex.EncodeToString(h.Sum(nil))
}

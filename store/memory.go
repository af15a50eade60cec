package store

import (
	"reflect"
	"sort"
	"sync"

	goerrors "github.com/constellation-engine/core/errors"
)

// MemoryStore is an in-process Store, grounded on dag.Registry's
// sync.RWMutex-guarded map pattern: reads take RLock, writes take Lock, and
// nothing escapes the lock boundary unguarded.
type MemoryStore struct {
	mu         sync.RWMutex
	images     map[string]Image
	aliases    map[string]string
	syntactic  map[string]string // syntacticHash|registryHash -> structuralHash
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		images:    make(map[string]Image),
		aliases:   make(map[string]string),
		syntactic: make(map[string]string),
	}
}

func (s *MemoryStore) StoreImage(img Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.images[img.StructuralHash]; ok {
		if !reflect.DeepEqual(existing.ModuleOptions, img.ModuleOptions) || existing.SyntacticHash != img.SyntacticHash {
			return "", goerrors.ValidationError("structural hash collision: image contents differ for hash " + img.StructuralHash)
		}
		return img.StructuralHash, nil // idempotent re-store
	}
	s.images[img.StructuralHash] = img
	return img.StructuralHash, nil
}

func (s *MemoryStore) GetImage(structuralHash string) (*Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[structuralHash]
	if !ok {
		return nil, false
	}
	cp := img
	return &cp, true
}

func (s *MemoryStore) Alias(name, structuralHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[structuralHash]; !ok {
		return goerrors.PipelineNotFound(structuralHash)
	}
	s.aliases[name] = structuralHash
	return nil
}

func (s *MemoryStore) Resolve(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.aliases[name]
	return h, ok
}

func (s *MemoryStore) GetByName(name string) (*Image, bool) {
	h, ok := s.Resolve(name)
	if !ok {
		return nil, false
	}
	return s.GetImage(h)
}

func (s *MemoryStore) ListAliases() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.aliases))
	for k, v := range s.aliases {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) RemoveImage(structuralHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, h := range s.aliases {
		if h == structuralHash {
			return false, goerrors.ValidationError("cannot remove image " + structuralHash + ": alias " + name + " still references it")
		}
	}
	if _, ok := s.images[structuralHash]; !ok {
		return false, nil
	}
	delete(s.images, structuralHash)
	return true, nil
}

func (s *MemoryStore) IndexSyntactic(syntacticHash, registryHash, structuralHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syntactic[syntacticHash+"|"+registryHash] = structuralHash
}

func (s *MemoryStore) LookupSyntactic(syntacticHash, registryHash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.syntactic[syntacticHash+"|"+registryHash]
	return h, ok
}

func (s *MemoryStore) ListImages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.images))
	for h := range s.images {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

var _ Store = (*MemoryStore)(nil)

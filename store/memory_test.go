package store

import (
	"testing"
	"time"

	"github.com/constellation-engine/core/dagspec"
)

func sampleImage(hash string) Image {
	return Image{
		StructuralHash: hash,
		DagSpec:        &dagspec.DagSpec{Metadata: dagspec.ComponentMetadata{Name: "p"}},
		ModuleOptions:  map[string]dagspec.ModuleCallOptions{},
		CompiledAt:     time.Unix(0, 0),
	}
}

func TestMemoryStore_StoreIdempotent(t *testing.T) {
	s := NewMemoryStore()
	img := sampleImage("hash-1")
	h1, err := s.StoreImage(img)
	if err != nil {
		t.Fatalf("StoreImage: %v", err)
	}
	h2, err := s.StoreImage(img)
	if err != nil {
		t.Fatalf("StoreImage (re-store): %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected idempotent store to return same hash")
	}
	if len(s.ListImages()) != 1 {
		t.Fatalf("expected exactly one stored image")
	}
}

func TestMemoryStore_AliasAndResolve(t *testing.T) {
	s := NewMemoryStore()
	img := sampleImage("hash-1")
	if _, err := s.StoreImage(img); err != nil {
		t.Fatalf("StoreImage: %v", err)
	}
	if err := s.Alias("latest", "hash-1"); err != nil {
		t.Fatalf("Alias: %v", err)
	}
	got, ok := s.GetByName("latest")
	if !ok || got.StructuralHash != "hash-1" {
		t.Fatalf("expected GetByName to resolve to hash-1")
	}
}

func TestMemoryStore_AliasUnknownHash(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Alias("latest", "does-not-exist"); err == nil {
		t.Fatalf("expected error aliasing unknown structural hash")
	}
}

func TestMemoryStore_RemoveBlockedByAlias(t *testing.T) {
	s := NewMemoryStore()
	img := sampleImage("hash-1")
	if _, err := s.StoreImage(img); err != nil {
		t.Fatalf("StoreImage: %v", err)
	}
	if err := s.Alias("latest", "hash-1"); err != nil {
		t.Fatalf("Alias: %v", err)
	}
	removed, err := s.RemoveImage("hash-1")
	if err == nil || removed {
		t.Fatalf("expected removal to be blocked by alias")
	}
}

func TestMemoryStore_SyntacticIndex(t *testing.T) {
	s := NewMemoryStore()
	s.IndexSyntactic("syn-1", "reg-1", "hash-1")
	h, ok := s.LookupSyntactic("syn-1", "reg-1")
	if !ok || h != "hash-1" {
		t.Fatalf("expected syntactic lookup to find hash-1")
	}
	if _, ok := s.LookupSyntactic("syn-1", "reg-2"); ok {
		t.Fatalf("expected miss for different registry hash")
	}
}

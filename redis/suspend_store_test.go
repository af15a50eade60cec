package redis

import (
	"context"
	"testing"
	"time"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/dagspec"
	"github.com/constellation-engine/core/engine"
	"github.com/constellation-engine/core/suspend"
)

func sampleState(executionID string) *suspend.State {
	return &suspend.State{
		SuspendedAt: time.Unix(1700000000, 0).UTC(),
		Snapshot: &engine.Snapshot{
			ExecutionID:    executionID,
			StructuralHash: "hash-1",
			DagSpec: &dagspec.DagSpec{
				Metadata: dagspec.ComponentMetadata{Name: "greet-pipeline"},
			},
			ModuleOptions:  map[string]dagspec.ModuleCallOptions{},
			ProvidedInputs: map[string]ctype.Value{"name-id": ctype.NewString("Ada")},
			ComputedValues: map[string]ctype.Value{},
			ModuleStatuses: map[string]engine.ModuleStatus{"greet": engine.StatusWaiting},
		},
	}
}

func TestSuspendStore_SaveLoadDelete(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSuspendStore(client, "suspend", 0)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState("exec-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "exec-1")
	if err != nil || got == nil {
		t.Fatalf("Load: %v / %v", got, err)
	}
	name, _ := got.Snapshot.ProvidedInputs["name-id"].Str()
	if name != "Ada" {
		t.Fatalf("expected round-tripped input Ada, got %q", name)
	}

	if err := store.Delete(ctx, "exec-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = store.Load(ctx, "exec-1")
	if err != nil || got != nil {
		t.Fatalf("expected nil after delete, got %+v / %v", got, err)
	}
}

func TestSuspendStore_List(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSuspendStore(client, "suspend", 0)
	ctx := context.Background()

	store.Save(ctx, sampleState("exec-a"))
	store.Save(ctx, sampleState("exec-b"))

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
}

package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/constellation-engine/core/suspend"
)

// SuspendStore is the fast cache front for suspended executions: a Redis
// TypedStore[suspend.State] adaptation keeping the same prefix+JSON pattern
// as TypedStore, widened to use suspend's self-describing codec (a
// ctype.Value can't round-trip through plain encoding/json) instead of a
// direct json.Marshal of the generic type parameter.
type SuspendStore struct {
	client    *Client
	keyPrefix string
	ttl       time.Duration
}

// NewSuspendStore creates a SuspendStore. ttl of 0 means entries never
// expire from Redis on their own; suspension lifetime is then governed
// entirely by explicit Delete calls from the resume protocol.
func NewSuspendStore(client *Client, keyPrefix string, ttl time.Duration) *SuspendStore {
	if keyPrefix == "" {
		keyPrefix = "suspend"
	}
	return &SuspendStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *SuspendStore) key(executionID string) string {
	return s.keyPrefix + ":" + executionID
}

func (s *SuspendStore) Save(ctx context.Context, state *suspend.State) error {
	data, err := suspend.Encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(state.Snapshot.ExecutionID), string(data), s.ttl); err != nil {
		return fmt.Errorf("suspend store save %q: %w", state.Snapshot.ExecutionID, err)
	}
	return nil
}

func (s *SuspendStore) Load(ctx context.Context, executionID string) (*suspend.State, error) {
	raw, err := s.client.Get(ctx, s.key(executionID))
	if err != nil {
		if err.Error() == "redis: nil" {
			return nil, nil
		}
		return nil, fmt.Errorf("suspend store load %q: %w", executionID, err)
	}
	return suspend.Decode([]byte(raw))
}

func (s *SuspendStore) Delete(ctx context.Context, executionID string) error {
	if err := s.client.Del(ctx, s.key(executionID)); err != nil {
		return fmt.Errorf("suspend store delete %q: %w", executionID, err)
	}
	return nil
}

func (s *SuspendStore) List(ctx context.Context) ([]suspend.Summary, error) {
	keys, err := s.client.Keys(ctx, s.keyPrefix+":*")
	if err != nil {
		return nil, fmt.Errorf("suspend store list: %w", err)
	}
	out := make([]suspend.Summary, 0, len(keys))
	for _, k := range keys {
		executionID := strings.TrimPrefix(k, s.keyPrefix+":")
		state, err := s.Load(ctx, executionID)
		if err != nil {
			return nil, err
		}
		if state == nil {
			continue
		}
		out = append(out, suspend.Summary{
			ExecutionID:     state.Snapshot.ExecutionID,
			StructuralHash:  state.Snapshot.StructuralHash,
			ResumptionCount: state.Snapshot.ResumptionCount,
			SuspendedAt:     state.SuspendedAt,
		})
	}
	return out, nil
}

var _ suspend.Store = (*SuspendStore)(nil)

package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/ttfl/internal/domain/model"
)

type pickKey struct {
	player model.PlayerID
	date   string
}

// MemoryPickStore is a PickStore kept in process memory.
type MemoryPickStore struct {
	mu     sync.RWMutex
	seen   map[pickKey]struct{}
	picks  []model.PickRecord
	closed bool
}

// NewMemoryPickStore creates a store pre-filled with history.
// Duplicates in history are dropped.
func NewMemoryPickStore(history ...model.PickRecord) *MemoryPickStore {
	s := &MemoryPickStore{seen: make(map[pickKey]struct{})}
	for _, p := range history {
		_, _ = s.Append(context.Background(), p)
	}
	return s
}

// Append implements PickStore.
func (s *MemoryPickStore) Append(ctx context.Context, pick model.PickRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	pick, err := validatePick(pick)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	key := pickKey{player: pick.Player, date: model.FormatDate(pick.Date)}
	if _, ok := s.seen[key]; ok {
		return true, nil
	}
	s.seen[key] = struct{}{}
	s.picks = append(s.picks, pick)
	return false, nil
}

// Picks implements PickStore.
func (s *MemoryPickStore) Picks(ctx context.Context) ([]model.PickRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.PickRecord, len(s.picks))
	copy(out, s.picks)
	sortPicks(out)
	return out, nil
}

// Close implements PickStore.
func (s *MemoryPickStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func sortPicks(picks []model.PickRecord) {
	sort.Slice(picks, func(i, j int) bool {
		if !picks[i].Date.Equal(picks[j].Date) {
			return picks[i].Date.Before(picks[j].Date)
		}
		return picks[i].Player < picks[j].Player
	})
}

package manager

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/totegamma/supermarkets"
)

type State int

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Store caches the full supermarket collection of one session.
// The snapshot is only ever replaced by a complete List response; mutations
// go to the API and are followed by a refresh.
type Store struct {
	service RecordService
	errors  *ErrorChannel

	mu      sync.Mutex
	state   State
	records []supermarkets.Supermarket
	issued  uint64
	applied uint64
}

func NewStore(service RecordService, errors *ErrorChannel) *Store {
	return &Store{
		service: service,
		errors:  errors,
		state:   StateLoading,
		records: []supermarkets.Supermarket{},
	}
}

func (s *Store) Errors() *ErrorChannel {
	return s.errors
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mount performs the initial fetch. A failed fetch leaves the store Ready
// with an empty collection so the list never stays in Loading.
func (s *Store) Mount(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh re-fetches the whole collection. Responses to fetches issued before
// the last applied one are dropped.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	generation := s.issued
	s.mu.Unlock()

	records, err := s.service.List(ctx)

	s.mu.Lock()
	if err != nil {
		if s.state == StateLoading {
			s.state = StateReady
			s.records = []supermarkets.Supermarket{}
		}
		s.mu.Unlock()
		s.errors.Report(ctx, err)
		return err
	}
	if generation > s.applied {
		s.applied = generation
		s.records = slices.Clone(records)
		s.state = StateReady
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Create(ctx context.Context, fields supermarkets.Fields) error {
	_, err := s.service.Create(ctx, fields)
	return s.settle(ctx, err)
}

func (s *Store) Update(ctx context.Context, id int64, fields supermarkets.Fields) error {
	_, err := s.service.Update(ctx, id, fields)
	return s.settle(ctx, err)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	err := s.service.Delete(ctx, id)
	return s.settle(ctx, err)
}

// settle records a mutation failure and then refreshes, in that order.
func (s *Store) settle(ctx context.Context, err error) error {
	if err != nil {
		s.errors.Report(ctx, err)
	}
	refreshErr := s.Refresh(ctx)
	if err != nil {
		return err
	}
	return refreshErr
}

// Snapshot returns a copy of the records from the last successful fetch, in
// the order the API returned them.
func (s *Store) Snapshot() []supermarkets.Supermarket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

func (s *Store) Find(id int64) (supermarkets.Supermarket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return supermarkets.Supermarket{}, false
}

// Fingerprint hashes the snapshot ordered by id, so two fetches of the same
// server state hash equal regardless of response order.
func (s *Store) Fingerprint() uint64 {
	records := s.Snapshot()
	slices.SortStableFunc(records, func(a, b supermarkets.Supermarket) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	payload, err := json.Marshal(records)
	if err != nil {
		return 0
	}
	return xxh3.Hash(payload)
}

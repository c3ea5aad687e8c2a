// Package memory provides an in-memory records.Store used by tests and by
// the memory data backend for local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"acecheckin/internal/core"
	"acecheckin/internal/records"
)

type Store struct {
	mu       sync.Mutex
	members  []core.Member
	entries  []core.EntryLog
	payments []core.PaymentLog
	nextID   map[string]int64
}

func New() *Store {
	return &Store{
		nextID: map[string]int64{"member": 1, "entry": 1, "payment": 1},
	}
}

func (s *Store) allocate(kind string) int64 {
	id := s.nextID[kind]
	s.nextID[kind] = id + 1
	return id
}

func (s *Store) CreateMember(_ context.Context, params records.CreateMemberParams) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := core.Member{
		ID:        s.allocate("member"),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: time.Now().UTC(),
	}
	s.members = append(s.members, m)
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id int64) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return core.Member{}, records.ErrMemberNotFound
}

func (s *Store) ListMembers(_ context.Context, skip, limit int) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := paginate(len(s.members), skip, limit)
	out := make([]core.Member, 0, len(page))
	for _, i := range page {
		out = append(out, s.members[i])
	}
	return out, nil
}

func (s *Store) CreateEntry(_ context.Context, params records.CreateEntryParams) (core.EntryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.memberExists(params.MemberID) {
		return core.EntryLog{}, records.ErrMemberNotFound
	}
	e := core.EntryLog{
		ID:        s.allocate("entry"),
		MemberID:  params.MemberID,
		Timestamp: orNow(params.Timestamp),
		Notes:     params.Notes,
	}
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, memberID int64, skip, limit int) ([]core.EntryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []core.EntryLog
	for _, e := range s.entries {
		if e.MemberID == memberID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	page := paginate(len(matched), skip, limit)
	out := make([]core.EntryLog, 0, len(page))
	for _, i := range page {
		out = append(out, matched[i])
	}
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, params records.CreatePaymentParams) (core.PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.memberExists(params.MemberID) {
		return core.PaymentLog{}, records.ErrMemberNotFound
	}
	p := core.PaymentLog{
		ID:        s.allocate("payment"),
		MemberID:  params.MemberID,
		Amount:    params.Amount,
		Timestamp: orNow(params.Timestamp),
		Notes:     params.Notes,
	}
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) ListPayments(_ context.Context, memberID int64, skip, limit int) ([]core.PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []core.PaymentLog
	for _, p := range s.payments {
		if p.MemberID == memberID {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	page := paginate(len(matched), skip, limit)
	out := make([]core.PaymentLog, 0, len(page))
	for _, i := range page {
		out = append(out, matched[i])
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) memberExists(id int64) bool {
	for _, m := range s.members {
		if m.ID == id {
			return true
		}
	}
	return false
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// paginate returns the index window [skip, skip+limit) clamped to n.
// A negative limit means no limit; a negative skip counts as zero.
func paginate(n, skip, limit int) []int {
	if skip < 0 {
		skip = 0
	}
	if skip >= n {
		return nil
	}
	end := n
	if limit >= 0 && skip+limit < n {
		end = skip + limit
	}
	idx := make([]int, 0, end-skip)
	for i := skip; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

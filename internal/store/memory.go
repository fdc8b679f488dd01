package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	pkgstore "github.com/bossmachine/bossmachine/pkg/store"
)

// MemoryStore holds every collection in memory. It exclusively owns the
// records; callers get copies.
//
// mu orders writes that span collections: work writes hold it shared while
// checking their minion, and minion deletion or a state load hold it
// exclusively, so a work item can never be stored against a vanished minion.
type MemoryStore struct {
	Minions  *pkgstore.Store[Minion]
	Ideas    *pkgstore.Store[Idea]
	Meetings *pkgstore.Store[Meeting]
	Work     *pkgstore.Store[Work]
	Clock    *pkgstore.Clock

	mu         sync.RWMutex
	sampleData atomic.Bool
}

// New creates an empty MemoryStore whose collections mint ids with the given
// strategy.
func New(strategy pkgstore.IDStrategy) *MemoryStore {
	return &MemoryStore{
		Minions:  pkgstore.New[Minion](strategy),
		Ideas:    pkgstore.New[Idea](strategy),
		Meetings: pkgstore.New[Meeting](strategy),
		Work:     pkgstore.New[Work](strategy),
		Clock:    pkgstore.NewClock(),
	}
}

// --- Minions ---

func (s *MemoryStore) ListMinions() []Minion {
	return s.Minions.List()
}

func (s *MemoryStore) GetMinion(id string) (Minion, bool) {
	return s.Minions.Get(id)
}

// InsertMinion assigns a fresh id to m and stores it.
func (s *MemoryStore) InsertMinion(m Minion) Minion {
	m.ID = s.Minions.NextID()
	s.Minions.Set(m.ID, m)
	return m
}

// UpdateMinion replaces the minion with m.ID. It reports false when no such
// minion exists.
func (s *MemoryStore) UpdateMinion(m Minion) (Minion, bool) {
	if !s.Minions.Replace(m.ID, m) {
		return Minion{}, false
	}
	return m, true
}

func (s *MemoryStore) DeleteMinion(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Minions.Delete(id)
}

// --- Ideas ---

func (s *MemoryStore) ListIdeas() []Idea {
	return s.Ideas.List()
}

func (s *MemoryStore) GetIdea(id string) (Idea, bool) {
	return s.Ideas.Get(id)
}

// InsertIdea assigns a fresh id to i and stores it, provided it is worth at
// least MinIdeaValue.
func (s *MemoryStore) InsertIdea(i Idea) (Idea, error) {
	if err := checkIdeaValue(i); err != nil {
		return Idea{}, err
	}
	i.ID = s.Ideas.NextID()
	s.Ideas.Set(i.ID, i)
	return i, nil
}

// UpdateIdea replaces the idea with i.ID.
func (s *MemoryStore) UpdateIdea(i Idea) (Idea, bool, error) {
	if err := checkIdeaValue(i); err != nil {
		return Idea{}, false, err
	}
	if !s.Ideas.Replace(i.ID, i) {
		return Idea{}, false, nil
	}
	return i, true, nil
}

func (s *MemoryStore) DeleteIdea(id string) bool {
	return s.Ideas.Delete(id)
}

func checkIdeaValue(i Idea) error {
	if i.Value() < MinIdeaValue {
		return &ValidationError{Collection: CollectionIdeas, Field: "weeklyRevenue", Reason: ReasonBelowThreshold}
	}
	return nil
}

// --- Meetings ---

func (s *MemoryStore) ListMeetings() []Meeting {
	return s.Meetings.List()
}

// InsertMeeting assigns a fresh id to m and stores it.
func (s *MemoryStore) InsertMeeting(m Meeting) Meeting {
	m.ID = s.Meetings.NextID()
	s.Meetings.Set(m.ID, m)
	return m
}

// CreateMeeting generates a meeting scheduled after the simulated now and
// stores it.
func (s *MemoryStore) CreateMeeting() Meeting {
	return s.InsertMeeting(NewMeeting(s.Clock.Now()))
}

func (s *MemoryStore) DeleteAllMeetings() {
	s.Meetings.Clear()
}

// --- Work ---

func (s *MemoryStore) ListWork() []Work {
	return s.Work.List()
}

// WorkForMinion lists the work assigned to the given minion.
func (s *MemoryStore) WorkForMinion(minionID string) []Work {
	return s.Work.Filter(func(_ string, w Work) bool {
		return w.MinionID == minionID
	})
}

func (s *MemoryStore) GetWork(id string) (Work, bool) {
	return s.Work.Get(id)
}

// InsertWork assigns a fresh id to w and stores it. w.MinionID must name an
// existing minion.
func (s *MemoryStore) InsertWork(w Work) (Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkMinionRef(w); err != nil {
		return Work{}, err
	}
	w.ID = s.Work.NextID()
	s.Work.Set(w.ID, w)
	return w, nil
}

// UpdateWork replaces the work item with w.ID.
func (s *MemoryStore) UpdateWork(w Work) (Work, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkMinionRef(w); err != nil {
		return Work{}, false, err
	}
	if !s.Work.Replace(w.ID, w) {
		return Work{}, false, nil
	}
	return w, true, nil
}

func (s *MemoryStore) DeleteWork(id string) bool {
	return s.Work.Delete(id)
}

func (s *MemoryStore) checkMinionRef(w Work) error {
	if _, ok := s.Minions.Get(w.MinionID); !ok {
		return &ValidationError{Collection: CollectionWork, Field: "minionId", Reason: ReasonUnknownMinion}
	}
	return nil
}

// Counts returns the number of records per collection.
func (s *MemoryStore) Counts() map[string]int {
	return map[string]int{
		CollectionMinions:  s.Minions.Count(),
		CollectionIdeas:    s.Ideas.Count(),
		CollectionMeetings: s.Meetings.Count(),
		CollectionWork:     s.Work.Count(),
	}
}

// --- Admin state ---

// stateSnapshot is the JSON-serializable state for admin endpoints.
type stateSnapshot struct {
	Minions  map[string]Minion  `json:"minions"`
	Ideas    map[string]Idea    `json:"ideas"`
	Meetings map[string]Meeting `json:"meetings"`
	Work     map[string]Work    `json:"work"`
}

// Snapshot returns the full state as a JSON-serializable value.
func (s *MemoryStore) Snapshot() any {
	return stateSnapshot{
		Minions:  s.Minions.Snapshot(),
		Ideas:    s.Ideas.Snapshot(),
		Meetings: s.Meetings.Snapshot(),
		Work:     s.Work.Snapshot(),
	}
}

// LoadState replaces every collection from a snapshot. Nothing is replaced
// when the snapshot breaks an invariant.
func (s *MemoryStore) LoadState(data []byte) error {
	var snap stateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding state: %w", err)
	}
	for id, i := range snap.Ideas {
		if err := checkIdeaValue(i); err != nil {
			return fmt.Errorf("idea %s: %w", id, err)
		}
	}
	for id, w := range snap.Work {
		if _, ok := snap.Minions[w.MinionID]; !ok {
			return fmt.Errorf("work %s: %w", id,
				&ValidationError{Collection: CollectionWork, Field: "minionId", Reason: ReasonUnknownMinion})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Minions.LoadSnapshot(withIDs(snap.Minions, func(m *Minion, id string) { m.ID = id }))
	s.Ideas.LoadSnapshot(withIDs(snap.Ideas, func(i *Idea, id string) { i.ID = id }))
	s.Meetings.LoadSnapshot(withIDs(snap.Meetings, func(m *Meeting, id string) { m.ID = id }))
	s.Work.LoadSnapshot(withIDs(snap.Work, func(w *Work, id string) { w.ID = id }))
	return nil
}

// withIDs makes every record's id agree with its snapshot key.
func withIDs[T any](items map[string]T, setID func(*T, string)) map[string]T {
	out := make(map[string]T, len(items))
	for id, item := range items {
		setID(&item, id)
		out[id] = item
	}
	return out
}

// UseSampleData fills the store with sample records and makes Reset refill it.
func (s *MemoryStore) UseSampleData() {
	s.sampleData.Store(true)
	s.Populate()
}

// Reset clears all collections and the simulated clock. Identifiers are not
// reused afterwards.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.Minions.Clear()
	s.Ideas.Clear()
	s.Meetings.Clear()
	s.Work.Clear()
	s.mu.Unlock()
	s.Clock.Reset()
	if s.sampleData.Load() {
		s.Populate()
	}
}

package store

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgstore "github.com/bossmachine/bossmachine/pkg/store"
)

func newStore() *MemoryStore {
	return New(pkgstore.IDSequential)
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	s := newStore()

	m := s.InsertMinion(Minion{Name: "Kevin", Salary: 100, Extra: Fields{"eyes": 1.0}})
	if m.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	got, ok := s.GetMinion(m.ID)
	if !ok || !reflect.DeepEqual(got, m) {
		t.Errorf("expected %+v, got %+v (found=%v)", m, got, ok)
	}

	i, err := s.InsertIdea(Idea{Name: "Pet rocks", NumWeeks: 52, WeeklyRevenue: 20000})
	if err != nil {
		t.Fatalf("InsertIdea: %v", err)
	}
	gotIdea, ok := s.GetIdea(i.ID)
	if !ok || !reflect.DeepEqual(gotIdea, i) {
		t.Errorf("expected %+v, got %+v", i, gotIdea)
	}

	w, err := s.InsertWork(Work{Title: "Polish", Hours: 2, MinionID: m.ID})
	if err != nil {
		t.Fatalf("InsertWork: %v", err)
	}
	gotWork, ok := s.GetWork(w.ID)
	if !ok || !reflect.DeepEqual(gotWork, w) {
		t.Errorf("expected %+v, got %+v", w, gotWork)
	}
}

func TestInsertAssignsFreshIDs(t *testing.T) {
	s := newStore()
	a := s.InsertMinion(Minion{Name: "a", ID: "ignored"})
	b := s.InsertMinion(Minion{Name: "b"})
	if a.ID != "1" || b.ID != "2" {
		t.Errorf("expected ids 1 and 2, got %s and %s", a.ID, b.ID)
	}
}

func TestInsertIdeaBelowThreshold(t *testing.T) {
	s := newStore()
	_, err := s.InsertIdea(Idea{NumWeeks: 10, WeeklyRevenue: 1000})

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonBelowThreshold {
		t.Fatalf("expected threshold error, got %v", err)
	}
	if s.Ideas.Count() != 0 {
		t.Errorf("expected nothing stored, got %d ideas", s.Ideas.Count())
	}
}

func TestUpdateIdea(t *testing.T) {
	s := newStore()
	i, _ := s.InsertIdea(Idea{Name: "v1", NumWeeks: 100, WeeklyRevenue: 10000})

	updated, ok, err := s.UpdateIdea(Idea{ID: i.ID, Name: "v2", NumWeeks: 200, WeeklyRevenue: 5000})
	if err != nil || !ok {
		t.Fatalf("UpdateIdea: ok=%v err=%v", ok, err)
	}
	if updated.Name != "v2" {
		t.Errorf("expected full replace, got %+v", updated)
	}

	_, _, err = s.UpdateIdea(Idea{ID: i.ID, Name: "v3", NumWeeks: 1, WeeklyRevenue: 1})
	if err == nil {
		t.Fatal("expected threshold error on update")
	}
	got, _ := s.GetIdea(i.ID)
	if got.Name != "v2" {
		t.Errorf("rejected update must not change the idea, got %+v", got)
	}
}

func TestUpdateUnknownReportsAbsent(t *testing.T) {
	s := newStore()
	if _, ok := s.UpdateMinion(Minion{ID: "404"}); ok {
		t.Error("expected update of unknown minion to report false")
	}
	_, ok, err := s.UpdateIdea(Idea{ID: "404", NumWeeks: 1000, WeeklyRevenue: 1000})
	if ok || err != nil {
		t.Errorf("expected ok=false err=nil, got ok=%v err=%v", ok, err)
	}
	if s.Minions.Count() != 0 || s.Ideas.Count() != 0 {
		t.Error("update of unknown record must not insert")
	}
}

func TestUpdateReplacesWholeRecord(t *testing.T) {
	s := newStore()
	m := s.InsertMinion(Minion{Name: "Kevin", Title: "Boss", Extra: Fields{"hat": "red"}})

	updated, ok := s.UpdateMinion(Minion{ID: m.ID, Name: "Stuart"})
	if !ok {
		t.Fatal("expected update to succeed")
	}
	if updated.Title != "" || updated.Extra != nil {
		t.Errorf("expected no merge with previous record, got %+v", updated)
	}
}

func TestDeleteThenGet(t *testing.T) {
	s := newStore()
	m := s.InsertMinion(Minion{Name: "Kevin"})
	i, _ := s.InsertIdea(Idea{NumWeeks: 1, WeeklyRevenue: 1_000_000})

	if !s.DeleteMinion(m.ID) || !s.DeleteIdea(i.ID) {
		t.Fatal("expected deletes to succeed")
	}
	if _, ok := s.GetMinion(m.ID); ok {
		t.Error("minion still present after delete")
	}
	if _, ok := s.GetIdea(i.ID); ok {
		t.Error("idea still present after delete")
	}
	if s.DeleteMinion(m.ID) {
		t.Error("second delete should report false")
	}
}

func TestInsertWorkRequiresMinion(t *testing.T) {
	s := newStore()
	_, err := s.InsertWork(Work{Title: "orphan", MinionID: "7"})

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonUnknownMinion {
		t.Fatalf("expected unknown minion error, got %v", err)
	}
}

func TestWorkForMinion(t *testing.T) {
	s := newStore()
	a := s.InsertMinion(Minion{Name: "a"})
	b := s.InsertMinion(Minion{Name: "b"})
	s.InsertWork(Work{Title: "a1", MinionID: a.ID})
	s.InsertWork(Work{Title: "b1", MinionID: b.ID})
	s.InsertWork(Work{Title: "a2", MinionID: a.ID})

	work := s.WorkForMinion(a.ID)
	if len(work) != 2 || work[0].Title != "a1" || work[1].Title != "a2" {
		t.Errorf("unexpected work for minion a: %+v", work)
	}
	if none := s.WorkForMinion("999"); none == nil || len(none) != 0 {
		t.Errorf("expected empty list, got %#v", none)
	}
}

func TestCreateAndDeleteAllMeetings(t *testing.T) {
	s := newStore()
	before := s.Clock.Now()
	m := s.CreateMeeting()
	s.CreateMeeting()

	if m.ID == "" || m.Note == "" || m.Day == "" || len(m.Time) != 5 {
		t.Errorf("unexpected meeting: %+v", m)
	}
	if m.Date.Before(before.Add(-time.Second)) {
		t.Errorf("meeting date %v should not be in the past", m.Date)
	}
	if len(s.ListMeetings()) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(s.ListMeetings()))
	}

	s.DeleteAllMeetings()
	if len(s.ListMeetings()) != 0 {
		t.Errorf("expected no meetings after delete-all")
	}
	if next := s.CreateMeeting(); next.ID != "3" {
		t.Errorf("expected id 3 after delete-all, got %s", next.ID)
	}
}

func TestPopulate(t *testing.T) {
	s := newStore()
	s.Populate()

	counts := s.Counts()
	want := map[string]int{"minions": 10, "ideas": 10, "meetings": 3, "work": 10}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("expected %v, got %v", want, counts)
	}
	for _, i := range s.ListIdeas() {
		if i.Value() < MinIdeaValue {
			t.Errorf("sample idea %s below threshold: %v", i.ID, i.Value())
		}
	}
	for _, w := range s.ListWork() {
		if _, ok := s.GetMinion(w.MinionID); !ok {
			t.Errorf("sample work %s references unknown minion %s", w.ID, w.MinionID)
		}
	}
}

func TestSnapshotLoadStateRoundTrip(t *testing.T) {
	s := newStore()
	m := s.InsertMinion(Minion{Name: "Kevin", Extra: Fields{"hat": "red"}})
	s.InsertWork(Work{Title: "Polish", MinionID: m.ID})
	s.InsertIdea(Idea{NumWeeks: 2, WeeklyRevenue: 600_000})
	s.CreateMeeting()

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	s2 := newStore()
	if err := s2.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !reflect.DeepEqual(s.Counts(), s2.Counts()) {
		t.Errorf("expected %v, got %v", s.Counts(), s2.Counts())
	}
	got, ok := s2.GetMinion(m.ID)
	if !ok || got.Extra["hat"] != "red" {
		t.Errorf("expected minion with extra attributes, got %+v", got)
	}
	if next := s2.InsertMinion(Minion{}); next.ID == m.ID {
		t.Errorf("id %s reused after LoadState", next.ID)
	}
}

func TestLoadStateUsesKeysAsIDs(t *testing.T) {
	s := newStore()
	err := s.LoadState([]byte(`{"minions": {"5": {"id": "wrong", "name": "Kevin", "salary": 1}}}`))
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if m, ok := s.GetMinion("5"); !ok || m.ID != "5" {
		t.Errorf("expected minion 5, got %+v (found=%v)", m, ok)
	}
}

func TestLoadStateRejectsBrokenInvariants(t *testing.T) {
	s := newStore()
	s.InsertMinion(Minion{Name: "keep me"})

	bad := []string{
		`{"ideas": {"1": {"numWeeks": 1, "weeklyRevenue": 1}}}`,
		`{"work": {"1": {"title": "orphan", "minionId": "9"}}}`,
		`{"minions": []}`,
	}
	for _, body := range bad {
		if err := s.LoadState([]byte(body)); err == nil {
			t.Errorf("expected LoadState(%s) to fail", body)
		}
	}
	if s.Minions.Count() != 1 {
		t.Error("failed LoadState must leave the store untouched")
	}
}

func TestResetWithSampleData(t *testing.T) {
	s := newStore()
	s.UseSampleData()
	s.InsertMinion(Minion{Name: "extra"})
	s.Clock.Advance(time.Hour)

	s.Reset()

	if s.Minions.Count() != 10 {
		t.Errorf("expected sample data to be reloaded, got %d minions", s.Minions.Count())
	}
	if s.Clock.Offset() != 0 {
		t.Errorf("expected clock reset, got offset %v", s.Clock.Offset())
	}
}

func TestResetEmptiesStore(t *testing.T) {
	s := newStore()
	s.InsertMinion(Minion{Name: "gone"})
	s.Reset()

	for name, n := range s.Counts() {
		if n != 0 {
			t.Errorf("expected %s to be empty, got %d", name, n)
		}
	}
}

func TestCollector(t *testing.T) {
	s := newStore()
	s.InsertMinion(Minion{Name: "Kevin"})
	s.CreateMeeting()

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(s.Collector())

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	got := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "bossmachine_collection_records" {
			continue
		}
		for _, m := range mf.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
	}
	want := map[string]float64{"minions": 1, "ideas": 0, "meetings": 1, "work": 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSnapshotRoundTripWithCaseVariantExtras(t *testing.T) {
	s := newStore()
	m, err := MinionFromFields(Fields{"name": "Bob", "salary": 1.0, "Salary": "lots"})
	if err != nil {
		t.Fatal(err)
	}
	m = s.InsertMinion(m)
	w, err := WorkFromFields(Fields{"title": "Dig", "hours": 2.0, "minionId": m.ID, "Hours": "many"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertWork(w); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.LoadState(data); err != nil {
		t.Fatalf("reloading own snapshot: %v", err)
	}
	got, _ := s.GetMinion(m.ID)
	if got.Salary != 1 || got.Extra["Salary"] != "lots" {
		t.Errorf("unexpected minion after reload: %+v", got)
	}
}

func TestInsertWorkWaitsForMinionDeletion(t *testing.T) {
	s := newStore()
	m := s.InsertMinion(Minion{Name: "Bob"})

	// Hold the lock a deletion takes, so the insert must observe the outcome.
	s.mu.Lock()
	done := make(chan error, 1)
	go func() {
		_, err := s.InsertWork(Work{Title: "Dig", MinionID: m.ID})
		done <- err
	}()

	select {
	case err := <-done:
		s.mu.Unlock()
		t.Fatalf("insert finished while a deletion was in progress: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	s.Minions.Delete(m.ID)
	s.mu.Unlock()

	var verr *ValidationError
	if err := <-done; !errors.As(err, &verr) || verr.Reason != ReasonUnknownMinion {
		t.Fatalf("expected unknown minion error, got %v", err)
	}
	if n := s.Work.Count(); n != 0 {
		t.Errorf("expected no work stored, got %d", n)
	}
}

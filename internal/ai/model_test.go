package ai

import (
	"context"
	"errors"
	"testing"

	"broadside/pkg/battleship"
)

type mockModelStore struct {
	counts  map[ModelKey]int64
	loadErr error
	addErr  error
	adds    int
}

func newMockModelStore() *mockModelStore {
	return &mockModelStore{counts: make(map[ModelKey]int64)}
}

func (m *mockModelStore) Load(_ context.Context) (map[ModelKey]int64, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[ModelKey]int64, len(m.counts))
	for k, n := range m.counts {
		out[k] = n
	}
	return out, nil
}

func (m *mockModelStore) Add(_ context.Context, counts map[ModelKey]int64) error {
	m.adds++
	if m.addErr != nil {
		return m.addErr
	}
	for k, n := range counts {
		m.counts[k] += n
	}
	return nil
}

func TestModelKeyRoundTrip(t *testing.T) {
	keys := []ModelKey{
		{Length: 5, Bucket: 4, Vertical: false},
		{Length: 2, Bucket: 0, Vertical: true},
		{Length: 3, Bucket: 8, Vertical: false},
	}
	for _, k := range keys {
		parsed, err := ParseModelKey(k.String())
		if err != nil {
			t.Errorf("ParseModelKey(%q) failed: %v", k.String(), err)
		}
		if parsed != k {
			t.Errorf("round trip %q: got %+v, want %+v", k.String(), parsed, k)
		}
	}
}

func TestModelKeyString(t *testing.T) {
	k := ModelKey{Length: 5, Bucket: 4, Vertical: false}
	if k.String() != "L5:b4:h" {
		t.Errorf("expected L5:b4:h, got %s", k.String())
	}
	k.Vertical = true
	if k.String() != "L5:b4:v" {
		t.Errorf("expected L5:b4:v, got %s", k.String())
	}
}

func TestParseModelKeyMalformed(t *testing.T) {
	for _, s := range []string{"", "L5", "L5:b4", "5:4:h", "Lx:b4:h", "L5:bx:h", "L5:b4:h:extra"} {
		if _, err := ParseModelKey(s); err == nil {
			t.Errorf("ParseModelKey(%q) accepted malformed input", s)
		}
	}
}

func TestModelWeightUniformWhenEmpty(t *testing.T) {
	m := NewModel(10)
	if w := m.Weight(5, battleship.Cell{Row: 0, Col: 0}, battleship.Horizontal); w != 1 {
		t.Errorf("empty model weight = %v, want 1", w)
	}
}

func TestModelObserveFleetAndWeight(t *testing.T) {
	m := NewModel(10)
	ships := []*battleship.Ship{
		battleship.NewShip(5, battleship.Cell{Row: 0, Col: 0}, battleship.Horizontal),
		battleship.NewShip(5, battleship.Cell{Row: 0, Col: 1}, battleship.Horizontal),
	}
	m.ObserveFleet(ships)

	if got := m.TotalObservations(); got != 2 {
		t.Errorf("expected 2 observations, got %d", got)
	}

	// Both ships start in the top-left zone, so with a single observed
	// bucket the mean count equals the bucket count and the boost is
	// exactly BiasStrength.
	w := m.Weight(5, battleship.Cell{Row: 1, Col: 1}, battleship.Horizontal)
	if want := 1 + BiasStrength; w != want {
		t.Errorf("observed bucket weight = %v, want %v", w, want)
	}
	if w := m.Weight(5, battleship.Cell{Row: 9, Col: 9}, battleship.Horizontal); w != 1 {
		t.Errorf("unobserved bucket weight = %v, want 1", w)
	}
	if w := m.Weight(5, battleship.Cell{Row: 0, Col: 0}, battleship.Vertical); w != 1 {
		t.Errorf("wrong orientation weight = %v, want 1", w)
	}
}

func TestModelMerge(t *testing.T) {
	m := NewModel(10)
	k1 := ModelKey{Length: 3, Bucket: 0, Vertical: false}
	k2 := ModelKey{Length: 3, Bucket: 8, Vertical: true}
	m.Merge(map[ModelKey]int64{k1: 2, k2: 2})

	if got := m.TotalObservations(); got != 4 {
		t.Errorf("expected 4 observations after merge, got %d", got)
	}
	// mean = 4/2 = 2, both buckets at the mean.
	w := m.Weight(3, battleship.Cell{Row: 0, Col: 0}, battleship.Horizontal)
	if want := 1 + BiasStrength; w != want {
		t.Errorf("weight = %v, want %v", w, want)
	}
}

func TestModelFlushOnlyDirty(t *testing.T) {
	store := newMockModelStore()
	m := NewModel(10)

	// Merged counts came from the store and must not be written back.
	m.Merge(map[ModelKey]int64{{Length: 2, Bucket: 0, Vertical: false}: 7})
	if err := m.Flush(context.Background(), store); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if store.adds != 0 {
		t.Errorf("clean flush wrote to the store %d times", store.adds)
	}

	m.ObserveFleet([]*battleship.Ship{
		battleship.NewShip(5, battleship.Cell{Row: 0, Col: 0}, battleship.Horizontal),
	})
	if err := m.Flush(context.Background(), store); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	key := ModelKey{Length: 5, Bucket: 0, Vertical: false}
	if store.counts[key] != 1 {
		t.Errorf("expected count 1 for %s in store, got %d", key, store.counts[key])
	}

	// A second flush with nothing new stays quiet.
	adds := store.adds
	if err := m.Flush(context.Background(), store); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if store.adds != adds {
		t.Error("flush with no pending counts wrote to the store")
	}
}

func TestModelFlushRetriesAfterError(t *testing.T) {
	store := newMockModelStore()
	store.addErr = errors.New("store down")
	m := NewModel(10)
	m.ObserveFleet([]*battleship.Ship{
		battleship.NewShip(3, battleship.Cell{Row: 5, Col: 5}, battleship.Vertical),
	})

	if err := m.Flush(context.Background(), store); err == nil {
		t.Fatal("expected flush error")
	}

	// The failed delta is re-queued and lands on the next flush.
	store.addErr = nil
	if err := m.Flush(context.Background(), store); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}
	key := ModelKey{Length: 3, Bucket: 4, Vertical: true}
	if store.counts[key] != 1 {
		t.Errorf("expected count 1 for %s after retry, got %d", key, store.counts[key])
	}
}

func TestModelLoadFrom(t *testing.T) {
	store := newMockModelStore()
	store.counts[ModelKey{Length: 4, Bucket: 2, Vertical: false}] = 3

	m := NewModel(10)
	if err := m.LoadFrom(context.Background(), store); err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got := m.TotalObservations(); got != 3 {
		t.Errorf("expected 3 observations after load, got %d", got)
	}

	store.loadErr = errors.New("store down")
	if err := m.LoadFrom(context.Background(), store); err == nil {
		t.Error("expected load error")
	}
}

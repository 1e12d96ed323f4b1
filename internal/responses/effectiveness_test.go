package responses

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/equilibra/pkg/logging"
)

// memoryPersister keeps the last saved document and can fail on demand.
type memoryPersister struct {
	doc     Document
	saves   int
	saveErr error
	loadErr error
}

func (m *memoryPersister) Load(ctx context.Context) (Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.doc.clone(), nil
}

func (m *memoryPersister) Save(ctx context.Context, doc Document) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = doc.clone()
	return nil
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, p Persister) (*EffectivenessStore, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	store := NewEffectivenessStore(context.Background(), p, StoreConfig{Now: clock.Now}, logging.Discard())
	return store, clock
}

func TestEffectivenessStore_BestForRanksByMean(t *testing.T) {
	store, clock := newTestStore(t, &memoryPersister{})
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "Ansiedad", "A", 2))
	require.NoError(t, store.Record(ctx, "Ansiedad", "A", 4))
	require.NoError(t, store.Record(ctx, "Ansiedad", "B", 9))
	require.NoError(t, store.Record(ctx, "Ansiedad", "C", 5))
	require.NoError(t, store.Record(ctx, "Tristeza", "D", 10))

	_, ok := store.BestFor("Ansiedad")
	assert.False(t, ok, "everything was just used")

	clock.Advance(2 * time.Hour)
	best, ok := store.BestFor("Ansiedad")
	require.True(t, ok)
	assert.Equal(t, "B", best)

	ranked := store.Ranked("Ansiedad")
	require.Len(t, ranked, 3)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, ranked[0].Mean, r.Mean)
	}
	assert.InDelta(t, 3.0, ranked[2].Mean, 1e-9)
}

func TestEffectivenessStore_BestForSkipsRecentlyUsed(t *testing.T) {
	store, clock := newTestStore(t, &memoryPersister{})
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "Ansiedad", "top", 10))
	require.NoError(t, store.Record(ctx, "Ansiedad", "second", 3))
	clock.Advance(2 * time.Hour)

	require.NoError(t, store.Record(ctx, "Ansiedad", "top", 10))
	clock.Advance(30 * time.Minute)

	best, ok := store.BestFor("Ansiedad")
	require.True(t, ok)
	assert.Equal(t, "second", best, "top was used within the hour")

	clock.Advance(31 * time.Minute)
	best, _ = store.BestFor("Ansiedad")
	assert.Equal(t, "top", best)
}

func TestEffectivenessStore_RecordPersistsAndValidates(t *testing.T) {
	p := &memoryPersister{}
	store, _ := newTestStore(t, p)

	require.NoError(t, store.Record(context.Background(), "Ansiedad", "Te escucho.", 3.5))
	assert.Equal(t, 1, p.saves)
	rec := p.doc["Ansiedad"]["Te escucho."]
	assert.Equal(t, 1, rec.TimesUsed)
	assert.InDelta(t, 3.5, rec.TotalScore, 1e-9)

	assert.Error(t, store.Record(context.Background(), "", "x", 1))
	assert.Error(t, store.Record(context.Background(), "Ansiedad", "  ", 1))
}

func TestEffectivenessStore_SaveFailureKeepsMemory(t *testing.T) {
	p := &memoryPersister{saveErr: errors.New("disk full")}
	store, clock := newTestStore(t, p)

	err := store.Record(context.Background(), "Ansiedad", "A", 5)
	assert.Error(t, err)
	clock.Advance(2 * time.Hour)
	ranked := store.Ranked("Ansiedad")
	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].Text)
	assert.Equal(t, 1, ranked[0].TimesUsed)
}

func TestEffectivenessStore_UnreadableDocumentStartsEmpty(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{loadErr: errors.New("corrupt")})
	assert.Empty(t, store.Snapshot())
}

func TestEffectivenessStore_Prune(t *testing.T) {
	p := &memoryPersister{}
	store, clock := newTestStore(t, p)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "Ansiedad", "single-old", 5))
	require.NoError(t, store.Record(ctx, "Ansiedad", "twice", 5))
	require.NoError(t, store.Record(ctx, "Ansiedad", "twice", 5))
	require.NoError(t, store.Record(ctx, "Tristeza", "stale", 5))
	require.NoError(t, store.Record(ctx, "Tristeza", "stale", 5))

	clock.Advance(25 * time.Hour)
	require.NoError(t, store.Record(ctx, "Ansiedad", "single-new", 5))

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "only the old single-use record goes")

	clock.Advance(31 * 24 * time.Hour)
	require.NoError(t, store.Record(ctx, "Ansiedad", "twice", 5))
	removed, err = store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	doc := store.Snapshot()
	assert.NotContains(t, doc, "Tristeza")
	assert.Contains(t, doc["Ansiedad"], "twice")
	assert.Equal(t, doc, p.doc)
}

func TestEffectivenessStore_PruneNothingSkipsSave(t *testing.T) {
	p := &memoryPersister{}
	store, _ := newTestStore(t, p)
	removed, err := store.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Zero(t, p.saves)
}

func TestFilePersister_RoundTripAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "response_effectiveness.json")
	ctx := context.Background()

	first, clock := newTestStore(t, NewFilePersister(path))
	require.NoError(t, first.Record(ctx, "Estrés", "Respira hondo.", 7))

	second := NewEffectivenessStore(ctx, NewFilePersister(path), StoreConfig{Now: func() time.Time { return clock.now.Add(2 * time.Hour) }}, logging.Discard())
	best, ok := second.BestFor("Estrés")
	require.True(t, ok)
	assert.Equal(t, "Respira hondo.", best)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFilePersister_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	doc, err := NewFilePersister(filepath.Join(dir, "missing.json")).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = NewFilePersister(bad).Load(context.Background())
	assert.Error(t, err)
}

func TestEffectivenessStore_NullSymptomEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effectiveness.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Ansiedad": null}`), 0o644))

	store, _ := newTestStore(t, NewFilePersister(path))
	require.NoError(t, store.Record(context.Background(), "Ansiedad", "A", 3))
	ranked := store.Ranked("Ansiedad")
	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].Text)
	assert.Equal(t, 1, ranked[0].TimesUsed)
}

func TestRedisPersister_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	p := NewRedisPersister(client, "")
	doc, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc)

	store, _ := newTestStore(t, p)
	require.NoError(t, store.Record(ctx, "Insomnio", "¿Qué haces antes de dormir?", 4))
	assert.True(t, mr.Exists(DefaultRedisKey))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded["Insomnio"]["¿Qué haces antes de dormir?"].TimesUsed)
}

func newSharedStore(t *testing.T, mr *miniredis.Miniredis, now func() time.Time) (*EffectivenessStore, *RedisPersister) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	p := NewRedisPersister(client, "")
	return NewEffectivenessStore(context.Background(), p, StoreConfig{Now: now}, logging.Discard()), p
}

func TestRedisPersister_WorkersMergeRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	clock := &testClock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	w1, _ := newSharedStore(t, mr, clock.Now)
	w2, _ := newSharedStore(t, mr, clock.Now)

	require.NoError(t, w1.Record(ctx, "Ansiedad", "reply from worker 1", 4))
	require.NoError(t, w2.Record(ctx, "Ansiedad", "reply from worker 2", 2))
	require.NoError(t, w1.Record(ctx, "Ansiedad", "reply from worker 2", 2))

	fresh, p := newSharedStore(t, mr, clock.Now)
	doc, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc["Ansiedad"], 2)
	assert.Equal(t, 1, doc["Ansiedad"]["reply from worker 1"].TimesUsed)
	assert.Equal(t, 2, doc["Ansiedad"]["reply from worker 2"].TimesUsed)
	assert.InDelta(t, 4.0, doc["Ansiedad"]["reply from worker 2"].TotalScore, 1e-9)

	clock.Advance(2 * time.Hour)
	best, ok := fresh.BestFor("Ansiedad")
	require.True(t, ok)
	assert.Equal(t, "reply from worker 1", best)

	// w1 picked up worker 2's reply when it last wrote.
	assert.Len(t, w1.Ranked("Ansiedad"), 2)
}

func TestRedisPersister_UpdateRetriesOnConcurrentWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	clock := &testClock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	other, _ := newSharedStore(t, mr, clock.Now)
	_, p := newSharedStore(t, mr, clock.Now)

	calls := 0
	doc, err := p.Update(ctx, func(doc Document) bool {
		calls++
		if calls == 1 {
			require.NoError(t, other.Record(ctx, "Tristeza", "interleaved", 3))
		}
		doc["Ansiedad"] = map[string]Record{"mine": {TotalScore: 1, TimesUsed: 1, LastUsedAt: clock.now}}
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "the first transaction is aborted by the interleaved write")
	assert.Contains(t, doc, "Tristeza")
	assert.Contains(t, doc, "Ansiedad")

	stored, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, 1, stored["Ansiedad"]["mine"].TimesUsed)
	assert.Equal(t, 1, stored["Tristeza"]["interleaved"].TimesUsed)
}

func TestRedisPersister_PruneRefreshesFromSharedDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	clock := &testClock{now: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	w1, _ := newSharedStore(t, mr, clock.Now)
	w2, _ := newSharedStore(t, mr, clock.Now)

	require.NoError(t, w1.Record(ctx, "Ansiedad", "old single use", 5))
	clock.Advance(25 * time.Hour)
	require.NoError(t, w2.Record(ctx, "Ansiedad", "recent", 5))

	removed, err := w1.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ranked := w1.Ranked("Ansiedad")
	require.Len(t, ranked, 1)
	assert.Equal(t, "recent", ranked[0].Text)

	removed, err = w2.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, w2.Ranked("Ansiedad"), 1)
}

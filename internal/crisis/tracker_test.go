package crisis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/kv"
)

func newTestTracker(t *testing.T, store kv.Store) *ActivityTracker {
	t.Helper()
	return NewActivityTracker(store, 3, zap.NewNop())
}

func TestCheckInFirstRunOnlyRecordsBaseline(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := newTestTracker(t, store)

	assert.False(t, tracker.CheckIn("quietfox"))

	// A baseline must have been written.
	_, err := store.Get("last_activity:quietfox")
	assert.NoError(t, err)
}

func TestCheckInAfterThresholdFiresOnce(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := newTestTracker(t, store)

	start := time.Now()
	tracker.now = func() time.Time { return start }
	assert.False(t, tracker.CheckIn("quietfox"))

	// Four days later the prompt fires.
	tracker.now = func() time.Time { return start.Add(4 * 24 * time.Hour) }
	assert.True(t, tracker.CheckIn("quietfox"))

	// An immediate second check has a fresh baseline and stays quiet.
	assert.False(t, tracker.CheckIn("quietfox"))
}

func TestCheckInBelowThresholdStaysQuiet(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := newTestTracker(t, store)

	start := time.Now()
	tracker.now = func() time.Time { return start }
	tracker.CheckIn("quietfox")

	tracker.now = func() time.Time { return start.Add(2 * 24 * time.Hour) }
	assert.False(t, tracker.CheckIn("quietfox"))
}

func TestCheckInTracksIdentitiesIndependently(t *testing.T) {
	store := kv.NewMemoryStore()
	tracker := newTestTracker(t, store)

	start := time.Now()
	tracker.now = func() time.Time { return start }
	tracker.CheckIn("alpha")

	tracker.now = func() time.Time { return start.Add(5 * 24 * time.Hour) }
	assert.True(t, tracker.CheckIn("alpha"))
	assert.False(t, tracker.CheckIn("beta"))
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", errors.New("disk on fire") }
func (brokenStore) Set(string, string) error   { return errors.New("disk on fire") }
func (brokenStore) Delete(string) error        { return errors.New("disk on fire") }
func (brokenStore) Close() error               { return nil }

func TestCheckInDegradesToNeverPromptOnStoreFailure(t *testing.T) {
	tracker := newTestTracker(t, brokenStore{})

	assert.False(t, tracker.CheckIn("quietfox"))
}

func TestCheckInDiscardsUnreadableTimestamp(t *testing.T) {
	store := kv.NewMemoryStore()
	assert.NoError(t, store.Set("last_activity:quietfox", "not-a-number"))

	tracker := newTestTracker(t, store)
	assert.False(t, tracker.CheckIn("quietfox"))

	// The bad value is replaced with a numeric baseline.
	value, err := store.Get("last_activity:quietfox")
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-number", value)
}

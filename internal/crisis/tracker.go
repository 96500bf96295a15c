package crisis

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/kv"
)

const lastActivityKeyPrefix = "last_activity:"

// ActivityTracker decides whether a returning identity should be shown a
// proactive check-in. It keeps one persisted timestamp per identity in the
// session store and overwrites it with "now" on every check, so the prompt
// fires at most once per inactivity window.
type ActivityTracker struct {
	store     kv.Store
	threshold time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewActivityTracker(store kv.Store, thresholdDays int, logger *zap.Logger) *ActivityTracker {
	return &ActivityTracker{
		store:     store,
		threshold: time.Duration(thresholdDays) * 24 * time.Hour,
		now:       time.Now,
		logger:    logger,
	}
}

// CheckIn returns true when a previous timestamp exists and the identity has
// been away at least the threshold. The first-ever check only records a
// baseline. Store failures degrade to "never prompt".
func (t *ActivityTracker) CheckIn(username string) bool {
	key := lastActivityKeyPrefix + username
	now := t.now()

	shouldPrompt := false
	previous, err := t.store.Get(key)
	switch err {
	case nil:
		ms, parseErr := strconv.ParseInt(previous, 10, 64)
		if parseErr != nil {
			t.logger.Warn("Discarding unreadable activity timestamp",
				zap.String("username", username),
				zap.String("value", previous))
		} else if now.Sub(time.UnixMilli(ms)) >= t.threshold {
			shouldPrompt = true
		}
	case kv.ErrNotFound:
		// First run for this identity; establish a baseline only.
	default:
		t.logger.Warn("Activity store unavailable, skipping check-in",
			zap.Error(err),
			zap.String("username", username))
		return false
	}

	if err := t.store.Set(key, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		t.logger.Warn("Failed to record activity timestamp",
			zap.Error(err),
			zap.String("username", username))
		return false
	}

	return shouldPrompt
}

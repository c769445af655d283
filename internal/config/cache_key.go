package config

import "fmt"

type CacheKeyStruct struct{}

// CacheKey is the shared builder for all Redis key names.
var CacheKey = &CacheKeyStruct{}

// RevokedTokenKey returns the denylist key for a logged-out JWT ID.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// AttemptKey returns the key holding a practice attempt's JSON state.
func (r *CacheKeyStruct) AttemptKey(attemptID string) string {
	return fmt.Sprintf("practice:attempt:%s", attemptID)
}

// AttemptAnswersKey returns the hash key holding a practice attempt's
// autosaved answers, one field per question index.
func (r *CacheKeyStruct) AttemptAnswersKey(attemptID string) string {
	return fmt.Sprintf("practice:attempt:%s:answers", attemptID)
}

// AttemptDeadlinesKey returns the sorted-set key indexing timed attempts by
// their expiry unix timestamp.
func (r *CacheKeyStruct) AttemptDeadlinesKey() string {
	return "practice:deadlines"
}

// UserActiveAttemptKey returns the key mapping a user to their in-flight
// practice attempt, if any.
func (r *CacheKeyStruct) UserActiveAttemptKey(userID int) string {
	return fmt.Sprintf("user:%d:active_attempt", userID)
}

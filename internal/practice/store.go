package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizdrill/backend/internal/config"
)

// ErrAttemptNotFound covers both unknown attempt IDs and attempts that were
// already finalized. The two are indistinguishable once the key is gone,
// which is exactly what makes the submit/expiry race settle exactly once.
var ErrAttemptNotFound = errors.New("practice attempt not found or already finished")

// Attempt is the in-flight state of a practice session, held in Redis until
// submission or expiry turns it into a persisted session.
type Attempt struct {
	ID                 string    `json:"id"`
	UserID             int       `json:"user_id"`
	TopicID            *int      `json:"topic_id"`
	QuestionIDs        []int     `json:"question_ids"`
	Timed              bool      `json:"timed"`
	SecondsPerQuestion int       `json:"seconds_per_question"`
	TotalSeconds       int       `json:"total_seconds"`
	StartedAt          time.Time `json:"started_at"`
	Deadline           time.Time `json:"deadline"` // zero when untimed
}

// RemainingSeconds reports the whole seconds left before forced submission.
// Untimed attempts have no deadline and report zero.
func (a *Attempt) RemainingSeconds(now time.Time) int {
	if !a.Timed {
		return 0
	}
	rem := int(a.Deadline.Sub(now).Seconds())
	if rem < 0 {
		return 0
	}
	return rem
}

// SavedAnswer is one autosaved answer: what was selected for a question
// index and how many seconds it has been in focus so far.
type SavedAnswer struct {
	SelectedOption *string `json:"selected_option"`
	TimeSpent      int     `json:"time_spent"`
}

// Store keeps practice attempts in Redis: the attempt JSON under its own
// key, answers in a hash keyed by question index, and timed deadlines in a
// sorted set scanned by the expiry worker.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store. ttl bounds how long abandoned attempts linger.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Put stores a new attempt and registers it as the user's active attempt.
// Timed attempts are also indexed by deadline for the expiry worker.
func (s *Store) Put(ctx context.Context, a *Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.AttemptKey(a.ID), raw, s.ttl)
	pipe.Set(ctx, config.CacheKey.UserActiveAttemptKey(a.UserID), a.ID, s.ttl)
	if a.Timed {
		pipe.ZAdd(ctx, config.CacheKey.AttemptDeadlinesKey(), redis.Z{
			Score:  float64(a.Deadline.Unix()),
			Member: a.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store attempt: %w", err)
	}
	return nil
}

// Get loads an attempt without consuming it.
func (s *Store) Get(ctx context.Context, id string) (*Attempt, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.AttemptKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return &a, nil
}

// SaveAnswer overwrites the autosaved answer for a question index.
func (s *Store) SaveAnswer(ctx context.Context, id string, index int, ans SavedAnswer) error {
	raw, err := json.Marshal(ans)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	key := config.CacheKey.AttemptAnswersKey(id)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(index), raw)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Answers loads all autosaved answers, keyed by question index.
func (s *Store) Answers(ctx context.Context, id string) (map[int]SavedAnswer, error) {
	fields, err := s.rdb.HGetAll(ctx, config.CacheKey.AttemptAnswersKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}

	answers := make(map[int]SavedAnswer, len(fields))
	for field, raw := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		var ans SavedAnswer
		if err := json.Unmarshal([]byte(raw), &ans); err != nil {
			continue
		}
		answers[idx] = ans
	}
	return answers, nil
}

// Take consumes an attempt atomically. GETDEL guarantees that of a manual
// submit and a forced expiry racing for the same attempt, exactly one wins;
// the loser sees ErrAttemptNotFound. The answers hash and deadline index
// entry are cleaned up alongside.
func (s *Store) Take(ctx context.Context, id string) (*Attempt, map[int]SavedAnswer, error) {
	answers, err := s.Answers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	raw, err := s.rdb.GetDel(ctx, config.CacheKey.AttemptKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("take attempt: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, nil, fmt.Errorf("unmarshal attempt: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.AttemptAnswersKey(id))
	pipe.ZRem(ctx, config.CacheKey.AttemptDeadlinesKey(), id)
	pipe.Del(ctx, config.CacheKey.UserActiveAttemptKey(a.UserID))
	_, _ = pipe.Exec(ctx) // Cleanup only; the attempt itself is already consumed.

	return &a, answers, nil
}

// Restore puts back an attempt consumed by Take whose persistence failed,
// answers and deadline entry included, so the submission can be retried
// instead of the attempt being lost.
func (s *Store) Restore(ctx context.Context, a *Attempt, answers map[int]SavedAnswer) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.AttemptKey(a.ID), raw, s.ttl)
	pipe.Set(ctx, config.CacheKey.UserActiveAttemptKey(a.UserID), a.ID, s.ttl)
	if a.Timed {
		pipe.ZAdd(ctx, config.CacheKey.AttemptDeadlinesKey(), redis.Z{
			Score:  float64(a.Deadline.Unix()),
			Member: a.ID,
		})
	}
	if len(answers) > 0 {
		key := config.CacheKey.AttemptAnswersKey(a.ID)
		for idx, ans := range answers {
			rawAns, err := json.Marshal(ans)
			if err != nil {
				return fmt.Errorf("marshal answer: %w", err)
			}
			pipe.HSet(ctx, key, strconv.Itoa(idx), rawAns)
		}
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("restore attempt: %w", err)
	}
	return nil
}

// ExpiredIDs returns the IDs of timed attempts whose deadline has passed.
func (s *Store) ExpiredIDs(ctx context.Context, now time.Time) ([]string, error) {
	return s.rdb.ZRangeByScore(ctx, config.CacheKey.AttemptDeadlinesKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

// Drop removes a stale deadline entry whose attempt key has already expired
// from Redis.
func (s *Store) Drop(ctx context.Context, id string) error {
	return s.rdb.ZRem(ctx, config.CacheKey.AttemptDeadlinesKey(), id).Err()
}

// ActiveAttemptID returns the user's in-flight attempt ID, if any.
func (s *Store) ActiveAttemptID(ctx context.Context, userID int) (string, bool, error) {
	id, err := s.rdb.Get(ctx, config.CacheKey.UserActiveAttemptKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

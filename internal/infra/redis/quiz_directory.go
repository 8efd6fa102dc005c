package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"eduquiz/internal/domain"
)

// QuizLoader fetches quiz metadata from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizDirectory caches quiz metadata in Redis (hash per quiz) and falls
// back to a loader on cache miss. Metadata is stored as:
// HSET quiz:{quizID}:meta owner {ownerID} cohort {cohort} title {title}
type QuizDirectory struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizDirectory(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizDirectory {
	return &QuizDirectory{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *QuizDirectory) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := d.metaKey(quizID)

	fields, err := d.client.HGetAll(ctx, key).Result()
	if err == nil && len(fields) > 0 {
		return quizFromMeta(quizID, fields), nil
	}

	result, err, _ := d.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		fields, err := d.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return quizFromMeta(quizID, fields), nil
		}

		quiz, err := d.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		pipe := d.client.Pipeline()
		pipe.HSet(ctx, key, "owner", quiz.OwnerID, "cohort", quiz.Cohort, "title", quiz.Title)
		if ttl := d.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached metadata for a quiz after a mutation.
func (d *QuizDirectory) Invalidate(ctx context.Context, quizID string) error {
	return d.client.Del(ctx, d.metaKey(quizID)).Err()
}

func (d *QuizDirectory) metaKey(quizID string) string {
	return "quiz:" + quizID + ":meta"
}

func quizFromMeta(quizID string, fields map[string]string) domain.Quiz {
	return domain.Quiz{
		ID:      quizID,
		OwnerID: fields["owner"],
		Cohort:  fields["cohort"],
		Title:   fields["title"],
	}
}

func (d *QuizDirectory) ttlWithJitter() time.Duration {
	if d.ttl <= 0 {
		return 0
	}
	jitterMax := int64(d.ttl) / 10
	return d.ttl + time.Duration(d.rnd.Int63n(jitterMax+1))
}

package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"eduquiz/internal/domain"
)

// QuizLoader fetches quiz metadata from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizDirectory caches quiz metadata with TTL. Scoping and ownership
// checks resolve every question through its parent quiz, so these lookups
// are hot; the cache keeps them off the backing store.
type QuizDirectory struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizDirectory(loader QuizLoader, ttl time.Duration) *QuizDirectory {
	return &QuizDirectory{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (d *QuizDirectory) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := d.clock()

	d.mu.RLock()
	if entry, ok := d.cache[quizID]; ok && entry.expiresAt.After(now) {
		d.mu.RUnlock()
		return entry.quiz, nil
	}
	d.mu.RUnlock()

	result, err, _ := d.sf.Do(quizID, func() (interface{}, error) {
		now := d.clock()
		d.mu.RLock()
		if entry, ok := d.cache[quizID]; ok && entry.expiresAt.After(now) {
			d.mu.RUnlock()
			return entry.quiz, nil
		}
		d.mu.RUnlock()

		quiz, err := d.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		d.mu.Lock()
		d.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(d.ttlWithJitter()),
		}
		d.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops a cached entry, e.g. after a quiz mutation.
func (d *QuizDirectory) Invalidate(_ context.Context, quizID string) error {
	d.mu.Lock()
	delete(d.cache, quizID)
	d.mu.Unlock()
	return nil
}

func (d *QuizDirectory) ttlWithJitter() time.Duration {
	if d.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(d.ttl) / 10
	return d.ttl + time.Duration(d.rnd.Int63n(jitterMax+1))
}

// StoreLoader adapts a record store into a QuizLoader.
type StoreLoader struct {
	store *Store
}

func NewStoreLoader(store *Store) *StoreLoader {
	return &StoreLoader{store: store}
}

func (l *StoreLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return l.store.GetQuiz(ctx, quizID)
}

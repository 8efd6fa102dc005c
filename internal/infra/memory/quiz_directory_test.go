package memory

import (
	"context"
	"testing"
	"time"

	"eduquiz/internal/domain"
)

func TestQuizDirectoryCaches(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if _, err := store.CreateQuiz(ctx, domain.Quiz{ID: "q1", OwnerID: "t1", Cohort: "y3"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	loader := &countingLoader{QuizLoader: NewStoreLoader(store)}
	directory := NewQuizDirectory(loader, time.Minute)

	quiz, err := directory.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.OwnerID != "t1" || quiz.Cohort != "y3" {
		t.Fatalf("unexpected quiz metadata: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := directory.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizDirectoryInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if _, err := store.CreateQuiz(ctx, domain.Quiz{ID: "q1", OwnerID: "t1"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	loader := &countingLoader{QuizLoader: NewStoreLoader(store)}
	directory := NewQuizDirectory(loader, time.Minute)

	if _, err := directory.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if err := directory.Invalidate(ctx, "q1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := directory.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("get quiz after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

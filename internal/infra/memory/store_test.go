package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"eduquiz/internal/domain"
)

func TestUpsertResultKeepsOneRowPerPair(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := domain.QuizResult{ID: "r1", StudentID: "s1", QuizID: "q1", Score: 7}
	if _, updated, err := store.UpsertResult(ctx, first); err != nil || updated {
		t.Fatalf("first submission should insert, updated=%v err=%v", updated, err)
	}

	second := domain.QuizResult{ID: "r2", StudentID: "s1", QuizID: "q1", Score: 9}
	stored, updated, err := store.UpsertResult(ctx, second)
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}
	if !updated {
		t.Fatalf("second submission should amend in place")
	}
	if stored.ID != "r1" || stored.Score != 9 {
		t.Fatalf("expected amended r1 with score 9, got %+v", stored)
	}

	results, _ := store.ListResults(ctx)
	if len(results) != 1 {
		t.Fatalf("expected exactly one stored result, got %d", len(results))
	}
}

func TestUpsertResultConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = store.UpsertResult(ctx, domain.QuizResult{
				ID: fmt.Sprintf("r%d", i), StudentID: "s1", QuizID: "q1", Score: i,
			})
		}(i)
	}
	wg.Wait()

	results, _ := store.ListResults(ctx)
	if len(results) != 1 {
		t.Fatalf("concurrent submissions created %d rows, want 1", len(results))
	}
}

func TestDeleteQuizCascade(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.CreateQuiz(ctx, domain.Quiz{ID: "q1", OwnerID: "t1"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	for i := 0; i < 3; i++ {
		q := domain.Question{ID: fmt.Sprintf("qq%d", i), QuizID: "q1"}
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}

	if err := store.DeleteQuizCascade(ctx, "q1"); err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if _, err := store.GetQuiz(ctx, "q1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("quiz should be gone, got %v", err)
	}
	questions, _ := store.ListQuestions(ctx, "q1")
	if len(questions) != 0 {
		t.Fatalf("expected 0 questions after cascade, got %d", len(questions))
	}
}

func TestDeleteQuizCascadeRollsBackOnFault(t *testing.T) {
	ctx := context.Background()
	faultErr := errors.New("simulated storage failure")

	store := NewStore()
	if _, err := store.CreateQuiz(ctx, domain.Quiz{ID: "q1", OwnerID: "t1"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	for i := 0; i < 3; i++ {
		q := domain.Question{ID: fmt.Sprintf("qq%d", i), QuizID: "q1"}
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("create question: %v", err)
		}
	}

	calls := 0
	store.WithCascadeFault(func(string) error {
		calls++
		if calls == 2 {
			return faultErr
		}
		return nil
	})

	if err := store.DeleteQuizCascade(ctx, "q1"); !errors.Is(err, faultErr) {
		t.Fatalf("expected injected fault, got %v", err)
	}

	// All-or-nothing: quiz and every question survive the failed cascade.
	if _, err := store.GetQuiz(ctx, "q1"); err != nil {
		t.Fatalf("quiz should survive failed cascade: %v", err)
	}
	questions, _ := store.ListQuestions(ctx, "q1")
	if len(questions) != 3 {
		t.Fatalf("expected all 3 questions intact, got %d", len(questions))
	}
}

func TestLeaderboardRanksTotals(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	seed := []domain.QuizResult{
		{ID: "r1", StudentID: "s1", QuizID: "q1", Score: 5},
		{ID: "r2", StudentID: "s2", QuizID: "q1", Score: 9},
		{ID: "r3", StudentID: "s3", QuizID: "q1", Score: 5},
		{ID: "r4", StudentID: "s4", QuizID: "q2", Score: 100}, // other quiz
	}
	for _, r := range seed {
		if _, _, err := store.UpsertResult(ctx, r); err != nil {
			t.Fatalf("seed result: %v", err)
		}
	}

	entries, err := store.Leaderboard(ctx, "q1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].StudentID != "s2" || entries[0].Ranking != 1 {
		t.Fatalf("expected s2 first, got %+v", entries[0])
	}
	if entries[1].Ranking != 2 || entries[2].Ranking != 2 {
		t.Fatalf("expected tied rank 2, got %+v %+v", entries[1], entries[2])
	}
}

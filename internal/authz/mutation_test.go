package authz_test

import (
	"errors"
	"testing"
	"time"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

func TestAssignQuizOwnerOverridesClientValue(t *testing.T) {
	teacher := domain.Actor{ID: "t1", Role: domain.RoleTeacher}
	quiz := domain.Quiz{Title: "Fractions", OwnerID: "someone-else"}

	got := authz.AssignQuizOwner(teacher, quiz)
	if got.OwnerID != "t1" {
		t.Fatalf("expected owner t1, got %q", got.OwnerID)
	}
}

func TestAssignGameSessionOwnerRejectsNonStudents(t *testing.T) {
	session := domain.GameSession{QuizID: "q1", Score: 10}

	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got, err := authz.AssignGameSessionOwner(student, session)
	if err != nil {
		t.Fatalf("student create should pass: %v", err)
	}
	if got.StudentID != "s1" {
		t.Fatalf("expected session owned by s1, got %q", got.StudentID)
	}

	teacher := domain.Actor{ID: "t1", Role: domain.RoleTeacher}
	if _, err := authz.AssignGameSessionOwner(teacher, session); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("teacher create should be forbidden, got %v", err)
	}
}

func TestAssignProgressOwnerDefaultsStatus(t *testing.T) {
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got, err := authz.AssignProgressOwner(student, domain.ProgressTracking{QuizID: "q1"})
	if err != nil {
		t.Fatalf("student create should pass: %v", err)
	}
	if got.StudentID != "s1" || got.Status != domain.ProgressInProgress {
		t.Fatalf("expected owned in_progress record, got %+v", got)
	}
}

func TestPlanResultUpsertInsertsWhenAbsent(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	incoming := domain.QuizResult{ID: "r1", StudentID: "s1", QuizID: "q1", Score: 7}

	write := authz.PlanResultUpsert(incoming, nil, now)
	if write.Updated {
		t.Fatalf("fresh insert should not report updated")
	}
	if write.Result.Score != 7 || write.Result.CompletedAt != now || write.Result.UpdatedAt != now {
		t.Fatalf("unexpected insert plan: %+v", write.Result)
	}
}

func TestPlanResultUpsertAmendsExisting(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	existing := domain.QuizResult{
		ID: "r1", StudentID: "s1", QuizID: "q1",
		Score: 7, Feedback: "good start", CompletedAt: first, UpdatedAt: first,
	}
	incoming := domain.QuizResult{StudentID: "s1", QuizID: "q1", Score: 9}

	write := authz.PlanResultUpsert(incoming, &existing, second)
	if !write.Updated {
		t.Fatalf("expected amend path to report updated")
	}
	if write.Result.ID != "r1" {
		t.Fatalf("expected stored identity kept, got %q", write.Result.ID)
	}
	if write.Result.Score != 9 {
		t.Fatalf("expected second score to win, got %d", write.Result.Score)
	}
	if write.Result.Feedback != "good start" {
		t.Fatalf("empty incoming feedback should not clobber, got %q", write.Result.Feedback)
	}
	if write.Result.UpdatedAt != second {
		t.Fatalf("expected updated timestamp refreshed, got %v", write.Result.UpdatedAt)
	}
}

func TestValidateQuizUpdateKeepsOwnerImmutable(t *testing.T) {
	stored := domain.Quiz{ID: "q1", OwnerID: "t1"}
	if err := authz.ValidateQuizUpdate(stored, domain.Quiz{ID: "q1", Title: "renamed"}); err != nil {
		t.Fatalf("update without owner change should pass: %v", err)
	}
	if err := authz.ValidateQuizUpdate(stored, domain.Quiz{ID: "q1", OwnerID: "t2"}); !errors.Is(err, domain.ErrImmutableOwner) {
		t.Fatalf("owner reassignment should fail, got %v", err)
	}
}

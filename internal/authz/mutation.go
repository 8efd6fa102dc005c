package authz

import (
	"fmt"
	"time"

	"eduquiz/internal/domain"
)

// AssignQuizOwner applies the create-time side effect for quizzes: the
// creating actor becomes the owner, overriding any client-supplied value.
func AssignQuizOwner(actor domain.Actor, quiz domain.Quiz) domain.Quiz {
	quiz.OwnerID = actor.ID
	return quiz
}

// AssignGameSessionOwner applies the create-time side effect for game
// sessions. Only a student may open a session, and it is always their own.
func AssignGameSessionOwner(actor domain.Actor, session domain.GameSession) (domain.GameSession, error) {
	if actor.Role != domain.RoleStudent {
		return domain.GameSession{}, fmt.Errorf("%w: only students play game sessions", domain.ErrForbidden)
	}
	session.StudentID = actor.ID
	return session, nil
}

// AssignProgressOwner applies the create-time side effect for progress
// records: the attempt belongs to the acting student and starts in
// progress unless a status was supplied.
func AssignProgressOwner(actor domain.Actor, record domain.ProgressTracking) (domain.ProgressTracking, error) {
	if actor.Role != domain.RoleStudent {
		return domain.ProgressTracking{}, fmt.Errorf("%w: only students track quiz progress", domain.ErrForbidden)
	}
	record.StudentID = actor.ID
	if record.Status == "" {
		record.Status = domain.ProgressInProgress
	}
	return record, nil
}

// ResultWrite is the planned outcome of a quiz-result submission. Updated
// distinguishes the upsert's amend path from a fresh insert; callers use
// it for audit logging, never as an error.
type ResultWrite struct {
	Result  domain.QuizResult
	Updated bool
}

// PlanResultUpsert decides how a submission for (student, quiz) lands.
// When a record for the pair already exists, the incoming fields amend it
// in place and the stored identity and pair keys are kept; otherwise the
// submission inserts as-is. Submitting twice never yields two rows.
func PlanResultUpsert(incoming domain.QuizResult, existing *domain.QuizResult, now time.Time) ResultWrite {
	if existing == nil {
		incoming.UpdatedAt = now
		if incoming.CompletedAt.IsZero() {
			incoming.CompletedAt = now
		}
		return ResultWrite{Result: incoming}
	}

	merged := *existing
	merged.Score = incoming.Score
	if incoming.Feedback != "" {
		merged.Feedback = incoming.Feedback
	}
	if !incoming.CompletedAt.IsZero() {
		merged.CompletedAt = incoming.CompletedAt
	}
	merged.UpdatedAt = now
	return ResultWrite{Result: merged, Updated: true}
}

// ValidateQuizUpdate rejects owner reassignment: the owner set at create
// time is immutable.
func ValidateQuizUpdate(stored, incoming domain.Quiz) error {
	if incoming.OwnerID != "" && incoming.OwnerID != stored.OwnerID {
		return domain.ErrImmutableOwner
	}
	return nil
}

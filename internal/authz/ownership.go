package authz

import (
	"fmt"

	"eduquiz/internal/domain"
)

// notOwner builds the deny reason for record-level failures so that
// telemetry can tell "not the owner" apart from "wrong role".
func notOwner(resource Resource) error {
	return fmt.Errorf("%w: not the owner of this %s", domain.ErrForbidden, resource)
}

// CheckQuizOwnership gates single-quiz mutations. The owning teacher may
// act; an admin overrides ownership for quizzes.
func CheckQuizOwnership(actor domain.Actor, quiz domain.Quiz) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if actor.Role == domain.RoleTeacher && quiz.OwnerID == actor.ID {
		return nil
	}
	return notOwner(ResourceQuiz)
}

// CheckQuestionOwnership gates question updates. Ownership follows the
// owning quiz's teacher, with no admin override: only the quiz's own
// teacher may update a question. Deletes go through the quiz rule instead
// (see Engine.Authorize).
func CheckQuestionOwnership(actor domain.Actor, quizOwnerID string) error {
	if actor.Role == domain.RoleTeacher && quizOwnerID == actor.ID {
		return nil
	}
	return notOwner(ResourceQuestion)
}

// CheckGameSessionOwnership gates game-session reads and writes. The
// creating student is the only actor allowed; no role overrides this,
// not even admin.
func CheckGameSessionOwnership(actor domain.Actor, session domain.GameSession) error {
	if session.StudentID == actor.ID {
		return nil
	}
	return notOwner(ResourceGameSession)
}

// CheckUserWrite gates user mutations: admin-only regardless of whose
// record is targeted. There is no self-service path.
func CheckUserWrite(actor domain.Actor) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	return fmt.Errorf("%w: role %s may not modify user accounts", domain.ErrForbidden, actor.Role)
}

// CheckQuizResultOwnership gates a student's result writes to their own
// record; staff pass through.
func CheckQuizResultOwnership(actor domain.Actor, result domain.QuizResult) error {
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleTeacher {
		return nil
	}
	if result.StudentID == actor.ID {
		return nil
	}
	return notOwner(ResourceQuizResult)
}

// CheckProgressOwnership gates a student's progress writes to their own
// attempts.
func CheckProgressOwnership(actor domain.Actor, record domain.ProgressTracking) error {
	if record.StudentID == actor.ID {
		return nil
	}
	return notOwner(ResourceProgress)
}

// Package authz is the role-based authorization and scoping engine for the
// quiz platform. It is pure and side-effect free: every call reads the
// actor and record data it is handed and returns a decision, holding no
// locks and performing no I/O. Mutation side effects (owner assignment,
// result upserts) are planned here but committed by the caller.
package authz

import (
	"fmt"

	"eduquiz/internal/domain"
)

// Engine is the single entry point external collaborators call. The only
// collaborator it needs is a resolver from quiz ID to the owning teacher,
// used when question mutations trace ownership through their parent quiz.
type Engine struct {
	quizOwner func(quizID string) (string, bool)
}

// NewEngine builds an engine. quizOwner resolves a quiz ID to its owning
// teacher's ID; the second return is false when the quiz is unknown.
func NewEngine(quizOwner func(quizID string) (string, bool)) *Engine {
	return &Engine{quizOwner: quizOwner}
}

// Authorize sequences the capability check and, for single-record
// operations, the record-level ownership guard. A nil error is an allow.
// record may be nil for collection operations and creates; scoping of
// collection reads is done separately via the Scope* functions.
func (e *Engine) Authorize(actor domain.Actor, resource Resource, op Operation, record any) error {
	if err := CheckCapability(actor, resource, op); err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	switch rec := record.(type) {
	case domain.User:
		if op == OpCreate || op == OpUpdate || op == OpDelete {
			return CheckUserWrite(actor)
		}
	case domain.Quiz:
		if op == OpUpdate || op == OpDelete {
			return CheckQuizOwnership(actor, rec)
		}
	case domain.Question:
		return e.authorizeQuestion(actor, op, rec)
	case domain.GameSession:
		if op != OpCreate {
			return CheckGameSessionOwnership(actor, rec)
		}
	case domain.QuizResult:
		if op == OpCreate || op == OpUpdate {
			return CheckQuizResultOwnership(actor, rec)
		}
	case domain.ProgressTracking:
		if op == OpUpdate {
			return CheckProgressOwnership(actor, rec)
		}
	case domain.LeaderboardEntry:
		// Read-only family; the capability check is the whole story.
	default:
		return fmt.Errorf("%w: unsupported record type %T", domain.ErrForbidden, record)
	}
	return nil
}

// authorizeQuestion resolves ownership through the parent quiz. Updates
// are teacher-owner-only with no admin override; creates and deletes
// follow the quiz rule, where an admin does override.
func (e *Engine) authorizeQuestion(actor domain.Actor, op Operation, q domain.Question) error {
	if op == OpRead || op == OpList {
		return nil
	}
	ownerID, ok := e.quizOwner(q.QuizID)
	if !ok {
		return domain.ErrQuizNotFound
	}
	if op == OpUpdate {
		return CheckQuestionOwnership(actor, ownerID)
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if actor.Role == domain.RoleTeacher && ownerID == actor.ID {
		return nil
	}
	return notOwner(ResourceQuestion)
}

package authz

import (
	"fmt"

	"eduquiz/internal/domain"
)

// Resource names one of the governed resource families.
type Resource string

const (
	ResourceUser        Resource = "user"
	ResourceQuiz        Resource = "quiz"
	ResourceQuestion    Resource = "question"
	ResourceGameSession Resource = "game_session"
	ResourceQuizResult  Resource = "quiz_result"
	ResourceProgress    Resource = "progress_tracking"
	ResourceLeaderboard Resource = "leaderboard"
)

// Operation names the coarse operation class being attempted.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type capKey struct {
	resource Resource
	op       Operation
}

// capabilities enumerates which roles satisfy each (resource, operation)
// pair. The table is intentionally explicit so that access changes stay
// reviewable in one place. A granted capability gates only the operation
// class; record-level ownership and cohort scoping are checked separately.
var capabilities = map[capKey][]domain.Role{
	// Users: admin manages accounts, teachers see their students read-only,
	// students have no access at all.
	{ResourceUser, OpCreate}: {domain.RoleAdmin},
	{ResourceUser, OpRead}:   {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceUser, OpList}:   {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceUser, OpUpdate}: {domain.RoleAdmin},
	{ResourceUser, OpDelete}: {domain.RoleAdmin},

	// Quizzes: teachers author their own, students read within their cohort.
	{ResourceQuiz, OpCreate}: {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceQuiz, OpRead}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuiz, OpList}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuiz, OpUpdate}: {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceQuiz, OpDelete}: {domain.RoleAdmin, domain.RoleTeacher},

	// Questions follow their owning quiz; student reads are redacted.
	{ResourceQuestion, OpCreate}: {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceQuestion, OpRead}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuestion, OpList}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuestion, OpUpdate}: {domain.RoleAdmin, domain.RoleTeacher},
	{ResourceQuestion, OpDelete}: {domain.RoleAdmin, domain.RoleTeacher},

	// Game sessions are a student-only surface. Admins and teachers are
	// denied outright, not merely scoped to empty.
	{ResourceGameSession, OpCreate}: {domain.RoleStudent},
	{ResourceGameSession, OpRead}:   {domain.RoleStudent},
	{ResourceGameSession, OpList}:   {domain.RoleStudent},
	{ResourceGameSession, OpUpdate}: {domain.RoleStudent},
	{ResourceGameSession, OpDelete}: {domain.RoleStudent},

	// Quiz results: staff manage freely, students submit their own (upsert)
	// and read results across their cohort.
	{ResourceQuizResult, OpCreate}: {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuizResult, OpRead}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuizResult, OpList}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuizResult, OpUpdate}: {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceQuizResult, OpDelete}: {domain.RoleAdmin, domain.RoleTeacher},

	// Progress: staff read everything, students create and read their own.
	{ResourceProgress, OpCreate}: {domain.RoleStudent},
	{ResourceProgress, OpRead}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceProgress, OpList}:   {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceProgress, OpUpdate}: {domain.RoleStudent},

	// Leaderboard is read-only for everyone; no write operations exist.
	{ResourceLeaderboard, OpRead}: {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
	{ResourceLeaderboard, OpList}: {domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent},
}

// CheckCapability answers whether the actor's role may attempt the
// operation class at all. Record-level checks come after.
func CheckCapability(actor domain.Actor, resource Resource, op Operation) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !actor.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, actor.Role)
	}
	for _, role := range capabilities[capKey{resource, op}] {
		if role == actor.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not %s %s", domain.ErrForbidden, actor.Role, op, resource)
}

package authz

import "eduquiz/internal/domain"

// CohortResolver maps an ID (quiz or student, depending on the call site)
// to its cohort. The second return is false when the ID is unknown.
type CohortResolver func(id string) (string, bool)

// ScopeUsers narrows a user collection: admins see all accounts, teachers
// see only students, students see none.
func ScopeUsers(actor domain.Actor, users []domain.User) []domain.User {
	switch actor.Role {
	case domain.RoleAdmin:
		return users
	case domain.RoleTeacher:
		scoped := make([]domain.User, 0, len(users))
		for _, u := range users {
			if u.Role == domain.RoleStudent {
				scoped = append(scoped, u)
			}
		}
		return scoped
	default:
		return nil
	}
}

// ScopeQuizzes narrows a quiz collection. Staff see everything; a student
// sees only quizzes aimed at their own cohort. A student without a cohort
// sees an empty set, not an error.
func ScopeQuizzes(actor domain.Actor, quizzes []domain.Quiz) []domain.Quiz {
	if actor.Role != domain.RoleStudent {
		return quizzes
	}
	if actor.Cohort == "" {
		return nil
	}
	scoped := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.Cohort == actor.Cohort {
			scoped = append(scoped, q)
		}
	}
	return scoped
}

// ScopeQuestions narrows questions through their parent quiz's cohort.
// quizCohort resolves a quiz ID to its cohort; questions whose quiz cannot
// be resolved are dropped for students rather than leaked.
func ScopeQuestions(actor domain.Actor, questions []domain.Question, quizCohort CohortResolver) []domain.Question {
	if actor.Role != domain.RoleStudent {
		return questions
	}
	if actor.Cohort == "" {
		return nil
	}
	scoped := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		cohort, ok := quizCohort(q.QuizID)
		if ok && cohort == actor.Cohort {
			scoped = append(scoped, q)
		}
	}
	return scoped
}

// ScopeGameSessions narrows sessions to the acting student's own records.
// Non-student roles never reach this point: CheckCapability denies them.
func ScopeGameSessions(actor domain.Actor, sessions []domain.GameSession) []domain.GameSession {
	scoped := make([]domain.GameSession, 0, len(sessions))
	for _, s := range sessions {
		if s.StudentID == actor.ID {
			scoped = append(scoped, s)
		}
	}
	return scoped
}

// ScopeQuizResults narrows result collections. Staff see everything. A
// student sees results of any student sharing their cohort (peer
// visibility, intentionally broader than self-only). studentCohort
// resolves a student ID to that student's cohort.
func ScopeQuizResults(actor domain.Actor, results []domain.QuizResult, studentCohort CohortResolver) []domain.QuizResult {
	if actor.Role != domain.RoleStudent {
		return results
	}
	if actor.Cohort == "" {
		return nil
	}
	scoped := make([]domain.QuizResult, 0, len(results))
	for _, r := range results {
		cohort, ok := studentCohort(r.StudentID)
		if ok && cohort == actor.Cohort {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// ScopeProgress narrows progress records: staff see all, students see
// only their own attempts.
func ScopeProgress(actor domain.Actor, records []domain.ProgressTracking) []domain.ProgressTracking {
	if actor.Role != domain.RoleStudent {
		return records
	}
	scoped := make([]domain.ProgressTracking, 0, len(records))
	for _, p := range records {
		if p.StudentID == actor.ID {
			scoped = append(scoped, p)
		}
	}
	return scoped
}

// ScopeLeaderboard is unfiltered for every role.
func ScopeLeaderboard(_ domain.Actor, entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	return entries
}

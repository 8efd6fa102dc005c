package authz_test

import (
	"testing"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

func TestScopeQuizzesByCohort(t *testing.T) {
	quizzes := []domain.Quiz{
		{ID: "q1", OwnerID: "t1", Cohort: "y3", Title: "Fractions"},
		{ID: "q2", OwnerID: "t1", Cohort: "y4", Title: "Decimals"},
		{ID: "q3", OwnerID: "t2", Title: "Untargeted"},
	}

	s1 := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.ScopeQuizzes(s1, quizzes)
	if len(got) != 1 || got[0].Title != "Fractions" {
		t.Fatalf("expected y3 student to see only Fractions, got %+v", got)
	}

	s2 := domain.Actor{ID: "s2", Role: domain.RoleStudent, Cohort: "y4"}
	got = authz.ScopeQuizzes(s2, quizzes)
	if len(got) != 1 || got[0].Title != "Decimals" {
		t.Fatalf("expected y4 student to see only Decimals, got %+v", got)
	}

	teacher := domain.Actor{ID: "t2", Role: domain.RoleTeacher}
	if got := authz.ScopeQuizzes(teacher, quizzes); len(got) != 3 {
		t.Fatalf("expected teacher to see all quizzes, got %d", len(got))
	}
}

func TestScopeNullCohortStudentSeesNothing(t *testing.T) {
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent} // no cohort
	quizzes := []domain.Quiz{{ID: "q1", Cohort: "y3"}}
	if got := authz.ScopeQuizzes(student, quizzes); len(got) != 0 {
		t.Fatalf("expected empty set for cohortless student, got %+v", got)
	}

	questions := []domain.Question{{ID: "qq1", QuizID: "q1"}}
	resolver := func(string) (string, bool) { return "y3", true }
	if got := authz.ScopeQuestions(student, questions, resolver); len(got) != 0 {
		t.Fatalf("expected empty questions for cohortless student, got %+v", got)
	}

	results := []domain.QuizResult{{ID: "r1", StudentID: "s2"}}
	if got := authz.ScopeQuizResults(student, results, resolver); len(got) != 0 {
		t.Fatalf("expected empty results for cohortless student, got %+v", got)
	}
}

func TestScopeUsers(t *testing.T) {
	users := []domain.User{
		{ID: "a1", Role: domain.RoleAdmin},
		{ID: "t1", Role: domain.RoleTeacher},
		{ID: "s1", Role: domain.RoleStudent},
	}

	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	if got := authz.ScopeUsers(admin, users); len(got) != 3 {
		t.Fatalf("expected admin to see all users, got %d", len(got))
	}

	teacher := domain.Actor{ID: "t1", Role: domain.RoleTeacher}
	got := authz.ScopeUsers(teacher, users)
	if len(got) != 1 || got[0].Role != domain.RoleStudent {
		t.Fatalf("expected teacher to see students only, got %+v", got)
	}

	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	if got := authz.ScopeUsers(student, users); len(got) != 0 {
		t.Fatalf("expected student to see no users, got %+v", got)
	}
}

func TestScopeQuestionsFollowsParentQuiz(t *testing.T) {
	questions := []domain.Question{
		{ID: "qq1", QuizID: "q1"},
		{ID: "qq2", QuizID: "q2"},
		{ID: "qq3", QuizID: "missing"},
	}
	cohorts := map[string]string{"q1": "y3", "q2": "y4"}
	resolver := func(id string) (string, bool) {
		c, ok := cohorts[id]
		return c, ok
	}

	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.ScopeQuestions(student, questions, resolver)
	if len(got) != 1 || got[0].ID != "qq1" {
		t.Fatalf("expected only the y3 question, got %+v", got)
	}
}

func TestScopeGameSessionsSelfOnly(t *testing.T) {
	sessions := []domain.GameSession{
		{ID: "g1", StudentID: "s1"},
		{ID: "g2", StudentID: "s2"},
	}
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.ScopeGameSessions(student, sessions)
	if len(got) != 1 || got[0].ID != "g1" {
		t.Fatalf("expected only own session, got %+v", got)
	}
}

func TestScopeQuizResultsPeerVisibility(t *testing.T) {
	results := []domain.QuizResult{
		{ID: "r1", StudentID: "s1"},
		{ID: "r2", StudentID: "s2"}, // same cohort peer
		{ID: "r3", StudentID: "s3"}, // other cohort
	}
	cohorts := map[string]string{"s1": "y3", "s2": "y3", "s3": "y4"}
	resolver := func(id string) (string, bool) {
		c, ok := cohorts[id]
		return c, ok
	}

	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.ScopeQuizResults(student, results, resolver)
	if len(got) != 2 {
		t.Fatalf("expected cohort-peer visibility (2 results), got %+v", got)
	}
	for _, r := range got {
		if r.StudentID == "s3" {
			t.Fatalf("other-cohort result leaked: %+v", r)
		}
	}

	teacher := domain.Actor{ID: "t1", Role: domain.RoleTeacher}
	if got := authz.ScopeQuizResults(teacher, results, resolver); len(got) != 3 {
		t.Fatalf("expected teacher to see all results, got %d", len(got))
	}
}

func TestScopeProgressSelfOnlyForStudents(t *testing.T) {
	records := []domain.ProgressTracking{
		{ID: "p1", StudentID: "s1"},
		{ID: "p2", StudentID: "s2"},
	}
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.ScopeProgress(student, records)
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("expected own progress only, got %+v", got)
	}

	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	if got := authz.ScopeProgress(admin, records); len(got) != 2 {
		t.Fatalf("expected admin to see all progress, got %d", len(got))
	}
}

func TestScopeLeaderboardUnfiltered(t *testing.T) {
	entries := []domain.LeaderboardEntry{{ID: "l1"}, {ID: "l2"}}
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	if got := authz.ScopeLeaderboard(student, entries); len(got) != 2 {
		t.Fatalf("expected unfiltered leaderboard, got %d", len(got))
	}
}

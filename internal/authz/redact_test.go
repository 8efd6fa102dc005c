package authz_test

import (
	"encoding/json"
	"testing"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

func TestRedactQuestionForStudents(t *testing.T) {
	question := domain.Question{
		ID:            "qq1",
		QuizID:        "q1",
		Text:          "2 + 2 = ?",
		Type:          domain.QuestionMultipleChoice,
		Options:       json.RawMessage(`["3","4","5"]`),
		CorrectAnswer: json.RawMessage(`"4"`),
	}

	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	got := authz.RedactQuestion(student, question)
	if got.CorrectAnswer != nil {
		t.Fatalf("correct answer leaked to student: %s", got.CorrectAnswer)
	}
	if string(got.Options) != `["3","4","5"]` {
		t.Fatalf("options should survive redaction, got %s", got.Options)
	}

	teacher := domain.Actor{ID: "t1", Role: domain.RoleTeacher}
	if got := authz.RedactQuestion(teacher, question); string(got.CorrectAnswer) != `"4"` {
		t.Fatalf("teacher should see the correct answer, got %s", got.CorrectAnswer)
	}
}

func TestRedactQuestionsCollection(t *testing.T) {
	questions := []domain.Question{
		{ID: "qq1", CorrectAnswer: json.RawMessage(`"a"`)},
		{ID: "qq2", CorrectAnswer: json.RawMessage(`"b"`)},
	}
	student := domain.Actor{ID: "s1", Role: domain.RoleStudent, Cohort: "y3"}
	for _, q := range authz.RedactQuestions(student, questions) {
		if q.CorrectAnswer != nil {
			t.Fatalf("correct answer leaked in collection: %+v", q)
		}
	}
	// The input must not be mutated; scoping and redaction never touch the store.
	if questions[0].CorrectAnswer == nil {
		t.Fatalf("redaction mutated the caller's slice")
	}
}

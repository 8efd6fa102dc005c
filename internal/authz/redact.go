package authz

import "eduquiz/internal/domain"

// RedactQuestion strips the correct answer from a question payload when it
// is served to a student. Other roles see the full record.
func RedactQuestion(actor domain.Actor, q domain.Question) domain.Question {
	if actor.Role == domain.RoleStudent {
		q.CorrectAnswer = nil
	}
	return q
}

// RedactQuestions applies RedactQuestion across a collection.
func RedactQuestions(actor domain.Actor, questions []domain.Question) []domain.Question {
	if actor.Role != domain.RoleStudent {
		return questions
	}
	redacted := make([]domain.Question, len(questions))
	for i, q := range questions {
		redacted[i] = RedactQuestion(actor, q)
	}
	return redacted
}

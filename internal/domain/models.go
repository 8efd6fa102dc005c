package domain

import (
	"encoding/json"
	"time"
)

// Role is the fixed role an actor holds for the lifetime of a session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the three known roles.
// Anything else is treated as forbidden, never as a permissive default.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Actor is an authenticated identity as resolved by the authentication
// collaborator. Cohort (class-year) is populated only for students.
type Actor struct {
	ID     string
	Role   Role
	Cohort string
}

// Authenticated reports whether the actor carries a resolvable identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// Validate enforces the data-model boundary invariant: only students may
// carry a cohort.
func (a Actor) Validate() error {
	if a.Cohort != "" && a.Role != RoleStudent {
		return ErrInvalidCohort
	}
	return nil
}

// User is a stored platform account.
type User struct {
	ID        string
	Username  string
	Email     string
	Role      Role
	Cohort    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Quiz is authored by a teacher and optionally aimed at one cohort.
// OwnerID is immutable after creation.
type Quiz struct {
	ID          string
	OwnerID     string
	Cohort      string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionDragAndDrop    QuestionType = "drag_and_drop"
	QuestionFillInTheBlank QuestionType = "fill_in_the_blank"
	QuestionMatchingPairs  QuestionType = "matching_pairs"
)

// Valid reports whether the question type is one of the supported formats.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionDragAndDrop, QuestionFillInTheBlank, QuestionMatchingPairs:
		return true
	}
	return false
}

// Question belongs to a quiz. Options and CorrectAnswer are structured
// values kept as raw JSON; CorrectAnswer must never reach a student.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Type          QuestionType
	Options       json.RawMessage
	CorrectAnswer json.RawMessage
	Points        int // defaults to 1 if zero
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GameSession records one play of a quiz by a student. Sessions are
// visible only to their creating student.
type GameSession struct {
	ID          string
	StudentID   string
	QuizID      string
	Score       int
	Correct     int
	Duration    time.Duration
	PlayedAt    time.Time
	LastUpdated time.Time
}

// QuizResult is the graded outcome for one (student, quiz) pair. At most
// one record exists per pair; repeat submissions amend it in place.
type QuizResult struct {
	ID          string
	StudentID   string
	QuizID      string
	Score       int
	Feedback    string
	CompletedAt time.Time
	UpdatedAt   time.Time
}

// ProgressStatus tracks where a student is within a quiz attempt.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// ProgressTracking records one attempt over time. Unlike QuizResult there
// is no uniqueness constraint per (student, quiz).
type ProgressTracking struct {
	ID          string
	StudentID   string
	QuizID      string
	Status      ProgressStatus
	Score       int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// LeaderboardEntry is a derived ranking row. The engine governs only its
// read visibility, never its computation.
type LeaderboardEntry struct {
	ID         string
	StudentID  string
	QuizID     string
	Ranking    int
	TotalScore int
}

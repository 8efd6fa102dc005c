package domain

import "errors"

var (
	// ErrUnauthenticated is returned when no resolvable actor was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when a capability or ownership check fails.
	// Callers wrap it with a reason distinguishing wrong role from not-owner.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCohort indicates a non-student actor carries a cohort.
	ErrInvalidCohort = errors.New("only students may belong to a cohort")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrQuizNotFound indicates the referenced quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrImmutableOwner indicates an update attempted to reassign a quiz owner.
	ErrImmutableOwner = errors.New("quiz owner is immutable")
	// ErrInvalidQuestionType indicates an unsupported question format.
	ErrInvalidQuestionType = errors.New("invalid question type")
	// ErrMissingStudent indicates a quiz result submission named no student.
	ErrMissingStudent = errors.New("quiz result requires a student")
)

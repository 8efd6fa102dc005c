package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

// UserStore persists platform accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// QuizStore persists quizzes and their questions. DeleteQuizCascade must
// remove the quiz and every child question atomically.
type QuizStore interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	DeleteQuizCascade(ctx context.Context, id string) error

	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// ResultStore persists quiz results. UpsertResult performs the atomic
// check-then-write per (student, quiz) key and reports whether an existing
// record was amended in place.
type ResultStore interface {
	UpsertResult(ctx context.Context, incoming domain.QuizResult) (domain.QuizResult, bool, error)
	ListResults(ctx context.Context) ([]domain.QuizResult, error)
	DeleteResult(ctx context.Context, id string) error
}

// SessionStore persists game sessions.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (domain.GameSession, error)
	ListSessions(ctx context.Context) ([]domain.GameSession, error)
	CreateSession(ctx context.Context, s domain.GameSession) (domain.GameSession, error)
	UpdateSession(ctx context.Context, s domain.GameSession) (domain.GameSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// ProgressStore persists progress-tracking attempts.
type ProgressStore interface {
	GetProgress(ctx context.Context, id string) (domain.ProgressTracking, error)
	ListProgress(ctx context.Context) ([]domain.ProgressTracking, error)
	CreateProgress(ctx context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error)
	UpdateProgress(ctx context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error)
}

// LeaderboardSource serves the derived ranking for a quiz. The engine
// governs only read visibility; computation lives behind this interface.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error)
}

// QuizDirectory resolves quiz metadata (owner, cohort) for scoping and
// ownership checks. Implementations cache aggressively; Invalidate drops
// the cached entry after a quiz mutation so checks never run on stale
// metadata for the rest of the TTL.
type QuizDirectory interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID string) error
}

// Stores bundles the persistence collaborators the service needs.
type Stores struct {
	Users       UserStore
	Quizzes     QuizStore
	Results     ResultStore
	Sessions    SessionStore
	Progress    ProgressStore
	Leaderboard LeaderboardSource
}

// PlatformService composes the authorization engine with the record
// stores: one authorize-and-scope call per use case.
type PlatformService struct {
	stores    Stores
	directory QuizDirectory
	engine    *authz.Engine
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

func NewPlatformService(stores Stores, directory QuizDirectory, log zerolog.Logger) *PlatformService {
	s := &PlatformService{
		stores:    stores,
		directory: directory,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	s.engine = authz.NewEngine(func(quizID string) (string, bool) {
		quiz, err := directory.GetQuiz(context.Background(), quizID)
		if err != nil {
			return "", false
		}
		return quiz.OwnerID, true
	})
	return s
}

// WithClock is test-only for deterministic timestamps and IDs.
func (s *PlatformService) WithClock(now func() time.Time, newID func() string) *PlatformService {
	s.now = now
	if newID != nil {
		s.newID = newID
	}
	return s
}

// --- Users ---

func (s *PlatformService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ResourceUser, authz.OpList, nil); err != nil {
		return nil, err
	}
	users, err := s.stores.Users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return authz.ScopeUsers(actor, users), nil
}

func (s *PlatformService) CreateUser(ctx context.Context, actor domain.Actor, user domain.User) (domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ResourceUser, authz.OpCreate, user); err != nil {
		return domain.User{}, err
	}
	if user.Role == "" {
		user.Role = domain.RoleStudent
	}
	if err := (domain.Actor{ID: user.ID, Role: user.Role, Cohort: user.Cohort}).Validate(); err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		user.ID = s.newID()
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	return s.stores.Users.CreateUser(ctx, user)
}

func (s *PlatformService) UpdateUser(ctx context.Context, actor domain.Actor, user domain.User) (domain.User, error) {
	if err := s.engine.Authorize(actor, authz.ResourceUser, authz.OpUpdate, user); err != nil {
		return domain.User{}, err
	}
	if err := (domain.Actor{ID: user.ID, Role: user.Role, Cohort: user.Cohort}).Validate(); err != nil {
		return domain.User{}, err
	}
	user.UpdatedAt = s.now()
	return s.stores.Users.UpdateUser(ctx, user)
}

func (s *PlatformService) DeleteUser(ctx context.Context, actor domain.Actor, id string) error {
	user, err := s.stores.Users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(actor, authz.ResourceUser, authz.OpDelete, user); err != nil {
		return err
	}
	return s.stores.Users.DeleteUser(ctx, id)
}

// --- Quizzes ---

func (s *PlatformService) ListQuizzes(ctx context.Context, actor domain.Actor) ([]domain.Quiz, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuiz, authz.OpList, nil); err != nil {
		return nil, err
	}
	quizzes, err := s.stores.Quizzes.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	return authz.ScopeQuizzes(actor, quizzes), nil
}

// GetQuiz applies the same cohort scoping as listing; a quiz outside a
// student's cohort reads as not-found rather than leaking its existence.
func (s *PlatformService) GetQuiz(ctx context.Context, actor domain.Actor, id string) (domain.Quiz, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuiz, authz.OpRead, nil); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.stores.Quizzes.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if scoped := authz.ScopeQuizzes(actor, []domain.Quiz{quiz}); len(scoped) == 0 {
		return domain.Quiz{}, domain.ErrNotFound
	}
	return quiz, nil
}

func (s *PlatformService) CreateQuiz(ctx context.Context, actor domain.Actor, quiz domain.Quiz) (domain.Quiz, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuiz, authz.OpCreate, nil); err != nil {
		return domain.Quiz{}, err
	}
	quiz = authz.AssignQuizOwner(actor, quiz)
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	quiz.CreatedAt = s.now()
	quiz.UpdatedAt = quiz.CreatedAt
	return s.stores.Quizzes.CreateQuiz(ctx, quiz)
}

func (s *PlatformService) UpdateQuiz(ctx context.Context, actor domain.Actor, quiz domain.Quiz) (domain.Quiz, error) {
	stored, err := s.stores.Quizzes.GetQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.engine.Authorize(actor, authz.ResourceQuiz, authz.OpUpdate, stored); err != nil {
		return domain.Quiz{}, err
	}
	if err := authz.ValidateQuizUpdate(stored, quiz); err != nil {
		return domain.Quiz{}, err
	}
	quiz.OwnerID = stored.OwnerID
	quiz.CreatedAt = stored.CreatedAt
	quiz.UpdatedAt = s.now()
	saved, err := s.stores.Quizzes.UpdateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.invalidateQuiz(ctx, quiz.ID)
	return saved, nil
}

// DeleteQuiz removes a quiz and all of its questions in one atomic
// cascade. A failure mid-cascade leaves everything in place.
func (s *PlatformService) DeleteQuiz(ctx context.Context, actor domain.Actor, id string) error {
	stored, err := s.stores.Quizzes.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(actor, authz.ResourceQuiz, authz.OpDelete, stored); err != nil {
		return err
	}
	if err := s.stores.Quizzes.DeleteQuizCascade(ctx, id); err != nil {
		return err
	}
	s.invalidateQuiz(ctx, id)
	s.log.Info().Str("quiz", id).Str("actor", actor.ID).Msg("quiz deleted with question cascade")
	return nil
}

// invalidateQuiz drops cached quiz metadata after a committed mutation.
// The mutation already landed, so a cache error is logged, not returned.
func (s *PlatformService) invalidateQuiz(ctx context.Context, id string) {
	if err := s.directory.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("quiz", id).Msg("quiz directory invalidation failed")
	}
}

// --- Questions ---

func (s *PlatformService) ListQuestions(ctx context.Context, actor domain.Actor, quizID string) ([]domain.Question, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuestion, authz.OpList, nil); err != nil {
		return nil, err
	}
	questions, err := s.stores.Quizzes.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	scoped := authz.ScopeQuestions(actor, questions, s.quizCohortResolver(ctx))
	return authz.RedactQuestions(actor, scoped), nil
}

func (s *PlatformService) GetQuestion(ctx context.Context, actor domain.Actor, id string) (domain.Question, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuestion, authz.OpRead, nil); err != nil {
		return domain.Question{}, err
	}
	question, err := s.stores.Quizzes.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	scoped := authz.ScopeQuestions(actor, []domain.Question{question}, s.quizCohortResolver(ctx))
	if len(scoped) == 0 {
		return domain.Question{}, domain.ErrNotFound
	}
	return authz.RedactQuestion(actor, question), nil
}

func (s *PlatformService) CreateQuestion(ctx context.Context, actor domain.Actor, q domain.Question) (domain.Question, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuestion, authz.OpCreate, q); err != nil {
		return domain.Question{}, err
	}
	if !q.Type.Valid() {
		return domain.Question{}, domain.ErrInvalidQuestionType
	}
	if q.ID == "" {
		q.ID = s.newID()
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	q.CreatedAt = s.now()
	q.UpdatedAt = q.CreatedAt
	return s.stores.Quizzes.CreateQuestion(ctx, q)
}

func (s *PlatformService) UpdateQuestion(ctx context.Context, actor domain.Actor, q domain.Question) (domain.Question, error) {
	stored, err := s.stores.Quizzes.GetQuestion(ctx, q.ID)
	if err != nil {
		return domain.Question{}, err
	}
	if err := s.engine.Authorize(actor, authz.ResourceQuestion, authz.OpUpdate, stored); err != nil {
		return domain.Question{}, err
	}
	q.QuizID = stored.QuizID
	q.CreatedAt = stored.CreatedAt
	if q.Points <= 0 {
		q.Points = stored.Points
	}
	q.UpdatedAt = s.now()
	return s.stores.Quizzes.UpdateQuestion(ctx, q)
}

func (s *PlatformService) DeleteQuestion(ctx context.Context, actor domain.Actor, id string) error {
	stored, err := s.stores.Quizzes.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(actor, authz.ResourceQuestion, authz.OpDelete, stored); err != nil {
		return err
	}
	return s.stores.Quizzes.DeleteQuestion(ctx, id)
}

// --- Game sessions ---

func (s *PlatformService) ListGameSessions(ctx context.Context, actor domain.Actor) ([]domain.GameSession, error) {
	if err := s.engine.Authorize(actor, authz.ResourceGameSession, authz.OpList, nil); err != nil {
		return nil, err
	}
	sessions, err := s.stores.Sessions.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return authz.ScopeGameSessions(actor, sessions), nil
}

func (s *PlatformService) CreateGameSession(ctx context.Context, actor domain.Actor, session domain.GameSession) (domain.GameSession, error) {
	if err := s.engine.Authorize(actor, authz.ResourceGameSession, authz.OpCreate, nil); err != nil {
		return domain.GameSession{}, err
	}
	session, err := authz.AssignGameSessionOwner(actor, session)
	if err != nil {
		return domain.GameSession{}, err
	}
	if session.ID == "" {
		session.ID = s.newID()
	}
	session.PlayedAt = s.now()
	session.LastUpdated = session.PlayedAt
	return s.stores.Sessions.CreateSession(ctx, session)
}

func (s *PlatformService) UpdateGameSession(ctx context.Context, actor domain.Actor, session domain.GameSession) (domain.GameSession, error) {
	stored, err := s.stores.Sessions.GetSession(ctx, session.ID)
	if err != nil {
		return domain.GameSession{}, err
	}
	if err := s.engine.Authorize(actor, authz.ResourceGameSession, authz.OpUpdate, stored); err != nil {
		return domain.GameSession{}, err
	}
	session.StudentID = stored.StudentID
	session.PlayedAt = stored.PlayedAt
	session.LastUpdated = s.now()
	return s.stores.Sessions.UpdateSession(ctx, session)
}

func (s *PlatformService) DeleteGameSession(ctx context.Context, actor domain.Actor, id string) error {
	stored, err := s.stores.Sessions.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if err := s.engine.Authorize(actor, authz.ResourceGameSession, authz.OpDelete, stored); err != nil {
		return err
	}
	return s.stores.Sessions.DeleteSession(ctx, id)
}

// --- Quiz results ---

// SubmitQuizResult is the idempotent upsert path: a second submission for
// the same (student, quiz) amends the stored record instead of creating a
// duplicate. The returned bool reports the amend path for telemetry.
func (s *PlatformService) SubmitQuizResult(ctx context.Context, actor domain.Actor, result domain.QuizResult) (domain.QuizResult, bool, error) {
	if actor.Role == domain.RoleStudent && result.StudentID == "" {
		result.StudentID = actor.ID
	}
	if result.StudentID == "" {
		return domain.QuizResult{}, false, domain.ErrMissingStudent
	}
	if err := s.engine.Authorize(actor, authz.ResourceQuizResult, authz.OpCreate, result); err != nil {
		return domain.QuizResult{}, false, err
	}
	if _, err := s.directory.GetQuiz(ctx, result.QuizID); err != nil {
		return domain.QuizResult{}, false, err
	}
	if result.ID == "" {
		result.ID = s.newID()
	}
	stored, updated, err := s.stores.Results.UpsertResult(ctx, result)
	if err != nil {
		return domain.QuizResult{}, false, err
	}
	s.log.Info().
		Str("student", stored.StudentID).
		Str("quiz", stored.QuizID).
		Int("score", stored.Score).
		Bool("updated", updated).
		Msg("quiz result submitted")
	return stored, updated, nil
}

func (s *PlatformService) ListQuizResults(ctx context.Context, actor domain.Actor) ([]domain.QuizResult, error) {
	if err := s.engine.Authorize(actor, authz.ResourceQuizResult, authz.OpList, nil); err != nil {
		return nil, err
	}
	results, err := s.stores.Results.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	return authz.ScopeQuizResults(actor, results, s.studentCohortResolver(ctx)), nil
}

func (s *PlatformService) DeleteQuizResult(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.engine.Authorize(actor, authz.ResourceQuizResult, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.stores.Results.DeleteResult(ctx, id)
}

// --- Progress tracking ---

func (s *PlatformService) StartProgress(ctx context.Context, actor domain.Actor, record domain.ProgressTracking) (domain.ProgressTracking, error) {
	if err := s.engine.Authorize(actor, authz.ResourceProgress, authz.OpCreate, nil); err != nil {
		return domain.ProgressTracking{}, err
	}
	record, err := authz.AssignProgressOwner(actor, record)
	if err != nil {
		return domain.ProgressTracking{}, err
	}
	if record.ID == "" {
		record.ID = s.newID()
	}
	record.StartedAt = s.now()
	return s.stores.Progress.CreateProgress(ctx, record)
}

func (s *PlatformService) CompleteProgress(ctx context.Context, actor domain.Actor, id string, score int) (domain.ProgressTracking, error) {
	stored, err := s.stores.Progress.GetProgress(ctx, id)
	if err != nil {
		return domain.ProgressTracking{}, err
	}
	if err := s.engine.Authorize(actor, authz.ResourceProgress, authz.OpUpdate, stored); err != nil {
		return domain.ProgressTracking{}, err
	}
	now := s.now()
	stored.Status = domain.ProgressCompleted
	stored.Score = score
	stored.CompletedAt = &now
	return s.stores.Progress.UpdateProgress(ctx, stored)
}

func (s *PlatformService) ListProgress(ctx context.Context, actor domain.Actor) ([]domain.ProgressTracking, error) {
	if err := s.engine.Authorize(actor, authz.ResourceProgress, authz.OpList, nil); err != nil {
		return nil, err
	}
	records, err := s.stores.Progress.ListProgress(ctx)
	if err != nil {
		return nil, err
	}
	return authz.ScopeProgress(actor, records), nil
}

// --- Leaderboard ---

func (s *PlatformService) Leaderboard(ctx context.Context, actor domain.Actor, quizID string) ([]domain.LeaderboardEntry, error) {
	if err := s.engine.Authorize(actor, authz.ResourceLeaderboard, authz.OpList, nil); err != nil {
		return nil, err
	}
	entries, err := s.stores.Leaderboard.Leaderboard(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return authz.ScopeLeaderboard(actor, entries), nil
}

// --- resolvers ---

func (s *PlatformService) quizCohortResolver(ctx context.Context) authz.CohortResolver {
	return func(quizID string) (string, bool) {
		quiz, err := s.directory.GetQuiz(ctx, quizID)
		if err != nil {
			return "", false
		}
		return quiz.Cohort, true
	}
}

func (s *PlatformService) studentCohortResolver(ctx context.Context) authz.CohortResolver {
	return func(studentID string) (string, bool) {
		user, err := s.stores.Users.GetUser(ctx, studentID)
		if err != nil {
			return "", false
		}
		return user.Cohort, true
	}
}

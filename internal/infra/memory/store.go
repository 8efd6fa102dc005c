package memory

import (
	"context"
	"sync"
	"time"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

// Store is an in-memory record store covering every resource family. It
// backs tests and demos; production traffic goes to the Postgres store.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	quizzes   map[string]domain.Quiz
	questions map[string]domain.Question
	sessions  map[string]domain.GameSession
	results   map[string]domain.QuizResult
	progress  map[string]domain.ProgressTracking
	resultKey map[resultKey]string // (student, quiz) -> result ID

	clock func() time.Time

	// cascadeFault, when set, is invoked for each question removed during
	// a quiz cascade; a returned error aborts and rolls back the delete.
	cascadeFault func(questionID string) error
}

type resultKey struct {
	studentID string
	quizID    string
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string]domain.Question),
		sessions:  make(map[string]domain.GameSession),
		results:   make(map[string]domain.QuizResult),
		progress:  make(map[string]domain.ProgressTracking),
		resultKey: make(map[resultKey]string),
		clock:     time.Now,
	}
}

// WithCascadeFault is test-only: inject a failure mid-cascade.
func (s *Store) WithCascadeFault(fault func(questionID string) error) *Store {
	s.cascadeFault = fault
	return s
}

// --- users ---

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.User{}, domain.ErrNotFound
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// --- quizzes and questions ---

func (s *Store) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		quizzes = append(quizzes, q)
	}
	return quizzes, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

// DeleteQuizCascade removes a quiz and all of its questions under one
// lock. Removals are staged and only committed once every question has
// passed; an injected fault leaves the store untouched.
func (s *Store) DeleteQuizCascade(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}

	staged := make([]string, 0)
	for qid, question := range s.questions {
		if question.QuizID != id {
			continue
		}
		if s.cascadeFault != nil {
			if err := s.cascadeFault(qid); err != nil {
				return err
			}
		}
		staged = append(staged, qid)
	}

	for _, qid := range staged {
		delete(s.questions, qid)
	}
	delete(s.quizzes, id)
	return nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	return question, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]domain.Question, 0)
	for _, q := range s.questions {
		if quizID == "" || q.QuizID == quizID {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[q.QuizID]; !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

// --- game sessions ---

func (s *Store) GetSession(_ context.Context, id string) (domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.GameSession{}, domain.ErrNotFound
	}
	return session, nil
}

func (s *Store) ListSessions(_ context.Context) ([]domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]domain.GameSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *Store) CreateSession(_ context.Context, sess domain.GameSession) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) UpdateSession(_ context.Context, sess domain.GameSession) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return domain.GameSession{}, domain.ErrNotFound
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// --- quiz results ---

// UpsertResult runs the check-then-write for (student, quiz) under the
// store lock, so two concurrent submissions for the same pair cannot both
// insert.
func (s *Store) UpsertResult(_ context.Context, incoming domain.QuizResult) (domain.QuizResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resultKey{studentID: incoming.StudentID, quizID: incoming.QuizID}
	var existing *domain.QuizResult
	if id, ok := s.resultKey[key]; ok {
		stored := s.results[id]
		existing = &stored
	}

	write := authz.PlanResultUpsert(incoming, existing, s.clock())
	s.results[write.Result.ID] = write.Result
	s.resultKey[key] = write.Result.ID
	return write.Result, write.Updated, nil
}

func (s *Store) ListResults(_ context.Context) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]domain.QuizResult, 0, len(s.results))
	for _, r := range s.results {
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) DeleteResult(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.results, id)
	delete(s.resultKey, resultKey{studentID: result.StudentID, quizID: result.QuizID})
	return nil
}

// --- progress tracking ---

func (s *Store) GetProgress(_ context.Context, id string) (domain.ProgressTracking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.progress[id]
	if !ok {
		return domain.ProgressTracking{}, domain.ErrNotFound
	}
	return record, nil
}

func (s *Store) ListProgress(_ context.Context) ([]domain.ProgressTracking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ProgressTracking, 0, len(s.progress))
	for _, p := range s.progress {
		records = append(records, p)
	}
	return records, nil
}

func (s *Store) CreateProgress(_ context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProgress(_ context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.progress[p.ID]; !ok {
		return domain.ProgressTracking{}, domain.ErrNotFound
	}
	s.progress[p.ID] = p
	return p, nil
}

// --- leaderboard ---

// Leaderboard derives rankings from stored results: total score per
// student for the quiz, ranked descending. Ties share a rank.
func (s *Store) Leaderboard(_ context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int)
	for _, r := range s.results {
		if r.QuizID == quizID {
			totals[r.StudentID] += r.Score
		}
	}
	return rankTotals(quizID, totals), nil
}

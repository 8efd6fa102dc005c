package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"eduquiz/internal/authz"
	"eduquiz/internal/domain"
)

// Store is the bun-backed record store for every resource family.
type Store struct {
	db    *bun.DB
	clock func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Username  string    `bun:"username"`
	Email     string    `bun:"email"`
	Role      string    `bun:"role"`
	Cohort    string    `bun:"cohort"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID          string    `bun:"id,pk"`
	OwnerID     string    `bun:"owner_id"`
	Cohort      string    `bun:"cohort"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qq"`

	ID            string    `bun:"id,pk"`
	QuizID        string    `bun:"quiz_id"`
	Text          string    `bun:"question_text"`
	Type          string    `bun:"question_type"`
	Options       []byte    `bun:"options,type:jsonb,nullzero"`
	CorrectAnswer []byte    `bun:"correct_answer,type:jsonb,nullzero"`
	Points        int       `bun:"points"`
	CreatedAt     time.Time `bun:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

type sessionRow struct {
	bun.BaseModel `bun:"table:game_sessions,alias:gs"`

	ID          string        `bun:"id,pk"`
	StudentID   string        `bun:"student_id"`
	QuizID      string        `bun:"quiz_id"`
	Score       int           `bun:"score"`
	Correct     int           `bun:"correct_answers"`
	Duration    time.Duration `bun:"duration_ns"`
	PlayedAt    time.Time     `bun:"played_at"`
	LastUpdated time.Time     `bun:"last_updated"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results,alias:qr"`

	ID          string    `bun:"id,pk"`
	StudentID   string    `bun:"student_id"`
	QuizID      string    `bun:"quiz_id"`
	Score       int       `bun:"score"`
	Feedback    string    `bun:"feedback"`
	CompletedAt time.Time `bun:"completed_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:progress_tracking,alias:pt"`

	ID          string     `bun:"id,pk"`
	StudentID   string     `bun:"student_id"`
	QuizID      string     `bun:"quiz_id"`
	Status      string     `bun:"status"`
	Score       int        `bun:"score"`
	StartedAt   time.Time  `bun:"started_at"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
}

// --- users ---

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.User{}, mapNotFound(err, domain.ErrNotFound)
	}
	return userFromRow(row), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = userFromRow(row)
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	row := userToRow(user)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	row := userToRow(user)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*userRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- quizzes ---

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("q.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.Quiz{}, mapNotFound(err, domain.ErrQuizNotFound)
	}
	return quizFromRow(row), nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	quizzes := make([]domain.Quiz, len(rows))
	for i, row := range rows {
		quizzes[i] = quizFromRow(row)
	}
	return quizzes, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := quizToRow(quiz)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := quizToRow(quiz)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// DeleteQuizCascade removes the quiz and its questions in one
// transaction; any failure rolls the whole delete back.
func (s *Store) DeleteQuizCascade(ctx context.Context, id string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("quiz_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrQuizNotFound
		}
		return nil
	})
}

// --- questions ---

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("qq.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.Question{}, mapNotFound(err, domain.ErrNotFound)
	}
	return questionFromRow(row), nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	q := s.db.NewSelect().Model(&rows).Order("created_at ASC")
	if quizID != "" {
		q = q.Where("quiz_id = ?", quizID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	questions := make([]domain.Question, len(rows))
	for i, row := range rows {
		questions[i] = questionFromRow(row)
	}
	return questions, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	row := questionToRow(q)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	row := questionToRow(q)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Question{}, domain.ErrNotFound
	}
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- game sessions ---

func (s *Store) GetSession(ctx context.Context, id string) (domain.GameSession, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).Where("gs.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.GameSession{}, mapNotFound(err, domain.ErrNotFound)
	}
	return sessionFromRow(row), nil
}

func (s *Store) ListSessions(ctx context.Context) ([]domain.GameSession, error) {
	var rows []sessionRow
	if err := s.db.NewSelect().Model(&rows).Order("played_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	sessions := make([]domain.GameSession, len(rows))
	for i, row := range rows {
		sessions[i] = sessionFromRow(row)
	}
	return sessions, nil
}

func (s *Store) CreateSession(ctx context.Context, sess domain.GameSession) (domain.GameSession, error) {
	row := sessionToRow(sess)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.GameSession{}, err
	}
	return sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess domain.GameSession) (domain.GameSession, error) {
	row := sessionToRow(sess)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return domain.GameSession{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.GameSession{}, domain.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*sessionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- quiz results ---

// UpsertResult locks the (student, quiz) row inside a transaction, plans
// the write, and commits it. Together with the unique index on
// (student_id, quiz_id) this makes concurrent submissions land as one row.
func (s *Store) UpsertResult(ctx context.Context, incoming domain.QuizResult) (domain.QuizResult, bool, error) {
	var stored domain.QuizResult
	var updated bool

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row resultRow
		err := tx.NewSelect().Model(&row).
			Where("student_id = ?", incoming.StudentID).
			Where("quiz_id = ?", incoming.QuizID).
			For("UPDATE").
			Scan(ctx)

		var existing *domain.QuizResult
		switch {
		case err == nil:
			record := resultFromRow(row)
			existing = &record
		case errors.Is(err, sql.ErrNoRows):
			// fresh insert
		default:
			return err
		}

		write := authz.PlanResultUpsert(incoming, existing, s.clock())
		updated = write.Updated
		stored = write.Result

		outRow := resultToRow(write.Result)
		if write.Updated {
			_, err = tx.NewUpdate().Model(&outRow).WherePK().Exec(ctx)
		} else {
			_, err = tx.NewInsert().Model(&outRow).Exec(ctx)
		}
		return err
	})
	if err != nil {
		return domain.QuizResult{}, false, err
	}
	return stored, updated, nil
}

func (s *Store) ListResults(ctx context.Context) ([]domain.QuizResult, error) {
	var rows []resultRow
	if err := s.db.NewSelect().Model(&rows).Order("completed_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	results := make([]domain.QuizResult, len(rows))
	for i, row := range rows {
		results[i] = resultFromRow(row)
	}
	return results, nil
}

func (s *Store) DeleteResult(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*resultRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --- progress tracking ---

func (s *Store) GetProgress(ctx context.Context, id string) (domain.ProgressTracking, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).Where("pt.id = ?", id).Scan(ctx)
	if err != nil {
		return domain.ProgressTracking{}, mapNotFound(err, domain.ErrNotFound)
	}
	return progressFromRow(row), nil
}

func (s *Store) ListProgress(ctx context.Context) ([]domain.ProgressTracking, error) {
	var rows []progressRow
	if err := s.db.NewSelect().Model(&rows).Order("started_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	records := make([]domain.ProgressTracking, len(rows))
	for i, row := range rows {
		records[i] = progressFromRow(row)
	}
	return records, nil
}

func (s *Store) CreateProgress(ctx context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error) {
	row := progressToRow(p)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.ProgressTracking{}, err
	}
	return p, nil
}

func (s *Store) UpdateProgress(ctx context.Context, p domain.ProgressTracking) (domain.ProgressTracking, error) {
	row := progressToRow(p)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return domain.ProgressTracking{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ProgressTracking{}, domain.ErrNotFound
	}
	return p, nil
}

// --- row mapping ---

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

func userFromRow(r userRow) domain.User {
	return domain.User{
		ID: r.ID, Username: r.Username, Email: r.Email,
		Role: domain.Role(r.Role), Cohort: r.Cohort,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func userToRow(u domain.User) userRow {
	return userRow{
		ID: u.ID, Username: u.Username, Email: u.Email,
		Role: string(u.Role), Cohort: u.Cohort,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func quizFromRow(r quizRow) domain.Quiz {
	return domain.Quiz{
		ID: r.ID, OwnerID: r.OwnerID, Cohort: r.Cohort,
		Title: r.Title, Description: r.Description,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func quizToRow(q domain.Quiz) quizRow {
	return quizRow{
		ID: q.ID, OwnerID: q.OwnerID, Cohort: q.Cohort,
		Title: q.Title, Description: q.Description,
		CreatedAt: q.CreatedAt, UpdatedAt: q.UpdatedAt,
	}
}

func questionFromRow(r questionRow) domain.Question {
	return domain.Question{
		ID: r.ID, QuizID: r.QuizID, Text: r.Text,
		Type:    domain.QuestionType(r.Type),
		Options: json.RawMessage(r.Options), CorrectAnswer: json.RawMessage(r.CorrectAnswer),
		Points: r.Points, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func questionToRow(q domain.Question) questionRow {
	return questionRow{
		ID: q.ID, QuizID: q.QuizID, Text: q.Text,
		Type:    string(q.Type),
		Options: q.Options, CorrectAnswer: q.CorrectAnswer,
		Points: q.Points, CreatedAt: q.CreatedAt, UpdatedAt: q.UpdatedAt,
	}
}

func sessionFromRow(r sessionRow) domain.GameSession {
	return domain.GameSession{
		ID: r.ID, StudentID: r.StudentID, QuizID: r.QuizID,
		Score: r.Score, Correct: r.Correct, Duration: r.Duration,
		PlayedAt: r.PlayedAt, LastUpdated: r.LastUpdated,
	}
}

func sessionToRow(s domain.GameSession) sessionRow {
	return sessionRow{
		ID: s.ID, StudentID: s.StudentID, QuizID: s.QuizID,
		Score: s.Score, Correct: s.Correct, Duration: s.Duration,
		PlayedAt: s.PlayedAt, LastUpdated: s.LastUpdated,
	}
}

func resultFromRow(r resultRow) domain.QuizResult {
	return domain.QuizResult{
		ID: r.ID, StudentID: r.StudentID, QuizID: r.QuizID,
		Score: r.Score, Feedback: r.Feedback,
		CompletedAt: r.CompletedAt, UpdatedAt: r.UpdatedAt,
	}
}

func resultToRow(r domain.QuizResult) resultRow {
	return resultRow{
		ID: r.ID, StudentID: r.StudentID, QuizID: r.QuizID,
		Score: r.Score, Feedback: r.Feedback,
		CompletedAt: r.CompletedAt, UpdatedAt: r.UpdatedAt,
	}
}

func progressFromRow(r progressRow) domain.ProgressTracking {
	return domain.ProgressTracking{
		ID: r.ID, StudentID: r.StudentID, QuizID: r.QuizID,
		Status: domain.ProgressStatus(r.Status), Score: r.Score,
		StartedAt: r.StartedAt, CompletedAt: r.CompletedAt,
	}
}

func progressToRow(p domain.ProgressTracking) progressRow {
	return progressRow{
		ID: p.ID, StudentID: p.StudentID, QuizID: p.QuizID,
		Status: string(p.Status), Score: p.Score,
		StartedAt: p.StartedAt, CompletedAt: p.CompletedAt,
	}
}

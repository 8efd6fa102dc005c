package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"eduquiz/internal/domain"
)

// QuizLoader reads quiz metadata straight from Postgres. It backs the
// caching quiz directories (memory and redis).
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx,
		`SELECT id, owner_id, cohort, title, description FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.OwnerID, &quiz.Cohort, &quiz.Title, &quiz.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

// LeaderboardLoader derives per-quiz rankings from stored results with a
// window query, as an alternative to the redis sorted-set board.
type LeaderboardLoader struct {
	pool *pgxpool.Pool
}

func NewLeaderboardLoader(pool *pgxpool.Pool) *LeaderboardLoader {
	return &LeaderboardLoader{pool: pool}
}

func (l *LeaderboardLoader) Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT student_id,
		       SUM(score)::int AS total,
		       RANK() OVER (ORDER BY SUM(score) DESC)::int AS ranking
		FROM quiz_results
		WHERE quiz_id = $1
		GROUP BY student_id
		ORDER BY total DESC, student_id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		entry := domain.LeaderboardEntry{QuizID: quizID}
		if err := rows.Scan(&entry.StudentID, &entry.TotalScore, &entry.Ranking); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

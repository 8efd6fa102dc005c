package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"eduquiz/internal/domain"
)

// LeaderboardStore keeps per-quiz rankings in a Redis sorted set:
// ZADD quiz:{quizID}:leaderboard {totalScore} {studentID}
// Entries carry an optional TTL so stale boards age out.
type LeaderboardStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardStore(client *redis.Client, ttl time.Duration) *LeaderboardStore {
	return &LeaderboardStore{client: client, ttl: ttl}
}

// RecordScore sets a student's total for a quiz. Result submissions are
// upserts, so the total replaces any previous value rather than
// incrementing it.
func (s *LeaderboardStore) RecordScore(ctx context.Context, quizID, studentID string, total int) error {
	key := s.key(quizID)
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(total), Member: studentID})
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Leaderboard returns the ranked board for a quiz, highest total first.
// Equal totals share a rank.
func (s *LeaderboardStore) Leaderboard(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	members, err := s.client.ZRevRangeWithScores(ctx, s.key(quizID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	rank := 0
	lastScore := 0
	for i, m := range members {
		total := int(m.Score)
		if i == 0 || total != lastScore {
			rank = i + 1
			lastScore = total
		}
		entries = append(entries, domain.LeaderboardEntry{
			StudentID:  m.Member.(string),
			QuizID:     quizID,
			Ranking:    rank,
			TotalScore: total,
		})
	}
	return entries, nil
}

// Remove drops a student from a quiz board, e.g. after a result delete.
func (s *LeaderboardStore) Remove(ctx context.Context, quizID, studentID string) error {
	return s.client.ZRem(ctx, s.key(quizID), studentID).Err()
}

func (s *LeaderboardStore) key(quizID string) string {
	return "quiz:" + quizID + ":leaderboard"
}

package memory

import (
	"sort"

	"eduquiz/internal/domain"
)

// rankTotals orders per-student totals into leaderboard entries. Equal
// totals share a rank; order within a tie is by student ID for stability.
func rankTotals(quizID string, totals map[string]int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for studentID, total := range totals {
		entries = append(entries, domain.LeaderboardEntry{
			StudentID:  studentID,
			QuizID:     quizID,
			TotalScore: total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].StudentID < entries[j].StudentID
	})

	rank := 0
	lastScore := 0
	for i := range entries {
		if i == 0 || entries[i].TotalScore != lastScore {
			rank = i + 1
			lastScore = entries[i].TotalScore
		}
		entries[i].Ranking = rank
	}
	return entries
}

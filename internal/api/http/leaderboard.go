package http

import (
	"net/http"

	"github.com/quizforge/quizforge/internal/leaderboard"
	"github.com/quizforge/quizforge/internal/quiz"
)

// LeaderboardHandler ranks users across all historical results. The aggregate
// is computed server-side so every client renders the same standings.
func LeaderboardHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.ListResults(r.Context(), "")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows := make([]leaderboard.ResultRow, 0, len(results))
		for _, res := range results {
			rows = append(rows, leaderboard.ResultRow{
				UserID:         res.UserID,
				Name:           res.Name,
				Score:          res.Score,
				TotalQuestions: res.TotalQuestions,
			})
		}
		writeJSON(w, http.StatusOK, leaderboard.Compute(rows))
	}
}

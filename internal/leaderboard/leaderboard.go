// Package leaderboard derives ranked standings from historical quiz results.
package leaderboard

import "sort"

// ResultRow is the slice of a persisted result the aggregator needs.
type ResultRow struct {
	UserID         string
	Name           string
	Score          int
	TotalQuestions int
}

type Entry struct {
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	Average  float64 `json:"average_score"` // percentage
	Best     float64 `json:"best_score"`    // percentage
	Attempts int     `json:"attempts"`
	Rank     int     `json:"rank"`
	Tier     string  `json:"tier,omitempty"` // gold|silver|bronze for the top three
}

const maxEntries = 10

// Compute groups results by user, averages percentage scores and ranks the
// users descending by average. Ties keep first-seen order (stable sort; no
// secondary key is defined). Output is truncated to the top ten. A user with
// no results simply never appears, so the average is always well-defined.
func Compute(rows []ResultRow) []Entry {
	type acc struct {
		entry Entry
		sum   float64
	}
	byUser := map[string]*acc{}
	order := []string{}

	for _, r := range rows {
		if r.TotalQuestions <= 0 {
			continue
		}
		a, ok := byUser[r.UserID]
		if !ok {
			a = &acc{entry: Entry{UserID: r.UserID, Name: r.Name}}
			byUser[r.UserID] = a
			order = append(order, r.UserID)
		}
		pct := float64(r.Score) / float64(r.TotalQuestions) * 100
		a.sum += pct
		a.entry.Attempts++
		if pct > a.entry.Best {
			a.entry.Best = pct
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, id := range order {
		a := byUser[id]
		a.entry.Average = a.sum / float64(a.entry.Attempts)
		entries = append(entries, a.entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Average > entries[j].Average
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	tiers := []string{"gold", "silver", "bronze"}
	for i := range entries {
		entries[i].Rank = i + 1
		if i < len(tiers) {
			entries[i].Tier = tiers[i]
		}
	}
	return entries
}

package robotstate

import (
	"math"
	"slices"

	"github.com/rpggio/robolab/internal/domain/robot"
)

// Stats summarizes the stored robots.
type Stats struct {
	Total       int                `json:"total"`
	ByType      map[robot.Type]int `json:"byType"`
	AverageYear int                `json:"averageYear"`
	NewestYear  int                `json:"newestYear"`
	OldestYear  int                `json:"oldestYear"`
}

// SortedByYear returns robots from newest to oldest. Equal years keep name
// order.
func (s *Store) SortedByYear() []robot.Robot {
	out := s.All()
	slices.SortStableFunc(out, func(a, b robot.Robot) int { return b.Year - a.Year })
	return out
}

// ByType groups robots by type, each group in name order.
func (s *Store) ByType() map[robot.Type][]robot.Robot {
	out := make(map[robot.Type][]robot.Robot)
	for _, r := range s.All() {
		out[r.Type] = append(out[r.Type], r)
	}
	return out
}

// Stats computes totals and year figures. Year fields are zero when the
// store is empty.
func (s *Store) Stats() Stats {
	return computeStats(s.All())
}

func computeStats(records []robot.Robot) Stats {
	stats := Stats{Total: len(records), ByType: make(map[robot.Type]int)}
	if len(records) == 0 {
		return stats
	}

	sum := 0
	stats.NewestYear, stats.OldestYear = records[0].Year, records[0].Year
	for _, r := range records {
		stats.ByType[r.Type]++
		sum += r.Year
		stats.NewestYear = max(stats.NewestYear, r.Year)
		stats.OldestYear = min(stats.OldestYear, r.Year)
	}
	stats.AverageYear = int(math.Round(float64(sum) / float64(len(records))))
	return stats
}

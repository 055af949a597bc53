package robotstate_test

import (
	"testing"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/stretchr/testify/require"
)

func TestSelectors(t *testing.T) {
	s := newStore(t)
	for _, in := range []robot.Input{
		input("Atlas", 2013, robot.TypeIndustrial),
		input("Baxter", 2012, robot.TypeIndustrial),
		input("Pepper", 2014, robot.TypeService),
		input("Shakey", 1966, robot.TypeEducational),
		input("Zora", 2013, robot.TypeMedical),
	} {
		_, err := s.Create(in)
		require.NoError(t, err)
	}

	var byYear []string
	for _, r := range s.SortedByYear() {
		byYear = append(byYear, r.Name)
	}
	require.Equal(t, []string{"Pepper", "Atlas", "Zora", "Baxter", "Shakey"}, byYear)

	groups := s.ByType()
	require.Len(t, groups[robot.TypeIndustrial], 2)
	require.Equal(t, "Atlas", groups[robot.TypeIndustrial][0].Name)
	require.Empty(t, groups[robot.TypeOther])

	stats := s.Stats()
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 2, stats.ByType[robot.TypeIndustrial])
	require.Equal(t, 2014, stats.NewestYear)
	require.Equal(t, 1966, stats.OldestYear)
	// (2013+2012+2014+1966+2013)/5 = 2003.6
	require.Equal(t, 2004, stats.AverageYear)
}

func TestStatsEmpty(t *testing.T) {
	stats := newStore(t).Stats()
	require.Zero(t, stats.Total)
	require.Zero(t, stats.AverageYear)
	require.Zero(t, stats.NewestYear)
	require.Empty(t, stats.ByType)
}

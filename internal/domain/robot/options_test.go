package robot_test

import (
	"testing"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/stretchr/testify/require"
)

func TestListOptions_Normalized(t *testing.T) {
	got := robot.ListOptions{}.Normalized()
	require.Equal(t, robot.SortName, got.Sort)
	require.Equal(t, robot.OrderAsc, got.Order)
	require.Equal(t, robot.DefaultListLimit, got.Limit)

	got = robot.ListOptions{Sort: "YEAR", Order: "desc", Limit: 5, Offset: -3}.Normalized()
	require.Equal(t, robot.SortYear, got.Sort)
	require.Equal(t, robot.OrderDesc, got.Order)
	require.Equal(t, 5, got.Limit)
	require.Zero(t, got.Offset)

	got = robot.ListOptions{Sort: "name; DROP TABLE robots"}.Normalized()
	require.Equal(t, robot.SortName, got.Sort)
}

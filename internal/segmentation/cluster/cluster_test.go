package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two tight groups far apart, three points each
func twoGroups() [][]float64 {
	return [][]float64{
		{0.0, 0.1}, {0.1, 0.0}, {0.05, 0.05},
		{10.0, 10.1}, {10.1, 10.0}, {10.05, 10.05},
	}
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"centroid", "hierarchical", "density"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, Strategy(name), s)
	}

	_, err := ParseStrategy("spectral")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSegment_UnknownStrategy(t *testing.T) {
	_, err := Segment(twoGroups(), Strategy("spectral"), Params{K: 2})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSegment_EmptyMatrix(t *testing.T) {
	_, err := Segment(nil, StrategyCentroid, Params{K: 2})
	assert.Error(t, err)
}

func TestDefaultK(t *testing.T) {
	assert.Equal(t, 2, DefaultK(30))
	assert.Equal(t, 2, DefaultK(100))
	assert.Equal(t, 4, DefaultK(200))
	assert.Equal(t, 10, DefaultK(5000))
}

func TestKMeans_SeparatesObviousGroups(t *testing.T) {
	labels, err := Segment(twoGroups(), StrategyCentroid, Params{K: 2, MaxIterations: 100, Seed: 42})
	require.NoError(t, err)
	require.Len(t, labels, 6)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
}

func TestKMeans_DeterministicForSeed(t *testing.T) {
	p := Params{K: 2, MaxIterations: 100, Seed: 7}
	first, err := Segment(twoGroups(), StrategyCentroid, p)
	require.NoError(t, err)
	second, err := Segment(twoGroups(), StrategyCentroid, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKMeans_TooFewPoints(t *testing.T) {
	_, err := Segment([][]float64{{1, 2}}, StrategyCentroid, Params{K: 3, Seed: 1})
	assert.Error(t, err)
}

func TestKMeans_TooFewDistinctPoints(t *testing.T) {
	matrix := [][]float64{{1, 1}, {1, 1}, {1, 1}, {2, 2}}
	_, err := Segment(matrix, StrategyCentroid, Params{K: 3, Seed: 1})
	assert.Error(t, err)
}

func TestKMeans_InvalidK(t *testing.T) {
	_, err := Segment(twoGroups(), StrategyCentroid, Params{K: 1, Seed: 1})
	assert.Error(t, err)
}

func TestHierarchical_SeparatesObviousGroups(t *testing.T) {
	labels, err := Segment(twoGroups(), StrategyHierarchical, Params{K: 2})
	require.NoError(t, err)

	// labels ordered by smallest member index: first group is 0
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, labels)
}

func TestHierarchical_Deterministic(t *testing.T) {
	first, err := Segment(twoGroups(), StrategyHierarchical, Params{K: 3})
	require.NoError(t, err)
	second, err := Segment(twoGroups(), StrategyHierarchical, Params{K: 3})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDBSCAN_MarksOutlierAsNoise(t *testing.T) {
	matrix := append(twoGroups(), []float64{50, -50})

	labels, err := Segment(matrix, StrategyDensity, Params{Eps: 0.5, MinPoints: 3})
	require.NoError(t, err)
	require.Len(t, labels, 7)

	assert.Equal(t, 0, labels[0])
	assert.Equal(t, 0, labels[1])
	assert.Equal(t, 0, labels[2])
	assert.Equal(t, 1, labels[3])
	assert.Equal(t, 1, labels[4])
	assert.Equal(t, 1, labels[5])
	assert.Equal(t, Noise, labels[6])
}

func TestDBSCAN_ZeroClustersIsError(t *testing.T) {
	matrix := [][]float64{{0, 0}, {10, 10}, {20, 20}}
	_, err := Segment(matrix, StrategyDensity, Params{Eps: 0.1, MinPoints: 2})
	assert.Error(t, err)
}

func TestDBSCAN_InvalidEps(t *testing.T) {
	_, err := Segment(twoGroups(), StrategyDensity, Params{Eps: 0, MinPoints: 2})
	assert.Error(t, err)
}

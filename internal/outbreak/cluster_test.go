package outbreak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienbuster/alienbuster-go/internal/datastore"
)

// reportsAt builds reports at the given coordinates with sensible defaults.
func reportsAt(coords [][2]float64) []datastore.Report {
	reports := make([]datastore.Report, len(coords))
	for i, c := range coords {
		reports[i] = datastore.Report{
			Latitude:   c[0],
			Longitude:  c[1],
			Species:    "kudzu",
			FusedRisk:  0.8,
			IsInvasive: true,
		}
	}
	return reports
}

func TestClusterReports(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, clusterReports(nil, 2.0, 3))
	})

	t.Run("TwoPointsBelowMinSizeAreNoise", func(t *testing.T) {
		reports := reportsAt([][2]float64{
			{60.000, 24.94},
			{60.009, 24.94}, // ~1 km apart
		})
		assert.Nil(t, clusterReports(reports, 2.0, 3))
	})

	t.Run("ThreePointsAtOneKmSpacingFormOneCluster", func(t *testing.T) {
		reports := reportsAt([][2]float64{
			{60.000, 24.94},
			{60.009, 24.94},
			{60.018, 24.94},
		})
		clusters := clusterReports(reports, 2.0, 3)
		require.Len(t, clusters, 1)
		assert.Len(t, clusters[0], 3)
	})

	t.Run("DistantGroupsFormSeparateClusters", func(t *testing.T) {
		reports := reportsAt([][2]float64{
			// group A, ~1 km spacing
			{60.000, 24.94},
			{60.009, 24.94},
			{60.018, 24.94},
			// group B, ~50 km north
			{60.450, 24.94},
			{60.459, 24.94},
			{60.468, 24.94},
		})
		clusters := clusterReports(reports, 2.0, 3)
		require.Len(t, clusters, 2)
		assert.Len(t, clusters[0], 3)
		assert.Len(t, clusters[1], 3)
	})

	t.Run("IsolatedPointStaysNoise", func(t *testing.T) {
		reports := reportsAt([][2]float64{
			{60.000, 24.94},
			{60.009, 24.94},
			{60.018, 24.94},
			{61.500, 24.94}, // isolated
		})
		clusters := clusterReports(reports, 2.0, 3)
		require.Len(t, clusters, 1)
		assert.Len(t, clusters[0], 3)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("CentroidRadiusAndStats", func(t *testing.T) {
		reports := reportsAt([][2]float64{
			{60.000, 24.94},
			{60.009, 24.94},
			{60.018, 24.94},
		})
		reports[0].FusedRisk = 0.7
		reports[1].FusedRisk = 0.8
		reports[2].FusedRisk = 0.9
		reports[1].NDVIAnomaly = true

		summary := summarize(reports, []int{0, 1, 2})

		assert.InDelta(t, 60.009, summary.centroidLat, 1e-9)
		assert.InDelta(t, 24.94, summary.centroidLon, 1e-9)
		assert.Equal(t, 3, summary.numReports)
		assert.InDelta(t, 0.8, summary.meanRisk, 1e-9)
		assert.InDelta(t, 1.0/3.0, summary.anomalyRate, 1e-9)
		assert.Greater(t, summary.radiusKm, 0.9)
		assert.LessOrEqual(t, summary.radiusKm, 2.0)
	})
}

func TestDominantSpecies(t *testing.T) {
	t.Run("Plurality", func(t *testing.T) {
		reports := reportsAt([][2]float64{{0, 0}, {0, 0}, {0, 0}})
		reports[0].Species = "kudzu"
		reports[1].Species = "hogweed"
		reports[2].Species = "kudzu"
		assert.Equal(t, "kudzu", dominantSpecies(reports, []int{0, 1, 2}))
	})

	t.Run("TieBreaksToFirstOccurrence", func(t *testing.T) {
		reports := reportsAt([][2]float64{{0, 0}, {0, 0}, {0, 0}, {0, 0}})
		reports[0].Species = "hogweed"
		reports[1].Species = "kudzu"
		reports[2].Species = "kudzu"
		reports[3].Species = "hogweed"
		assert.Equal(t, "hogweed", dominantSpecies(reports, []int{0, 1, 2, 3}))
	})
}

// cluster.go: density-based spatial clustering of reports
package outbreak

import (
	"github.com/alienbuster/alienbuster-go/internal/datastore"
	"github.com/alienbuster/alienbuster-go/internal/geo"
)

const (
	labelUnclassified = 0
	labelNoise        = -1
)

// clusterReports runs DBSCAN over report coordinates using the haversine
// metric. epsKm is the neighborhood radius, minPts the minimum neighborhood
// size for a core point (the point itself counts, matching the usual
// min_samples convention). It returns clusters as index slices in scan
// order; noise points are not returned.
func clusterReports(reports []datastore.Report, epsKm float64, minPts int) [][]int {
	n := len(reports)
	if n == 0 {
		return nil
	}

	labels := make([]int, n)
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != labelUnclassified {
			continue
		}

		neighbors := regionQuery(reports, i, epsKm)
		if len(neighbors) < minPts {
			labels[i] = labelNoise
			continue
		}

		clusterID++
		labels[i] = clusterID
		expandCluster(reports, labels, neighbors, clusterID, epsKm, minPts)
	}

	if clusterID == 0 {
		return nil
	}

	clusters := make([][]int, clusterID)
	for i := 0; i < n; i++ {
		if labels[i] > 0 {
			clusters[labels[i]-1] = append(clusters[labels[i]-1], i)
		}
	}
	return clusters
}

// expandCluster grows a cluster from a core point via its density-reachable
// neighborhood. Border points join the cluster but do not extend it.
func expandCluster(reports []datastore.Report, labels, seeds []int, clusterID int, epsKm float64, minPts int) {
	for k := 0; k < len(seeds); k++ {
		idx := seeds[k]

		if labels[idx] == labelNoise {
			// Noise reachable from a core point becomes a border point
			labels[idx] = clusterID
			continue
		}
		if labels[idx] != labelUnclassified {
			continue
		}

		labels[idx] = clusterID

		neighbors := regionQuery(reports, idx, epsKm)
		if len(neighbors) >= minPts {
			seeds = append(seeds, neighbors...)
		}
	}
}

// regionQuery returns the indices of all reports within epsKm of reports[i],
// including i itself.
func regionQuery(reports []datastore.Report, i int, epsKm float64) []int {
	var neighbors []int
	for j := range reports {
		d := geo.HaversineKm(reports[i].Latitude, reports[i].Longitude, reports[j].Latitude, reports[j].Longitude)
		if d <= epsKm {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// clusterSummary aggregates the member statistics of one cluster.
type clusterSummary struct {
	centroidLat float64
	centroidLon float64
	radiusKm    float64
	species     string
	numReports  int
	meanRisk    float64
	anomalyRate float64
}

// summarize computes centroid, radius, dominant species, mean risk and
// vegetation-anomaly rate for the cluster members.
func summarize(reports []datastore.Report, members []int) clusterSummary {
	var sumLat, sumLon, sumRisk float64
	anomalies := 0
	for _, idx := range members {
		sumLat += reports[idx].Latitude
		sumLon += reports[idx].Longitude
		sumRisk += reports[idx].FusedRisk
		if reports[idx].NDVIAnomaly {
			anomalies++
		}
	}

	n := float64(len(members))
	summary := clusterSummary{
		centroidLat: sumLat / n,
		centroidLon: sumLon / n,
		numReports:  len(members),
		meanRisk:    sumRisk / n,
		anomalyRate: float64(anomalies) / n,
	}

	for _, idx := range members {
		d := geo.HaversineKm(summary.centroidLat, summary.centroidLon, reports[idx].Latitude, reports[idx].Longitude)
		if d > summary.radiusKm {
			summary.radiusKm = d
		}
	}

	summary.species = dominantSpecies(reports, members)
	return summary
}

// dominantSpecies picks the species with the highest member count; ties
// break to the species first seen in cluster scan order.
func dominantSpecies(reports []datastore.Report, members []int) string {
	counts := make(map[string]int)
	var order []string
	for _, idx := range members {
		species := reports[idx].Species
		if _, seen := counts[species]; !seen {
			order = append(order, species)
		}
		counts[species]++
	}

	best := ""
	bestCount := 0
	for _, species := range order {
		if counts[species] > bestCount {
			best = species
			bestCount = counts[species]
		}
	}
	return best
}

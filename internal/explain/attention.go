package explain

import (
	"fmt"
	"math"
	"sort"

	"github.com/authlens/authlens/pkg/models"
)

const (
	gridSize       = 5
	cellSpan       = 100.0 / gridSize
	influenceRange = 30.0
	hotspotCount   = 3

	baselineWeight = 0.3
	regionWeight   = 0.7
	scoreLift      = 0.2

	concentratedRange = 0.6
	distributedRange  = 0.3
)

// buildAttention renders the synthetic attention grid. Each cell mixes a
// hash-keyed baseline with the pull of nearby regions; cells far from every
// region stay near the baseline so the grid visibly tracks the regions.
func buildAttention(regions []models.XAIRegion, fusedScore float64, contentHash string) models.AttentionMap {
	grid := make([][]float64, gridSize)
	for row := range grid {
		grid[row] = make([]float64, gridSize)
		for col := range grid[row] {
			cellX := float64(col)*cellSpan + cellSpan/2
			cellY := float64(row)*cellSpan + cellSpan/2

			var pull float64
			for _, region := range regions {
				centerX := region.X + region.Width/2
				centerY := region.Y + region.Height/2
				dist := math.Hypot(cellX-centerX, cellY-centerY)
				if dist < influenceRange {
					pull += region.Importance * (1 - dist/influenceRange)
				}
			}

			baseline := hashFraction(contentHash, "attention", fmt.Sprintf("%d:%d", row, col))
			grid[row][col] = clamp01(baselineWeight*baseline + regionWeight*pull + scoreLift*fusedScore)
		}
	}

	return models.AttentionMap{
		Grid:         grid,
		Hotspots:     topHotspots(grid),
		Distribution: classifyDistribution(grid),
	}
}

func topHotspots(grid [][]float64) []models.AttentionHotspot {
	cells := make([]models.AttentionHotspot, 0, gridSize*gridSize)
	for row := range grid {
		for col, value := range grid[row] {
			cells = append(cells, models.AttentionHotspot{Row: row, Col: col, Value: value})
		}
	}
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Value != cells[j].Value {
			return cells[i].Value > cells[j].Value
		}
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells[:hotspotCount]
}

func classifyDistribution(grid [][]float64) models.AttentionDistribution {
	min, max := grid[0][0], grid[0][0]
	for _, row := range grid {
		for _, value := range row {
			if value < min {
				min = value
			}
			if value > max {
				max = value
			}
		}
	}

	switch spread := max - min; {
	case spread > concentratedRange:
		return models.DistributionConcentrated
	case spread > distributedRange:
		return models.DistributionDistributed
	default:
		return models.DistributionUniform
	}
}

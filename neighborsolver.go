package gridding

import (
	"container/heap"
	"context"
	"math"
)

// neighborCheckInterval is the number of cells a NeighborSolver fills between
// cancellation checks.
const neighborCheckInterval = 1024

// A NeighborSolver fills unknown cells from their already filled 8-neighbors,
// weighted by inverse distance, starting with the cells that have the most
// support. It runs in a single pass, ignores tension, and always reports zero
// iterations. Unknown cells that are not connected to any known cell keep their
// current values.
type NeighborSolver struct{}

// NewNeighborSolver returns a new NeighborSolver.
func NewNeighborSolver() *NeighborSolver {
	return &NeighborSolver{}
}

// Solve implements Solver.
func (s *NeighborSolver) Solve(ctx context.Context, values [][]float64, mask Mask, params SolveParams) (int, error) {
	width, height := mask.Width(), mask.Height()
	pending := mask.Clone()
	result := cloneValues(values)
	weights := newValues(width, height)

	var queue cellQueue
	for c := range width {
		for r := range height {
			if !pending[c][r] {
				continue
			}
			_, weight := neighborSum(result, pending, c, r, params)
			if weight > 0 {
				heap.Push(&queue, weightedCell{Cell: Cell{C: c, R: r}, weight: weight})
			}
			weights[c][r] = weight
		}
	}

	for n := 0; queue.Len() > 0; n++ {
		if n%neighborCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		// A cell may have been queued more than once.
		cell := heap.Pop(&queue).(weightedCell)
		if !pending[cell.C][cell.R] {
			continue
		}
		sum, weight := neighborSum(result, pending, cell.C, cell.R, params)
		result[cell.C][cell.R] = sum / weight
		pending[cell.C][cell.R] = false

		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				c, r := cell.C+dc, cell.R+dr
				if dc == 0 && dr == 0 || c < 0 || c >= width || r < 0 || r >= height || !pending[c][r] {
					continue
				}
				weights[c][r] += cellWeight(dc, dr, params.CellWidth, params.CellHeight)
				heap.Push(&queue, weightedCell{Cell: Cell{C: c, R: r}, weight: weights[c][r]})
			}
		}
	}

	for c := range width {
		for r := range height {
			if mask[c][r] {
				values[c][r] = result[c][r]
			}
		}
	}
	return 0, nil
}

// neighborSum returns the inverse distance weighted sum of the filled
// 8-neighbors of (c, r) and the sum of their weights.
func neighborSum(values [][]float64, pending Mask, c, r int, params SolveParams) (float64, float64) {
	sum, weightSum := 0.0, 0.0
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			nc, nr := c+dc, r+dr
			if dc == 0 && dr == 0 || nc < 0 || nc >= len(values) || nr < 0 || nr >= len(values[nc]) || pending[nc][nr] {
				continue
			}
			weight := cellWeight(dc, dr, params.CellWidth, params.CellHeight)
			sum += values[nc][nr] * weight
			weightSum += weight
		}
	}
	return sum, weightSum
}

type weightedCell struct {
	Cell
	weight float64
}

// A cellQueue is a max-heap of cells by weight.
type cellQueue []weightedCell

func (q cellQueue) Len() int           { return len(q) }
func (q cellQueue) Less(i, j int) bool { return q[i].weight > q[j].weight }
func (q cellQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *cellQueue) Push(x any) {
	*q = append(*q, x.(weightedCell))
}

func (q *cellQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// cellWeight returns the inverse distance between cells dc columns and dr rows
// apart.
func cellWeight(dc, dr int, cellWidth, cellHeight float64) float64 {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	return 1 / math.Hypot(float64(dc)*cellWidth, float64(dr)*cellHeight)
}

package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

type cell struct{ x, y int }

// forEachNearPair calls fn(i, j) with i < j for every pair of non-anchor
// nodes sharing or bordering a cell of the given size. Any pair closer than
// size is visited. Pairs are visited in the same order as a full i<j scan so
// floating point sums match it exactly.
func forEachNearPair(pos []r2.Vec, anchor []bool, size float64, fn func(i, j int)) {
	if size <= 0 {
		return
	}
	cellOf := func(v r2.Vec) cell {
		return cell{int(math.Floor(v.X / size)), int(math.Floor(v.Y / size))}
	}

	bins := make(map[cell][]int)
	for i, v := range pos {
		if anchor[i] {
			continue
		}
		c := cellOf(v)
		bins[c] = append(bins[c], i)
	}

	var near []int
	for i, v := range pos {
		if anchor[i] {
			continue
		}
		c := cellOf(v)
		near = near[:0]
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range bins[cell{c.x + dx, c.y + dy}] {
					if j > i {
						near = append(near, j)
					}
				}
			}
		}
		sort.Ints(near)
		for _, j := range near {
			fn(i, j)
		}
	}
}

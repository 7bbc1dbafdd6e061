package chinesepoker

import (
	"sort"

	"github.com/samber/lo"
)

// Credits settles a finished game. Points are scaled by creditsPerPoint; when
// the total does not split evenly, the lowest holders are bumped by one until
// it does. Each player then nets the average minus their own credits, so the
// result sums to zero.
func Credits(points []int, creditsPerPoint int) []int {
	n := len(points)
	if n == 0 {
		return nil
	}
	credits := lo.Map(points, func(p int, _ int) int { return p * creditsPerPoint })
	total := lo.Sum(credits)

	if r := total % n; r > 0 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return credits[order[a]] < credits[order[b]] })
		for _, i := range order[:n-r] {
			credits[i]++
			total++
		}
	}

	avg := total / n
	return lo.Map(credits, func(c int, _ int) int { return avg - c })
}

package graph

import (
	"math"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
)

// score applies the distance penalty to a base score. The result never
// drops below the floor, or below base when base itself is under the floor.
func score(r *rules.Set, base float64, gap int) float64 {
	floor := min(base, r.ScoreFloor)
	s := max(floor, base-float64(gap)*r.DistancePenalty)
	return math.Round(s*10000) / 10000
}

// gap is the number of characters between two mentions.
func gap(a, b common.Mention) int {
	switch {
	case a.End <= b.Start:
		return b.Start - a.End
	case b.End <= a.Start:
		return a.Start - b.End
	}
	return 0
}

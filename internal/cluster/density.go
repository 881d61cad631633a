package cluster

import (
	"sort"

	"github.com/julianstephens/cadence/internal/circular"
)

// distanceSlack keeps the inclusive radius check stable against float rounding
const distanceSlack = 1e-9

const (
	labelUnvisited = -2
	labelNoise     = -1
)

// Point is an event projected onto the time-of-day circle
type Point struct {
	EventID string
	Minute  float64
}

// Strategy groups projected points into candidate clusters. Points that
// belong to no group are noise. Implementations must be deterministic for a
// given input order.
type Strategy interface {
	Group(points []Point, cfg Config) [][]Point
}

// Density is a DBSCAN grouping over the wrap-aware time-of-day distance.
type Density struct{}

// Group implements Strategy.
func (Density) Group(points []Point, cfg Config) [][]Point {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = labelUnvisited
	}

	neighbors := func(i int) []int {
		var out []int
		for j := range points {
			if circular.Distance(points[i].Minute, points[j].Minute) <= cfg.RadiusMin+distanceSlack {
				out = append(out, j)
			}
		}
		return out
	}

	var groups [][]int
	for i := range points {
		if labels[i] != labelUnvisited {
			continue
		}

		seeds := neighbors(i)
		if len(seeds) < cfg.MinNeighbors {
			labels[i] = labelNoise
			continue
		}

		id := len(groups)
		labels[i] = id
		members := []int{i}

		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			switch labels[j] {
			case labelNoise:
				// border point: reachable, but does not extend the cluster
				labels[j] = id
				members = append(members, j)
				continue
			case labelUnvisited:
			default:
				continue
			}

			labels[j] = id
			members = append(members, j)
			if next := neighbors(j); len(next) >= cfg.MinNeighbors {
				seeds = append(seeds, next...)
			}
		}

		sort.Ints(members)
		groups = append(groups, members)
	}

	out := make([][]Point, 0, len(groups))
	for _, members := range groups {
		group := make([]Point, len(members))
		for k, idx := range members {
			group[k] = points[idx]
		}
		out = append(out, group)
	}
	return out
}

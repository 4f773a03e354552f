// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package decay

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Deltas smaller than this are neutral.
const neutralTol = 1e-6

// A SiteDelta is the likelihood contribution
// of a single alignment site
// to the support of a branch.
type SiteDelta struct {
	Optimum     float64 // site log-likelihood on the optimum tree
	Constrained float64 // site log-likelihood on the constrained tree
	Delta       float64 // optimum minus constrained

	// Supports is true if the site favors the branch,
	// that is,
	// if its likelihood is better on the optimum tree.
	Supports bool
}

// A SiteDecomposition is the per-site breakdown
// of the support of a branch.
type SiteDecomposition struct {
	// Site maps a 1-based site number to its delta.
	// Only sites present in both trees are included.
	Site map[int]SiteDelta

	Supporting  int // sites with a negative delta
	Conflicting int // sites with a positive delta
	Neutral     int // sites with a delta below the tolerance

	SumSupporting  float64 // sum of supporting deltas
	SumConflicting float64 // sum of conflicting deltas

	// SupportRatio is the supporting to conflicting site count ratio.
	// It is +Inf when there is no conflicting site.
	SupportRatio float64

	// WeightedRatio is the ratio
	// of the summed supporting magnitude
	// to the summed conflicting magnitude.
	// It is +Inf when the conflicting sum is zero.
	WeightedRatio float64
}

// NewSiteDecomposition breaks down the support of a branch
// from the per-site log-likelihoods
// of the optimum and the constrained tree.
// Sites absent from either tree are ignored.
func NewSiteDecomposition(optimum, constrained map[int]float64) *SiteDecomposition {
	d := &SiteDecomposition{
		Site: make(map[int]SiteDelta, len(optimum)),
	}

	var sup, con []float64
	for s, o := range optimum {
		c, ok := constrained[s]
		if !ok {
			continue
		}
		delta := o - c
		d.Site[s] = SiteDelta{
			Optimum:     o,
			Constrained: c,
			Delta:       delta,
			Supports:    delta < 0,
		}
		switch {
		case delta < 0:
			d.Supporting++
			sup = append(sup, delta)
		case delta > 0:
			d.Conflicting++
			con = append(con, delta)
		}
		if math.Abs(delta) < neutralTol {
			d.Neutral++
		}
	}
	d.SumSupporting = floats.Sum(sup)
	d.SumConflicting = floats.Sum(con)

	if d.Conflicting == 0 {
		d.SupportRatio = math.Inf(1)
	} else {
		d.SupportRatio = float64(d.Supporting) / float64(d.Conflicting)
	}
	if d.SumConflicting <= 0 {
		d.WeightedRatio = math.Inf(1)
	} else {
		d.WeightedRatio = math.Abs(d.SumSupporting) / d.SumConflicting
	}
	return d
}

// Sites returns the site numbers of the decomposition
// in increasing order.
func (d *SiteDecomposition) Sites() []int {
	sites := make([]int, 0, len(d.Site))
	for s := range d.Site {
		sites = append(sites, s)
	}
	sort.Ints(sites)
	return sites
}

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package decay

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/js-arias/phydecay/newick"
)

// cladeKey builds an order-independent identity
// for a clade taxon set.
// The taxa are expected to be sorted.
func cladeKey(taxa []string) string {
	return strings.Join(taxa, "\x00")
}

// supportMap indexes branch records by clade identity.
func supportMap(recs []*Support) map[string]*Support {
	m := make(map[string]*Support, len(recs))
	for _, rec := range recs {
		m[cladeKey(rec.Taxa)] = rec
	}
	return m
}

// bootstrapMap extracts bootstrap support values
// from the internal node labels of a bootstrap tree,
// indexed by clade identity.
func bootstrapMap(boot *newick.Tree) map[string]float64 {
	m := make(map[string]float64)
	if boot == nil {
		return m
	}
	for _, id := range boot.Internal() {
		v, err := strconv.ParseFloat(boot.Label(id), 64)
		if err != nil {
			continue
		}
		m[cladeKey(boot.CladeTaxa(id))] = v
	}
	return m
}

// annotate copies a tree
// and labels each internal node
// whose clade matches a branch record.
// Unmatched nodes are left unlabeled.
func annotate(t *newick.Tree, recs []*Support, label func(*Support) (string, bool)) *newick.Tree {
	m := supportMap(recs)
	nt := t.Copy()
	for _, id := range nt.Internal() {
		if id == nt.Root() {
			continue
		}
		rec, ok := m[cladeKey(nt.CladeTaxa(id))]
		if !ok {
			continue
		}
		if v, ok := label(rec); ok {
			nt.SetLabel(id, v)
		}
	}
	return nt
}

// PValueTree returns a copy of a tree
// with the AU test p-value of each branch
// as its internal node label.
func PValueTree(t *newick.Tree, recs []*Support) *newick.Tree {
	return annotate(t, recs, func(rec *Support) (string, bool) {
		if rec.PValue == nil {
			return "", false
		}
		return fmt.Sprintf("%.4f", *rec.PValue), true
	})
}

// DiffTree returns a copy of a tree
// with the decay index of each branch,
// that is the magnitude of the log-likelihood difference,
// as its internal node label.
func DiffTree(t *newick.Tree, recs []*Support) *newick.Tree {
	return annotate(t, recs, func(rec *Support) (string, bool) {
		if rec.Diff == nil {
			return "", false
		}
		return fmt.Sprintf("%.4f", math.Abs(*rec.Diff)), true
	})
}

// CombinedTree returns a copy of a tree
// with every available support value of each branch
// in a single internal node label,
// in the form "BS:95|AU:0.0123|LnL:5.4321".
// The bootstrap part is only present
// when a bootstrap tree is given
// and carries the clade.
func CombinedTree(t *newick.Tree, recs []*Support, boot *newick.Tree) *newick.Tree {
	bs := bootstrapMap(boot)
	return annotate(t, recs, func(rec *Support) (string, bool) {
		var parts []string
		if v, ok := bs[cladeKey(rec.Taxa)]; ok {
			parts = append(parts, fmt.Sprintf("BS:%.0f", v))
		}
		if rec.PValue != nil {
			parts = append(parts, fmt.Sprintf("AU:%.4f", *rec.PValue))
		}
		if rec.Diff != nil {
			parts = append(parts, fmt.Sprintf("LnL:%.4f", math.Abs(*rec.Diff)))
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "|"), true
	})
}

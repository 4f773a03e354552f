// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package decay

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/js-arias/phydecay/newick"
	"gonum.org/v1/gonum/stat"
)

// unavailable is the table marker
// for a value that could not be computed.
const unavailable = "N/A"

func fmtOpt(v *float64) string {
	if v == nil {
		return unavailable
	}
	return fmt.Sprintf("%.4f", *v)
}

func fmtSig(v *bool) string {
	if v == nil {
		return unavailable
	}
	if *v {
		return "yes"
	}
	return "no"
}

// WriteTab writes the decay indices
// as a tab-delimited table.
// Unavailable values are written as "N/A".
func WriteTab(w io.Writer, lnL float64, recs []*Support, boot *newick.Tree) error {
	bw := bufio.NewWriter(w)
	bs := bootstrapMap(boot)

	fmt.Fprintf(bw, "# optimum tree log-likelihood: %.6f\n", lnL)
	fmt.Fprintf(bw, "branch\ttaxa\tconstrained_lnL\tlnL_diff\tAU_p-value\tsignificant")
	if boot != nil {
		fmt.Fprintf(bw, "\tbootstrap")
	}
	fmt.Fprintf(bw, "\tclade\n")

	for _, rec := range recs {
		fmt.Fprintf(bw, "%d\t%d\t%s\t%s\t%s\t%s",
			rec.Branch, len(rec.Taxa),
			fmtOpt(rec.ConstrainedLnL), fmtOpt(rec.Diff),
			fmtOpt(rec.PValue), fmtSig(rec.Significant))
		if boot != nil {
			v, ok := bs[cladeKey(rec.Taxa)]
			if ok {
				fmt.Fprintf(bw, "\t%.0f", v)
			} else {
				fmt.Fprintf(bw, "\t%s", unavailable)
			}
		}
		fmt.Fprintf(bw, "\t%s\n", strings.Join(rec.Taxa, ";"))
	}
	return bw.Flush()
}

// WriteReport writes a human readable summary
// of a decay index analysis
// in markdown format.
func WriteReport(w io.Writer, lnL float64, recs []*Support, boot *newick.Tree) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Branch support analysis\n\n")
	fmt.Fprintf(bw, "Optimum tree log-likelihood: %.6f\n\n", lnL)
	fmt.Fprintf(bw, "Internal branches tested: %d\n\n", len(recs))

	var diffs, pvals []float64
	sig := 0
	for _, rec := range recs {
		if rec.Diff != nil {
			diffs = append(diffs, math.Abs(*rec.Diff))
		}
		if rec.PValue != nil {
			pvals = append(pvals, *rec.PValue)
		}
		if rec.Significant != nil && *rec.Significant {
			sig++
		}
	}

	fmt.Fprintf(bw, "## Summary\n\n")
	if len(diffs) > 0 {
		min, max := diffs[0], diffs[0]
		for _, d := range diffs[1:] {
			min = math.Min(min, d)
			max = math.Max(max, d)
		}
		fmt.Fprintf(bw, "- log-likelihood differences: mean %.4f, range %.4f to %.4f\n",
			stat.Mean(diffs, nil), min, max)
	}
	if len(pvals) > 0 {
		fmt.Fprintf(bw, "- AU test p-values: mean %.4f\n", stat.Mean(pvals, nil))
		fmt.Fprintf(bw, "- branches with significant support (p < %.2f): %d of %d\n",
			alpha, sig, len(pvals))
	} else {
		fmt.Fprintf(bw, "- AU test unavailable\n")
	}
	fmt.Fprintf(bw, "\n")

	fmt.Fprintf(bw, "## Branches\n\n")
	fmt.Fprintf(bw, "| branch | taxa | constrained lnL | lnL diff | AU p-value | significant |\n")
	fmt.Fprintf(bw, "| --- | --- | --- | --- | --- | --- |\n")
	for _, rec := range recs {
		fmt.Fprintf(bw, "| %d | %d | %s | %s | %s | %s |\n",
			rec.Branch, len(rec.Taxa),
			fmtOpt(rec.ConstrainedLnL), fmtOpt(rec.Diff),
			fmtOpt(rec.PValue), fmtSig(rec.Significant))
	}
	fmt.Fprintf(bw, "\n")

	if boot != nil {
		fmt.Fprintf(bw, "Bootstrap support values are reported\n")
		fmt.Fprintf(bw, "on the combined annotated tree.\n\n")
	}
	writeSiteSummary(bw, recs)
	return bw.Flush()
}

// writeSiteSummary writes the site decomposition section
// of the report.
// It is silent when no branch has site data.
func writeSiteSummary(w io.Writer, recs []*Support) {
	has := false
	for _, rec := range recs {
		if rec.Sites != nil {
			has = true
			break
		}
	}
	if !has {
		return
	}

	fmt.Fprintf(w, "## Site analysis\n\n")
	fmt.Fprintf(w, "| branch | supporting | conflicting | neutral | ratio | weighted ratio |\n")
	fmt.Fprintf(w, "| --- | --- | --- | --- | --- | --- |\n")
	for _, rec := range recs {
		if rec.Sites == nil {
			continue
		}
		d := rec.Sites
		fmt.Fprintf(w, "| %d | %d | %d | %d | %s | %s |\n",
			rec.Branch, d.Supporting, d.Conflicting, d.Neutral,
			fmtRatio(d.SupportRatio), fmtRatio(d.WeightedRatio))
	}
	fmt.Fprintf(w, "\n")
}

func fmtRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}

// WriteSiteData writes the per-site deltas of a branch
// as a tab-delimited table.
func WriteSiteData(w io.Writer, rec *Support) error {
	if rec.Sites == nil {
		return fmt.Errorf("branch %d: no site data", rec.Branch)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# branch %d: %s\n", rec.Branch, strings.Join(rec.Taxa, ";"))
	fmt.Fprintf(bw, "site\toptimum_lnL\tconstrained_lnL\tdelta\tsupports\n")
	for _, s := range rec.Sites.Sites() {
		sd := rec.Sites.Site[s]
		supports := "no"
		if sd.Supports {
			supports = "yes"
		}
		fmt.Fprintf(bw, "%d\t%.6f\t%.6f\t%.6f\t%s\n",
			s, sd.Optimum, sd.Constrained, sd.Delta, supports)
	}
	return bw.Flush()
}

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package decay_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/js-arias/phydecay/decay"
)

func TestWriteTab(t *testing.T) {
	var buf bytes.Buffer
	if err := decay.WriteTab(&buf, -1000.0, testRecords(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"# optimum tree log-likelihood: -1000.000000\n",
		"branch\ttaxa\tconstrained_lnL\tlnL_diff\tAU_p-value\tsignificant\tclade\n",
		"2\t2\t-1005.2000\t-5.2000\t0.0100\tyes\tA;B\n",
		"3\t2\t-1000.1000\t-0.1000\t0.8000\tno\tC;D\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output without %q:\n%s", want, got)
		}
	}
}

func TestWriteTabUnavailable(t *testing.T) {
	recs := []*decay.Support{
		{Branch: 2, Taxa: []string{"A", "B"}, Diff: fPtr(-5.2), ConstrainedLnL: fPtr(-1005.2)},
	}

	var buf bytes.Buffer
	if err := decay.WriteTab(&buf, -1000.0, recs, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "2\t2\t-1005.2000\t-5.2000\tN/A\tN/A\tA;B\n") {
		t.Errorf("missing values not marked:\n%s", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := decay.WriteReport(&buf, -1000.0, testRecords(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"Optimum tree log-likelihood: -1000.000000\n",
		"Internal branches tested: 2\n",
		"- log-likelihood differences: mean 2.6500, range 0.1000 to 5.2000\n",
		"- branches with significant support (p < 0.05): 1 of 2\n",
		"| 2 | 2 | -1005.2000 | -5.2000 | 0.0100 | yes |\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report without %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Site analysis") {
		t.Errorf("site section without site data:\n%s", got)
	}
}

func TestWriteReportSites(t *testing.T) {
	recs := testRecords()
	recs[0].Sites = decay.NewSiteDecomposition(
		map[int]float64{1: -2.5, 2: -3.1, 3: -1.2},
		map[int]float64{1: -2.0, 2: -2.8, 3: -1.4},
	)

	var buf bytes.Buffer
	if err := decay.WriteReport(&buf, -1000.0, recs, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()

	if !strings.Contains(got, "## Site analysis") {
		t.Fatalf("report without site section:\n%s", got)
	}
	if !strings.Contains(got, "| 2 | 2 | 1 | 0 | 2.00 | 4.00 |\n") {
		t.Errorf("site summary row:\n%s", got)
	}
}

func TestWriteSiteData(t *testing.T) {
	rec := testRecords()[0]
	rec.Sites = decay.NewSiteDecomposition(
		map[int]float64{1: -2.5, 2: -1.2},
		map[int]float64{1: -2.0, 2: -1.4},
	)

	var buf bytes.Buffer
	if err := decay.WriteSiteData(&buf, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"# branch 2: A;B\n",
		"site\toptimum_lnL\tconstrained_lnL\tdelta\tsupports\n",
		"1\t-2.500000\t-2.000000\t-0.500000\tyes\n",
		"2\t-1.200000\t-1.400000\t0.200000\tno\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output without %q:\n%s", want, got)
		}
	}

	if err := decay.WriteSiteData(&buf, testRecords()[1]); err == nil {
		t.Errorf("expecting error without site data")
	}
}

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/phydecay/paup"
)

func TestLogLikelihood(t *testing.T) {
	blob := "Tree\t-lnL\n1\t-1234.5678\n"
	v, err := paup.LogLikelihood(strings.NewReader(blob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -1234.5678 {
		t.Errorf("likelihood: got %.4f, want %.4f", v, -1234.5678)
	}
}

func TestLogLikelihoodOverflowRow(t *testing.T) {
	blob := "Tree   -lnL\n1   **********\n2   4321.9876\n"
	v, err := paup.LogLikelihood(strings.NewReader(blob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 4321.9876 {
		t.Errorf("likelihood: got %.4f, want %.4f", v, 4321.9876)
	}
}

func TestLogLikelihoodShortRows(t *testing.T) {
	blob := "Tree  length  -lnL\n\n1\n1  12\n1  12  2345.6789\n"
	v, err := paup.LogLikelihood(strings.NewReader(blob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2345.6789 {
		t.Errorf("likelihood: got %.4f, want %.4f", v, 2345.6789)
	}
}

func TestLogLikelihoodErrors(t *testing.T) {
	tests := map[string]string{
		"no header":   "1  1234.5\n",
		"no data":     "Tree  -lnL\n",
		"only broken": "Tree  -lnL\n1  ******\n",
		"empty":       "",
	}
	for name, blob := range tests {
		if _, err := paup.LogLikelihood(strings.NewReader(blob)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

func TestLogLikelihoodFallback(t *testing.T) {
	log := []byte(`
Heuristic search completed
-ln L = 1000.1234
rearranging...
-ln L = 998.7654
`)
	v, ok := paup.LogLikelihoodFallback(log)
	if !ok {
		t.Fatalf("expecting a fallback value")
	}
	if v != 998.7654 {
		t.Errorf("fallback: got %.4f, want %.4f", v, 998.7654)
	}

	// second pattern used only when the first is absent
	v, ok = paup.LogLikelihoodFallback([]byte("final Likelihood = 750.25 reached\n"))
	if !ok {
		t.Fatalf("expecting a fallback value")
	}
	if v != 750.25 {
		t.Errorf("fallback: got %.4f, want %.4f", v, 750.25)
	}

	if _, ok := paup.LogLikelihoodFallback([]byte("nothing to see here\n")); ok {
		t.Errorf("expecting no fallback value")
	}
}

const auLog = `
AU test results:

    Tree         -ln L    Diff -ln L        AU
------------------------------------------------
       1     1000.1234        (best)    0.8120
       2     1005.4321        5.3087    0.0100*
       3     1000.2234        0.1000    0.8000

P-values marked with * are significant at P < 0.05
`

func TestAUResults(t *testing.T) {
	res, err := paup.AUResults([]byte(auLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int]paup.TreeScore{
		1: {LnL: 1000.1234, P: 0.8120},
		2: {LnL: 1005.4321, P: 0.0100},
		3: {LnL: 1000.2234, P: 0.8000},
	}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("AU results: got %v, want %v", res, want)
	}

	// parsing the same text again yields the same mapping
	again, err := paup.AUResults([]byte(auLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res, again) {
		t.Errorf("AU results are not idempotent: %v != %v", res, again)
	}
}

func TestAUResultsErrors(t *testing.T) {
	tests := map[string]string{
		"no table": "search done, no test performed\n",
		"no rows":  "Tree  -ln L  AU\n-----\nnothing\n",
	}
	for name, blob := range tests {
		if _, err := paup.AUResults([]byte(blob)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

const siteBlob = "Tree\t-lnL\tsite\tlnL\n" +
	"1\t-1000.0\t-\t-\n" +
	"\t\t1\t-2.50\n" +
	"\t\t2\t-3.10\n" +
	"\t\t3\t-1.40\n" +
	"2\t-1005.2\t-\t-\n" +
	"\t\t1\t-2.00\n" +
	"\t\t2\t-2.80\n" +
	"\t\t3\t-1.40\n"

func TestSiteLikelihoods(t *testing.T) {
	t1, t2, err := paup.SiteLikelihoods(strings.NewReader(siteBlob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want1 := map[int]float64{1: -2.50, 2: -3.10, 3: -1.40}
	want2 := map[int]float64{1: -2.00, 2: -2.80, 3: -1.40}
	if !reflect.DeepEqual(t1, want1) {
		t.Errorf("tree 1 sites: got %v, want %v", t1, want1)
	}
	if !reflect.DeepEqual(t2, want2) {
		t.Errorf("tree 2 sites: got %v, want %v", t2, want2)
	}

	if d := t1[1] - t2[1]; math.Abs(d-(-0.5)) > 1e-6 {
		t.Errorf("site 1 delta: got %.4f, want %.4f", d, -0.5)
	}
}

func TestSiteLikelihoodsErrors(t *testing.T) {
	tests := map[string]string{
		"one tree":  "1\t-1000.0\t-\t-\n\t\t1\t-2.50\n",
		"no sites":  "1\t-1000.0\t-\t-\n2\t-1005.2\t-\t-\n",
		"empty":     "",
		"free text": "this is not a site file\n",
	}
	for name, blob := range tests {
		if _, _, err := paup.SiteLikelihoods(strings.NewReader(blob)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

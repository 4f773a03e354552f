// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package newick_test

import (
	"bytes"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/phydecay/newick"
)

const tree = "((taxA:0.1,taxB:0.2):0.05,(taxC:0.3,(taxD:0.1,taxE:0.15):0.07):0.02);"

func TestParse(t *testing.T) {
	tr, err := newick.Parse(strings.NewReader(tree))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	terms := []string{"taxA", "taxB", "taxC", "taxD", "taxE"}
	if got := tr.Terms(); !reflect.DeepEqual(got, terms) {
		t.Errorf("terms: got %v, want %v", got, terms)
	}

	if got := len(tr.Internal()); got != 4 {
		t.Errorf("internal nodes: got %d, want %d", got, 4)
	}

	want := [][]string{
		{"taxA", "taxB", "taxC", "taxD", "taxE"},
		{"taxA", "taxB"},
		{"taxC", "taxD", "taxE"},
		{"taxD", "taxE"},
	}
	var got [][]string
	for _, id := range tr.Internal() {
		got = append(got, tr.CladeTaxa(id))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clades: got %v, want %v", got, want)
	}
}

func TestParseQuoted(t *testing.T) {
	tr, err := newick.Parse(strings.NewReader("('Homo sapiens':0.1,'O''Brien''s frog':0.2,taxC:0.3);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	terms := []string{"Homo sapiens", "O'Brien's frog", "taxC"}
	if got := tr.Terms(); !reflect.DeepEqual(got, terms) {
		t.Errorf("terms: got %v, want %v", got, terms)
	}
}

func TestParseTrailingMetadata(t *testing.T) {
	// inference programs may append score metadata
	// after the closing semicolon
	blob := tree + "\n[score = 1234.5]\ntree two = whatever\n"
	tr, err := newick.Parse(strings.NewReader(blob))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(tr.Terms()); got != 5 {
		t.Errorf("terms: got %d, want %d", got, 5)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no semicolon":  "(taxA:0.1,taxB:0.2)",
		"unbalanced":    "((taxA,taxB,(taxC;",
		"single leaf":   "taxA;",
		"missing taxon": "(taxA,,taxB);",
	}
	for name, blob := range tests {
		if _, err := newick.Parse(strings.NewReader(blob)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

// cladeSets returns the multiset of clade taxon sets of a tree,
// each clade as a comma-joined sorted list.
func cladeSets(t *newick.Tree) []string {
	var cs []string
	for _, id := range t.Internal() {
		cs = append(cs, strings.Join(t.CladeTaxa(id), ","))
	}
	slices.Sort(cs)
	return cs
}

func TestRoundTrip(t *testing.T) {
	trees := []string{
		tree,
		"('Homo sapiens':0.1,(taxB:0.2,'odd(name)':0.3)0.95:0.1);",
		"((a,b),(c,d),(e,(f,g)));",
	}
	for _, blob := range trees {
		tr, err := newick.Parse(strings.NewReader(blob))
		if err != nil {
			t.Fatalf("tree %q: unexpected error: %v", blob, err)
		}

		var buf bytes.Buffer
		if err := tr.Write(&buf); err != nil {
			t.Fatalf("tree %q: unexpected error: %v", blob, err)
		}

		nt, err := newick.Parse(strings.NewReader(buf.String()))
		if err != nil {
			t.Fatalf("tree %q: re-parse: %v", buf.String(), err)
		}
		if got, want := cladeSets(nt), cladeSets(tr); !reflect.DeepEqual(got, want) {
			t.Errorf("tree %q: clades: got %v, want %v", blob, got, want)
		}
		if got, want := nt.Terms(), tr.Terms(); !reflect.DeepEqual(got, want) {
			t.Errorf("tree %q: terms: got %v, want %v", blob, got, want)
		}
	}
}

func TestCopyAndLabels(t *testing.T) {
	tr, err := newick.Parse(strings.NewReader(tree))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cp := tr.Copy()
	ids := cp.Internal()
	cp.SetLabel(ids[1], "0.0123")
	if got := cp.Label(ids[1]); got != "0.0123" {
		t.Errorf("label: got %q, want %q", got, "0.0123")
	}
	if got := tr.Label(ids[1]); got != "" {
		t.Errorf("source tree mutated: label %q", got)
	}

	// labels on terminals are ignored
	for _, id := range cp.Internal() {
		for _, c := range cp.Children(id) {
			if cp.IsTerm(c) {
				cp.SetLabel(c, "nope")
				if got := cp.Label(c); got != "" {
					t.Errorf("terminal label: got %q", got)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := cp.Write(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), ")0.0123:") {
		t.Errorf("written tree without label: %q", buf.String())
	}
}

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup_test

import (
	"strings"
	"testing"

	"github.com/js-arias/phydecay/alignment"
	"github.com/js-arias/phydecay/paup"
)

func newBuilder() *paup.Builder {
	return &paup.Builder{
		Kind:    alignment.DNA,
		Model:   paup.Model{Name: "GTR+G"},
		Threads: 2,
	}
}

func TestSearchScript(t *testing.T) {
	b := newBuilder()
	s := b.Search("")

	for _, want := range []string{
		"#NEXUS",
		"begin paup;",
		"execute alignment.nex;",
		"lset nthreads=2 nst=6",
		"set criterion=likelihood;",
		"hsearch start=stepwise addseq=random nreps=10;",
		"savetrees file=ml_tree.tre format=newick brlens=yes replace=yes;",
		"lscores 1 / scorefile=ml_score.txt replace=yes;",
		"quit;",
		"end;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("search script: missing %q:\n%s", want, s)
		}
	}
}

func TestSearchScriptStartTree(t *testing.T) {
	b := newBuilder()
	s := b.Search(paup.StartTreeFile)

	for _, want := range []string{
		"gettrees file=start_tree.tre;",
		"lscores 1 / userbrlen=yes;",
		"hsearch start=current;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("search script: missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "addseq=random nreps=10") {
		t.Errorf("search script: random addition with a starting tree:\n%s", s)
	}
}

func TestSearchScriptRawBlock(t *testing.T) {
	b := newBuilder()
	b.Raw = "lset nst=6;\nset criterion=likelihood;\nhsearch;"
	s := b.Search("")

	// save and score commands appended defensively
	if !strings.Contains(s, "savetrees file=ml_tree.tre") {
		t.Errorf("raw script: missing savetrees:\n%s", s)
	}
	if !strings.Contains(s, "scorefile=ml_score.txt") {
		t.Errorf("raw script: missing lscores:\n%s", s)
	}

	b.Raw = "hsearch;\nSaveTrees file=my.tre;\nLscores 1;"
	s = b.Search("")
	if strings.Contains(s, "ml_tree.tre") {
		t.Errorf("raw script: savetrees appended over user command:\n%s", s)
	}
	if strings.Contains(s, "ml_score.txt") {
		t.Errorf("raw script: lscores appended over user command:\n%s", s)
	}
}

func TestConstraintScript(t *testing.T) {
	all := []string{"taxA", "taxB", "taxC", "taxD", "tax E"}

	b := newBuilder()
	s, ok := b.Constraint(3, []string{"taxA", "tax E"}, all)
	if !ok {
		t.Fatalf("expecting a constraint script")
	}

	for _, want := range []string{
		"constraints clade_constraint (MONOPHYLY) = ((taxA, 'tax E'));",
		"set maxtrees=100 increase=auto;",
		"hsearch start=stepwise addseq=random nreps=1;",
		"hsearch start=1 enforce=yes converse=yes constraints=clade_constraint;",
		"savetrees file=constraint_tree_3.tre",
		"lscores 1 / scorefile=constraint_score_3.txt replace=yes;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("constraint script: missing %q:\n%s", want, s)
		}
	}

	// a clade with every taxon admits no constraint
	if _, ok := b.Constraint(1, all, all); ok {
		t.Errorf("expecting no script for a full-taxon clade")
	}
}

func TestAUTestScript(t *testing.T) {
	b := newBuilder()
	trees := []string{paup.MLTreeFile, "constraint_tree_1.tre", "constraint_tree_2.tre"}
	s := b.AUTest(trees)

	for _, want := range []string{
		"gettrees file=ml_tree.tre mode=3 storebrlens=yes;",
		"gettrees file=constraint_tree_1.tre mode=7 storebrlens=yes;",
		"gettrees file=constraint_tree_2.tre mode=7 storebrlens=yes;",
		"lscores 1-3 / autest=yes scorefile=au_test_results.txt replace=yes;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("AU script: missing %q:\n%s", want, s)
		}
	}
}

func TestSiteLikesScript(t *testing.T) {
	b := newBuilder()
	s := b.SiteLikes(2, paup.MLTreeFile, paup.ConstraintTreeFile(2))

	if !strings.Contains(s, "lscores 1-2 / sitelikes=yes scorefile=site_lnl_2.txt replace=yes;") {
		t.Errorf("site script: missing site scoring:\n%s", s)
	}
}

func TestBootstrapScript(t *testing.T) {
	b := newBuilder()
	s := b.Bootstrap(250)

	for _, want := range []string{
		"bootstrap nreps=250 search=heuristic keepall=no treefile=bootstrap_trees.tre replace=yes / start=stepwise addseq=random nreps=1;",
		"savetrees file=bootstrap_trees.tre format=newick brlens=yes replace=yes supportValues=nodeLabels;",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("bootstrap script: missing %q:\n%s", want, s)
		}
	}
}

func TestTimeouts(t *testing.T) {
	if got := paup.AUTimeout(3); got.Minutes() != 30 {
		t.Errorf("AU timeout: got %v, want 30m", got)
	}
	if got := paup.AUTimeout(100); got.Minutes() != 100 {
		t.Errorf("AU timeout: got %v, want 100m", got)
	}
	if got := paup.BootstrapTimeout(10); got.Hours() != 1 {
		t.Errorf("bootstrap timeout: got %v, want 1h", got)
	}
	if got := paup.BootstrapTimeout(100); got.Minutes() != 100 {
		t.Errorf("bootstrap timeout: got %v, want 100m", got)
	}
}

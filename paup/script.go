// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup

import (
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/phydecay/alignment"
)

// A Builder assembles complete command scripts
// for the PAUP* program.
// Every script starts by loading the alignment
// and setting up the substitution model.
type Builder struct {
	Kind    alignment.Kind
	Model   Model
	Threads int

	// Raw is a user-provided command block
	// that replaces the model translation
	// and is inserted verbatim.
	// The block is assumed to set threads,
	// model and optimality criterion on its own.
	Raw string

	// Log receives model translation warnings.
	// If nil, warnings are discarded.
	Log io.Writer
}

func (b *Builder) warn() io.Writer {
	if b.Log == nil {
		return io.Discard
	}
	return b.Log
}

// setup returns the commands common to every script:
// load the alignment and set up the model.
func (b *Builder) setup() []string {
	cmds := []string{fmt.Sprintf("execute %s;", AlignmentFile)}

	if b.Raw != "" {
		cmds = append(cmds, b.Raw)
		return cmds
	}

	lset, parsModel := b.Model.Lset(b.Kind, b.warn())
	threads := b.Threads
	if threads < 1 {
		threads = 1
	}
	cmds = append(cmds,
		fmt.Sprintf("lset nthreads=%d %s", threads, strings.TrimPrefix(lset, "lset ")),
		"set criterion=likelihood;",
	)
	if b.Kind == alignment.Discrete {
		cmds = append(cmds, "options deftype=unord polytcount=minsteps;")
		if parsModel {
			cmds = append(cmds, "set parsmodel=yes;")
		}
	}
	return cmds
}

// script wraps commands into a complete NEXUS command file.
func script(cmds []string) string {
	return "#NEXUS\nbegin paup;\n" + strings.Join(cmds, "\n") + "\nquit;\nend;\n"
}

// Search returns the script for the unconstrained search.
// If startTree is not empty,
// it is the name of a tree file
// inside the working directory
// used as the starting topology;
// otherwise a random addition sequence search is made.
func (b *Builder) Search(startTree string) string {
	cmds := b.setup()

	if b.Raw == "" {
		if startTree != "" {
			cmds = append(cmds,
				fmt.Sprintf("gettrees file=%s;", startTree),
				"lscores 1 / userbrlen=yes;",
				"hsearch start=current;",
			)
		} else {
			cmds = append(cmds, "hsearch start=stepwise addseq=random nreps=10;")
		}
		cmds = append(cmds,
			fmt.Sprintf("savetrees file=%s format=newick brlens=yes replace=yes;", MLTreeFile),
			fmt.Sprintf("lscores 1 / scorefile=%s replace=yes;", MLScoreFile),
		)
		return script(cmds)
	}

	// With a raw block the search and save commands
	// are the user's responsibility;
	// append them only when missing.
	low := strings.ToLower(b.Raw)
	if !strings.Contains(low, "savetrees") {
		cmds = append(cmds, fmt.Sprintf("savetrees file=%s format=newick brlens=yes replace=yes;", MLTreeFile))
	}
	if !strings.Contains(low, "lscore") {
		cmds = append(cmds, fmt.Sprintf("lscores 1 / scorefile=%s replace=yes;", MLScoreFile))
	}
	return script(cmds)
}

// Constraint returns the script for the constrained search
// of a branch:
// a monophyly constraint is declared for the branch clade
// and the search enforces its converse,
// so the resulting tree is the best tree
// in which the clade is not present.
// It returns false when the clade contains all taxa,
// as then there is no outgroup to constrain against.
func (b *Builder) Constraint(branch int, clade, all []string) (string, bool) {
	if len(clade) == 0 || len(clade) >= len(all) {
		return "", false
	}

	quoted := make([]string, len(clade))
	for i, tax := range clade {
		quoted[i] = FormatTaxon(tax)
	}
	spec := "((" + strings.Join(quoted, ", ") + "));"

	cmds := b.setup()
	cmds = append(cmds,
		fmt.Sprintf("constraints clade_constraint (MONOPHYLY) = %s", spec),
		"set maxtrees=100 increase=auto;",
	)

	if b.Raw == "" {
		cmds = append(cmds,
			"hsearch start=stepwise addseq=random nreps=1;",
			"hsearch start=1 enforce=yes converse=yes constraints=clade_constraint;",
			fmt.Sprintf("savetrees file=%s format=newick brlens=yes replace=yes;", ConstraintTreeFile(branch)),
			fmt.Sprintf("lscores 1 / scorefile=%s replace=yes;", ConstraintScoreFile(branch)),
		)
		return script(cmds), true
	}

	low := strings.ToLower(b.Raw)
	if !strings.Contains(low, "hsearch") && !strings.Contains(low, "bandb") && !strings.Contains(low, "alltrees") {
		cmds = append(cmds, "hsearch start=stepwise addseq=random nreps=1;")
	}
	cmds = append(cmds, "hsearch start=1 enforce=yes converse=yes constraints=clade_constraint;")
	if !strings.Contains(low, "savetrees") {
		cmds = append(cmds, fmt.Sprintf("savetrees file=%s format=newick brlens=yes replace=yes;", ConstraintTreeFile(branch)))
	}
	if !strings.Contains(low, "lscore") {
		cmds = append(cmds, fmt.Sprintf("lscores 1 / scorefile=%s replace=yes;", ConstraintScoreFile(branch)))
	}
	return script(cmds), true
}

// AUTest returns the script for the joint significance test
// over a set of tree files.
// The first file must be the unconstrained tree;
// it is loaded as tree 1
// and each constrained tree follows in order.
// Branch lengths are preserved on load.
// At least two trees are required.
func (b *Builder) AUTest(trees []string) string {
	cmds := b.setup()
	cmds = append(cmds, fmt.Sprintf("gettrees file=%s mode=3 storebrlens=yes;", trees[0]))
	for _, tf := range trees[1:] {
		cmds = append(cmds, fmt.Sprintf("gettrees file=%s mode=7 storebrlens=yes;", tf))
	}
	cmds = append(cmds, fmt.Sprintf("lscores 1-%d / autest=yes scorefile=%s replace=yes;", len(trees), AUScoreFile))
	return script(cmds)
}

// SiteLikes returns the script for the per-site likelihood
// extraction of a branch:
// the unconstrained tree and the branch's constrained tree
// are loaded as trees 1 and 2
// and scored site by site.
func (b *Builder) SiteLikes(branch int, mlTree, constrTree string) string {
	cmds := b.setup()
	cmds = append(cmds,
		fmt.Sprintf("gettrees file=%s mode=3 storebrlens=yes;", mlTree),
		fmt.Sprintf("gettrees file=%s mode=7 storebrlens=yes;", constrTree),
		fmt.Sprintf("lscores 1-2 / sitelikes=yes scorefile=%s replace=yes;", SiteFile(branch)),
	)
	return script(cmds)
}

// Bootstrap returns the script for a bootstrap search
// with the given number of replicates.
// The resulting tree file carries the support values
// as node labels.
func (b *Builder) Bootstrap(replicates int) string {
	cmds := b.setup()
	cmds = append(cmds,
		fmt.Sprintf("bootstrap nreps=%d search=heuristic keepall=no treefile=%s replace=yes / start=stepwise addseq=random nreps=1;", replicates, BootTreeFile),
		fmt.Sprintf("savetrees file=%s format=newick brlens=yes replace=yes supportValues=nodeLabels;", BootTreeFile),
	)
	return script(cmds)
}

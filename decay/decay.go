// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package decay implements the computation
// of likelihood decay indices
// (i.e., Bremer support values)
// for the internal branches of a phylogenetic tree.
//
// For each branch,
// the index is the log-likelihood difference
// between the best tree that forbids the branch clade
// and the unconstrained optimum,
// with an AU test p-value
// from a joint significance test
// over all constrained trees.
package decay

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/js-arias/phydecay/alignment"
	"github.com/js-arias/phydecay/newick"
	"github.com/js-arias/phydecay/paup"
	"github.com/js-arias/phydecay/workdir"
)

// A ScriptRunner executes a command script
// of the inference program
// inside the working directory
// and returns its combined captured output.
// It is implemented by paup.Runner.
type ScriptRunner interface {
	Run(scriptFile, logFile string, timeout time.Duration) ([]byte, error)
}

// A Support is the decay index record
// of a single internal branch.
// Optional values are nil when they could not be computed;
// they are never guessed.
type Support struct {
	// Branch is the 1-based branch identifier,
	// assigned in preorder over the internal nodes
	// of the optimum tree.
	Branch int

	// Taxa is the clade taxon set of the branch,
	// in alphabetical order.
	Taxa []string

	// TreeIndex is the 1-based index
	// of the constrained tree of the branch
	// in the joint significance test.
	// It is zero if the constrained search
	// produced no tree.
	TreeIndex int

	ConstrainedLnL *float64 // log-likelihood of the constrained tree
	Diff           *float64 // constrained minus optimum log-likelihood
	PValue         *float64 // AU test p-value
	Significant    *bool    // true if PValue < 0.05

	// Rescored is true when the joint test re-scored
	// the constrained tree beyond the numeric tolerance
	// and its value replaced the constrained search score.
	Rescored bool

	// Sites is the per-site decomposition of the branch,
	// when site analysis was requested.
	Sites *SiteDecomposition
}

// Significance threshold for the AU test.
const alpha = 0.05

// Tolerance for a joint-test re-score
// to be considered a disagreement.
const rescoreTol = 1e-3

// An Engine drives a full decay index analysis.
type Engine struct {
	Align *alignment.Alignment
	Build *paup.Builder
	Run   ScriptRunner
	Dir   *workdir.Dir

	// Log receives progress notices and warnings.
	// If nil, they are discarded.
	Log io.Writer

	// StartTree is the path of a user-provided
	// starting topology.
	// If empty, or if the file does not exist,
	// the search starts from a random addition sequence.
	StartTree string

	// SiteAnalysis requests the per-site
	// likelihood decomposition of each branch.
	SiteAnalysis bool

	tree *newick.Tree
	lnL  float64
}

func (e *Engine) logf(format string, args ...any) {
	if e.Log == nil {
		return
	}
	fmt.Fprintf(e.Log, format, args...)
}

// Tree returns the unconstrained optimum tree.
// It is only valid after a successful Optimum call.
func (e *Engine) Tree() *newick.Tree {
	return e.tree
}

// LnL returns the log-likelihood
// of the unconstrained optimum tree.
// It is only valid after a successful Optimum call.
func (e *Engine) LnL() float64 {
	return e.lnL
}

// Optimum builds the unconstrained
// maximum likelihood tree.
// A failure here is fatal for the whole analysis:
// without the optimum tree and its likelihood
// no decay index can be computed.
func (e *Engine) Optimum() error {
	if err := e.writeAlignment(); err != nil {
		return err
	}

	start := ""
	if e.StartTree != "" {
		if _, err := os.Stat(e.StartTree); err == nil {
			if err := e.Dir.CopyFile(paup.StartTreeFile, e.StartTree); err != nil {
				return fmt.Errorf("decay: starting tree: %v", err)
			}
			start = paup.StartTreeFile
		} else {
			e.logf("starting tree %q not found: using random addition search\n", e.StartTree)
		}
	}

	e.logf("building maximum likelihood tree\n")
	if err := e.Dir.WriteFile(paup.MLScriptFile, []byte(e.Build.Search(start))); err != nil {
		return fmt.Errorf("decay: %v", err)
	}
	out, err := e.Run.Run(paup.MLScriptFile, paup.MLLogFile, paup.SearchTimeout)
	if err != nil {
		return fmt.Errorf("decay: unconstrained search: %v", err)
	}

	lnL, ok := e.readScore(paup.MLScoreFile, out)
	if !ok {
		return errors.New("decay: unconstrained search: likelihood unobtainable")
	}
	e.lnL = lnL

	if !e.Dir.HasFile(paup.MLTreeFile) {
		return fmt.Errorf("decay: unconstrained search: tree file %q missing or empty", paup.MLTreeFile)
	}
	t, err := e.readTree(paup.MLTreeFile)
	if err != nil {
		return fmt.Errorf("decay: unconstrained search: %v", err)
	}
	e.tree = t

	e.logf("maximum likelihood tree built: log-likelihood %.6f\n", e.lnL)
	return nil
}

// Indices computes the decay index of every testable branch
// of the optimum tree:
// one constrained search per branch,
// an optional site decomposition,
// and a single joint significance test
// over the optimum and all constrained trees.
// If the optimum tree has not been built,
// it is built first.
//
// Individual branch failures drop the branch
// with a logged reason;
// a failed joint test yields records
// with differences but without p-values.
func (e *Engine) Indices() ([]*Support, error) {
	if e.tree == nil {
		if err := e.Optimum(); err != nil {
			return nil, err
		}
	}

	all := e.tree.Terms()
	treeFiles := []string{paup.MLTreeFile}

	var recs []*Support
	internal := e.tree.Internal()
	e.logf("tree with %d internal branches to test\n", len(internal))
	for i, id := range internal {
		branch := i + 1
		taxa := e.tree.CladeTaxa(id)
		if len(taxa) <= 1 || len(taxa) >= len(all)-1 {
			e.logf("branch %d: trivial clade (%d/%d taxa): skipped\n", branch, len(taxa), len(all))
			continue
		}

		rec := e.constrained(branch, taxa, all, &treeFiles)
		if rec == nil {
			continue
		}
		if e.SiteAnalysis && rec.TreeIndex > 0 {
			e.siteAnalysis(rec)
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		e.logf("no valid constrained tree: joint test skipped\n")
		return nil, nil
	}

	res := e.auTest(treeFiles)
	if res == nil {
		e.logf("joint test failed or empty: decay indices without p-values\n")
		return recs, nil
	}
	e.applyAU(recs, res)
	return recs, nil
}

// constrained runs the constrained search of a branch
// and creates its record.
// It returns nil when the branch produced
// neither a tree nor a likelihood.
func (e *Engine) constrained(branch int, taxa, all []string, treeFiles *[]string) *Support {
	script, ok := e.Build.Constraint(branch, taxa, all)
	if !ok {
		e.logf("branch %d: clade with every taxon: no constraint possible\n", branch)
		return nil
	}

	e.logf("branch %d: constrained search (%d taxa)\n", branch, len(taxa))
	sf := paup.ConstraintScriptFile(branch)
	if err := e.Dir.WriteFile(sf, []byte(script)); err != nil {
		e.logf("branch %d: dropped: %v\n", branch, err)
		return nil
	}

	out, err := e.Run.Run(sf, paup.ConstraintLogFile(branch), paup.ConstraintTimeout)
	if err != nil {
		// the captured output might still carry a score
		e.logf("branch %d: constrained search failed: %v\n", branch, err)
	}

	lnL, hasLnL := e.readScore(paup.ConstraintScoreFile(branch), out)
	hasTree := e.Dir.HasFile(paup.ConstraintTreeFile(branch))
	if !hasTree && !hasLnL {
		e.logf("branch %d: dropped: neither tree nor likelihood produced\n", branch)
		return nil
	}

	rec := &Support{
		Branch: branch,
		Taxa:   taxa,
	}
	if hasLnL {
		diff := lnL - e.lnL
		rec.ConstrainedLnL = &lnL
		rec.Diff = &diff
	} else {
		e.logf("branch %d: constrained likelihood unavailable\n", branch)
	}
	if hasTree {
		*treeFiles = append(*treeFiles, paup.ConstraintTreeFile(branch))
		rec.TreeIndex = len(*treeFiles)
	} else {
		e.logf("branch %d: constrained tree unavailable: excluded from joint test\n", branch)
	}
	return rec
}

// siteAnalysis extracts per-site likelihoods
// for the optimum and the constrained tree of a branch
// and attaches the decomposition to the record.
// Failures only leave the record without site data.
func (e *Engine) siteAnalysis(rec *Support) {
	branch := rec.Branch
	script := e.Build.SiteLikes(branch, paup.MLTreeFile, paup.ConstraintTreeFile(branch))
	sf := paup.SiteScriptFile(branch)
	if err := e.Dir.WriteFile(sf, []byte(script)); err != nil {
		e.logf("branch %d: site analysis failed: %v\n", branch, err)
		return
	}
	if _, err := e.Run.Run(sf, paup.SiteLogFile(branch), paup.SiteTimeout); err != nil {
		e.logf("branch %d: site analysis failed: %v\n", branch, err)
		return
	}

	f, err := os.Open(e.Dir.Path(paup.SiteFile(branch)))
	if err != nil {
		e.logf("branch %d: site analysis failed: %v\n", branch, err)
		return
	}
	defer f.Close()

	opt, constr, err := paup.SiteLikelihoods(f)
	if err != nil {
		e.logf("branch %d: site analysis failed: %v\n", branch, err)
		return
	}

	rec.Sites = NewSiteDecomposition(opt, constr)
	e.logf("branch %d: %d supporting and %d conflicting sites\n",
		branch, rec.Sites.Supporting, rec.Sites.Conflicting)
}

// auTest runs the joint significance test
// over a set of tree files,
// the optimum tree first.
// With a single tree no invocation is made
// and the optimum trivially receives a p-value of 1.
// On failure it returns nil.
func (e *Engine) auTest(treeFiles []string) map[int]paup.TreeScore {
	if len(treeFiles) < 2 {
		e.logf("joint test needs at least two trees: skipped\n")
		return map[int]paup.TreeScore{
			1: {LnL: e.lnL, P: 1},
		}
	}

	e.logf("joint significance test on %d trees\n", len(treeFiles))
	if err := e.Dir.WriteFile(paup.AUScriptFile, []byte(e.Build.AUTest(treeFiles))); err != nil {
		e.logf("joint test failed: %v\n", err)
		return nil
	}

	out, err := e.Run.Run(paup.AUScriptFile, paup.AULogFile, paup.AUTimeout(len(treeFiles)))
	if err != nil {
		e.logf("joint test failed: %v\n", err)
		if len(out) == 0 {
			return nil
		}
		// the table might be in the captured output anyway
	}
	res, err := paup.AUResults(out)
	if err != nil {
		e.logf("joint test: %v\n", err)
		return nil
	}
	return res
}

// applyAU folds the joint test results
// into the branch records.
// The joint scoring is authoritative:
// all trees are scored together in a single pass,
// so their likelihoods are numerically comparable.
// Any disagreement with a constrained search score
// beyond the tolerance is surfaced in the log
// and flagged on the record.
func (e *Engine) applyAU(recs []*Support, res map[int]paup.TreeScore) {
	if opt, ok := res[1]; ok {
		if math.Abs(opt.LnL-e.lnL) > rescoreTol {
			e.logf("optimum re-scored by joint test: %.6f -> %.6f\n", e.lnL, opt.LnL)
			e.lnL = opt.LnL
			for _, rec := range recs {
				if rec.ConstrainedLnL == nil {
					continue
				}
				diff := *rec.ConstrainedLnL - e.lnL
				rec.Diff = &diff
			}
		}
	}

	for _, rec := range recs {
		if rec.TreeIndex == 0 {
			continue
		}
		ts, ok := res[rec.TreeIndex]
		if !ok {
			e.logf("branch %d: no joint test result for tree %d\n", rec.Branch, rec.TreeIndex)
			continue
		}

		p := ts.P
		sig := p < alpha
		rec.PValue = &p
		rec.Significant = &sig

		if rec.ConstrainedLnL == nil || math.Abs(*rec.ConstrainedLnL-ts.LnL) > rescoreTol {
			if rec.ConstrainedLnL != nil {
				e.logf("branch %d: constrained likelihood re-scored by joint test: %.6f -> %.6f\n",
					rec.Branch, *rec.ConstrainedLnL, ts.LnL)
				rec.Rescored = true
			}
			lnL := ts.LnL
			diff := lnL - e.lnL
			rec.ConstrainedLnL = &lnL
			rec.Diff = &diff
		}
	}
}

// Bootstrap runs a bootstrap search
// and returns the resulting tree
// with support values as node labels.
func (e *Engine) Bootstrap(replicates int) (*newick.Tree, error) {
	if err := e.writeAlignment(); err != nil {
		return nil, err
	}

	e.logf("bootstrap analysis with %d replicates\n", replicates)
	if err := e.Dir.WriteFile(paup.BootScriptFile, []byte(e.Build.Bootstrap(replicates))); err != nil {
		return nil, fmt.Errorf("decay: bootstrap: %v", err)
	}
	if _, err := e.Run.Run(paup.BootScriptFile, paup.BootLogFile, paup.BootstrapTimeout(replicates)); err != nil {
		return nil, fmt.Errorf("decay: bootstrap: %v", err)
	}
	if !e.Dir.HasFile(paup.BootTreeFile) {
		return nil, fmt.Errorf("decay: bootstrap: tree file %q missing or empty", paup.BootTreeFile)
	}
	return e.readTree(paup.BootTreeFile)
}

// writeAlignment validates the alignment
// and converts it to a NEXUS file
// inside the working directory.
// It is a no-op if the file is already in place.
func (e *Engine) writeAlignment() error {
	if e.Dir.HasFile(paup.AlignmentFile) {
		return nil
	}
	if e.Align == nil || e.Align.Len() == 0 {
		return errors.New("decay: empty alignment")
	}
	if err := e.Align.ValidateDiscrete(); err != nil {
		return fmt.Errorf("decay: %v", err)
	}

	f, err := os.Create(e.Dir.Path(paup.AlignmentFile))
	if err != nil {
		return fmt.Errorf("decay: %v", err)
	}
	defer f.Close()
	if err := paup.WriteNexus(f, e.Align); err != nil {
		return fmt.Errorf("decay: %v", err)
	}
	return nil
}

// readScore extracts a log-likelihood
// from a tabular score file,
// falling back to the captured log text
// when the file is missing or unparsable.
func (e *Engine) readScore(scoreFile string, out []byte) (float64, bool) {
	f, err := os.Open(e.Dir.Path(scoreFile))
	if err == nil {
		defer f.Close()
		if lnL, err := paup.LogLikelihood(f); err == nil {
			return lnL, true
		}
	}

	lnL, ok := paup.LogLikelihoodFallback(out)
	if ok {
		e.logf("score file %q unusable: likelihood taken from log text\n", scoreFile)
	}
	return lnL, ok
}

// readTree parses a tree file
// from the working directory.
func (e *Engine) readTree(name string) (*newick.Tree, error) {
	f, err := os.Open(e.Dir.Path(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := newick.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return t, nil
}

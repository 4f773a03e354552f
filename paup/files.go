// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup

import "fmt"

// Named files generated inside the working directory
// of an analysis run.
const (
	// The alignment converted to NEXUS.
	AlignmentFile = "alignment.nex"

	// Files of the unconstrained (maximum likelihood) search.
	MLScriptFile = "ml_search.nex"
	MLTreeFile   = "ml_tree.tre"
	MLScoreFile  = "ml_score.txt"
	MLLogFile    = "paup_ml.log"

	// A user-provided starting topology,
	// copied into the working directory.
	StartTreeFile = "start_tree.tre"

	// Files of the joint AU significance test.
	AUScriptFile = "au_test.nex"
	AUScoreFile  = "au_test_results.txt"
	AULogFile    = "paup_au.log"

	// Files of the bootstrap search.
	BootScriptFile = "bootstrap_search.nex"
	BootTreeFile   = "bootstrap_trees.tre"
	BootLogFile    = "paup_bootstrap.log"
)

// ConstraintScriptFile returns the name of the command script
// for the constrained search of a branch.
func ConstraintScriptFile(branch int) string {
	return fmt.Sprintf("constraint_search_%d.nex", branch)
}

// ConstraintTreeFile returns the name of the tree file
// saved by the constrained search of a branch.
func ConstraintTreeFile(branch int) string {
	return fmt.Sprintf("constraint_tree_%d.tre", branch)
}

// ConstraintScoreFile returns the name of the score file
// written by the constrained search of a branch.
func ConstraintScoreFile(branch int) string {
	return fmt.Sprintf("constraint_score_%d.txt", branch)
}

// ConstraintLogFile returns the name of the captured-output log
// of the constrained search of a branch.
func ConstraintLogFile(branch int) string {
	return fmt.Sprintf("paup_constraint_%d.log", branch)
}

// SiteScriptFile returns the name of the command script
// for the site-likelihood extraction of a branch.
func SiteScriptFile(branch int) string {
	return fmt.Sprintf("site_analysis_%d.nex", branch)
}

// SiteFile returns the name of the per-site likelihood file
// of a branch.
func SiteFile(branch int) string {
	return fmt.Sprintf("site_lnl_%d.txt", branch)
}

// SiteLogFile returns the name of the captured-output log
// of the site-likelihood extraction of a branch.
func SiteLogFile(branch int) string {
	return fmt.Sprintf("site_analysis_%d.log", branch)
}

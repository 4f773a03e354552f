// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package paup implements the textual command protocol
// used to drive the PAUP* program:
// model translation,
// command script building,
// program invocation,
// and parsing of its result files.
package paup

import (
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/phydecay/alignment"
)

// A Model is a substitution model description.
// The name is a model family
// optionally suffixed with rate heterogeneity flags
// (for example "GTR+G+I" or "HKY+G").
// Any explicit field always wins
// over the default derived from the family name.
type Model struct {
	Name string

	// Overrides.
	NST        int      // number of substitution classes, 0 to derive from the family
	BaseFreq   string   // base frequency policy: equal, estimate or empirical
	Rates      string   // rate heterogeneity policy: equal or gamma
	GammaShape *float64 // fixed gamma shape value
	PropInvar  *float64 // fixed proportion of invariable sites
	Protein    string   // protein model name
	ParsModel  *bool    // parsimony-informed branch lengths for discrete data
}

// a dnaFamily is the configuration fragment
// derived from a nucleotide model family name.
type dnaFamily struct {
	nst      int
	baseFreq string
}

// Supported nucleotide model families.
var dnaFamilies = map[string]dnaFamily{
	"GTR":  {nst: 6, baseFreq: "estimate"},
	"HKY":  {nst: 2, baseFreq: "estimate"},
	"K2P":  {nst: 2, baseFreq: "equal"},
	"K80":  {nst: 2, baseFreq: "equal"},
	"TN93": {nst: 2, baseFreq: "estimate"},
	"JC":   {nst: 1, baseFreq: "equal"},
	"JC69": {nst: 1, baseFreq: "equal"},
	"F81":  {nst: 1, baseFreq: "estimate"},
}

// Supported protein models.
var proteinModels = map[string]bool{
	"JTT":      true,
	"WAG":      true,
	"LG":       true,
	"DAYHOFF":  true,
	"MTREV":    true,
	"CPREV":    true,
	"BLOSUM62": true,
	"HIVB":     true,
	"HIVW":     true,
}

// Lset translates a model into the model-setup command
// of the PAUP* vocabulary
// (an "lset" command).
// It also reports whether parsimony-informed branch lengths
// should be used
// (only meaningful for discrete data).
// Warnings for unrecognized model families
// are written to the warn writer.
func (m Model) Lset(kind alignment.Kind, warn io.Writer) (lset string, parsModel bool) {
	var parts []string

	up := strings.ToUpper(m.Name)
	hasGamma := strings.Contains(up, "+G")
	hasInvar := strings.Contains(up, "+I")
	base, _, _ := strings.Cut(up, "+")

	switch kind {
	case alignment.DNA:
		nst := m.NST
		if nst == 0 {
			fam, ok := dnaFamilies[base]
			if !ok {
				fmt.Fprintf(warn, "unknown DNA model %q: defaulting to GTR (nst=6)\n", base)
				fam = dnaFamilies["GTR"]
			}
			nst = fam.nst
		}
		parts = append(parts, fmt.Sprintf("nst=%d", nst))
		switch nst {
		case 6:
			parts = append(parts, "rmatrix=estimate")
		case 2:
			parts = append(parts, "tratio=estimate")
		}

		switch {
		case m.BaseFreq != "":
			parts = append(parts, "basefreq="+m.BaseFreq)
		default:
			fq := "estimate"
			if fam, ok := dnaFamilies[base]; ok {
				fq = fam.baseFreq
			}
			parts = append(parts, "basefreq="+fq)
		}

	case alignment.Protein:
		switch {
		case m.Protein != "":
			parts = append(parts, "protein="+strings.ToLower(m.Protein))
		case proteinModels[base]:
			parts = append(parts, "protein="+strings.ToLower(base))
		default:
			fmt.Fprintf(warn, "unknown protein model %q: defaulting to JTT\n", base)
			parts = append(parts, "protein=jtt")
		}

	case alignment.Discrete:
		// the Mk model
		parts = append(parts, "nst=1")
		if m.BaseFreq != "" {
			parts = append(parts, "basefreq="+m.BaseFreq)
		} else {
			parts = append(parts, "basefreq=equal")
		}
		parsModel = true
		if m.ParsModel != nil {
			parsModel = *m.ParsModel
		}
	}

	rates := m.Rates
	if rates == "" {
		rates = "equal"
		if hasGamma {
			rates = "gamma"
		}
	}
	parts = append(parts, "rates="+rates)
	if rates == "gamma" || hasGamma {
		if m.GammaShape != nil {
			parts = append(parts, fmt.Sprintf("shape=%g", *m.GammaShape))
		} else {
			parts = append(parts, "shape=estimate")
		}
	}

	switch {
	case m.PropInvar != nil:
		parts = append(parts, fmt.Sprintf("pinvar=%g", *m.PropInvar))
	case hasInvar:
		parts = append(parts, "pinvar=estimate")
	default:
		parts = append(parts, "pinvar=0")
	}

	return "lset " + strings.Join(parts, " ") + ";", parsModel
}

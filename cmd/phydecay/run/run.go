// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements a command to compute
// the likelihood decay indices of an alignment.
package run

import (
	"fmt"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/phydecay/alignment"
	"github.com/js-arias/phydecay/decay"
	"github.com/js-arias/phydecay/newick"
	"github.com/js-arias/phydecay/paup"
	"github.com/js-arias/phydecay/workdir"
)

var Command = &command.Command{
	Usage: `run [--model <model>] [--data-type <type>] [--format <format>]
	[--paup <path>] [--threads <number>]
	[--start <tree-file>] [--paup-block <file>]
	[--site-analysis] [--bootstrap <number>]
	[--temp <dir>] [--keep]
	[--nst <number>] [--basefreq <policy>] [--rates <policy>]
	[--shape <value>] [--pinvar <value>] [--protein <model>]
	[--parsmodel <yes|no>]
	[-o|--output <prefix>] <alignment-file>`,
	Short: "compute likelihood decay indices",
	Long: `
Command run reads an alignment, builds its maximum likelihood tree with the
PAUP* program, and measures the support of each internal branch with a decay
index: the log-likelihood difference against the best tree in which the branch
clade is broken, and the p-value of an approximately unbiased (AU) test over
all trees.

The alignment file can be in FASTA (the default) or PHYLIP format, set with
the flag --format. The flag --data-type indicates the kind of the data, one of
"dna" (the default), "protein", or "discrete" for binary (0-1) characters.

The flag --model sets the substitution model, for example "GTR+G+I" (the
default), "HKY+G", or "JC". For protein data use the model name, for example
"WAG+G". The derived model setup can be refined with the flags --nst,
--basefreq, --rates, --shape, --pinvar, --protein, and --parsmodel; an
explicit flag always wins over the value derived from the model name. As an
alternative, the flag --paup-block reads a file with the literal commands used
to set up the program, replacing the model translation entirely.

The flag --paup sets the location of the PAUP* executable; by default it is
searched on the PATH. The flag --threads sets the number of threads used by
the program. The flag --start gives a tree file with the starting topology for
the search; without it, the search starts from random addition sequences.

If the flag --site-analysis is given, the per-site likelihoods of each tested
branch will be extracted and decomposed into supporting and conflicting sites.
The flag --bootstrap adds a bootstrap analysis with the indicated number of
replicates; its support values are merged into the combined annotated tree.

All intermediate files are written to a temporary directory removed at the
end of the run. With the flag --keep the directory is preserved; the flag
--temp sets its parent location and implies --keep.

The results are written to files starting with the prefix given by the flag
-o, or --output, by default "phydecay": a tab-delimited table of the indices
(<prefix>.tab), a report (<prefix>-report.md), and annotated trees with the AU
p-values (<prefix>-au.tre), the decay indices (<prefix>-delta.tre), and all
support values together (<prefix>-combined.tre). With --site-analysis, the
per-site data of each branch is written to <prefix>-sites-<branch>.tab.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modelFlag string
var dataType string
var format string
var paupPath string
var threads int
var startTree string
var paupBlock string
var siteAnalysis bool
var bootstrap int
var tempDir string
var keep bool
var nst int
var baseFreq string
var rates string
var shape float64
var pinvar float64
var protein string
var parsModel string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modelFlag, "model", "GTR+G+I", "")
	c.Flags().StringVar(&dataType, "data-type", "dna", "")
	c.Flags().StringVar(&format, "format", "fasta", "")
	c.Flags().StringVar(&paupPath, "paup", "", "")
	c.Flags().IntVar(&threads, "threads", 1, "")
	c.Flags().StringVar(&startTree, "start", "", "")
	c.Flags().StringVar(&paupBlock, "paup-block", "", "")
	c.Flags().BoolVar(&siteAnalysis, "site-analysis", false, "")
	c.Flags().IntVar(&bootstrap, "bootstrap", 0, "")
	c.Flags().StringVar(&tempDir, "temp", "", "")
	c.Flags().BoolVar(&keep, "keep", false, "")
	c.Flags().IntVar(&nst, "nst", 0, "")
	c.Flags().StringVar(&baseFreq, "basefreq", "", "")
	c.Flags().StringVar(&rates, "rates", "", "")
	c.Flags().Float64Var(&shape, "shape", -1, "")
	c.Flags().Float64Var(&pinvar, "pinvar", -1, "")
	c.Flags().StringVar(&protein, "protein", "", "")
	c.Flags().StringVar(&parsModel, "parsmodel", "", "")
	c.Flags().StringVar(&output, "output", "phydecay", "")
	c.Flags().StringVar(&output, "o", "phydecay", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting alignment file")
	}

	kind, err := dataKind(dataType)
	if err != nil {
		return c.UsageError(err.Error())
	}
	a, err := readAlignment(args[0], kind)
	if err != nil {
		return err
	}

	raw := ""
	if paupBlock != "" {
		b, err := os.ReadFile(paupBlock)
		if err != nil {
			return fmt.Errorf("on file %q: %v", paupBlock, err)
		}
		raw = string(b)
	}

	d, err := makeWorkDir()
	if err != nil {
		return err
	}
	defer d.Close()

	b := &paup.Builder{
		Kind:    kind,
		Model:   buildModel(),
		Threads: threads,
		Raw:     raw,
		Log:     c.Stderr(),
	}
	e := &decay.Engine{
		Align:        a,
		Build:        b,
		Run:          &paup.Runner{Path: paupPath, Dir: d.Name()},
		Dir:          d,
		Log:          c.Stderr(),
		StartTree:    startTree,
		SiteAnalysis: siteAnalysis,
	}

	recs, err := e.Indices()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("no internal branch could be tested")
	}

	var bt *newick.Tree
	if bootstrap > 0 {
		bt, err = e.Bootstrap(bootstrap)
		if err != nil {
			fmt.Fprintf(c.Stderr(), "bootstrap analysis failed: %v\n", err)
		}
	}

	if err := writeResults(e, recs, bt); err != nil {
		return err
	}

	d.Cleanup()
	if d.Kept() {
		fmt.Fprintf(c.Stderr(), "working files kept at %q\n", d.Name())
	}
	return nil
}

func dataKind(s string) (alignment.Kind, error) {
	switch strings.ToLower(s) {
	case "dna", "nt", "nucleotide":
		return alignment.DNA, nil
	case "protein", "aa":
		return alignment.Protein, nil
	case "discrete", "binary":
		return alignment.Discrete, nil
	}
	return "", fmt.Errorf("unknown data type %q", s)
}

func readAlignment(name string, kind alignment.Kind) (*alignment.Alignment, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := alignment.Read(f, strings.ToLower(format), kind)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return a, nil
}

func buildModel() paup.Model {
	m := paup.Model{
		Name:     modelFlag,
		NST:      nst,
		BaseFreq: baseFreq,
		Rates:    rates,
		Protein:  protein,
	}
	if shape >= 0 {
		m.GammaShape = &shape
	}
	if pinvar >= 0 {
		m.PropInvar = &pinvar
	}
	if parsModel != "" {
		v := strings.EqualFold(parsModel, "yes")
		m.ParsModel = &v
	}
	return m
}

func makeWorkDir() (*workdir.Dir, error) {
	if keep && tempDir == "" {
		tempDir = "."
	}
	if tempDir != "" {
		return workdir.NewTimestamped(tempDir)
	}
	return workdir.New("")
}

func writeResults(e *decay.Engine, recs []*decay.Support, bt *newick.Tree) error {
	if err := writeFile(output+".tab", func(f *os.File) error {
		return decay.WriteTab(f, e.LnL(), recs, bt)
	}); err != nil {
		return err
	}
	if err := writeFile(output+"-report.md", func(f *os.File) error {
		return decay.WriteReport(f, e.LnL(), recs, bt)
	}); err != nil {
		return err
	}

	trees := map[string]*newick.Tree{
		output + "-au.tre":       decay.PValueTree(e.Tree(), recs),
		output + "-delta.tre":    decay.DiffTree(e.Tree(), recs),
		output + "-combined.tre": decay.CombinedTree(e.Tree(), recs, bt),
	}
	if bt != nil {
		trees[output+"-bootstrap.tre"] = bt
	}
	for name, t := range trees {
		if err := writeFile(name, func(f *os.File) error {
			return t.Write(f)
		}); err != nil {
			return err
		}
	}

	for _, rec := range recs {
		if rec.Sites == nil {
			continue
		}
		name := fmt.Sprintf("%s-sites-%d.tab", output, rec.Branch)
		if err := writeFile(name, func(f *os.File) error {
			return decay.WriteSiteData(f, rec)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, fn func(*os.File) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

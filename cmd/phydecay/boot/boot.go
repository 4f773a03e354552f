// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package boot implements a command to run
// a standalone bootstrap analysis.
package boot

import (
	"fmt"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/phydecay/alignment"
	"github.com/js-arias/phydecay/decay"
	"github.com/js-arias/phydecay/paup"
	"github.com/js-arias/phydecay/workdir"
)

var Command = &command.Command{
	Usage: `boot [--model <model>] [--data-type <type>] [--format <format>]
	[--paup <path>] [--threads <number>]
	[-r|--replicates <number>]
	[-o|--output <file>] <alignment-file>`,
	Short: "run a bootstrap analysis",
	Long: `
Command boot reads an alignment and runs a bootstrap analysis with the PAUP*
program. The resulting consensus tree, with the bootstrap support values as
internal node labels, is written to the file indicated by the flag -o, or
--output, by default "bootstrap.tre".

The alignment file can be in FASTA (the default) or PHYLIP format, set with
the flag --format. The flag --data-type indicates the kind of the data, one of
"dna" (the default), "protein", or "discrete" for binary (0-1) characters. The
flag --model sets the substitution model, for example "GTR+G+I" (the default).

By default 100 replicates will be run; use the flag -r, or --replicates, to
set a different number. The flag --paup sets the location of the PAUP*
executable, and the flag --threads the number of threads used by the program.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modelFlag string
var dataType string
var format string
var paupPath string
var threads int
var replicates int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modelFlag, "model", "GTR+G+I", "")
	c.Flags().StringVar(&dataType, "data-type", "dna", "")
	c.Flags().StringVar(&format, "format", "fasta", "")
	c.Flags().StringVar(&paupPath, "paup", "", "")
	c.Flags().IntVar(&threads, "threads", 1, "")
	c.Flags().IntVar(&replicates, "replicates", 100, "")
	c.Flags().IntVar(&replicates, "r", 100, "")
	c.Flags().StringVar(&output, "output", "bootstrap.tre", "")
	c.Flags().StringVar(&output, "o", "bootstrap.tre", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting alignment file")
	}
	if replicates < 1 {
		return c.UsageError("invalid number of replicates")
	}

	kind, err := dataKind(dataType)
	if err != nil {
		return c.UsageError(err.Error())
	}
	a, err := readAlignment(args[0], kind)
	if err != nil {
		return err
	}

	d, err := workdir.New("")
	if err != nil {
		return err
	}
	defer d.Close()

	e := &decay.Engine{
		Align: a,
		Build: &paup.Builder{
			Kind:    kind,
			Model:   paup.Model{Name: modelFlag},
			Threads: threads,
			Log:     c.Stderr(),
		},
		Run: &paup.Runner{Path: paupPath, Dir: d.Name()},
		Dir: d,
		Log: c.Stderr(),
	}

	t, err := e.Bootstrap(replicates)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := t.Write(f); err != nil {
		return fmt.Errorf("on file %q: %v", output, err)
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

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dist implements a command to plot
// the distribution of branch support values.
package dist

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `dist [--value <column>] [--bins <number>]
	[-o|--output <file>] <results-file>`,
	Short: "plot the distribution of support values",
	Long: `
Command dist reads a tab-delimited results file, as produced by the run
command, and plots a histogram with the distribution of a support value over
all tested branches.

By default, the AU test p-values will be plotted. The flag --value sets the
plotted column, either "au" for the p-values or "diff" for the magnitude of
the log-likelihood differences. Branches without the value are ignored.

The flag --bins sets the number of histogram bins, by default 20. The plot is
saved to the file indicated by the flag -o, or --output, by default
"support.png"; the image format is taken from the file extension.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var valFlag string
var bins int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&valFlag, "value", "au", "")
	c.Flags().IntVar(&bins, "bins", 20, "")
	c.Flags().StringVar(&output, "output", "support.png", "")
	c.Flags().StringVar(&output, "o", "support.png", "")
}

// Result table columns accepted by the --value flag.
var valCols = map[string]string{
	"au":   "AU_p-value",
	"diff": "lnL_diff",
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting results file")
	}
	col, ok := valCols[strings.ToLower(valFlag)]
	if !ok {
		return c.UsageError(fmt.Sprintf("unknown value column %q", valFlag))
	}

	vals, err := readColumn(args[0], col)
	if err != nil {
		return err
	}
	if len(vals) == 0 {
		return fmt.Errorf("file %q: no values for column %q", args[0], col)
	}

	if err := makePlot(vals, col); err != nil {
		return err
	}
	return nil
}

func readColumn(name, col string) (plotter.Values, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vals plotter.Values
	colIdx := -1
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ln := sc.Text()
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		fields := strings.Split(ln, "\t")

		if colIdx < 0 {
			for i, h := range fields {
				if h == col {
					colIdx = i
					break
				}
			}
			if colIdx < 0 {
				return nil, fmt.Errorf("on file %q: column %q not found", name, col)
			}
			continue
		}

		if len(fields) <= colIdx {
			continue
		}
		v, err := strconv.ParseFloat(fields[colIdx], 64)
		if err != nil {
			// an unavailable value
			continue
		}
		vals = append(vals, math.Abs(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return vals, nil
}

func makePlot(vals plotter.Values, col string) error {
	p := plot.New()
	p.X.Label.Text = col
	p.Y.Label.Text = "branches"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("while building histogram: %v", err)
	}
	p.Add(h)

	if err := p.Save(5*vg.Inch, 3*vg.Inch, output); err != nil {
		return err
	}
	return nil
}

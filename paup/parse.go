// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Column names accepted for the likelihood column
// of a tabular score file.
var likelihoodCols = []string{"-lnl", "loglk", "likelihood", "-loglk"}

// LogLikelihood extracts a log-likelihood value
// from a tabular score file.
// It locates the header row with a recognizable
// likelihood column,
// then returns the first numeric value of that column,
// skipping rows with overflow placeholders
// or too few columns.
func LogLikelihood(r io.Reader) (float64, error) {
	sc := bufio.NewScanner(r)

	colIdx := -1
	for sc.Scan() {
		fields := strings.Fields(strings.ToLower(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		if !contains(fields, "tree") {
			continue
		}
		for _, col := range likelihoodCols {
			for i, f := range fields {
				if f == col {
					colIdx = i
					break
				}
			}
			if colIdx >= 0 {
				break
			}
		}
		if colIdx >= 0 {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	if colIdx < 0 {
		return 0, fmt.Errorf("paup: score file without a likelihood column")
	}

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) <= colIdx {
			continue
		}
		v := fields[colIdx]
		if strings.Contains(v, "*") {
			// an overflow placeholder
			continue
		}
		lnL, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		return lnL, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("paup: score file without a parsable likelihood value")
}

func contains(fields []string, s string) bool {
	for _, f := range fields {
		if f == s {
			return true
		}
	}
	return false
}

// Fallback patterns for a likelihood value
// inside free-form log text,
// in priority order.
var logPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)-ln\s*L\s*=\s*([0-9.]+)`),
	regexp.MustCompile(`(?i)likelihood\s*=\s*([0-9.]+)`),
	regexp.MustCompile(`(?i)score\s*=\s*([0-9.]+)`),
}

// LogLikelihoodFallback scans free-form log text
// for a likelihood value,
// trying an ordered list of textual patterns
// and taking the last match of the first pattern
// that matches at all.
func LogLikelihoodFallback(text []byte) (float64, bool) {
	for _, p := range logPatterns {
		m := p.FindAllSubmatch(text, -1)
		if len(m) == 0 {
			continue
		}
		last := m[len(m)-1]
		v, err := strconv.ParseFloat(string(last[1]), 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// A TreeScore is the result of the joint significance test
// for a single tree.
type TreeScore struct {
	LnL float64 // log-likelihood as re-scored by the test
	P   float64 // AU test p-value
}

// AUResults parses the per-tree p-value table
// from the textual output of a joint significance test.
// The mapping is keyed by the 1-based tree index;
// tree 1 is the unconstrained optimum by construction.
func AUResults(text []byte) (map[int]TreeScore, error) {
	lines := strings.Split(string(text), "\n")

	head := -1
	for i, ln := range lines {
		fields := strings.Fields(strings.ToLower(ln))
		if contains(fields, "tree") && contains(fields, "au") {
			head = i
			break
		}
	}
	if head < 0 {
		return nil, fmt.Errorf("paup: output without an AU test table")
	}

	res := make(map[int]TreeScore)
	for _, ln := range lines[head+1:] {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.Trim(ln, "-") == "" {
			continue
		}
		fields := strings.Fields(ln)
		if len(fields) < 3 {
			continue
		}

		tree, err := strconv.Atoi(fields[0])
		if err != nil {
			// past the end of the table
			if len(res) > 0 {
				break
			}
			continue
		}
		lnL, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		// the p-value is the last column,
		// possibly carrying a significance marker
		p, err := strconv.ParseFloat(strings.TrimRight(fields[len(fields)-1], "*~"), 64)
		if err != nil {
			continue
		}
		res[tree] = TreeScore{LnL: lnL, P: p}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("paup: AU test table without parsable rows")
	}
	return res, nil
}

// Patterns of the per-site likelihood file:
// a header line with the tree index and its total likelihood,
// followed by indented site-likelihood pairs.
var (
	siteTreeHeader = regexp.MustCompile(`(\d+)\t([-\d.]+)\t-\t-`)
	siteLnLLine    = regexp.MustCompile(`\t\t(\d+)\t([-\d.]+)`)
)

// SiteLikelihoods parses a per-site likelihood file
// containing exactly two trees
// (the unconstrained tree and one constrained tree)
// and returns one site-to-likelihood mapping per tree.
func SiteLikelihoods(r io.Reader) (tree1, tree2 map[int]float64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	content := string(b)

	headers := siteTreeHeader.FindAllStringSubmatchIndex(content, -1)
	if len(headers) < 2 {
		return nil, nil, fmt.Errorf("paup: site likelihood file with %d tree sections, want 2", len(headers))
	}

	maps := []map[int]float64{
		make(map[int]float64),
		make(map[int]float64),
	}
	for i, h := range headers[:2] {
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		section := content[h[1]:end]

		for _, m := range siteLnLLine.FindAllStringSubmatch(section, -1) {
			site, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			lnL, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			maps[i][site] = lnL
		}
	}

	if len(maps[0]) == 0 || len(maps[1]) == 0 {
		return nil, nil, fmt.Errorf("paup: site likelihood file without site data")
	}
	return maps[0], maps[1], nil
}

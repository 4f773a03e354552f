// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package alignment

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read reads an alignment from a reader
// in the indicated format.
// Valid formats are "fasta" and "phylip".
func Read(r io.Reader, format string, kind Kind) (*Alignment, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid data kind %q", kind)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "fasta":
		return readFasta(r, kind)
	case "phylip":
		return readPhylip(r, kind)
	}
	return nil, fmt.Errorf("unknown alignment format %q", format)
}

func readFasta(r io.Reader, kind Kind) (*Alignment, error) {
	a := New(kind)

	var taxon string
	var seq strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, ">") {
			if taxon != "" {
				if err := a.Add(taxon, seq.String()); err != nil {
					return nil, err
				}
			}
			fields := strings.Fields(ln[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("fasta: record without a name")
			}
			taxon = fields[0]
			seq.Reset()
			continue
		}
		if taxon == "" {
			return nil, fmt.Errorf("fasta: sequence data before first record")
		}
		seq.WriteString(strings.Join(strings.Fields(ln), ""))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if taxon != "" {
		if err := a.Add(taxon, seq.String()); err != nil {
			return nil, err
		}
	}
	if a.Len() == 0 {
		return nil, fmt.Errorf("fasta: empty alignment")
	}
	return a, nil
}

func readPhylip(r io.Reader, kind Kind) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("phylip: empty file")
	}
	head := strings.Fields(sc.Text())
	if len(head) < 2 {
		return nil, fmt.Errorf("phylip: expecting taxon and site numbers on header")
	}
	nTax, err := strconv.Atoi(head[0])
	if err != nil {
		return nil, fmt.Errorf("phylip: header: %v", err)
	}
	nSites, err := strconv.Atoi(head[1])
	if err != nil {
		return nil, fmt.Errorf("phylip: header: %v", err)
	}

	// First block defines the taxon names,
	// any further block is interleaved sequence data
	// appended in taxon order.
	var taxa []string
	seq := make(map[string]*strings.Builder)
	block := 0
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}

		if len(taxa) < nTax {
			fields := strings.Fields(ln)
			if len(fields) < 2 {
				return nil, fmt.Errorf("phylip: taxon %q: expecting sequence data", ln)
			}
			tax := fields[0]
			taxa = append(taxa, tax)
			seq[tax] = &strings.Builder{}
			seq[tax].WriteString(strings.Join(fields[1:], ""))
			continue
		}

		tax := taxa[block%nTax]
		seq[tax].WriteString(strings.Join(strings.Fields(ln), ""))
		block++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(taxa) != nTax {
		return nil, fmt.Errorf("phylip: got %d taxa, want %d", len(taxa), nTax)
	}

	a := New(kind)
	for _, tax := range taxa {
		s := seq[tax].String()
		if len(s) != nSites {
			return nil, fmt.Errorf("phylip: taxon %q: got %d sites, want %d", tax, len(s), nSites)
		}
		if err := a.Add(tax, s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

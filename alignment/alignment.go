// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package alignment provides an in-memory representation
// of a multiple sequence alignment.
//
// An alignment is an ordered collection
// of taxon-sequence pairs,
// all sequences of the same length.
// It is immutable after load.
package alignment

import (
	"fmt"
	"strings"
)

// Kind is the kind of data
// stored in an alignment.
type Kind string

// Valid data kinds.
const (
	// Nucleotide sequences.
	DNA Kind = "dna"

	// Amino acid sequences.
	Protein Kind = "protein"

	// Binary discrete characters
	// (morphological or presence-absence data).
	Discrete Kind = "discrete"
)

// IsValid returns true for a recognized data kind.
func (k Kind) IsValid() bool {
	switch k {
	case DNA, Protein, Discrete:
		return true
	}
	return false
}

// An Alignment is a multiple sequence alignment.
type Alignment struct {
	kind  Kind
	taxa  []string
	seq   map[string]string
	sites int
}

// New creates a new empty alignment
// for the indicated kind of data.
func New(kind Kind) *Alignment {
	return &Alignment{
		kind: kind,
		seq:  make(map[string]string),
	}
}

// Add adds a taxon and its sequence to an alignment.
// The taxon must be unique
// and the sequence must have the same length
// as any previously added sequence.
func (a *Alignment) Add(taxon, seq string) error {
	taxon = strings.Join(strings.Fields(taxon), " ")
	if taxon == "" {
		return fmt.Errorf("empty taxon name")
	}
	if _, dup := a.seq[taxon]; dup {
		return fmt.Errorf("taxon %q: repeated taxon", taxon)
	}
	if seq == "" {
		return fmt.Errorf("taxon %q: empty sequence", taxon)
	}
	if a.sites > 0 && len(seq) != a.sites {
		return fmt.Errorf("taxon %q: got %d sites, want %d", taxon, len(seq), a.sites)
	}

	if a.sites == 0 {
		a.sites = len(seq)
	}
	a.taxa = append(a.taxa, taxon)
	a.seq[taxon] = seq
	return nil
}

// Kind returns the kind of data
// stored in the alignment.
func (a *Alignment) Kind() Kind {
	return a.kind
}

// Len returns the number of taxa in the alignment.
func (a *Alignment) Len() int {
	return len(a.taxa)
}

// Sites returns the number of sites
// (i.e., aligned columns)
// in the alignment.
func (a *Alignment) Sites() int {
	return a.sites
}

// Taxa returns the taxon names of the alignment
// in their original order.
func (a *Alignment) Taxa() []string {
	taxa := make([]string, len(a.taxa))
	copy(taxa, a.taxa)
	return taxa
}

// Sequence returns the sequence of a taxon.
func (a *Alignment) Sequence(taxon string) string {
	taxon = strings.Join(strings.Fields(taxon), " ")
	return a.seq[taxon]
}

// discreteSymbols are the residues accepted
// for binary discrete data.
const discreteSymbols = "01-?"

// ValidateDiscrete checks that all sequences
// of a discrete alignment contain only the characters
// '0', '1', '-' and '?'.
func (a *Alignment) ValidateDiscrete() error {
	if a.kind != Discrete {
		return nil
	}
	for _, tax := range a.taxa {
		seq := a.seq[tax]
		for _, r := range seq {
			if !strings.ContainsRune(discreteSymbols, r) {
				return fmt.Errorf("taxon %q: invalid discrete character %q", tax, r)
			}
		}
	}
	return nil
}

// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/phydecay/alignment"
)

// characters that require quoting a taxon name
// in the PAUP* vocabulary.
const taxonSpecial = " \t\n\r()[]{}/\\,;=*`\"'<>:"

// FormatTaxon returns a taxon name
// formatted for a PAUP* command or data block.
// Names containing whitespace or special characters
// are single-quoted;
// single quotes inside a name are replaced by underscores.
func FormatTaxon(name string) string {
	if !strings.ContainsAny(name, taxonSpecial) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "_") + "'"
}

// WriteNexus writes an alignment
// as a NEXUS data file
// readable by PAUP*.
func WriteNexus(w io.Writer, a *alignment.Alignment) error {
	bw := bufio.NewWriter(w)

	dt := "DNA"
	switch a.Kind() {
	case alignment.Protein:
		dt = "PROTEIN"
	case alignment.Discrete:
		dt = "STANDARD"
	}

	fmt.Fprintf(bw, "#NEXUS\n\n")
	fmt.Fprintf(bw, "BEGIN DATA;\n")
	fmt.Fprintf(bw, "  DIMENSIONS NTAX=%d NCHAR=%d;\n", a.Len(), a.Sites())
	fmt.Fprintf(bw, "  FORMAT DATATYPE=%s MISSING=? GAP=- INTERLEAVE=NO", dt)
	if a.Kind() == alignment.Discrete {
		fmt.Fprintf(bw, " SYMBOLS=\"01\"")
	}
	fmt.Fprintf(bw, ";\n")
	fmt.Fprintf(bw, "  MATRIX\n")
	for _, tax := range a.Taxa() {
		fmt.Fprintf(bw, "  %s %s\n", FormatTaxon(tax), a.Sequence(tax))
	}
	fmt.Fprintf(bw, "  ;\nEND;\n")

	if a.Kind() == alignment.Discrete {
		fmt.Fprintf(bw, "\nBEGIN ASSUMPTIONS;\n")
		fmt.Fprintf(bw, "  OPTIONS DEFTYPE=UNORD POLYTCOUNT=MINSTEPS;\n")
		fmt.Fprintf(bw, "END;\n")
	}

	return bw.Flush()
}

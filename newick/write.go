// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package newick

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// special characters that require a quoted label.
const special = " \t\n\r()[]{}/\\,;=*`\"'<>:"

// Quote returns a label quoted for Newick notation
// when the label contains whitespace
// or any character with a structural meaning.
func Quote(label string) string {
	if !strings.ContainsAny(label, special) {
		return label
	}
	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}

// Write writes a tree in Newick notation.
func (t *Tree) Write(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	t.writeNode(bw, t.Root())
	bw.WriteString(";\n")
	return bw.Flush()
}

func (t *Tree) writeNode(bw *bufio.Writer, id int) {
	n := t.nodes[id]
	if len(n.children) == 0 {
		bw.WriteString(Quote(n.taxon))
	} else {
		bw.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				bw.WriteByte(',')
			}
			t.writeNode(bw, c)
		}
		bw.WriteByte(')')
		if n.label != "" {
			bw.WriteString(Quote(n.label))
		}
	}
	if n.hasLen {
		bw.WriteByte(':')
		bw.WriteString(strconv.FormatFloat(n.brLen, 'g', -1, 64))
	}
}

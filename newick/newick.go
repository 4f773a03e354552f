// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package newick provides a phylogenetic tree
// read and written in Newick notation.
//
// Nodes are addressed by IDs,
// assigned in preorder from the root.
// Terminals are labeled with taxon names;
// internal nodes can receive a free label
// used for branch support annotations.
package newick

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// A Tree is a rooted phylogenetic tree
// with labeled terminals.
type Tree struct {
	nodes []*node
}

type node struct {
	id       int
	parent   int
	children []int
	taxon    string
	label    string
	brLen    float64
	hasLen   bool
}

// Parse reads the first tree found on a reader.
// Any content after the closing semicolon
// (for example score metadata added by an inference program)
// is ignored.
func Parse(r io.Reader) (*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := string(b)

	p := &parser{s: s}
	p.skipSpaces()
	if p.pos >= len(p.s) {
		return nil, fmt.Errorf("newick: empty tree")
	}

	t := &Tree{}
	if _, err := p.readNode(t, -1); err != nil {
		return nil, fmt.Errorf("newick: %v", err)
	}
	p.skipSpaces()
	if p.pos >= len(p.s) || p.s[p.pos] != ';' {
		return nil, fmt.Errorf("newick: expecting %q", ";")
	}
	if len(t.Terms()) < 2 {
		return nil, fmt.Errorf("newick: tree with less than two terminals")
	}
	return t, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.s) {
		r := p.s[p.pos]
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return
		}
		p.pos++
	}
}

func (p *parser) readNode(t *Tree, parent int) (int, error) {
	p.skipSpaces()
	if p.pos >= len(p.s) {
		return 0, fmt.Errorf("unexpected end of tree")
	}

	n := &node{
		id:     len(t.nodes),
		parent: parent,
	}
	t.nodes = append(t.nodes, n)

	if p.s[p.pos] == '(' {
		p.pos++
		for {
			c, err := p.readNode(t, n.id)
			if err != nil {
				return 0, err
			}
			n.children = append(n.children, c)

			p.skipSpaces()
			if p.pos >= len(p.s) {
				return 0, fmt.Errorf("unexpected end of tree")
			}
			if p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.s[p.pos] == ')' {
				p.pos++
				break
			}
			return 0, fmt.Errorf("unexpected character %q", p.s[p.pos])
		}
		// an internal node label
		if lb := p.readLabel(); lb != "" {
			n.label = lb
		}
	} else {
		tax := p.readLabel()
		if tax == "" {
			return 0, fmt.Errorf("expecting taxon name")
		}
		n.taxon = tax
	}

	p.skipSpaces()
	if p.pos < len(p.s) && p.s[p.pos] == ':' {
		p.pos++
		v, err := p.readNumber()
		if err != nil {
			return 0, err
		}
		n.brLen = v
		n.hasLen = true
	}
	return n.id, nil
}

func (p *parser) readLabel() string {
	p.skipSpaces()
	if p.pos >= len(p.s) {
		return ""
	}

	if p.s[p.pos] == '\'' {
		p.pos++
		var b strings.Builder
		for p.pos < len(p.s) {
			if p.s[p.pos] == '\'' {
				if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
					b.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				break
			}
			b.WriteByte(p.s[p.pos])
			p.pos++
		}
		return b.String()
	}

	start := p.pos
	for p.pos < len(p.s) {
		if strings.IndexByte("(),:; \t\n\r[", p.s[p.pos]) >= 0 {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) readNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.s) {
		r := p.s[p.pos]
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return 0, fmt.Errorf("expecting branch length")
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid branch length %q", p.s[start:p.pos])
	}
	return v, nil
}

// Root returns the ID of the root node.
func (t *Tree) Root() int {
	return 0
}

// Len returns the number of nodes of the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Parent returns the ID of the parent of a node.
// It is -1 for the root.
func (t *Tree) Parent(id int) int {
	if id < 0 || id >= len(t.nodes) {
		return -1
	}
	return t.nodes[id].parent
}

// Children returns the IDs of the children of a node.
func (t *Tree) Children(id int) []int {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}
	return slices.Clone(t.nodes[id].children)
}

// IsTerm returns true if a node is a terminal.
func (t *Tree) IsTerm(id int) bool {
	if id < 0 || id >= len(t.nodes) {
		return false
	}
	return len(t.nodes[id].children) == 0
}

// Taxon returns the taxon name of a terminal node.
func (t *Tree) Taxon(id int) string {
	if id < 0 || id >= len(t.nodes) {
		return ""
	}
	return t.nodes[id].taxon
}

// Label returns the label of an internal node.
func (t *Tree) Label(id int) string {
	if id < 0 || id >= len(t.nodes) {
		return ""
	}
	return t.nodes[id].label
}

// SetLabel sets the label of an internal node.
func (t *Tree) SetLabel(id int, label string) {
	if id < 0 || id >= len(t.nodes) {
		return
	}
	if t.IsTerm(id) {
		return
	}
	t.nodes[id].label = label
}

// BranchLen returns the branch length of a node
// and false if the length was not defined.
func (t *Tree) BranchLen(id int) (float64, bool) {
	if id < 0 || id >= len(t.nodes) {
		return 0, false
	}
	return t.nodes[id].brLen, t.nodes[id].hasLen
}

// Terms returns the taxon names of the tree
// in alphabetical order.
func (t *Tree) Terms() []string {
	var terms []string
	for _, n := range t.nodes {
		if n.taxon != "" {
			terms = append(terms, n.taxon)
		}
	}
	slices.Sort(terms)
	return terms
}

// Internal returns the IDs of the internal nodes
// in preorder.
func (t *Tree) Internal() []int {
	var ids []int
	for _, n := range t.nodes {
		if len(n.children) > 0 {
			ids = append(ids, n.id)
		}
	}
	return ids
}

// CladeTaxa returns the taxon names
// of all terminals descending from a node,
// in alphabetical order.
func (t *Tree) CladeTaxa(id int) []string {
	if id < 0 || id >= len(t.nodes) {
		return nil
	}

	var taxa []string
	stack := []int{id}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if n.taxon != "" {
			taxa = append(taxa, n.taxon)
		}
		stack = append(stack, n.children...)
	}
	slices.Sort(taxa)
	return taxa
}

// Copy returns a structural copy of a tree.
// Labels are not copied,
// so the copy can be annotated
// without mutating the source tree.
func (t *Tree) Copy() *Tree {
	nt := &Tree{nodes: make([]*node, len(t.nodes))}
	for i, n := range t.nodes {
		nt.nodes[i] = &node{
			id:       n.id,
			parent:   n.parent,
			children: slices.Clone(n.children),
			taxon:    n.taxon,
			brLen:    n.brLen,
			hasLen:   n.hasLen,
		}
	}
	return nt
}

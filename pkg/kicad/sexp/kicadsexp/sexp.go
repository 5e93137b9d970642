// Package kicadsexp is a streaming S-expression reader for KiCad board
// files. Quoted strings and bare atoms both come back as Symbol; lists
// come back as *List.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp is an S-expression node: an atom or a list.
type Sexp interface {
	// IsLeaf reports whether the node is an atom.
	IsLeaf() bool
	// LeafCount is the number of list elements (1 for atoms).
	LeafCount() int
	// Head is the first list element, or the atom itself.
	Head() Sexp
	// Tail is the list without its first element, nil when nothing remains.
	Tail() Sexp
	String() string
}

// Symbol is an atom: identifier, number or unquoted string contents.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// List is a parenthesised sequence.
type List struct {
	elements []Sexp
	// Line is the input line of the opening parenthesis.
	Line int
}

// NewList builds a list from elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool   { return false }
func (l *List) LeafCount() int { return len(l.elements) }

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:], Line: l.Line}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len is the number of elements.
func (l *List) Len() int {
	return len(l.elements)
}

// Elements returns the list contents. The slice must not be modified.
func (l *List) Elements() []Sexp {
	return l.elements
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString reads every top-level expression from s.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

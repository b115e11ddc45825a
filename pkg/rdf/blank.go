package rdf

import (
	"strconv"
	"sync/atomic"
)

// Process-wide counters. They only guarantee freshness; identity is scoped
// by BlankNodeScope.
var (
	anonCounter  atomic.Uint64
	labelCounter atomic.Uint64
)

// NewAnonymousBlankNode allocates a fresh ANON<n> blank node.
func NewAnonymousBlankNode() BlankNode {
	return NewBlankNode("ANON" + strconv.FormatUint(anonCounter.Add(1), 10))
}

// FreshLabel returns label_<n> for a process-wide n.
func FreshLabel(label string) string {
	return label + "_" + strconv.FormatUint(labelCounter.Add(1), 10)
}

// BlankNodeScope interns blank node labels for a single parse or merge
// operation. The same label maps to the same node within one scope and to
// distinct nodes across scopes. A scope is not safe for concurrent use.
type BlankNodeScope struct {
	labels map[string]BlankNode
}

func NewBlankNodeScope() *BlankNodeScope {
	return &BlankNodeScope{labels: make(map[string]BlankNode)}
}

// Resolve returns the node allocated for label, allocating it on first use.
func (s *BlankNodeScope) Resolve(label string) BlankNode {
	if b, ok := s.labels[label]; ok {
		return b
	}
	b := NewBlankNode(FreshLabel(label))
	s.labels[label] = b
	return b
}

// Anonymous allocates an unlabeled node; it is never returned by Resolve.
func (s *BlankNodeScope) Anonymous() BlankNode {
	return NewAnonymousBlankNode()
}

// Len returns the number of interned labels.
func (s *BlankNodeScope) Len() int {
	return len(s.labels)
}

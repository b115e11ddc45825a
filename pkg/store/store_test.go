package store

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/ligature/pkg/ntriples"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

var (
	exS = rdf.NewNamedNode("http://ex/s")
	exP = rdf.NewNamedNode("http://ex/p")
	exQ = rdf.NewNamedNode("http://ex/q")
	exO = rdf.NewNamedNode("http://ex/o")
)

func load(t *testing.T, s *Store, text string) {
	t.Helper()
	scratch := New()
	err := ntriples.ParseFunc(text, func(stmt rdf.Statement) error {
		scratch.Add(stmt)
		return nil
	})
	require.NoError(t, err)
	s.AddModel(scratch)
}

func TestSingleStatementCounts(t *testing.T) {
	s := New()
	stmts, err := ntriples.ParseAll(`<http://ex/s> <http://ex/p> <http://ex/o> .`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	s.Add(stmts[0])

	assert.Len(t, s.Subjects(), 2)
	assert.Len(t, s.Predicates(), 1)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.HasSubject(exO))
	assert.Empty(t, s.StatementsFor(exO))
}

func TestAddStatementIsIdempotent(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, rdf.NewLiteral("v"))
	before := s.StatementsFor(exS)
	s.AddStatement(exS, exP, rdf.NewLiteral("v"))

	assert.Equal(t, before, s.StatementsFor(exS))
	assert.Equal(t, 1, s.Len())
}

func TestLiteralObjectsAreNotSubjects(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, rdf.NewLangLiteral("v", "en"))
	assert.Equal(t, []rdf.Node{exS}, s.Subjects())
	assert.Equal(t, []rdf.Literal{rdf.NewLangLiteral("v", "en")}, s.Literals())
}

func TestRemoveSubjectCascades(t *testing.T) {
	s := New()
	x := rdf.NewNamedNode("http://ex/x")
	s.AddStatement(exS, exP, x)
	s.AddStatement(exS, exQ, rdf.NewLiteral("keep"))
	s.AddStatement(x, exP, exO)

	s.RemoveSubject(x)

	assert.False(t, s.HasSubject(x))
	assert.False(t, s.Contains(exS, exP, x))
	assert.True(t, s.Contains(exS, exQ, rdf.NewLiteral("keep")))
	for stmt := range s.Statements() {
		assert.NotEqual(t, rdf.Term(x), stmt.Object)
	}
}

func TestRemoveStatement(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, exO)
	s.RemoveStatement(exS, exP, exO)
	s.RemoveStatement(exQ, exP, exO) // missing subject is a no-op

	assert.Equal(t, 0, s.Len())
	assert.True(t, s.HasSubject(exS))
	assert.NotNil(t, s.StatementsFor(exS))
	assert.Nil(t, s.StatementsFor(exQ))
}

func TestAccessors(t *testing.T) {
	s := New()
	b := rdf.NewBlankNode("b")
	s.AddStatement(exS, exP, exO)
	s.AddStatement(exS, exQ, b)
	s.AddStatement(b, exP, rdf.NewIntegerLiteral("1"))

	assert.ElementsMatch(t, []rdf.Node{exS, exO, b}, s.Subjects())
	assert.ElementsMatch(t, []rdf.NamedNode{exP, exQ}, s.Predicates())
	assert.ElementsMatch(t, []rdf.Term{exO, b, rdf.NewIntegerLiteral("1")}, s.Objects())
	assert.ElementsMatch(t, []rdf.NamedNode{exS, exO, exP, exQ}, s.IRIs())
	assert.Equal(t, []rdf.Literal{rdf.NewIntegerLiteral("1")}, s.Literals())
}

func TestMergeRenamesBlankNodes(t *testing.T) {
	doc := `_:a <http://ex/p> _:b .
_:b <http://ex/p> "x" .`

	s := New()
	load(t, s, doc)
	load(t, s, doc)

	var blanks []rdf.BlankNode
	for _, subject := range s.Subjects() {
		if b, ok := subject.(rdf.BlankNode); ok {
			blanks = append(blanks, b)
		}
	}
	require.Len(t, blanks, 4)
	for _, b := range blanks {
		assert.NotEqual(t, "a", b.Label)
		assert.NotEqual(t, "b", b.Label)
	}
	assert.Equal(t, 4, s.Len())

	// graph shape survives the rename
	for _, b := range blanks {
		for _, pair := range s.StatementsFor(b) {
			if next, ok := pair.Object.(rdf.BlankNode); ok {
				assert.True(t, s.HasSubject(next))
				assert.Len(t, s.StatementsFor(next), 1)
			}
		}
	}
}

func TestMergeDoesNotTouchSource(t *testing.T) {
	src := New()
	src.AddStatement(rdf.NewBlankNode("x"), exP, exO)
	dst := New()
	dst.AddModel(src)

	assert.True(t, src.HasSubject(rdf.NewBlankNode("x")))
	assert.False(t, dst.HasSubject(rdf.NewBlankNode("x")))
	assert.Equal(t, 1, dst.Len())
	assert.True(t, dst.HasSubject(exO))
}

func TestMergeKeepsEmptySubjects(t *testing.T) {
	src := New()
	src.AddSubject(exS)
	dst := New()
	dst.AddModel(src)
	assert.True(t, dst.HasSubject(exS))
}

func TestMatch(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, exO)
	s.AddStatement(exS, exQ, rdf.NewLiteral("v"))
	s.AddStatement(exO, exP, exS)

	tests := []struct {
		name     string
		pattern  Pattern
		expected int
	}{
		{"wildcard", Pattern{}, 3},
		{"subject", Pattern{Subject: exS}, 2},
		{"predicate", Pattern{Predicate: exP}, 2},
		{"object", Pattern{Object: rdf.NewLiteral("v")}, 1},
		{"all bound", Pattern{Subject: exO, Predicate: exP, Object: exS}, 1},
		{"unknown subject", Pattern{Subject: exQ}, 0},
		{"literal subject", Pattern{Subject: rdf.NewLiteral("v")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(s.Match(tt.pattern))
			assert.Len(t, got, tt.expected)
			for _, stmt := range got {
				assert.True(t, tt.pattern.Matches(stmt))
			}
		})
	}
}

func TestMatchCopiesOnlyMatches(t *testing.T) {
	s := New()
	for i := range 100 {
		s.AddStatement(rdf.NewNamedNode(fmt.Sprintf("http://ex/s%d", i)), exP, rdf.NewIntegerLiteral(fmt.Sprint(i)))
	}
	s.AddStatement(exS, exQ, exO)

	captured := s.matching(Pattern{Predicate: exQ})
	assert.Len(t, captured, 1)
	assert.Equal(t, rdf.NewStatement(exS, exQ, exO), captured[0])

	assert.Len(t, s.matching(Pattern{Object: rdf.NewIntegerLiteral("42")}), 1)
	assert.Empty(t, s.matching(Pattern{Subject: exS, Predicate: exP}))
}

func TestStatementsIsASnapshot(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, exO)
	seq := s.Statements()
	s.AddStatement(exS, exQ, exO)

	assert.Len(t, slices.Collect(seq), 1)
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.AddStatement(exS, exP, exO)
	c := s.Clone()
	c.AddStatement(exS, exQ, exO)
	c.RemoveStatement(exS, exP, exO)

	assert.True(t, s.Contains(exS, exP, exO))
	assert.False(t, s.Contains(exS, exQ, exO))
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				subject := rdf.NewNamedNode(fmt.Sprintf("http://ex/s%d", w))
				s.AddStatement(subject, exP, rdf.NewIntegerLiteral(fmt.Sprint(i)))
				_ = s.Subjects()
				_ = slices.Collect(s.Match(Pattern{Subject: subject}))
			}
		}(w)
	}
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := New()
			scratch.AddStatement(rdf.NewBlankNode("m"), exP, exO)
			for i := 0; i < 50; i++ {
				s.AddModel(scratch)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*100+4*50, s.Len())
}

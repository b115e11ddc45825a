package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/ligature/pkg/ligature"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
	"github.com/aleksaelezovic/ligature/pkg/store"
)

var (
	people = rdf.NewNamedNode("http://ex/people")
	alice  = rdf.NewNamedNode("http://ex/alice")
	knows  = rdf.NewNamedNode("http://ex/knows")
	label  = rdf.NewNamedNode("http://ex/label")
)

func sampleStore() *store.Store {
	s := store.New()
	bob := rdf.NewBlankNode("bob_1")
	s.AddStatement(alice, knows, bob)
	s.AddStatement(bob, label, rdf.NewLangLiteral("Bob", "en"))
	s.AddStatement(alice, label, rdf.NewIntegerLiteral("7"))
	s.AddSubject(rdf.NewBlankNode("lonely"))
	return s
}

func TestBackendSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	storage, err := NewBadgerStorage(dir)
	require.NoError(t, err)
	backend := NewBackend(storage, nil)
	require.NoError(t, backend.SaveCollection(ctx, people, sampleStore()))
	require.NoError(t, backend.Close())

	// reopen from disk
	storage, err = NewBadgerStorage(dir)
	require.NoError(t, err)
	backend = NewBackend(storage, nil)
	defer backend.Close()

	loaded, err := backend.LoadAll(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, people)

	want := sampleStore()
	got := loaded[people]
	assert.Equal(t, want.Len(), got.Len())
	assert.ElementsMatch(t, want.Subjects(), got.Subjects())
	for stmt := range want.Statements() {
		assert.True(t, got.Contains(stmt.Subject, stmt.Predicate, stmt.Object), "missing %s", stmt)
	}
}

func TestBackendSaveReplaces(t *testing.T) {
	ctx := context.Background()
	storage, err := NewInMemoryBadgerStorage()
	require.NoError(t, err)
	backend := NewBackend(storage, nil)
	defer backend.Close()

	require.NoError(t, backend.SaveCollection(ctx, people, sampleStore()))

	smaller := store.New()
	smaller.AddStatement(alice, knows, alice)
	require.NoError(t, backend.SaveCollection(ctx, people, smaller))

	loaded, err := backend.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded[people].Len())
	assert.Equal(t, []rdf.Node{alice}, loaded[people].Subjects())
}

func TestBackendDelete(t *testing.T) {
	ctx := context.Background()
	storage, err := NewInMemoryBadgerStorage()
	require.NoError(t, err)
	backend := NewBackend(storage, nil)
	defer backend.Close()

	other := rdf.NewNamedNode("http://ex/other")
	require.NoError(t, backend.SaveCollection(ctx, people, sampleStore()))
	require.NoError(t, backend.SaveCollection(ctx, other, sampleStore()))
	require.NoError(t, backend.DeleteCollection(ctx, people))

	loaded, err := backend.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotContains(t, loaded, people)
	assert.Equal(t, sampleStore().Len(), loaded[other].Len())
}

func TestBackendWithLigatureStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	storage, err := NewBadgerStorage(dir)
	require.NoError(t, err)
	s, err := ligature.Open(ctx, ligature.Config{Backend: NewBackend(storage, nil)})
	require.NoError(t, err)

	tx, err := s.Write(ctx)
	require.NoError(t, err)
	c, err := tx.Collection(people)
	require.NoError(t, err)
	require.NoError(t, c.AddStatement(rdf.NewStatement(alice, knows, alice)))
	require.NoError(t, tx.Commit())
	require.NoError(t, s.Close())

	storage, err = NewBadgerStorage(dir)
	require.NoError(t, err)
	s, err = ligature.Open(ctx, ligature.Config{Backend: NewBackend(storage, nil)})
	require.NoError(t, err)
	defer s.Close()

	names, err := s.AllCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []rdf.NamedNode{people}, names)
	assert.Equal(t, "badger", s.Details()["backend"])
}

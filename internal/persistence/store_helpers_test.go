package persistence

import (
	"context"
	"encoding/gob"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/workflows/pkg/api"
)

type badge struct {
	Color string
	Rank  int
}

func init() {
	gob.Register(badge{})
}

func sampleDefinition(id string) api.Definition {
	return api.Definition{
		ID:    id,
		Label: "Editorial " + id,
		Type:  "editorial",
		States: []api.State{
			{ID: "draft", Label: "Draft", Weight: 0},
			{ID: "review", Label: "Review", Weight: 1, Data: map[string]any{
				"badge":  badge{Color: "amber", Rank: 2},
				"limits": map[string]any{"days": 3},
			}},
			{ID: "published", Label: "Published", Weight: 2, Data: map[string]any{"published": true}},
		},
		Transitions: []api.Transition{
			{ID: "submit", Label: "Submit", Weight: 0, From: []string{"draft"}, To: "review"},
			{ID: "publish", Label: "Publish", Weight: 1, From: []string{"review", "draft"}, To: "published", Data: map[string]any{
				"bundles": []string{"node.type.article"},
			}},
		},
	}
}

// runDefinitionStoreConformance exercises the DefinitionStore contract
// against any backend.
func runDefinitionStoreConformance(t *testing.T, store DefinitionStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.GetDefinition(ctx, "missing")
	require.True(t, errors.Is(err, ErrDefinitionNotFound), "expected ErrDefinitionNotFound, got %v", err)

	def := sampleDefinition("articles")
	require.NoError(t, store.SaveDefinition(ctx, def))

	got, err := store.GetDefinition(ctx, "articles")
	require.NoError(t, err)
	require.Equal(t, def, got)

	// Overwrite.
	def.Label = "Articles (renamed)"
	def.States[0].Weight = -1
	require.NoError(t, store.SaveDefinition(ctx, def))

	got, err = store.GetDefinition(ctx, "articles")
	require.NoError(t, err)
	require.Equal(t, "Articles (renamed)", got.Label)
	require.Equal(t, -1, got.States[0].Weight)

	require.NoError(t, store.SaveDefinition(ctx, sampleDefinition("pages")))
	require.NoError(t, store.SaveDefinition(ctx, sampleDefinition("blog")))

	all, err := store.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"articles", "blog", "pages"}, []string{all[0].ID, all[1].ID, all[2].ID})

	require.NoError(t, store.DeleteDefinition(ctx, "blog"))
	err = store.DeleteDefinition(ctx, "blog")
	require.True(t, errors.Is(err, ErrDefinitionNotFound), "expected ErrDefinitionNotFound, got %v", err)

	all, err = store.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

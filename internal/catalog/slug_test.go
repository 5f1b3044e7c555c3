package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":     "electronics",
		"electronics ":    "electronics",
		"  Home & Garden": "home-garden",
		"Node JS":         "node-js",
		"MacBook Pro 16\"": "macbook-pro-16",
		"--weird--input--": "weird-input",
		"":                "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}

func mapExists(taken map[string]bool) SlugExistsFunc {
	return func(_ context.Context, slug string) (bool, error) {
		return taken[slug], nil
	}
}

func TestUniqueSlugNoCollision(t *testing.T) {
	slug, err := UniqueSlug(context.Background(), "Laptop", mapExists(map[string]bool{}))
	require.NoError(t, err)
	assert.Equal(t, "laptop", slug)
}

func TestUniqueSlugAppendsSuffix(t *testing.T) {
	taken := map[string]bool{"laptop": true}
	slug, err := UniqueSlug(context.Background(), "Laptop", mapExists(taken))
	require.NoError(t, err)
	assert.Equal(t, "laptop-1", slug)

	taken["laptop-1"] = true
	taken["laptop-2"] = true
	slug, err = UniqueSlug(context.Background(), "Laptop", mapExists(taken))
	require.NoError(t, err)
	assert.Equal(t, "laptop-3", slug)
}

func TestUniqueSlugRejectsNameWithoutSlugCharacters(t *testing.T) {
	_, err := UniqueSlug(context.Background(), "!!!", mapExists(map[string]bool{}))
	assert.Error(t, err)
}

func TestSlugFilterExcludesOwnRecord(t *testing.T) {
	assert.Equal(t, bson.M{"slug": "books"}, SlugFilter("books", primitive.NilObjectID))

	id := primitive.NewObjectID()
	assert.Equal(t, bson.M{
		"slug": "books",
		"_id":  bson.M{"$ne": id},
	}, SlugFilter("books", id))
}

func TestUniqueSlugPropagatesStoreError(t *testing.T) {
	probeErr := errors.New("store down")
	_, err := UniqueSlug(context.Background(), "Laptop", func(context.Context, string) (bool, error) {
		return false, probeErr
	})
	assert.ErrorIs(t, err, probeErr)
}

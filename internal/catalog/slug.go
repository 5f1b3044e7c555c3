package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single dash. Leading and trailing dashes are dropped, so
// case and whitespace variants of the same name produce the same slug.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SlugExistsFunc reports whether a slug is already taken in the store.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// UniqueSlug derives a slug from name and probes base, base-1, base-2, ...
// until the store reports a free one. The probe is a pre-check only; the
// unique slug index is what actually arbitrates concurrent writers.
func UniqueSlug(ctx context.Context, name string, exists SlugExistsFunc) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", fmt.Errorf("name %q yields an empty slug", name)
	}
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// SlugFilter matches records already holding the slug. A non-zero exclude id
// skips the entity's own record, so renaming an entity to its current name is
// not a self-collision.
func SlugFilter(slug string, exclude primitive.ObjectID) bson.M {
	filter := bson.M{"slug": slug}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

// SlugInUse binds the existence probe to a collection.
func SlugInUse(coll *mongo.Collection, exclude primitive.ObjectID) SlugExistsFunc {
	return func(ctx context.Context, slug string) (bool, error) {
		count, err := coll.CountDocuments(ctx, SlugFilter(slug, exclude))
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}
}

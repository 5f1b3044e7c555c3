package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCatalogIndexes creates the unique slug indexes backing the slug
// generator. The pre-insert uniqueness probe is not atomic against concurrent
// writers; these indexes make the store reject the loser, which then retries
// with the next suffix.
func EnsureCatalogIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	productSlug := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true),
	}
	if _, err := db.Collection("products").Indexes().CreateOne(ctx, productSlug); err != nil {
		return err
	}

	categorySlug := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true),
	}
	if _, err := db.Collection("categories").Indexes().CreateOne(ctx, categorySlug); err != nil {
		return err
	}

	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	return err
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	buyerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "buyer", Value: 1}},
		Options: options.Index().SetName("buyer_index"),
	}

	_, err := db.Collection("orders").Indexes().CreateOne(ctx, buyerIndex)
	return err
}

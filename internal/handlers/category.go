package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/models"
)

/*
GET /category/get-category
- An empty result set is still a success.
*/
func GetCategories(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /category/get-category"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("categories").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "all categories",
			"categories": categories,
		})
	}
}

/*
GET /category/single-category/:slug
*/
func SingleCategory(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /category/single-category/:slug"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		var category models.Category
		err := db.Collection("categories").FindOne(ctx, bson.M{"slug": c.Param("slug")}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "category not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "single category",
			"category": category,
		})
	}
}

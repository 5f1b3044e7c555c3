package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

type CategoryRequest struct {
	Name *string `json:"name"`
}

// categoryName distinguishes a missing name field from a blank one; the two
// get distinct validation messages.
func categoryName(req CategoryRequest) (string, string) {
	if req.Name == nil {
		return "", "name is required"
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return "", "name cannot be blank"
	}
	if catalog.Slugify(name) == "" {
		return "", "name must contain letters or digits"
	}
	return name, ""
}

/*
POST /category/create-category (admin)
- Duplicate detection is case-insensitive: the slug derived from the name is
  the uniqueness key.
*/
func CreateCategory(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /category/create-category"
		defer handlePanic(c, logger, route)

		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid body")
			return
		}

		name, problem := categoryName(req)
		if problem != "" {
			respondError(c, http.StatusBadRequest, kindValidation, problem)
			return
		}
		slug := catalog.Slugify(name)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, catalog.SlugFilter(slug, primitive.NilObjectID))
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, kindConflict, "category already exists")
			return
		}

		category := models.Category{
			Name:      name,
			Slug:      slug,
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("categories").InsertOne(ctx, category)
		if mongo.IsDuplicateKeyError(err) {
			// unique slug index lost the race for us
			respondError(c, http.StatusConflict, kindConflict, "category already exists")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		category.ID = result.InsertedID.(primitive.ObjectID)

		logger.Info("category created", zap.String("slug", slug))
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "category created",
			"category": category,
		})
	}
}

/*
PUT /category/update-category/:id (admin)
- The duplicate check excludes the category's own record, so renaming a
  category to its current name succeeds.
*/
func UpdateCategory(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /category/update-category/:id"
		defer handlePanic(c, logger, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid id")
			return
		}

		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid body")
			return
		}

		name, problem := categoryName(req)
		if problem != "" {
			respondError(c, http.StatusBadRequest, kindValidation, problem)
			return
		}
		slug := catalog.Slugify(name)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, catalog.SlugFilter(slug, id))
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, kindConflict, "category already exists")
			return
		}

		var updated models.Category
		err = db.Collection("categories").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": bson.M{"name": name, "slug": slug}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "category not found")
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, kindConflict, "category already exists")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		logger.Info("category updated", zap.String("id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "category updated",
			"category": updated,
		})
	}
}

/*
DELETE /category/delete-category/:id (admin)
- No cascade: products keep their dangling reference.
*/
func DeleteCategory(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /category/delete-category/:id"
		defer handlePanic(c, logger, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		result, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, kindNotFound, "category not found")
			return
		}

		logger.Info("category deleted", zap.String("id", id.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "category deleted",
		})
	}
}

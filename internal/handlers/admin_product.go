package handlers

import (
	"context"
	"fmt"
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

// slugInsertRetries bounds the duplicate-key retry loop that backs the slug
// pre-check when two writers race for the same name.
const slugInsertRetries = 3

func validateProductCreate(input productFormInput) error {
	if !input.NameSet || input.Name == "" {
		return fmt.Errorf("name is required")
	}
	if catalog.Slugify(input.Name) == "" {
		return fmt.Errorf("name must contain letters or digits")
	}
	if !input.DescriptionSet || input.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !input.PriceSet || input.Price <= 0 {
		return fmt.Errorf("price must be greater than 0")
	}
	if !input.QuantitySet || input.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if !input.CategorySet || input.CategoryID == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

/*
POST /product/create-product (admin)
- multipart/form-data with optional photo file.
*/
func CreateProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /product/create-product"
		defer handlePanic(c, logger, route)

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, kindValidation, "multipart/form-data required")
			return
		}

		input, err := parseProductForm(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, err.Error())
			return
		}
		if err := validateProductCreate(input); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, err.Error())
			return
		}

		categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		count, err := svc.Categories().CountDocuments(ctx, bson.M{"_id": categoryID})
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, kindNotFound, "category not found")
			return
		}

		product := models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			CategoryID:  categoryID,
			Quantity:    input.Quantity,
			Photo:       input.Photo,
			CreatedAt:   time.Now(),
		}
		if input.ShippingSet {
			shipping := input.Shipping
			product.Shipping = &shipping
		}

		inserted, err := insertWithUniqueSlug(ctx, svc, &product)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		product.ID = inserted

		logger.Info("product created",
			zap.String("id", product.ID.Hex()),
			zap.String("slug", product.Slug),
		)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "product created",
			"product": product,
		})
	}
}

// insertWithUniqueSlug generates a collision-suffixed slug and inserts the
// product, regenerating and retrying when the unique index rejects a
// concurrent duplicate.
func insertWithUniqueSlug(ctx context.Context, svc *catalog.Service, product *models.Product) (primitive.ObjectID, error) {
	var lastErr error
	for attempt := 0; attempt < slugInsertRetries; attempt++ {
		slug, err := catalog.UniqueSlug(ctx, product.Name, catalog.SlugInUse(svc.Products(), primitive.NilObjectID))
		if err != nil {
			return primitive.NilObjectID, err
		}
		product.Slug = slug

		result, err := svc.Products().InsertOne(ctx, product)
		if err == nil {
			return result.InsertedID.(primitive.ObjectID), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, err
		}
		lastErr = err
	}
	return primitive.NilObjectID, lastErr
}

// buildProductUpdate assembles the $set document for a product update. slugFor
// runs only when the submitted name differs from the stored one, so a
// price-only update never touches the name or slug.
func buildProductUpdate(input productFormInput, existing models.Product, slugFor func(name string) (string, error)) (bson.M, error) {
	update := bson.M{}
	if input.NameSet && input.Name != existing.Name {
		slug, err := slugFor(input.Name)
		if err != nil {
			return nil, err
		}
		update["name"] = input.Name
		update["slug"] = slug
	}
	if input.DescriptionSet {
		update["description"] = input.Description
	}
	if input.PriceSet {
		update["price"] = input.Price
	}
	if input.QuantitySet {
		update["quantity"] = input.Quantity
	}
	if input.ShippingSet {
		update["shipping"] = input.Shipping
	}
	if input.Photo != nil {
		update["photo"] = input.Photo
	}
	return update, nil
}

/*
PUT /product/update-product/:pid (admin)
- Slug regenerated only when the name actually changes; a price-only update
  leaves it untouched.
*/
func UpdateProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /product/update-product/:pid"
		defer handlePanic(c, logger, route)

		pid, err := primitive.ObjectIDFromHex(c.Param("pid"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid product id")
			return
		}

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, kindValidation, "multipart/form-data required")
			return
		}

		input, err := parseProductForm(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, err.Error())
			return
		}

		if input.NameSet && input.Name == "" {
			respondError(c, http.StatusBadRequest, kindValidation, "name cannot be blank")
			return
		}
		if input.NameSet && catalog.Slugify(input.Name) == "" {
			respondError(c, http.StatusBadRequest, kindValidation, "name must contain letters or digits")
			return
		}
		if input.PriceSet && input.Price <= 0 {
			respondError(c, http.StatusBadRequest, kindValidation, "price must be greater than 0")
			return
		}
		if input.QuantitySet && input.Quantity < 0 {
			respondError(c, http.StatusBadRequest, kindValidation, "quantity cannot be negative")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		var existing models.Product
		err = svc.Products().
			FindOne(ctx, bson.M{"_id": pid}, options.FindOne().SetProjection(bson.M{"photo": 0})).
			Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		update, err := buildProductUpdate(input, existing, func(name string) (string, error) {
			return catalog.UniqueSlug(ctx, name, catalog.SlugInUse(svc.Products(), pid))
		})
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		if input.CategorySet {
			categoryID, err := primitive.ObjectIDFromHex(input.CategoryID)
			if err != nil {
				respondError(c, http.StatusBadRequest, kindValidation, "invalid category id")
				return
			}
			count, err := svc.Categories().CountDocuments(ctx, bson.M{"_id": categoryID})
			if err != nil {
				respondInternal(c, logger, route, err)
				return
			}
			if count == 0 {
				respondError(c, http.StatusNotFound, kindNotFound, "category not found")
				return
			}
			update["category"] = categoryID
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, kindValidation, "no fields to update")
			return
		}

		var updated models.Product
		err = svc.Products().
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": pid},
				bson.M{"$set": update},
				options.FindOneAndUpdate().
					SetReturnDocument(options.After).
					SetProjection(bson.M{"photo": 0}),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		svc.InvalidateSlug(ctx, existing.Slug)
		if updated.Slug != existing.Slug {
			svc.InvalidateSlug(ctx, updated.Slug)
		}

		logger.Info("product updated", zap.String("id", pid.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "product updated",
			"product": updated,
		})
	}
}

/*
DELETE /product/delete-product/:pid (admin)
*/
func DeleteProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /product/delete-product/:pid"
		defer handlePanic(c, logger, route)

		pid, err := primitive.ObjectIDFromHex(c.Param("pid"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		var deleted models.Product
		err = svc.Products().
			FindOneAndDelete(ctx, bson.M{"_id": pid}, options.FindOneAndDelete().SetProjection(bson.M{"photo": 0})).
			Decode(&deleted)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		svc.InvalidateSlug(ctx, deleted.Slug)

		logger.Info("product deleted", zap.String("id", pid.Hex()))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "product deleted",
		})
	}
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/catalog"
)

const queryTimeout = 5 * time.Second

/*
GET /product/get-product
- All products, newest first, photo excluded, category populated.
*/
func ListProducts(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/get-product"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		products, err := svc.List(ctx)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "all products",
			"countTotal": len(products),
			"products":   products,
		})
	}
}

/*
GET /product/get-product/:slug
*/
func GetProduct(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/get-product/:slug"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		product, err := svc.GetBySlug(ctx, c.Param("slug"))
		if err == catalog.ErrNotFound {
			respondError(c, http.StatusNotFound, kindNotFound, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "single product fetched",
			"product": product,
		})
	}
}

/*
GET /product/product-photo/:pid
- The only route that serves photo bytes.
*/
func ProductPhoto(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/product-photo/:pid"
		defer handlePanic(c, logger, route)

		pid, err := primitive.ObjectIDFromHex(c.Param("pid"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		photo, err := svc.Photo(ctx, pid)
		if err == catalog.ErrNotFound {
			respondError(c, http.StatusNotFound, kindNotFound, "photo not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		contentType := photo.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, photo.Data)
	}
}

/*
POST /product/product-filters
- Body {checked: [category ids], radio: [] | [min, max]}.
- Malformed payloads are rejected before any store access.
*/
func ProductFilters(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /product/product-filters"
		defer handlePanic(c, logger, route)

		var req catalog.FilterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid filter payload")
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		products, err := svc.Filtered(ctx, req)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "filtered products",
			"products": products,
		})
	}
}

/*
GET /product/product-count
*/
func ProductCount(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/product-count"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		total, err := svc.Count(ctx)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "product count",
			"total":   total,
		})
	}
}

/*
GET /product/product-list/:page
- Fixed page size, page numbers start at 1.
*/
func ProductList(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/product-list/:page"
		defer handlePanic(c, logger, route)

		page, err := strconv.ParseInt(c.Param("page"), 10, 64)
		if err != nil || page < 1 {
			respondError(c, http.StatusBadRequest, kindValidation, "page must be a positive integer")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		products, err := svc.Page(ctx, page)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "product page",
			"page":     page,
			"products": products,
		})
	}
}

/*
GET /product/search/:keyword
- Case-insensitive substring match on name or description.
*/
func SearchProducts(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/search/:keyword"
		defer handlePanic(c, logger, route)

		keyword := strings.TrimSpace(c.Param("keyword"))
		if keyword == "" {
			respondError(c, http.StatusBadRequest, kindValidation, "search keyword is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		results, err := svc.Search(ctx, keyword)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "search results",
			"results": results,
		})
	}
}

/*
GET /product/related-product/:pid/:cid
- Up to three other products from the same category.
*/
func RelatedProducts(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/related-product/:pid/:cid"
		defer handlePanic(c, logger, route)

		pid, err := primitive.ObjectIDFromHex(c.Param("pid"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid product id")
			return
		}
		cid, err := primitive.ObjectIDFromHex(c.Param("cid"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		products, err := svc.Related(ctx, pid, cid)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "related products",
			"products": products,
		})
	}
}

/*
GET /product/product-category/:slug
- Category resolved first; unknown slug is a 404, not an empty list.
*/
func ProductsByCategory(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/product-category/:slug"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		category, err := svc.CategoryBySlug(ctx, c.Param("slug"))
		if err == catalog.ErrNotFound {
			respondError(c, http.StatusNotFound, kindNotFound, "category not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		products, err := svc.ByCategory(ctx, category.ID)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "category products",
			"category": category,
			"products": products,
		})
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/models"
)

type OrderCreateRequest struct {
	Products []string `json:"products"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func buyerFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get("userId")
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

/*
POST /order/create (signed in)
- Total computed from stored prices; payment recorded as a result object.
*/
func CreateOrder(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order/create"
		defer handlePanic(c, logger, route)

		buyer, ok := buyerFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
			return
		}

		var req OrderCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid body")
			return
		}
		if len(req.Products) == 0 {
			respondError(c, http.StatusBadRequest, kindValidation, "cart is empty")
			return
		}

		productIDs := make([]primitive.ObjectID, 0, len(req.Products))
		for _, raw := range req.Products {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, kindValidation, "invalid product id: "+raw)
				return
			}
			productIDs = append(productIDs, id)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		cursor, err := db.Collection("products").Find(
			ctx,
			bson.M{"_id": bson.M{"$in": productIDs}},
			options.Find().SetProjection(bson.M{"price": 1}),
		)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		defer cursor.Close(ctx)

		var priced []models.Product
		if err := cursor.All(ctx, &priced); err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		priceByID := make(map[primitive.ObjectID]float64, len(priced))
		for _, p := range priced {
			priceByID[p.ID] = p.Price
		}

		total := 0.0
		for _, id := range productIDs {
			price, ok := priceByID[id]
			if !ok {
				respondError(c, http.StatusNotFound, kindNotFound, "product not found: "+id.Hex())
				return
			}
			total += price
		}

		order := models.Order{
			Products: productIDs,
			Payment: models.Payment{
				Success:       true,
				TransactionID: primitive.NewObjectID().Hex(),
				Amount:        total,
			},
			Buyer:     buyer,
			Status:    models.StatusNotProcessed,
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		order.ID = result.InsertedID.(primitive.ObjectID)

		logger.Info("order created",
			zap.String("id", order.ID.Hex()),
			zap.Float64("amount", total),
		)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "order placed",
			"order":   order,
		})
	}
}

/*
GET /order/orders (signed in) - the caller's orders, newest first.
*/
func GetOrders(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/orders"
		defer handlePanic(c, logger, route)

		buyer, ok := buyerFromContext(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"buyer": buyer}, opts)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "orders",
			"orders":  orders,
		})
	}
}

/*
GET /order/all-orders (admin)
*/
func GetAllOrders(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /order/all-orders"
		defer handlePanic(c, logger, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "all orders",
			"orders":  orders,
		})
	}
}

/*
PUT /order/order-status/:orderId (admin)
*/
func UpdateOrderStatus(db *mongo.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /order/order-status/:orderId"
		defer handlePanic(c, logger, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid order id")
			return
		}

		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, kindValidation, "status is required")
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			respondError(c, http.StatusBadRequest, kindValidation, "invalid order status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
		defer cancel()

		var updated models.Order
		err = db.Collection("orders").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": orderID},
				bson.M{"$set": bson.M{"status": req.Status}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, kindNotFound, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, logger, route, err)
			return
		}

		logger.Info("order status updated",
			zap.String("id", orderID.Hex()),
			zap.String("status", req.Status),
		)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "order status updated",
			"order":   updated,
		})
	}
}

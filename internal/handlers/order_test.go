package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func orderRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	r := gin.New()
	r.PUT("/order/order-status/:orderId", UpdateOrderStatus(nil, logger))
	r.POST("/order/create", func(c *gin.Context) {
		c.Set("userId", primitive.NewObjectID())
	}, CreateOrder(nil, logger))
	r.POST("/order/create-anon", CreateOrder(nil, logger))
	return r
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	router := orderRouter()
	id := primitive.NewObjectID().Hex()

	w := postJSON(router, "PUT", "/order/order-status/"+id, `{"status":"Teleported"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUpdateOrderStatusRejectsInvalidID(t *testing.T) {
	router := orderRouter()

	w := postJSON(router, "PUT", "/order/order-status/not-hex", `{"status":"Shipped"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	router := orderRouter()

	w := postJSON(router, "POST", "/order/create", `{"products":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateOrderRejectsMalformedProductID(t *testing.T) {
	router := orderRouter()

	w := postJSON(router, "POST", "/order/create", `{"products":["nope"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateOrderRequiresSignedInBuyer(t *testing.T) {
	router := orderRouter()

	w := postJSON(router, "POST", "/order/create-anon", `{"products":[]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

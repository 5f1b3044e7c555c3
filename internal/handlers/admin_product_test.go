package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// adminProductRouter uses a service with no live store; the requests below
// must be rejected by validation before any store access.
func adminProductRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := catalog.NewService(nil, nil, 0, logger)

	r := gin.New()
	r.POST("/product/create-product", CreateProduct(svc, logger))
	r.PUT("/product/update-product/:pid", UpdateProduct(svc, logger))
	return r
}

func postForm(t *testing.T, router *gin.Engine, method, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		_ = writer.WriteField(key, value)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)
	return w
}

func TestBuildProductUpdatePriceOnlyKeepsNameAndSlug(t *testing.T) {
	existing := models.Product{Name: "Laptop", Slug: "laptop"}
	input := productFormInput{Price: 999, PriceSet: true}

	called := false
	update, err := buildProductUpdate(input, existing, func(string) (string, error) {
		called = true
		return "", nil
	})
	if err != nil {
		t.Fatalf("buildProductUpdate returned error: %v", err)
	}
	if called {
		t.Fatal("slug generator ran for a price-only update")
	}
	if !reflect.DeepEqual(update, bson.M{"price": 999.0}) {
		t.Fatalf("expected price-only update document, got %v", update)
	}
}

func TestBuildProductUpdateUnchangedNameKeepsSlug(t *testing.T) {
	existing := models.Product{Name: "Laptop", Slug: "laptop"}
	input := productFormInput{Name: "Laptop", NameSet: true, Quantity: 3, QuantitySet: true}

	update, err := buildProductUpdate(input, existing, func(string) (string, error) {
		t.Fatal("slug generator ran for an unchanged name")
		return "", nil
	})
	if err != nil {
		t.Fatalf("buildProductUpdate returned error: %v", err)
	}
	if !reflect.DeepEqual(update, bson.M{"quantity": 3}) {
		t.Fatalf("expected quantity-only update document, got %v", update)
	}
}

func TestBuildProductUpdateRenameRegeneratesSlug(t *testing.T) {
	existing := models.Product{Name: "Laptop", Slug: "laptop"}
	input := productFormInput{Name: "Laptop Pro", NameSet: true}

	update, err := buildProductUpdate(input, existing, func(name string) (string, error) {
		return catalog.Slugify(name), nil
	})
	if err != nil {
		t.Fatalf("buildProductUpdate returned error: %v", err)
	}
	if update["name"] != "Laptop Pro" || update["slug"] != "laptop-pro" {
		t.Fatalf("expected name and slug in update document, got %v", update)
	}
}

func TestBuildProductUpdatePropagatesSlugError(t *testing.T) {
	existing := models.Product{Name: "Laptop", Slug: "laptop"}
	input := productFormInput{Name: "Laptop Pro", NameSet: true}

	slugErr := errors.New("store down")
	_, err := buildProductUpdate(input, existing, func(string) (string, error) {
		return "", slugErr
	})
	if !errors.Is(err, slugErr) {
		t.Fatalf("expected slug generator error, got %v", err)
	}
}

func TestCreateProductRejectsSymbolOnlyName(t *testing.T) {
	router := adminProductRouter()

	w := postForm(t, router, "POST", "/product/create-product", map[string]string{
		"name":        "!!!",
		"description": "all punctuation",
		"price":       "10",
		"quantity":    "1",
		"category":    primitive.NewObjectID().Hex(),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if !strings.Contains(w.Body.String(), "letters or digits") {
		t.Fatalf("expected unsluggable-name message, got %s", w.Body.String())
	}
}

func TestUpdateProductRejectsSymbolOnlyName(t *testing.T) {
	router := adminProductRouter()
	pid := primitive.NewObjectID().Hex()

	w := postForm(t, router, "PUT", "/product/update-product/"+pid, map[string]string{
		"name": "###",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if !strings.Contains(w.Body.String(), "letters or digits") {
		t.Fatalf("expected unsluggable-name message, got %s", w.Body.String())
	}
}

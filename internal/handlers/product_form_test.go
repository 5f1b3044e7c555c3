package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

func multipartContext(t *testing.T, build func(w *multipart.Writer)) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	build(writer)
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/product/create-product", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestParseProductFormFields(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("name", " Laptop ")
		_ = w.WriteField("description", "A fine machine")
		_ = w.WriteField("price", "1499.99")
		_ = w.WriteField("quantity", "12")
		_ = w.WriteField("shipping", "true")
	})

	input, err := parseProductForm(c)
	if err != nil {
		t.Fatalf("parseProductForm returned error: %v", err)
	}
	if !input.NameSet || input.Name != "Laptop" {
		t.Fatalf("expected trimmed name, got %+v", input)
	}
	if !input.PriceSet || input.Price != 1499.99 {
		t.Fatalf("expected price=1499.99, got %+v", input)
	}
	if !input.QuantitySet || input.Quantity != 12 {
		t.Fatalf("expected quantity=12, got %+v", input)
	}
	if !input.ShippingSet || !input.Shipping {
		t.Fatalf("expected shipping=true, got %+v", input)
	}
	if input.CategorySet {
		t.Fatal("category was not sent but was marked set")
	}
	if input.Photo != nil {
		t.Fatal("photo was not sent but was parsed")
	}
}

func TestParseProductFormRejectsBadPrice(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("price", "cheap")
	})

	if _, err := parseProductForm(c); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}

func TestParseProductFormRejectsOversizedPhoto(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="photo"; filename="big.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("creating photo part: %v", err)
		}
		if _, err := part.Write(bytes.Repeat([]byte("x"), maxPhotoSize+1)); err != nil {
			t.Fatalf("writing photo part: %v", err)
		}
	})

	if _, err := parseProductForm(c); err == nil {
		t.Fatal("expected error for photo above 1MB")
	}
}

func TestParseProductFormReadsPhoto(t *testing.T) {
	c := multipartContext(t, func(w *multipart.Writer) {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="photo"; filename="small.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("creating photo part: %v", err)
		}
		if _, err := part.Write([]byte("png-bytes")); err != nil {
			t.Fatalf("writing photo part: %v", err)
		}
	})

	input, err := parseProductForm(c)
	if err != nil {
		t.Fatalf("parseProductForm returned error: %v", err)
	}
	if input.Photo == nil {
		t.Fatal("expected photo to be parsed")
	}
	if input.Photo.ContentType != "image/png" {
		t.Fatalf("expected content type image/png, got %q", input.Photo.ContentType)
	}
	if string(input.Photo.Data) != "png-bytes" {
		t.Fatalf("unexpected photo bytes: %q", input.Photo.Data)
	}
}

func TestValidateProductCreate(t *testing.T) {
	valid := productFormInput{
		Name: "Laptop", NameSet: true,
		Description: "A fine machine", DescriptionSet: true,
		Price: 10, PriceSet: true,
		Quantity: 1, QuantitySet: true,
		CategoryID: "abc", CategorySet: true,
	}
	if err := validateProductCreate(valid); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	zeroPrice := valid
	zeroPrice.Price = 0
	if err := validateProductCreate(zeroPrice); err == nil {
		t.Fatal("expected error for price=0")
	}

	negativeQuantity := valid
	negativeQuantity.Quantity = -1
	if err := validateProductCreate(negativeQuantity); err == nil {
		t.Fatal("expected error for negative quantity")
	}

	noName := valid
	noName.NameSet = false
	noName.Name = ""
	if err := validateProductCreate(noName); err == nil {
		t.Fatal("expected error for missing name")
	}
}

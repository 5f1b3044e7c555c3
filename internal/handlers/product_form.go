package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

const maxPhotoSize = 1 << 20 // 1MB

type productFormInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Quantity       int
	QuantitySet    bool
	CategoryID     string
	CategorySet    bool
	Shipping       bool
	ShippingSet    bool
	Photo          *models.Photo
}

// parseProductForm reads a multipart product request. Every field records
// whether it was present, so updates can distinguish "not sent" from zero
// values.
func parseProductForm(c *gin.Context) (productFormInput, error) {
	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		return productFormInput{}, err
	}

	input := productFormInput{}

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return productFormInput{}, fmt.Errorf("invalid price: %s", value)
		}
		input.Price = parsed
		input.PriceSet = true
	}

	if value, ok := c.GetPostForm("quantity"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return productFormInput{}, fmt.Errorf("invalid quantity: %s", value)
		}
		input.Quantity = parsed
		input.QuantitySet = true
	}

	if value, ok := c.GetPostForm("category"); ok {
		input.CategoryID = strings.TrimSpace(value)
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("shipping"); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return productFormInput{}, fmt.Errorf("invalid shipping value: %s", value)
		}
		input.Shipping = parsed
		input.ShippingSet = true
	}

	file, err := c.FormFile("photo")
	if err == nil {
		photo, err := readPhoto(file)
		if err != nil {
			return productFormInput{}, err
		}
		input.Photo = photo
	} else if !errors.Is(err, http.ErrMissingFile) &&
		!strings.Contains(err.Error(), "no such file") {
		return productFormInput{}, err
	}

	return input, nil
}

func readPhoto(file *multipart.FileHeader) (*models.Photo, error) {
	if file.Size > maxPhotoSize {
		return nil, fmt.Errorf("photo must be smaller than 1MB")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported photo type: %s", contentType)
	}

	in, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}

	return &models.Photo{Data: data, ContentType: contentType}, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo holds the binary image payload stored inline with the product
// document. It is never serialized into JSON responses; list and detail
// queries exclude it by projection and the photo endpoint streams the bytes
// directly.
type Photo struct {
	Data        []byte `bson:"data,omitempty" json:"-"`
	ContentType string `bson:"contentType,omitempty" json:"-"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	CategoryID  primitive.ObjectID `bson:"category" json:"-"`
	Category    *Category          `bson:"-" json:"category,omitempty"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Photo       *Photo             `bson:"photo,omitempty" json:"-"`
	Shipping    *bool              `bson:"shipping,omitempty" json:"shipping,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusNotProcessed = "Not Processed"
	StatusProcessing   = "Processing"
	StatusShipped      = "Shipped"
	StatusDelivered    = "Delivered"
	StatusCancelled    = "Cancelled"
)

var orderStatuses = map[string]struct{}{
	StatusNotProcessed: {},
	StatusProcessing:   {},
	StatusShipped:      {},
	StatusDelivered:    {},
	StatusCancelled:    {},
}

func ValidOrderStatus(status string) bool {
	_, ok := orderStatuses[status]
	return ok
}

// Payment records the outcome of the checkout step for an order.
type Payment struct {
	Success       bool    `bson:"success" json:"success"`
	TransactionID string  `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Amount        float64 `bson:"amount" json:"amount"`
}

type Order struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	Payment   Payment              `bson:"payment" json:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer" json:"buyer"`
	Status    string               `bson:"status" json:"status"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

package catalog

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterRequest is the client-supplied product filter payload: a set of
// category ids and an optional [min, max] price range.
type FilterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

func (r FilterRequest) Validate() error {
	if len(r.Radio) != 0 && len(r.Radio) != 2 {
		return fmt.Errorf("radio must be empty or [min, max], got %d values", len(r.Radio))
	}
	for _, raw := range r.Checked {
		if _, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("invalid category id: %q", raw)
		}
	}
	return nil
}

// Query translates the filter into a store predicate. Category and price
// conditions are ANDed; an empty filter matches everything. Pure transform,
// no store access.
func (r FilterRequest) Query() (bson.M, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := bson.M{}

	if len(r.Checked) > 0 {
		ids := make([]primitive.ObjectID, 0, len(r.Checked))
		for _, raw := range r.Checked {
			id, _ := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
			ids = append(ids, id)
		}
		query["category"] = bson.M{"$in": ids}
	}

	if len(r.Radio) == 2 {
		query["price"] = bson.M{"$gte": r.Radio[0], "$lte": r.Radio[1]}
	}

	return query, nil
}

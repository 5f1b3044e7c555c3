package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/models"
)

const (
	// PageSize is the fixed page size of the paginated product listing.
	PageSize = 6
	// RelatedLimit caps the related-product lookup.
	RelatedLimit = 3
)

// ErrNotFound marks a well-formed lookup that matched nothing, as opposed to
// a store failure.
var ErrNotFound = errors.New("catalog: not found")

// Service executes catalog reads against the product and category
// collections. Every listing excludes the photo payload by projection and
// attaches the referenced category document. An optional Redis client fronts
// the single-product-by-slug lookup.
type Service struct {
	db       *mongo.Database
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewService(db *mongo.Database, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{db: db, cache: rdb, cacheTTL: cacheTTL, logger: logger}
}

func (s *Service) Products() *mongo.Collection   { return s.db.Collection("products") }
func (s *Service) Categories() *mongo.Collection { return s.db.Collection("categories") }

func listOptions() *options.FindOptions {
	return options.Find().
		SetProjection(bson.M{"photo": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func pageSkip(page int64) int64 {
	return (page - 1) * PageSize
}

// searchFilter quotes the keyword so regex metacharacters in it match
// literally rather than as a pattern.
func searchFilter(keyword string) bson.M {
	pattern := regexp.QuoteMeta(keyword)
	return bson.M{"$or": []bson.M{
		{"name": bson.M{"$regex": pattern, "$options": "i"}},
		{"description": bson.M{"$regex": pattern, "$options": "i"}},
	}}
}

func relatedFilter(productID, categoryID primitive.ObjectID) bson.M {
	return bson.M{
		"category": categoryID,
		"_id":      bson.M{"$ne": productID},
	}
}

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, bson.M{}, listOptions())
}

// GetBySlug returns a single product by its exact slug, served from the
// cache when warm.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if s.cache != nil {
		if data, err := cache.GetProduct(ctx, s.cache, slug); err == nil {
			var product models.Product
			if err := json.Unmarshal(data, &product); err == nil {
				return &product, nil
			}
		}
	}

	opts := options.FindOne().SetProjection(bson.M{"photo": 0})
	var product models.Product
	err := s.Products().FindOne(ctx, bson.M{"slug": slug}, opts).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	product.Category = s.categoryFor(ctx, product.CategoryID)

	if s.cache != nil {
		if err := cache.SetProduct(ctx, s.cache, slug, product, s.cacheTTL); err != nil {
			s.logger.Warn("product cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	return &product, nil
}

// InvalidateSlug drops a cached product after a mutation. A nil cache client
// makes this a no-op.
func (s *Service) InvalidateSlug(ctx context.Context, slug string) {
	if s.cache == nil || slug == "" {
		return
	}
	if err := cache.DeleteProduct(ctx, s.cache, slug); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

// Page returns one fixed-size page of the newest-first product ordering.
// Page numbers are validated by the caller and start at 1.
func (s *Service) Page(ctx context.Context, page int64) ([]models.Product, error) {
	opts := listOptions().
		SetSkip(pageSkip(page)).
		SetLimit(PageSize)
	return s.find(ctx, bson.M{}, opts)
}

// Count returns the total number of products.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Products().CountDocuments(ctx, bson.M{})
}

// Search matches the keyword as a case-insensitive substring of the product
// name or description. Keyword emptiness is rejected by the caller before
// any store access.
func (s *Service) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	return s.find(ctx, searchFilter(keyword), listOptions())
}

// Related returns up to RelatedLimit other products from the same category.
func (s *Service) Related(ctx context.Context, productID, categoryID primitive.ObjectID) ([]models.Product, error) {
	opts := listOptions().SetLimit(RelatedLimit)
	return s.find(ctx, relatedFilter(productID, categoryID), opts)
}

// CategoryBySlug resolves a category document by slug.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.Categories().FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ByCategory lists every product referencing the category.
func (s *Service) ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	return s.find(ctx, bson.M{"category": categoryID}, listOptions())
}

// Filtered applies the filter-builder predicate. The photo payload is
// stripped here as everywhere else.
func (s *Service) Filtered(ctx context.Context, req FilterRequest) ([]models.Product, error) {
	query, err := req.Query()
	if err != nil {
		return nil, err
	}
	return s.find(ctx, query, listOptions())
}

// Photo fetches only the photo field of a product.
func (s *Service) Photo(ctx context.Context, productID primitive.ObjectID) (*models.Photo, error) {
	opts := options.FindOne().SetProjection(bson.M{"photo": 1})
	var product models.Product
	err := s.Products().FindOne(ctx, bson.M{"_id": productID}, opts).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if product.Photo == nil || len(product.Photo.Data) == 0 {
		return nil, ErrNotFound
	}
	return product.Photo, nil
}

func (s *Service) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := s.Products().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	if err := s.attachCategories(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// attachCategories resolves the category references of a product batch with a
// single $in lookup and embeds the documents.
func (s *Service) attachCategories(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	seen := map[primitive.ObjectID]struct{}{}
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if p.CategoryID.IsZero() {
			continue
		}
		if _, ok := seen[p.CategoryID]; ok {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := s.Categories().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]models.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	for i := range products {
		if category, ok := byID[products[i].CategoryID]; ok {
			c := category
			products[i].Category = &c
		}
	}

	return nil
}

func (s *Service) categoryFor(ctx context.Context, id primitive.ObjectID) *models.Category {
	if id.IsZero() {
		return nil
	}
	var category models.Category
	if err := s.Categories().FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil
	}
	return &category
}

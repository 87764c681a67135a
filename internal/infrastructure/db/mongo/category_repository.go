package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

const collectionCategories = "categories"

var categorySortKeys = map[string]string{
	"name":      "name",
	"sortOrder": "sort_order",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// caseInsensitive makes the unique name index ignore letter case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(collectionCategories)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if category.ID == "" {
		category.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateCategory(err)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return findOne[domain.Category](ctx, r.col, bson.M{"_id": id}, domain.ErrCategoryNotFound)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return findOne[domain.Category](ctx, r.col, bson.M{"slug": slug}, domain.ErrCategoryNotFound)
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	set, err := setDoc(category, "created_by", "created_at")
	if err != nil {
		return fmt.Errorf("encode category: %w", err)
	}
	if err := replaceSet(ctx, r.col, category.ID, set, domain.ErrCategoryNotFound); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateCategory(err)
		}
		return err
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrCategoryNotFound)
}

func (r *CategoryRepository) List(ctx context.Context, filter ports.CategoryFilter) ([]*domain.Category, int64, error) {
	q := bson.M{}
	if filter.IsActive != nil {
		q["is_active"] = *filter.IsActive
	}
	switch {
	case filter.RootOnly:
		q["parent_category"] = ""
	case filter.ParentID != "":
		q["parent_category"] = filter.ParentID
	}
	if filter.Search != "" {
		q["$or"] = searchFilter(filter.Search, "name", "description")
	}
	return findPage[domain.Category](ctx, r.col, q, findOptions(filter.ListOptions, categorySortKeys))
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.col, slug, excludeID)
}

func (r *CategoryRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{"parent_category": id})
}

func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parent_category", Value: 1}}},
	})
}

// duplicateCategory tells a slug collision apart from a name collision.
func duplicateCategory(err error) error {
	if strings.Contains(err.Error(), "slug") {
		return domain.ErrSlugExists
	}
	return domain.ErrCategoryExists
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

const (
	collectionPages    = "pages"
	collectionSettings = "site_settings"
	homePageSettingID  = "homepage"
)

var pageSortKeys = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
	"sortOrder":   "sort_order",
	"menuOrder":   "menu_order",
	"views":       "views",
}

// homePointer is the single site_settings document naming the homepage.
type homePointer struct {
	ID        string    `bson:"_id"`
	PageID    string    `bson:"page_id"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type PageRepository struct {
	col      *mongo.Collection
	settings *mongo.Collection
}

func NewPageRepository(db *mongo.Database) *PageRepository {
	return &PageRepository{
		col:      db.Collection(collectionPages),
		settings: db.Collection(collectionSettings),
	}
}

func (r *PageRepository) Create(ctx context.Context, page *domain.Page) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if page.ID == "" {
		page.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, page); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugExists
		}
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (r *PageRepository) FindByID(ctx context.Context, id string) (*domain.Page, error) {
	return findOne[domain.Page](ctx, r.col, bson.M{"_id": id}, domain.ErrPageNotFound)
}

func (r *PageRepository) FindBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	return findOne[domain.Page](ctx, r.col, bson.M{"slug": slug}, domain.ErrPageNotFound)
}

func (r *PageRepository) Update(ctx context.Context, page *domain.Page) error {
	set, err := setDoc(page, "views", "author", "created_at")
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := replaceSet(ctx, r.col, page.ID, set, domain.ErrPageNotFound); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugExists
		}
		return err
	}
	return nil
}

func (r *PageRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrPageNotFound)
}

func (r *PageRepository) List(ctx context.Context, filter ports.PageFilter) ([]*domain.Page, int64, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.AuthorID != "" {
		q["author"] = filter.AuthorID
	}
	if filter.ParentID != "" {
		q["parent_page"] = filter.ParentID
	}
	if filter.Template != "" {
		q["template"] = filter.Template
	}
	if filter.ShowInMenu != nil {
		q["show_in_menu"] = *filter.ShowInMenu
	}
	if filter.Search != "" {
		q["$or"] = searchFilter(filter.Search, "title", "content")
	}

	opts := findOptions(filter.ListOptions, pageSortKeys)
	if filter.SortBy == "menuOrder" || filter.SortBy == "sortOrder" {
		dir := 1
		if filter.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: pageSortKeys[filter.SortBy], Value: dir}, {Key: "title", Value: 1}, {Key: "_id", Value: 1}})
	}
	return findPage[domain.Page](ctx, r.col, q, opts)
}

func (r *PageRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.col, slug, excludeID)
}

func (r *PageRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{"parent_page": id})
}

func (r *PageRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

func (r *PageRepository) HomePageID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ptr homePointer
	err := r.settings.FindOne(ctx, bson.M{"_id": homePageSettingID}).Decode(&ptr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("read homepage pointer: %w", err)
	}
	return ptr.PageID, nil
}

// SetHomePage upserts the pointer document. Concurrent callers race on one
// document, so the last write wins and exactly one page holds the flag.
func (r *PageRepository) SetHomePage(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.settings.UpdateOne(ctx,
		bson.M{"_id": homePageSettingID},
		bson.M{"$set": bson.M{"page_id": id, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set homepage pointer: %w", err)
	}
	return nil
}

func (r *PageRepository) ClearHomePage(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.settings.UpdateOne(ctx,
		bson.M{"_id": homePageSettingID, "page_id": id},
		bson.M{"$set": bson.M{"page_id": "", "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("clear homepage pointer: %w", err)
	}
	return nil
}

func (r *PageRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "show_in_menu", Value: 1}, {Key: "menu_order", Value: 1}}},
		{Keys: bson.D{{Key: "parent_page", Value: 1}}},
	})
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Repositories bundles every collection-backed repository over one database.
type Repositories struct {
	Users      *UserRepository
	Posts      *PostRepository
	Pages      *PageRepository
	Categories *CategoryRepository
	Media      *MediaRepository
	Comments   *CommentRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Posts:      NewPostRepository(db),
		Pages:      NewPageRepository(db),
		Categories: NewCategoryRepository(db),
		Media:      NewMediaRepository(db),
		Comments:   NewCommentRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", r.Users.EnsureIndexes},
		{"posts", r.Posts.EnsureIndexes},
		{"pages", r.Pages.EnsureIndexes},
		{"categories", r.Categories.EnsureIndexes},
		{"media", r.Media.EnsureIndexes},
		{"comments", r.Comments.EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", s.name, err)
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// setDoc encodes v as a $set document, dropping _id and the excluded keys.
func setDoc(v any, exclude ...string) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	for _, k := range exclude {
		delete(m, k)
	}
	return m, nil
}

// searchFilter matches search case-insensitively against any of fields.
func searchFilter(search string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return or
}

// findOptions maps opts onto a paged find. fields translates API sort names
// to document keys; _id breaks ties so paging is stable.
func findOptions(opts domain.ListOptions, fields map[string]string) *options.FindOptions {
	opts = opts.Normalize()
	dir := 1
	if opts.SortDesc {
		dir = -1
	}
	sort := bson.D{}
	if key, ok := fields[opts.SortBy]; ok {
		sort = append(sort, bson.E{Key: key, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: dir})

	return options.Find().
		SetSort(sort).
		SetSkip(int64(opts.Skip())).
		SetLimit(int64(opts.Limit))
}

// findPage runs a counted, paged query and decodes the results.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]*T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []*T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// findOne decodes the single document matching filter, mapping a miss to notFound.
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M, notFound error) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v T
	if err := col.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &v, nil
}

// slugTaken reports whether another document than excludeID uses slug.
func slugTaken(ctx context.Context, col *mongo.Collection, slug, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// replaceSet applies a $set update to the document with id.
func replaceSet(ctx context.Context, col *mongo.Collection, id string, set bson.M, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func createIndexes(ctx context.Context, col *mongo.Collection, indexes []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := col.Indexes().CreateMany(ctx, indexes)
	return err
}

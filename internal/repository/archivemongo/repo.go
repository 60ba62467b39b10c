// Package archivemongo stores archives in a MongoDB collection.
package archivemongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lightsoft-dev/light-archive/internal/db"
	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// Collection is the default collection name.
const Collection = "archive_items"

// Repo implements usecase/archive.Repository on MongoDB.
type Repo struct {
	coll *mongo.Collection
}

// New creates a repository over coll.
func New(coll *mongo.Collection) *Repo {
	return &Repo{coll: coll}
}

// EnsureIndexes creates the secondary indexes used by listings. Idempotent.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "view_count", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Get returns an archive by ID.
func (r *Repo) Get(ctx context.Context, id string) (domarchive.Archive, error) {
	var doc archiveDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domarchive.Archive{}, domain.ErrArchiveNotFound
		}
		return domarchive.Archive{}, fmt.Errorf("find %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

// List returns archives matching opts.
func (r *Repo) List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	filter := bson.D{}
	if opts.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: string(opts.Category)})
	}
	if opts.SubCategory != "" {
		filter = append(filter, bson.E{Key: "sub_category", Value: opts.SubCategory})
	}
	if opts.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(opts.Status)})
	}
	if opts.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$all", Value: bson.A{opts.Tag}}}})
	}

	find := options.Find().SetSort(sortFor(opts.Order))
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	return r.find(ctx, filter, find)
}

// Overlapping returns archives sharing at least one tag with tags, newest first.
func (r *Repo) Overlapping(
	ctx context.Context, excludeID string, tags []string, limit int,
) ([]domarchive.Archive, error) {
	if len(tags) == 0 || limit <= 0 {
		return []domarchive.Archive{}, nil
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
		{Key: "tags", Value: bson.D{{Key: "$in", Value: tags}}},
	}
	find := options.Find().
		SetSort(sortFor(domarchive.OrderRecent)).
		SetLimit(int64(limit))
	return r.find(ctx, filter, find)
}

// Create inserts a new archive.
func (r *Repo) Create(ctx context.Context, a *domarchive.Archive) error {
	if _, err := r.coll.InsertOne(ctx, toDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("archive %s: %w", a.ID, db.ErrKeyExists)
		}
		return fmt.Errorf("insert %s: %w", a.ID, err)
	}
	return nil
}

// Save replaces every field of a stored archive except the view counter.
func (r *Repo) Save(ctx context.Context, a *domarchive.Archive) error {
	doc := toDoc(a)
	set := bson.D{
		{Key: "title", Value: doc.Title},
		{Key: "description", Value: doc.Description},
		{Key: "category", Value: doc.Category},
		{Key: "sub_category", Value: doc.SubCategory},
		{Key: "status", Value: doc.Status},
		{Key: "date", Value: doc.Date},
		{Key: "tags", Value: doc.Tags},
		{Key: "technologies", Value: doc.Technologies},
		{Key: "difficulty", Value: doc.Difficulty},
		{Key: "field", Value: doc.Field},
		{Key: "author", Value: doc.Author},
		{Key: "image", Value: doc.Image},
		{Key: "thumbnail_url", Value: doc.ThumbnailURL},
		{Key: "comment_count", Value: doc.CommentCount},
		{Key: "content", Value: doc.Content},
		{Key: "excerpt", Value: doc.Excerpt},
		{Key: "updated_at", Value: doc.UpdatedAt},
		{Key: "published_at", Value: doc.PublishedAt},
	}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update %s: %w", a.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

// Delete removes an archive.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

// IncrementViews atomically adds one view.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "view_count", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("inc views %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

func (r *Repo) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]domarchive.Archive, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domarchive.Archive, 0)
	for cur.Next(ctx) {
		var doc archiveDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return out, nil
}

// sortFor returns the sort document of an order. _id breaks ties deterministically.
func sortFor(o domarchive.Order) bson.D {
	if o == domarchive.OrderPopular {
		return bson.D{{Key: "view_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
}

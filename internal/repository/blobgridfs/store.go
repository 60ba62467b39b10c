// Package blobgridfs stores attachment blobs in a MongoDB GridFS bucket.
package blobgridfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	"github.com/lightsoft-dev/light-archive/internal/domain/attachment"
)

// Bucket is the default bucket name.
const Bucket = "thumbnails"

const contentTypeKey = "contentType"

// Store keeps blobs in a GridFS bucket. The object path is the GridFS filename.
type Store struct {
	bucket  *gridfs.Bucket
	baseURL string
}

// New opens the bucket named name in db.
func New(db *mongo.Database, name, baseURL string) (*Store, error) {
	if name == "" {
		name = Bucket
	}
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}
	return &Store{bucket: b, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put uploads r as p with its content type in the file metadata.
func (s *Store) Put(_ context.Context, p string, r io.Reader, _ int64, contentType string) error {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: contentTypeKey, Value: contentType}})
	if _, err := s.bucket.UploadFromStream(p, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", p, err)
	}
	return nil
}

// List returns every file whose name starts with prefix, sorted by name.
func (s *Store) List(ctx context.Context, prefix string) ([]attachment.Object, error) {
	files, err := s.find(ctx, prefixFilter(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]attachment.Object, 0, len(files))
	for i := range files {
		out = append(out, attachment.Object{
			Path:        files[i].Name,
			Size:        files[i].Length,
			ContentType: contentType(&files[i]),
		})
	}
	return out, nil
}

// Delete removes every revision of the given files. Missing files are ignored.
func (s *Store) Delete(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	files, err := s.find(ctx, bson.D{{Key: "filename", Value: bson.D{{Key: "$in", Value: paths}}}})
	if err != nil {
		return err
	}
	for i := range files {
		err := s.bucket.DeleteContext(ctx, files[i].ID)
		if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete %s: %w", files[i].Name, err)
		}
	}
	return nil
}

// Open returns a reader for the latest revision of p.
func (s *Store) Open(_ context.Context, p string) (io.ReadCloser, string, error) {
	ds, err := s.bucket.OpenDownloadStreamByName(p)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", fmt.Errorf("object %s: %w", p, domain.ErrObjectNotFound)
		}
		return nil, "", fmt.Errorf("open %s: %w", p, err)
	}
	return ds, contentType(ds.GetFile()), nil
}

// URL returns the public URL of an object.
func (s *Store) URL(p string) string {
	return s.baseURL + "/" + p
}

// Path maps a public URL back to an object path.
func (s *Store) Path(url string) (string, bool) {
	return attachment.PathFromURL(s.baseURL, url)
}

func (s *Store) find(ctx context.Context, filter bson.D) ([]gridfs.File, error) {
	cur, err := s.bucket.FindContext(ctx, filter, options.GridFSFind().SetSort(bson.D{{Key: "filename", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	defer cur.Close(ctx)

	var files []gridfs.File
	for cur.Next(ctx) {
		var f gridfs.File
		if err := cur.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}
		files = append(files, f)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}
	return files, nil
}

func prefixFilter(prefix string) bson.D {
	return bson.D{{Key: "filename", Value: bson.D{{Key: "$regex", Value: "^" + regexp.QuoteMeta(prefix)}}}}
}

func contentType(f *gridfs.File) string {
	if len(f.Metadata) == 0 {
		return ""
	}
	v, err := f.Metadata.LookupErr(contentTypeKey)
	if err != nil {
		return ""
	}
	ct, _ := v.StringValueOK()
	return ct
}

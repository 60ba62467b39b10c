package attachment

import (
	"context"
	"io"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	domatt "github.com/lightsoft-dev/light-archive/internal/domain/attachment"
)

// BlobStore stores attachment bytes by path.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string) ([]domatt.Object, error)
	Delete(ctx context.Context, paths ...string) error
	URL(path string) string
	Path(url string) (string, bool)
}

// ArchiveReader checks that the owning archive exists.
type ArchiveReader interface {
	Get(ctx context.Context, id string) (domarchive.Archive, error)
}

package archive

import (
	"context"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// Repository defines the storage contract for archives.
type Repository interface {
	Get(ctx context.Context, id string) (domarchive.Archive, error)
	List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error)
	Overlapping(ctx context.Context, excludeID string, tags []string, limit int) ([]domarchive.Archive, error)
	Create(ctx context.Context, a *domarchive.Archive) error
	Save(ctx context.Context, a *domarchive.Archive) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// AttachmentRemover drops every attachment of an archive.
type AttachmentRemover interface {
	DeleteAll(ctx context.Context, archiveID string) error
}

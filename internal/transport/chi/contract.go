package chi

import (
	"context"
	"io"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	domatt "github.com/lightsoft-dev/light-archive/internal/domain/attachment"
	"github.com/lightsoft-dev/light-archive/internal/transport/openai"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
	authuc "github.com/lightsoft-dev/light-archive/internal/usecase/auth"
	healthuc "github.com/lightsoft-dev/light-archive/internal/usecase/health"
)

// ArchiveService is the archive use case consumed by the HTTP layer.
type ArchiveService interface {
	Get(ctx context.Context, id string) (domarchive.Archive, error)
	List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error)
	Projects(ctx context.Context) ([]domarchive.Archive, error)
	Skills(ctx context.Context) ([]domarchive.Archive, error)
	ByTag(ctx context.Context, tag string) ([]domarchive.Archive, error)
	Popular(ctx context.Context, limit int) ([]domarchive.Archive, error)
	Recent(ctx context.Context, limit int) ([]domarchive.Archive, error)
	Create(ctx context.Context, in domarchive.Input) (domarchive.Archive, error)
	Update(ctx context.Context, id string, in domarchive.Input) (domarchive.Archive, error)
	Patch(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, opts archiveuc.SearchOptions) (archiveuc.SearchResult, error)
	Related(ctx context.Context, id string, limit int) (archiveuc.RelatedResult, error)
	RelatedByTags(ctx context.Context, id string, tags []string, limit int) ([]domarchive.Archive, error)
	RecordView(ctx context.Context, id string)
}

// AttachmentService manages archive attachments.
type AttachmentService interface {
	List(ctx context.Context, archiveID string) ([]domatt.Attachment, error)
	Upload(ctx context.Context, archiveID, name, contentType string, size int64, r io.Reader) (domatt.Attachment, error)
	Delete(ctx context.Context, archiveID, url string) error
	MaxUploadBytes() int64
}

// AuthService issues and checks admin credentials.
type AuthService interface {
	Enabled() bool
	Login(ctx context.Context, email, password string) (authuc.Session, error)
	Validate(ctx context.Context, token string) error
	Logout(ctx context.Context, token string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// AIStatusReporter reports the AI provider key state.
type AIStatusReporter interface {
	Status() openai.Status
}

// FileOpener streams stored attachment bytes. Nil when the storage backend has no local files.
type FileOpener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}

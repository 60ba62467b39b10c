package mcp

import (
	"context"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
)

// ArchiveService is the archive use case exposed as tools.
type ArchiveService interface {
	Get(ctx context.Context, id string) (domarchive.Archive, error)
	List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error)
	Create(ctx context.Context, in domarchive.Input) (domarchive.Archive, error)
	Patch(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error)
	Search(ctx context.Context, query string, opts archiveuc.SearchOptions) (archiveuc.SearchResult, error)
	Related(ctx context.Context, id string, limit int) (archiveuc.RelatedResult, error)
}

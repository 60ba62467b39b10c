package lightarchive

import (
	"context"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
)

// --- archiveUseCase mock ---

type mockArchiveUC struct {
	getFn     func(ctx context.Context, id string) (domarchive.Archive, error)
	listFn    func(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error)
	createFn  func(ctx context.Context, in domarchive.Input) (domarchive.Archive, error)
	updateFn  func(ctx context.Context, id string, in domarchive.Input) (domarchive.Archive, error)
	patchFn   func(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error)
	deleteFn  func(ctx context.Context, id string) error
	searchFn  func(ctx context.Context, q string, opts archiveuc.SearchOptions) (archiveuc.SearchResult, error)
	relatedFn func(ctx context.Context, id string, limit int) (archiveuc.RelatedResult, error)
	viewed    []string
}

func (m *mockArchiveUC) Get(ctx context.Context, id string) (domarchive.Archive, error) {
	return m.getFn(ctx, id)
}

func (m *mockArchiveUC) List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	return m.listFn(ctx, opts)
}

func (m *mockArchiveUC) Create(ctx context.Context, in domarchive.Input) (domarchive.Archive, error) {
	return m.createFn(ctx, in)
}

func (m *mockArchiveUC) Update(ctx context.Context, id string, in domarchive.Input) (domarchive.Archive, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockArchiveUC) Patch(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error) {
	return m.patchFn(ctx, id, p)
}

func (m *mockArchiveUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockArchiveUC) Search(
	ctx context.Context, q string, opts archiveuc.SearchOptions,
) (archiveuc.SearchResult, error) {
	return m.searchFn(ctx, q, opts)
}

func (m *mockArchiveUC) Related(ctx context.Context, id string, limit int) (archiveuc.RelatedResult, error) {
	return m.relatedFn(ctx, id, limit)
}

func (m *mockArchiveUC) RecordView(_ context.Context, id string) {
	m.viewed = append(m.viewed, id)
}

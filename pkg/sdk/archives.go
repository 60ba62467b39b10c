package lightarchive

import (
	"context"
	"fmt"
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
)

// ArchiveService reads, writes, searches and recommends archive records.
type ArchiveService struct {
	svc archiveUseCase
	obs *observer
}

// Get returns the record with id.
func (s *ArchiveService) Get(ctx context.Context, id string) (a Archive, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.get", start, err) }()

	got, err := s.svc.Get(ctx, id)
	if err != nil {
		return Archive{}, fmt.Errorf("get archive: %w", err)
	}
	return fromInternal(got), nil
}

// List returns one page of records matching opts.
func (s *ArchiveService) List(ctx context.Context, opts ListOptions) (out []Archive, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.list", start, err) }()

	items, err := s.svc.List(ctx, domarchive.ListOptions{
		Category:    domarchive.Category(opts.Category),
		SubCategory: opts.SubCategory,
		Status:      domarchive.Status(opts.Status),
		Tag:         opts.Tag,
		Order:       domarchive.Order(opts.Order),
		Offset:      opts.Offset,
		Limit:       opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return fromInternalList(items), nil
}

// Create validates in and stores a new record.
func (s *ArchiveService) Create(ctx context.Context, in ArchiveInput) (a Archive, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.create", start, err) }()

	created, err := s.svc.Create(ctx, toInternalInput(in))
	if err != nil {
		return Archive{}, fmt.Errorf("create archive: %w", err)
	}
	return fromInternal(created), nil
}

// Update replaces every editable field of id. Counters and created_at are kept.
func (s *ArchiveService) Update(ctx context.Context, id string, in ArchiveInput) (a Archive, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.update", start, err) }()

	updated, err := s.svc.Update(ctx, id, toInternalInput(in))
	if err != nil {
		return Archive{}, fmt.Errorf("update archive: %w", err)
	}
	return fromInternal(updated), nil
}

// Patch changes the non-nil fields of p. At least one field must be set.
func (s *ArchiveService) Patch(ctx context.Context, id string, p ArchivePatch) (a Archive, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.patch", start, err) }()

	dp, err := patch.New(toInternalFields(p))
	if err != nil {
		return Archive{}, fmt.Errorf("patch archive: %w", err)
	}
	updated, err := s.svc.Patch(ctx, id, dp)
	if err != nil {
		return Archive{}, fmt.Errorf("patch archive: %w", err)
	}
	return fromInternal(updated), nil
}

// Delete removes the record with id.
func (s *ArchiveService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	return nil
}

// Search returns records whose title, description, tags or technologies contain query.
func (s *ArchiveService) Search(ctx context.Context, query string, opts SearchOptions) (res SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.search", start, err) }()

	r, err := s.svc.Search(ctx, query, archiveuc.SearchOptions{
		Category: domarchive.Category(opts.Category),
		Status:   domarchive.Status(opts.Status),
		Offset:   opts.Offset,
		Limit:    opts.Limit,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search archives: %w", err)
	}
	return SearchResult{Items: fromInternalList(r.Items), Total: r.Total}, nil
}

// Related recommends up to limit records similar to id.
func (s *ArchiveService) Related(ctx context.Context, id string, limit int) (res RelatedResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("archive.related", start, err) }()

	r, err := s.svc.Related(ctx, id, limit)
	if err != nil {
		return RelatedResult{}, fmt.Errorf("related archives: %w", err)
	}
	out := RelatedResult{Mode: RelatedMode(r.Mode), Items: make([]RelatedArchive, len(r.Items))}
	for i := range r.Items {
		out.Items[i].Archive = fromInternal(r.Items[i])
		if i < len(r.Scores) {
			out.Items[i].Score = r.Scores[i]
		}
	}
	return out, nil
}

// RecordView bumps the view counter of id in the background.
func (s *ArchiveService) RecordView(ctx context.Context, id string) {
	s.svc.RecordView(ctx, id)
}

func fromInternal(a domarchive.Archive) Archive {
	return Archive{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     Category(a.Category),
		SubCategory:  a.SubCategory,
		Status:       Status(a.Status),
		Date:         a.Date,
		Tags:         a.Tags,
		Technologies: a.Technologies,
		Difficulty:   a.Difficulty,
		Field:        a.Field,
		Author:       a.Author,
		Image:        a.Image,
		ThumbnailURL: a.ThumbnailURL,
		Thumbnail:    a.Thumbnail(),
		ViewCount:    a.ViewCount,
		CommentCount: a.CommentCount,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		PublishedAt:  a.PublishedAt,
	}
}

func fromInternalList(items []domarchive.Archive) []Archive {
	out := make([]Archive, len(items))
	for i := range items {
		out[i] = fromInternal(items[i])
	}
	return out
}

func toInternalInput(in ArchiveInput) domarchive.Input {
	return domarchive.Input{
		Title:        in.Title,
		Description:  in.Description,
		Category:     domarchive.Category(in.Category),
		SubCategory:  in.SubCategory,
		Status:       domarchive.Status(in.Status),
		Date:         in.Date,
		Tags:         in.Tags,
		Technologies: in.Technologies,
		Difficulty:   in.Difficulty,
		Field:        in.Field,
		Author:       in.Author,
		Image:        in.Image,
		ThumbnailURL: in.ThumbnailURL,
		Content:      in.Content,
		Excerpt:      in.Excerpt,
	}
}

func toInternalFields(p ArchivePatch) patch.Fields {
	f := patch.Fields{
		Title:        p.Title,
		Description:  p.Description,
		SubCategory:  p.SubCategory,
		Date:         p.Date,
		Tags:         p.Tags,
		Technologies: p.Technologies,
		Difficulty:   p.Difficulty,
		Field:        p.Field,
		Author:       p.Author,
		Image:        p.Image,
		ThumbnailURL: p.ThumbnailURL,
		Content:      p.Content,
		Excerpt:      p.Excerpt,
	}
	if p.Category != nil {
		c := domarchive.Category(*p.Category)
		f.Category = &c
	}
	if p.Status != nil {
		st := domarchive.Status(*p.Status)
		f.Status = &st
	}
	return f
}

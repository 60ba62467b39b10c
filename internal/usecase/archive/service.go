package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	"github.com/lightsoft-dev/light-archive/internal/domain/related"
	"github.com/lightsoft-dev/light-archive/internal/domain/search/keyword"
	"github.com/lightsoft-dev/light-archive/internal/logger"
	"github.com/lightsoft-dev/light-archive/internal/metrics"
)

const (
	defaultShortListSize = 5
	defaultRelatedLimit  = 5
	defaultByTagsLimit   = 3
	defaultRelatedPool   = 50
	defaultSearchPool    = 200
	defaultViewTimeout   = 2 * time.Second
	defaultPageSize      = 20
	defaultMaxPageSize   = 100
)

// Service handles archive reads, writes, search and recommendations.
type Service struct {
	repo            Repository
	attachments     AttachmentRemover
	logger          *zap.Logger
	weights         related.Weights
	relatedPool     int
	searchPool      int
	defaultPageSize int
	maxPageSize     int
	viewTimeout     time.Duration
	now             func() time.Time
	pending         sync.WaitGroup
}

// New creates an archive service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:            repo,
		logger:          logger,
		weights:         related.DefaultWeights(),
		relatedPool:     defaultRelatedPool,
		searchPool:      defaultSearchPool,
		defaultPageSize: defaultPageSize,
		maxPageSize:     defaultMaxPageSize,
		viewTimeout:     defaultViewTimeout,
		now:             time.Now,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithRelated configures the candidate pool size and the scoring weights.
func (s *Service) WithRelated(poolSize int, w related.Weights) *Service {
	if poolSize > 0 {
		s.relatedPool = poolSize
	}
	s.weights = w
	return s
}

// WithSearchPool configures how many recent records a search scans.
func (s *Service) WithSearchPool(n int) *Service {
	if n > 0 {
		s.searchPool = n
	}
	return s
}

// WithViewTimeout bounds a single background view increment.
func (s *Service) WithViewTimeout(d time.Duration) *Service {
	if d > 0 {
		s.viewTimeout = d
	}
	return s
}

// WithAttachments makes Delete also drop the record's attachments.
func (s *Service) WithAttachments(a AttachmentRemover) *Service {
	s.attachments = a
	return s
}

// Weights returns the active scoring weights.
func (s *Service) Weights() related.Weights { return s.weights }

// Get returns an archive by ID.
func (s *Service) Get(ctx context.Context, id string) (domarchive.Archive, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domarchive.Archive{}, fmt.Errorf("get archive: %w", err)
	}
	return a, nil
}

// List returns one page of archives. A zero limit means the default page size;
// larger limits are clamped to the maximum.
func (s *Service) List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Limit = s.clamp(opts.Limit, s.defaultPageSize)
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return items, nil
}

// Projects returns every project record, newest first.
func (s *Service) Projects(ctx context.Context) ([]domarchive.Archive, error) {
	return s.all(ctx, domarchive.ListOptions{Category: domarchive.CategoryProject})
}

// Skills returns every technical record, newest first.
func (s *Service) Skills(ctx context.Context) ([]domarchive.Archive, error) {
	return s.all(ctx, domarchive.ListOptions{Category: domarchive.CategoryTech})
}

// ByTag returns every record carrying tag, newest first.
func (s *Service) ByTag(ctx context.Context, tag string) ([]domarchive.Archive, error) {
	if tag == "" {
		return nil, domain.Invalid("tag is required")
	}
	return s.all(ctx, domarchive.ListOptions{Tag: tag})
}

// Popular returns the most viewed records.
func (s *Service) Popular(ctx context.Context, limit int) ([]domarchive.Archive, error) {
	return s.List(ctx, domarchive.ListOptions{
		Order: domarchive.OrderPopular,
		Limit: s.clamp(limit, defaultShortListSize),
	})
}

// Recent returns the newest records.
func (s *Service) Recent(ctx context.Context, limit int) ([]domarchive.Archive, error) {
	return s.List(ctx, domarchive.ListOptions{
		Order: domarchive.OrderRecent,
		Limit: s.clamp(limit, defaultShortListSize),
	})
}

func (s *Service) all(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	return items, nil
}

// Create validates and stores a new archive.
func (s *Service) Create(ctx context.Context, in domarchive.Input) (domarchive.Archive, error) {
	a, err := domarchive.New(in, s.now())
	if err != nil {
		return domarchive.Archive{}, err
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		return domarchive.Archive{}, fmt.Errorf("create archive: %w", err)
	}
	logger.FromContext(ctx).Info("archive created",
		zap.String("id", a.ID),
		zap.String("category", string(a.Category)),
	)
	return a, nil
}

// Update replaces every editable field of an archive.
func (s *Service) Update(ctx context.Context, id string, in domarchive.Input) (domarchive.Archive, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return domarchive.Archive{}, err
	}
	a, err := domarchive.Replace(existing, in, s.now())
	if err != nil {
		return domarchive.Archive{}, err
	}
	if err := s.repo.Save(ctx, &a); err != nil {
		return domarchive.Archive{}, fmt.Errorf("save archive: %w", err)
	}
	return a, nil
}

// Patch applies a partial update.
func (s *Service) Patch(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return domarchive.Archive{}, err
	}
	a, err := p.Apply(existing, s.now())
	if err != nil {
		return domarchive.Archive{}, err
	}
	if err := s.repo.Save(ctx, &a); err != nil {
		return domarchive.Archive{}, fmt.Errorf("save archive: %w", err)
	}
	return a, nil
}

// Delete removes an archive and, when configured, its attachments.
// Attachment cleanup failures are logged and do not fail the delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	if s.attachments != nil {
		if err := s.attachments.DeleteAll(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("attachment cleanup failed",
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

// SearchOptions narrows and pages a keyword search.
type SearchOptions struct {
	Category domarchive.Category
	Status   domarchive.Status
	Offset   int
	Limit    int
}

// SearchResult is one page of matches plus the total match count in the scanned window.
type SearchResult struct {
	Items []domarchive.Archive
	Total int
}

// Search scans the most recent records and returns those matching query.
func (s *Service) Search(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	metrics.SearchRequestsTotal.Inc()

	lo := domarchive.ListOptions{
		Category: opts.Category,
		Status:   opts.Status,
		Order:    domarchive.OrderRecent,
		Offset:   opts.Offset,
		Limit:    opts.Limit,
	}
	if err := lo.Validate(); err != nil {
		return SearchResult{}, err
	}

	pool, err := s.repo.List(ctx, domarchive.ListOptions{
		Category: opts.Category,
		Status:   opts.Status,
		Order:    domarchive.OrderRecent,
		Limit:    s.searchPool,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("load search pool: %w", err)
	}

	matches := keyword.Search(pool, query)
	return SearchResult{
		Items: page(matches, opts.Offset, s.clamp(opts.Limit, s.defaultPageSize)),
		Total: len(matches),
	}, nil
}

// RelatedResult holds recommendations and the score of each one.
// Scores are zero in fallback mode.
type RelatedResult struct {
	Mode   related.Mode
	Items  []domarchive.Archive
	Scores []int
}

// Related recommends records similar to the archive id.
func (s *Service) Related(ctx context.Context, id string, limit int) (RelatedResult, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return RelatedResult{}, err
	}
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	limit = min(limit, s.maxPageSize)

	mode := related.ModeFor(&current)
	// One extra row so the pool still holds relatedPool candidates once current is dropped.
	opts := domarchive.ListOptions{Order: domarchive.OrderRecent, Limit: s.relatedPool + 1}
	if mode == related.ModeFallback {
		opts.Category = current.Category
	}
	rows, err := s.repo.List(ctx, opts)
	if err != nil {
		return RelatedResult{}, fmt.Errorf("load related pool: %w", err)
	}
	pool := candidates(rows, current.ID, s.relatedPool)
	metrics.RelatedRequestsTotal.WithLabelValues(string(mode)).Inc()

	items := related.Related(&current, pool, limit, s.weights)
	scores := make([]int, len(items))
	if mode == related.ModeScored {
		for i := range items {
			scores[i] = related.Score(&current, &items[i], s.weights)
		}
	}
	return RelatedResult{Mode: mode, Items: items, Scores: scores}, nil
}

// candidates drops the record id from rows and keeps at most n of the rest.
func candidates(rows []domarchive.Archive, id string, n int) []domarchive.Archive {
	out := make([]domarchive.Archive, 0, min(len(rows), n))
	for i := range rows {
		if len(out) == n {
			break
		}
		if rows[i].ID != id {
			out = append(out, rows[i])
		}
	}
	return out
}

// RelatedByTags returns records sharing at least one of tags with the archive id,
// newest first. No tags means no results.
func (s *Service) RelatedByTags(ctx context.Context, id string, tags []string, limit int) ([]domarchive.Archive, error) {
	if len(tags) == 0 {
		return []domarchive.Archive{}, nil
	}
	if limit <= 0 {
		limit = defaultByTagsLimit
	}
	items, err := s.repo.Overlapping(ctx, id, tags, min(limit, s.maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("overlapping archives: %w", err)
	}
	return items, nil
}

// RecordView counts one view in the background. It never blocks the caller
// and never reports failure; errors are logged and counted.
func (s *Service) RecordView(ctx context.Context, id string) {
	if domarchive.ValidateID(id) != nil {
		return
	}
	log := logger.FromContext(ctx)
	detached := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(detached, s.viewTimeout)
		defer cancel()

		if err := s.repo.IncrementViews(ctx, id); err != nil {
			metrics.ViewIncrementsTotal.WithLabelValues("error").Inc()
			log.Warn("view increment failed", zap.String("id", id), zap.Error(err))
			return
		}
		metrics.ViewIncrementsTotal.WithLabelValues("ok").Inc()
	}()
}

// Wait blocks until every pending view increment has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) clamp(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, s.maxPageSize)
}

func page(items []domarchive.Archive, offset, limit int) []domarchive.Archive {
	if offset >= len(items) {
		return []domarchive.Archive{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// Package archivesql stores archives in a SQL database through gorm.
// Tag filters rely on SQLite's json_each.
package archivesql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lightsoft-dev/light-archive/internal/db"
	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

const hasTag = "EXISTS (SELECT 1 FROM json_each(archive_items.tags) WHERE json_each.value = ?)"

const hasAnyTag = "EXISTS (SELECT 1 FROM json_each(archive_items.tags) WHERE json_each.value IN ?)"

// Repo implements usecase/archive.Repository on gorm.
type Repo struct {
	db *gorm.DB
}

// New creates a repository over g.
func New(g *gorm.DB) *Repo {
	return &Repo{db: g}
}

// Migrate creates or updates the archive_items table.
func (r *Repo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&archiveRow{}); err != nil {
		return fmt.Errorf("migrate archive_items: %w", err)
	}
	return nil
}

// Get returns an archive by ID.
func (r *Repo) Get(ctx context.Context, id string) (domarchive.Archive, error) {
	var row archiveRow
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domarchive.Archive{}, domain.ErrArchiveNotFound
		}
		return domarchive.Archive{}, fmt.Errorf("select %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// List returns archives matching opts.
func (r *Repo) List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	q := r.db.WithContext(ctx).Model(&archiveRow{})
	if opts.Category != "" {
		q = q.Where("category = ?", string(opts.Category))
	}
	if opts.SubCategory != "" {
		q = q.Where("sub_category = ?", opts.SubCategory)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Tag != "" {
		q = q.Where(hasTag, opts.Tag)
	}
	q = ordered(q, opts.Order)
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return find(q)
}

// Overlapping returns archives sharing at least one tag with tags, newest first.
func (r *Repo) Overlapping(
	ctx context.Context, excludeID string, tags []string, limit int,
) ([]domarchive.Archive, error) {
	if len(tags) == 0 || limit <= 0 {
		return []domarchive.Archive{}, nil
	}
	q := r.db.WithContext(ctx).Model(&archiveRow{}).
		Where("id <> ?", excludeID).
		Where(hasAnyTag, tags)
	return find(ordered(q, domarchive.OrderRecent).Limit(limit))
}

// Create inserts a new archive.
func (r *Repo) Create(ctx context.Context, a *domarchive.Archive) error {
	row := toRow(a)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("archive %s: %w", a.ID, db.ErrKeyExists)
		}
		return fmt.Errorf("insert %s: %w", a.ID, err)
	}
	return nil
}

// Save replaces every column of a stored archive except the view counter.
func (r *Repo) Save(ctx context.Context, a *domarchive.Archive) error {
	row := toRow(a)
	res := r.db.WithContext(ctx).
		Model(&archiveRow{}).
		Where("id = ?", a.ID).
		Select("*").
		Omit("id", "view_count", "created_at").
		Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

// Delete removes an archive.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&archiveRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

// IncrementViews atomically adds one view.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&archiveRow{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("inc views %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrArchiveNotFound
	}
	return nil
}

func ordered(q *gorm.DB, o domarchive.Order) *gorm.DB {
	if o == domarchive.OrderPopular {
		q = q.Order("view_count DESC")
	}
	return q.Order("created_at DESC").Order("id DESC")
}

func find(q *gorm.DB) ([]domarchive.Archive, error) {
	var rows []archiveRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	out := make([]domarchive.Archive, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

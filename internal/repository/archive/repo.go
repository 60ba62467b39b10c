package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/lightsoft-dev/light-archive/internal/db"
	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// mgetBatch bounds the number of keys per JSON.MGET round-trip.
const mgetBatch = 100

// store is the consumer interface for archives (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZIncrBy(ctx context.Context, key, member string, incr float64) (float64, error)
	ZRem(ctx context.Context, key string, members ...string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZMScore(ctx context.Context, key string, members []string) ([]db.Score, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
}

// Repo implements usecase/archive.Repository on RedisJSON plus sorted-set and set indexes.
type Repo struct {
	store store
}

// New creates an archive repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns an archive by ID with its current view count.
func (r *Repo) Get(ctx context.Context, id string) (domarchive.Archive, error) {
	a, err := r.load(ctx, id)
	if err != nil {
		return domarchive.Archive{}, err
	}
	if err := r.mergeViews(ctx, []domarchive.Archive{a}); err != nil {
		return domarchive.Archive{}, err
	}
	return a, nil
}

// load reads the stored document without touching the views index.
func (r *Repo) load(ctx context.Context, id string) (domarchive.Archive, error) {
	key := docKey(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domarchive.Archive{}, domain.ErrArchiveNotFound
		}
		return domarchive.Archive{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	var doc archiveJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domarchive.Archive{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc.toDomain(), nil
}

// List returns archives matching opts in the requested order.
// Category and tag filters are resolved from set indexes before any document is read.
func (r *Repo) List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error) {
	orderKey := createdKey()
	if opts.Order == domarchive.OrderPopular {
		orderKey = viewsKey()
	}
	ids, err := r.store.ZRevRange(ctx, orderKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", orderKey, err)
	}

	if opts.Category != "" {
		if ids, err = r.intersect(ctx, ids, categoryKey(string(opts.Category))); err != nil {
			return nil, err
		}
	}
	if opts.Tag != "" {
		if ids, err = r.intersect(ctx, ids, tagKey(opts.Tag)); err != nil {
			return nil, err
		}
	}

	out := make([]domarchive.Archive, 0)
	skipped := 0
	for start := 0; start < len(ids); start += mgetBatch {
		end := min(start+mgetBatch, len(ids))
		batch, err := r.loadMany(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for i := range batch {
			if !opts.Matches(&batch[i]) {
				continue
			}
			if skipped < opts.Offset {
				skipped++
				continue
			}
			out = append(out, batch[i])
			if opts.Limit > 0 && len(out) == opts.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// Overlapping returns archives sharing at least one tag with tags, newest first.
func (r *Repo) Overlapping(
	ctx context.Context, excludeID string, tags []string, limit int,
) ([]domarchive.Archive, error) {
	out := make([]domarchive.Archive, 0)
	if len(tags) == 0 || limit <= 0 {
		return out, nil
	}

	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = tagKey(t)
	}
	members, err := r.store.SUnion(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("sunion tags: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, id := range members {
		if id != excludeID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	scores, err := r.store.ZMScore(ctx, createdKey(), ids)
	if err != nil {
		return nil, fmt.Errorf("zmscore created: %w", err)
	}
	created := make(map[string]float64, len(ids))
	for i, id := range ids {
		created[id] = scores[i].Value
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if created[ids[i]] != created[ids[j]] {
			return created[ids[i]] > created[ids[j]]
		}
		return ids[i] > ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return r.loadMany(ctx, ids)
}

// Create stores a new archive and registers it in every index.
func (r *Repo) Create(ctx context.Context, a *domarchive.Archive) error {
	key := docKey(a.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("archive %s: %w", a.ID, db.ErrKeyExists)
	}

	if err := r.write(ctx, a); err != nil {
		return err
	}
	if err := r.store.ZAdd(ctx, createdKey(), a.ID, float64(a.CreatedAt.UnixMilli())); err != nil {
		return fmt.Errorf("index created %s: %w", a.ID, err)
	}
	if err := r.store.ZAdd(ctx, viewsKey(), a.ID, float64(a.ViewCount)); err != nil {
		return fmt.Errorf("index views %s: %w", a.ID, err)
	}
	return r.index(ctx, a.ID, nil, a)
}

// Save replaces a stored archive. The view counter is left untouched.
func (r *Repo) Save(ctx context.Context, a *domarchive.Archive) error {
	old, err := r.load(ctx, a.ID)
	if err != nil {
		return err
	}
	if err := r.write(ctx, a); err != nil {
		return err
	}
	return r.index(ctx, a.ID, &old, a)
}

// Delete removes an archive and its index entries.
func (r *Repo) Delete(ctx context.Context, id string) error {
	old, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	key := docKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.ZRem(ctx, createdKey(), id); err != nil {
		return fmt.Errorf("unindex created %s: %w", id, err)
	}
	if err := r.store.ZRem(ctx, viewsKey(), id); err != nil {
		return fmt.Errorf("unindex views %s: %w", id, err)
	}
	return r.index(ctx, id, &old, nil)
}

// IncrementViews adds one view to an existing archive. The views member is
// created with the document and removed on delete, so its presence is the
// existence check.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.store.ZIncrBy(ctx, viewsKey(), id, 1); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrArchiveNotFound
		}
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	return nil
}

func (r *Repo) write(ctx context.Context, a *domarchive.Archive) error {
	key := docKey(a.ID)
	data, err := json.Marshal(toJSON(a))
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// index moves id between category and tag sets to reflect the change from old to cur.
// Either side may be nil.
func (r *Repo) index(ctx context.Context, id string, old, cur *domarchive.Archive) error {
	var oldCat, curCat string
	var oldTags, curTags []string
	if old != nil {
		oldCat, oldTags = string(old.Category), old.Tags
	}
	if cur != nil {
		curCat, curTags = string(cur.Category), cur.Tags
	}

	if oldCat != curCat {
		if oldCat != "" {
			if err := r.store.SRem(ctx, categoryKey(oldCat), id); err != nil {
				return fmt.Errorf("unindex category %s: %w", id, err)
			}
		}
		if curCat != "" {
			if err := r.store.SAdd(ctx, categoryKey(curCat), id); err != nil {
				return fmt.Errorf("index category %s: %w", id, err)
			}
		}
	}

	removed, added := diff(oldTags, curTags)
	for _, t := range removed {
		if err := r.store.SRem(ctx, tagKey(t), id); err != nil {
			return fmt.Errorf("unindex tag %s: %w", id, err)
		}
	}
	for _, t := range added {
		if err := r.store.SAdd(ctx, tagKey(t), id); err != nil {
			return fmt.Errorf("index tag %s: %w", id, err)
		}
	}
	return nil
}

// intersect keeps the ids (in order) that are members of setKey.
func (r *Repo) intersect(ctx context.Context, ids []string, setKey string) ([]string, error) {
	members, err := r.store.SMembers(ctx, setKey)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", setKey, err)
	}
	in := make(map[string]struct{}, len(members))
	for _, m := range members {
		in[m] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := in[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// loadMany reads documents in id order, skipping ids whose document has vanished.
func (r *Repo) loadMany(ctx context.Context, ids []string) ([]domarchive.Archive, error) {
	out := make([]domarchive.Archive, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	raws, err := r.store.JSONMGet(ctx, keys, ".")
	if err != nil {
		return nil, fmt.Errorf("json.mget: %w", err)
	}
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		var doc archiveJSON
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, doc.toDomain())
	}
	if err := r.mergeViews(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeViews overwrites ViewCount with the views sorted set score.
func (r *Repo) mergeViews(ctx context.Context, as []domarchive.Archive) error {
	if len(as) == 0 {
		return nil
	}
	ids := make([]string, len(as))
	for i := range as {
		ids[i] = as[i].ID
	}
	scores, err := r.store.ZMScore(ctx, viewsKey(), ids)
	if err != nil {
		return fmt.Errorf("zmscore views: %w", err)
	}
	for i := range as {
		if i < len(scores) && scores[i].OK {
			as[i].ViewCount = int64(scores[i].Value)
		}
	}
	return nil
}

// diff returns the distinct values only in old and only in cur.
func diff(old, cur []string) (removed, added []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, v := range old {
		oldSet[v] = struct{}{}
	}
	curSet := make(map[string]struct{}, len(cur))
	for _, v := range cur {
		curSet[v] = struct{}{}
	}
	for v := range oldSet {
		if _, ok := curSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	for v := range curSet {
		if _, ok := oldSet[v]; !ok {
			added = append(added, v)
		}
	}
	sort.Strings(removed)
	sort.Strings(added)
	return removed, added
}

package archive

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/lightsoft-dev/light-archive/internal/db"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// mockStore is an in-memory implementation of the consumer interface.
// Set errs[op] to make the matching db.Op fail.
type mockStore struct {
	docs  map[string][]byte
	zsets map[string]map[string]float64
	sets  map[string]map[string]struct{}
	errs  map[string]error
	calls []string
}

func newMockStore() *mockStore {
	return &mockStore{
		docs:  map[string][]byte{},
		zsets: map[string]map[string]float64{},
		sets:  map[string]map[string]struct{}{},
		errs:  map[string]error{},
	}
}

func (m *mockStore) fail(op string) error {
	m.calls = append(m.calls, op)
	if err, ok := m.errs[op]; ok {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}

func (m *mockStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	if err := m.fail(db.OpJSONSet); err != nil {
		return err
	}
	m.docs[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	if err := m.fail(db.OpJSONGet); err != nil {
		return nil, err
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return d, nil
}

func (m *mockStore) JSONMGet(_ context.Context, keys []string, _ string) ([][]byte, error) {
	if err := m.fail(db.OpJSONMGet); err != nil {
		return nil, err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.docs[k]
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	if err := m.fail(db.OpDel); err != nil {
		return err
	}
	for _, k := range keys {
		delete(m.docs, k)
	}
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	if err := m.fail(db.OpExists); err != nil {
		return false, err
	}
	_, ok := m.docs[key]
	return ok, nil
}

func (m *mockStore) zset(key string) map[string]float64 {
	z, ok := m.zsets[key]
	if !ok {
		z = map[string]float64{}
		m.zsets[key] = z
	}
	return z
}

func (m *mockStore) ZAdd(_ context.Context, key, member string, score float64) error {
	if err := m.fail(db.OpZAdd); err != nil {
		return err
	}
	m.zset(key)[member] = score
	return nil
}

func (m *mockStore) ZIncrBy(_ context.Context, key, member string, incr float64) (float64, error) {
	if err := m.fail(db.OpZIncrBy); err != nil {
		return 0, err
	}
	z := m.zset(key)
	if _, ok := z[member]; !ok {
		return 0, db.ErrKeyNotFound
	}
	z[member] += incr
	return z[member], nil
}

func (m *mockStore) ZRem(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpZRem); err != nil {
		return err
	}
	for _, mem := range members {
		delete(m.zset(key), mem)
	}
	return nil
}

// ZRevRange mirrors Redis: score desc, then member desc for equal scores.
func (m *mockStore) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	if err := m.fail(db.OpZRange); err != nil {
		return nil, err
	}
	z := m.zset(key)
	members := make([]string, 0, len(z))
	for mem := range z {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool {
		if z[members[i]] != z[members[j]] {
			return z[members[i]] > z[members[j]]
		}
		return members[i] > members[j]
	})
	n := int64(len(members))
	if stop < 0 {
		stop = n + stop
	}
	if start >= n || start > stop {
		return []string{}, nil
	}
	if stop >= n {
		stop = n - 1
	}
	return members[start : stop+1], nil
}

func (m *mockStore) ZMScore(_ context.Context, key string, members []string) ([]db.Score, error) {
	if err := m.fail(db.OpZMScore); err != nil {
		return nil, err
	}
	z := m.zset(key)
	out := make([]db.Score, len(members))
	for i, mem := range members {
		if v, ok := z[mem]; ok {
			out[i] = db.Score{Value: v, OK: true}
		}
	}
	return out, nil
}

func (m *mockStore) set(key string) map[string]struct{} {
	s, ok := m.sets[key]
	if !ok {
		s = map[string]struct{}{}
		m.sets[key] = s
	}
	return s
}

func (m *mockStore) SAdd(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpSAdd); err != nil {
		return err
	}
	for _, mem := range members {
		m.set(key)[mem] = struct{}{}
	}
	return nil
}

func (m *mockStore) SRem(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpSRem); err != nil {
		return err
	}
	for _, mem := range members {
		delete(m.set(key), mem)
	}
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	if err := m.fail(db.OpSMembers); err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for mem := range m.set(key) {
		out = append(out, mem)
	}
	return out, nil
}

func (m *mockStore) SUnion(_ context.Context, keys ...string) ([]string, error) {
	if err := m.fail(db.OpSUnion); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, k := range keys {
		for mem := range m.set(k) {
			if _, ok := seen[mem]; !ok {
				seen[mem] = struct{}{}
				out = append(out, mem)
			}
		}
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms), ms
}

var baseTime = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

func testArchive(id string, cat domarchive.Category, tags []string, hoursAfter int) domarchive.Archive {
	ts := baseTime.Add(time.Duration(hoursAfter) * time.Hour)
	return domarchive.Archive{
		ID:        id,
		Title:     "title " + id,
		Category:  cat,
		Status:    domarchive.StatusPublished,
		Tags:      tags,
		Content:   "<p>" + id + "</p>",
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// seed stores archives through the repository so every index is populated.
func seed(t *testing.T, r *Repo, as ...domarchive.Archive) {
	t.Helper()
	for i := range as {
		if err := r.Create(context.Background(), &as[i]); err != nil {
			t.Fatalf("seed %s: %v", as[i].ID, err)
		}
	}
}

func storedDoc(t *testing.T, ms *mockStore, id string) archiveJSON {
	t.Helper()
	raw, ok := ms.docs[docKey(id)]
	if !ok {
		t.Fatalf("document %s not stored", id)
	}
	var doc archiveJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode stored doc: %v", err)
	}
	return doc
}

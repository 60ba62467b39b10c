package archive

import "github.com/lightsoft-dev/light-archive/internal/domain"

// Order selects the sort of a listing.
type Order string

const (
	// OrderRecent sorts by created_at descending.
	OrderRecent Order = "recent"
	// OrderPopular sorts by view_count descending.
	OrderPopular Order = "popular"
)

// ListOptions filters and pages a listing. Empty filters match everything.
type ListOptions struct {
	Category    Category
	SubCategory string
	Status      Status
	Tag         string
	Order       Order
	Offset      int
	Limit       int
}

// Validate rejects unknown orders and statuses and negative paging.
func (o ListOptions) Validate() error {
	switch o.Order {
	case "", OrderRecent, OrderPopular:
	default:
		return domain.Invalid("unknown order %q", o.Order)
	}
	if o.Status != "" && !o.Status.Valid() {
		return domain.Invalid("unknown status %q", o.Status)
	}
	if o.Offset < 0 || o.Limit < 0 {
		return domain.Invalid("offset and limit must be non-negative")
	}
	return nil
}

// Matches reports whether a passes the filters of o. Paging is not considered.
func (o ListOptions) Matches(a *Archive) bool {
	if o.Category != "" && a.Category != o.Category {
		return false
	}
	if o.SubCategory != "" && a.SubCategory != o.SubCategory {
		return false
	}
	if o.Status != "" && a.Status != o.Status {
		return false
	}
	if o.Tag != "" {
		found := false
		for _, t := range a.Tags {
			if t == o.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

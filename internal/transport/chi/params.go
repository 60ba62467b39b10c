package chi

import (
	"net/http"
	"net/url"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// queryParam binds an optional form-style query parameter into dest.
func queryParam(q url.Values, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return domain.Invalid("invalid query parameter %q", name)
	}
	return nil
}

// pathParam binds a required simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chirouter.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", domain.Invalid("invalid path parameter %q", name)
	}
	return v, nil
}

type pageParams struct {
	Limit  *int
	Offset *int
}

func (p *pageParams) bind(q url.Values) error {
	if err := queryParam(q, "limit", &p.Limit); err != nil {
		return err
	}
	return queryParam(q, "offset", &p.Offset)
}

func (p *pageParams) limit() int  { return deref(p.Limit) }
func (p *pageParams) offset() int { return deref(p.Offset) }

type listParams struct {
	pageParams
	Category    *string
	SubCategory *string
	Status      *string
	Tag         *string
	Order       *string
}

func bindListParams(q url.Values) (domarchive.ListOptions, error) {
	var p listParams
	if err := p.bind(q); err != nil {
		return domarchive.ListOptions{}, err
	}
	for name, dest := range map[string]any{
		"category":     &p.Category,
		"sub_category": &p.SubCategory,
		"status":       &p.Status,
		"tag":          &p.Tag,
		"order":        &p.Order,
	} {
		if err := queryParam(q, name, dest); err != nil {
			return domarchive.ListOptions{}, err
		}
	}
	return domarchive.ListOptions{
		Category:    domarchive.Category(deref(p.Category)),
		SubCategory: deref(p.SubCategory),
		Status:      domarchive.Status(deref(p.Status)),
		Tag:         deref(p.Tag),
		Order:       domarchive.Order(deref(p.Order)),
		Offset:      p.offset(),
		Limit:       p.limit(),
	}, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

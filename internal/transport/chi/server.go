package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	"github.com/lightsoft-dev/light-archive/internal/domain/search/keyword"
	"github.com/lightsoft-dev/light-archive/internal/logger"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
	healthuc "github.com/lightsoft-dev/light-archive/internal/usecase/health"
)

const defaultMaxBodyBytes = 4 << 20

// Server serves the archive HTTP API.
type Server struct {
	archives     ArchiveService
	attachments  AttachmentService
	auth         AuthService
	health       HealthChecker
	ai           AIStatusReporter
	files        FileOpener
	maxBodyBytes int64
}

// NewServer creates an HTTP API server. files may be nil.
func NewServer(
	archives ArchiveService,
	attachments AttachmentService,
	auth AuthService,
	health HealthChecker,
	ai AIStatusReporter,
	files FileOpener,
) *Server {
	return &Server{
		archives:     archives,
		attachments:  attachments,
		auth:         auth,
		health:       health,
		ai:           ai,
		files:        files,
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes caps JSON request bodies.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/ai/status", s.AIStatus)

	r.Post("/auth/login", s.Login)
	r.Post("/auth/logout", s.Logout)

	r.Get("/files/*", s.ServeFile)
	r.Get("/tags/{tag}/archives", s.ArchivesByTag)

	r.Route("/archives", func(r chirouter.Router) {
		r.Get("/", s.ListArchives)
		r.Get("/search", s.SearchArchives)
		r.Get("/popular", s.PopularArchives)
		r.Get("/recent", s.RecentArchives)
		r.Get("/projects", s.ProjectArchives)
		r.Get("/skills", s.SkillArchives)
		r.Get("/{id}", s.GetArchive)
		r.Get("/{id}/related", s.RelatedArchives)
		r.Get("/{id}/related-by-tags", s.RelatedArchivesByTags)
		r.Post("/{id}/views", s.RecordView)
		r.Get("/{id}/attachments", s.ListAttachments)

		r.Group(func(r chirouter.Router) {
			r.Use(BearerAuthMiddleware(s.auth))
			r.Post("/", s.CreateArchive)
			r.Put("/{id}", s.ReplaceArchive)
			r.Patch("/{id}", s.PatchArchive)
			r.Delete("/{id}", s.DeleteArchive)
			r.Post("/{id}/attachments", s.UploadAttachment)
			r.Delete("/{id}/attachments", s.DeleteAttachment)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// AIStatus handles GET /ai/status.
func (s *Server) AIStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.ai.Status()
	writeJSON(w, http.StatusOK, AIStatusResponse{Configured: st.Configured, Message: st.Message})
}

// ListArchives handles GET /archives.
func (s *Server) ListArchives(w http.ResponseWriter, r *http.Request) {
	opts, err := bindListParams(r.URL.Query())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := s.archives.List(r.Context(), opts)
	s.writeArchives(w, r, items, err)
}

// SearchArchives handles GET /archives/search.
func (s *Server) SearchArchives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		p        pageParams
		query    *string
		category *string
		status   *string
	)
	for name, dest := range map[string]any{"q": &query, "category": &category, "status": &status} {
		if err := queryParam(q, name, dest); err != nil {
			handleDomainError(w, r, err)
			return
		}
	}
	if err := p.bind(q); err != nil {
		handleDomainError(w, r, err)
		return
	}

	term := deref(query)
	res, err := s.archives.Search(r.Context(), term, archiveuc.SearchOptions{
		Category: domarchive.Category(deref(category)),
		Status:   domarchive.Status(deref(status)),
		Offset:   p.offset(),
		Limit:    p.limit(),
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	hits := make([]SearchHit, len(res.Items))
	for i := range res.Items {
		hits[i] = SearchHit{
			Archive:          archiveToWire(&res.Items[i]),
			HighlightedTitle: keyword.Highlight(res.Items[i].Title, term),
		}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: term, Items: hits, Total: res.Total})
}

// PopularArchives handles GET /archives/popular.
func (s *Server) PopularArchives(w http.ResponseWriter, r *http.Request) {
	var p pageParams
	if err := p.bind(r.URL.Query()); err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := s.archives.Popular(r.Context(), p.limit())
	s.writeArchives(w, r, items, err)
}

// RecentArchives handles GET /archives/recent.
func (s *Server) RecentArchives(w http.ResponseWriter, r *http.Request) {
	var p pageParams
	if err := p.bind(r.URL.Query()); err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := s.archives.Recent(r.Context(), p.limit())
	s.writeArchives(w, r, items, err)
}

// ProjectArchives handles GET /archives/projects.
func (s *Server) ProjectArchives(w http.ResponseWriter, r *http.Request) {
	items, err := s.archives.Projects(r.Context())
	s.writeArchives(w, r, items, err)
}

// SkillArchives handles GET /archives/skills.
func (s *Server) SkillArchives(w http.ResponseWriter, r *http.Request) {
	items, err := s.archives.Skills(r.Context())
	s.writeArchives(w, r, items, err)
}

// ArchivesByTag handles GET /tags/{tag}/archives.
func (s *Server) ArchivesByTag(w http.ResponseWriter, r *http.Request) {
	tag, err := pathParam(r, "tag")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	items, err := s.archives.ByTag(r.Context(), tag)
	s.writeArchives(w, r, items, err)
}

// GetArchive handles GET /archives/{id}.
func (s *Server) GetArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a, err := s.archives.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archiveToWire(&a))
}

// RelatedArchives handles GET /archives/{id}/related.
func (s *Server) RelatedArchives(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	var p pageParams
	if err := p.bind(r.URL.Query()); err != nil {
		handleDomainError(w, r, err)
		return
	}
	res, err := s.archives.Related(r.Context(), id, p.limit())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	items := make([]RelatedItem, len(res.Items))
	for i := range res.Items {
		items[i] = RelatedItem{Archive: archiveToWire(&res.Items[i]), Score: res.Scores[i]}
	}
	writeJSON(w, http.StatusOK, RelatedResponse{Mode: string(res.Mode), Items: items})
}

// RelatedArchivesByTags handles GET /archives/{id}/related-by-tags.
// Without ?tags the record's own tags are used.
func (s *Server) RelatedArchivesByTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	q := r.URL.Query()
	var p pageParams
	if err := p.bind(q); err != nil {
		handleDomainError(w, r, err)
		return
	}
	var tags []string
	if err := runtime.BindQueryParameter("form", false, false, "tags", q, &tags); err != nil {
		handleDomainError(w, r, domain.Invalid("invalid query parameter %q", "tags"))
		return
	}
	if len(tags) == 0 {
		a, err := s.archives.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		tags = a.Tags
	}
	items, err := s.archives.RelatedByTags(r.Context(), id, tags, p.limit())
	s.writeArchives(w, r, items, err)
}

// RecordView handles POST /archives/{id}/views. It always answers 202.
func (s *Server) RecordView(w http.ResponseWriter, r *http.Request) {
	s.archives.RecordView(r.Context(), chirouter.URLParam(r, "id"))
	w.WriteHeader(http.StatusAccepted)
}

// CreateArchive handles POST /archives.
func (s *Server) CreateArchive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.archives.Create(r.Context(), req.toInput())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/archives/"+a.ID)
	writeJSON(w, http.StatusCreated, archiveToWire(&a))
}

// ReplaceArchive handles PUT /archives/{id}.
func (s *Server) ReplaceArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	var req ArchiveRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.archives.Update(r.Context(), id, req.toInput())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archiveToWire(&a))
}

// PatchArchive handles PATCH /archives/{id}.
func (s *Server) PatchArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	var req PatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := patch.New(req.toFields())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a, err := s.archives.Patch(r.Context(), id, p)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, archiveToWire(&a))
}

// DeleteArchive handles DELETE /archives/{id}.
func (s *Server) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if err := s.archives.Delete(r.Context(), id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeArchives(w http.ResponseWriter, r *http.Request, items []domarchive.Archive, err error) {
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveList{Items: archivesToWire(items), Count: len(items)})
}

// decode reads a JSON body into v, answering 400 or 413 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// ServeFile handles GET /files/*.
func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, domain.ErrObjectNotFound.Error())
		return
	}
	p := strings.TrimPrefix(chirouter.URLParam(r, "*"), "/")
	rc, contentType, err := s.files.Open(r.Context(), p)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	defer rc.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		logger.FromContext(r.Context()).Warn("file stream interrupted", zap.String("path", p), zap.Error(err))
	}
}

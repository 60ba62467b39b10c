package chi

import (
	"errors"
	"net/http"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domatt "github.com/lightsoft-dev/light-archive/internal/domain/attachment"
)

const multipartMemory = 8 << 20

// ListAttachments handles GET /archives/{id}/attachments.
func (s *Server) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	atts, err := s.attachments.List(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attachmentsToWire(atts))
}

// UploadAttachment handles POST /archives/{id}/attachments with a multipart "file" part.
func (s *Server) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.attachments.MaxUploadBytes()+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleDomainError(w, r, domain.ErrPayloadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, `multipart part "file" is required`)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	att, err := s.attachments.Upload(r.Context(), id, header.Filename, contentType, header.Size, file)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachmentToWire(att))
}

// DeleteAttachment handles DELETE /archives/{id}/attachments?url=.
func (s *Server) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	var url string
	if err := queryParam(r.URL.Query(), "url", &url); err != nil {
		handleDomainError(w, r, err)
		return
	}
	if url == "" {
		handleDomainError(w, r, domain.Invalid("url is required"))
		return
	}
	if err := s.attachments.Delete(r.Context(), id, url); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func attachmentsToWire(atts []domatt.Attachment) []Attachment {
	out := make([]Attachment, len(atts))
	for i, a := range atts {
		out[i] = attachmentToWire(a)
	}
	return out
}

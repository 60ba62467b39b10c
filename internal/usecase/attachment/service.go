package attachment

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domatt "github.com/lightsoft-dev/light-archive/internal/domain/attachment"
	"github.com/lightsoft-dev/light-archive/internal/logger"
	"github.com/lightsoft-dev/light-archive/internal/metrics"
)

const defaultMaxUpload = 20 << 20

// Service manages the files attached to archive records.
type Service struct {
	blobs    BlobStore
	archives ArchiveReader
	maxBytes int64
	now      func() time.Time
}

// New creates an attachment service.
func New(blobs BlobStore, archives ArchiveReader) *Service {
	return &Service{
		blobs:    blobs,
		archives: archives,
		maxBytes: defaultMaxUpload,
		now:      time.Now,
	}
}

// WithMaxUploadBytes configures the upload size limit.
func (s *Service) WithMaxUploadBytes(n int64) *Service {
	if n > 0 {
		s.maxBytes = n
	}
	return s
}

// MaxUploadBytes returns the upload size limit.
func (s *Service) MaxUploadBytes() int64 { return s.maxBytes }

// List returns the attachments of an archive, oldest upload first.
func (s *Service) List(ctx context.Context, archiveID string) ([]domatt.Attachment, error) {
	objs, err := s.blobs.List(ctx, domatt.Folder(archiveID))
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	out := make([]domatt.Attachment, 0, len(objs))
	for _, o := range objs {
		if path.Base(o.Path) == domatt.Placeholder {
			continue
		}
		out = append(out, s.toAttachment(o))
	}
	return out, nil
}

// Upload stores r as a new attachment of archiveID. size may be -1 when unknown;
// the stream is then cut at the limit.
func (s *Service) Upload(
	ctx context.Context, archiveID, name, contentType string, size int64, r io.Reader,
) (domatt.Attachment, error) {
	if strings.TrimSpace(name) == "" {
		return domatt.Attachment{}, domain.Invalid("file name is required")
	}
	if size > s.maxBytes {
		return domatt.Attachment{}, fmt.Errorf("%d bytes exceeds %d: %w", size, s.maxBytes, domain.ErrPayloadTooLarge)
	}
	if _, err := s.archives.Get(ctx, archiveID); err != nil {
		return domatt.Attachment{}, fmt.Errorf("get archive: %w", err)
	}

	p := domatt.Path(archiveID, name, s.now())
	lr := &limitedReader{r: r, limit: s.maxBytes}
	if err := s.blobs.Put(ctx, p, lr, size, contentType); err != nil {
		if lr.exceeded {
			_ = s.blobs.Delete(ctx, p)
			return domatt.Attachment{}, fmt.Errorf("upload exceeds %d bytes: %w", s.maxBytes, domain.ErrPayloadTooLarge)
		}
		return domatt.Attachment{}, fmt.Errorf("store attachment: %w", err)
	}
	metrics.AttachmentBytesTotal.Add(float64(lr.read))

	logger.FromContext(ctx).Info("attachment uploaded",
		zap.String("archive_id", archiveID),
		zap.String("path", p),
		zap.Int64("bytes", lr.read),
	)
	return s.toAttachment(domatt.Object{Path: p, Size: lr.read, ContentType: contentType}), nil
}

// Delete removes the attachment at url. The url must point into the archive's folder.
func (s *Service) Delete(ctx context.Context, archiveID, url string) error {
	p, ok := s.blobs.Path(url)
	if !ok || !strings.HasPrefix(p, domatt.Folder(archiveID)) {
		return domain.Invalid("attachment url does not belong to archive %s", archiveID)
	}
	if err := s.blobs.Delete(ctx, p); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// DeleteAll removes every object in the archive's folder, placeholder included.
func (s *Service) DeleteAll(ctx context.Context, archiveID string) error {
	objs, err := s.blobs.List(ctx, domatt.Folder(archiveID))
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}
	if len(objs) == 0 {
		return nil
	}
	paths := make([]string, len(objs))
	for i, o := range objs {
		paths[i] = o.Path
	}
	if err := s.blobs.Delete(ctx, paths...); err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	return nil
}

func (s *Service) toAttachment(o domatt.Object) domatt.Attachment {
	return domatt.Attachment{
		Name: domatt.OriginalName(o.Path),
		URL:  s.blobs.URL(o.Path),
		Size: o.Size,
		Type: o.ContentType,
	}
}

// limitedReader fails once more than limit bytes are read.
type limitedReader struct {
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		l.exceeded = true
		return n, domain.ErrPayloadTooLarge
	}
	return n, err
}

package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

// DefaultAllowedMIME is the content allow-list used when none is configured.
var DefaultAllowedMIME = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"application/pdf",
	"video/mp4",
}

const (
	sniffLen         = 3072
	cleanupAttempts  = 3
	cleanupBaseDelay = 100 * time.Millisecond
)

// UploadLimits bounds a single multipart request.
type UploadLimits struct {
	MaxFiles    int
	MaxFileSize int64
	AllowedMIME []string
}

type UploadService struct {
	repo    ports.UploadRepository
	objects ports.ObjectStore
	limits  UploadLimits
	logger  zerolog.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

func NewUploadService(repo ports.UploadRepository, objects ports.ObjectStore, limits UploadLimits, logger zerolog.Logger) *UploadService {
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = 10
	}
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = 10 << 20
	}
	if len(limits.AllowedMIME) == 0 {
		limits.AllowedMIME = DefaultAllowedMIME
	}
	return &UploadService{
		repo:    repo,
		objects: objects,
		limits:  limits,
		logger:  logger,
		now:     utcNow,
		sleep:   time.Sleep,
	}
}

type sniffedFile struct {
	in          ports.FileInput
	contentType string
}

// Create stores every file of the batch. Each file is written to the object
// store first and its metadata row second; when the row cannot be written
// the object is removed again (best effort). A failure aborts the batch and
// rolls back the files already stored.
func (s *UploadService) Create(ctx context.Context, p domain.Principal, in ports.CreateUploadInput) ([]*domain.Upload, error) {
	if p.CompanyID == "" {
		return nil, domain.ErrForbidden.WithMessage("Uploads exigem uma empresa")
	}
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindUpload, CompanyID: p.CompanyID}, policy.ActionCreate).Err(); err != nil {
		return nil, err
	}

	files, err := s.check(in.Files)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Add(float64(len(in.Files)))
		return nil, err
	}

	stored := make([]*domain.Upload, 0, len(files))
	for _, f := range files {
		u, err := s.store(ctx, p, in, f)
		if err != nil {
			s.rollback(ctx, p, stored)
			return nil, err
		}
		stored = append(stored, u)
	}

	metrics.UploadsTotal.WithLabelValues("stored").Add(float64(len(stored)))
	return stored, nil
}

// check enforces the count, size and content-type limits before anything is
// written.
func (s *UploadService) check(files []ports.FileInput) ([]sniffedFile, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	if len(files) > s.limits.MaxFiles {
		return nil, domain.ErrTooManyFiles
	}

	out := make([]sniffedFile, 0, len(files))
	for _, f := range files {
		if f.Size > s.limits.MaxFileSize {
			return nil, domain.ErrFileTooLarge.WithFields(domain.FieldError{Field: "files", Message: f.FileName})
		}
		ct, err := s.sniff(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sniffedFile{in: f, contentType: ct})
	}
	return out, nil
}

func (s *UploadService) sniff(f ports.FileInput) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", domain.Internal(err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", domain.Internal(err)
	}

	mt := mimetype.Detect(head[:n])
	for _, allowed := range s.limits.AllowedMIME {
		if mt.Is(allowed) {
			return allowed, nil
		}
	}
	return "", domain.ErrFileTypeNotAllowed.WithFields(domain.FieldError{Field: "files", Message: f.FileName + ": " + mt.String()})
}

func (s *UploadService) store(ctx context.Context, p domain.Principal, in ports.CreateUploadInput, f sniffedFile) (*domain.Upload, error) {
	rc, err := f.in.Open()
	if err != nil {
		return nil, domain.Internal(err)
	}
	defer rc.Close()

	id := newID()
	// one byte past the limit is enough to detect oversized content
	body := io.LimitReader(rc, s.limits.MaxFileSize+1)
	size, err := s.objects.Put(ctx, id, f.in.FileName, f.contentType, body)
	if err != nil {
		s.cleanup(ctx, id)
		return nil, domain.Internal(err)
	}
	if size > s.limits.MaxFileSize {
		s.cleanup(ctx, id)
		return nil, domain.ErrFileTooLarge.WithFields(domain.FieldError{Field: "files", Message: f.in.FileName})
	}

	u := &domain.Upload{
		ID:          id,
		CompanyID:   p.CompanyID,
		UploadType:  in.UploadType,
		RelatedID:   in.RelatedID,
		FileName:    f.in.FileName,
		ContentType: f.contentType,
		Size:        size,
		StorageKey:  id,
		Description: in.Description,
	}
	u.Stamp(p.ID, s.now())

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("upload_id", id).Msg("failed to write upload metadata")
		s.cleanup(ctx, id)
		return nil, err
	}
	return u, nil
}

// cleanup removes an orphaned object. Deleting a missing object succeeds, so
// retries are safe; giving up only logs a warning.
func (s *UploadService) cleanup(ctx context.Context, key string) {
	ctx = context.WithoutCancel(ctx)
	delay := cleanupBaseDelay

	var err error
	for attempt := 1; attempt <= cleanupAttempts; attempt++ {
		if err = s.objects.Delete(ctx, key); err == nil {
			return
		}
		if attempt < cleanupAttempts {
			s.sleep(delay)
			delay *= 2
		}
	}

	metrics.UploadCleanupFailuresTotal.Inc()
	s.logger.Warn().Err(err).Str("storage_key", key).Int("attempts", cleanupAttempts).Msg("orphaned upload object could not be removed")
}

func (s *UploadService) rollback(ctx context.Context, p domain.Principal, stored []*domain.Upload) {
	for _, u := range stored {
		if err := s.repo.Delete(context.WithoutCancel(ctx), query.Tenant(p.CompanyID), u.ID); err != nil {
			s.logger.Warn().Err(err).Str("upload_id", u.ID).Msg("failed to roll back upload metadata")
		}
		s.cleanup(ctx, u.StorageKey)
	}
}

func (s *UploadService) List(ctx context.Context, p domain.Principal, filter ports.UploadFilter) (*query.Page[*domain.Upload], error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindUpload, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	filter.Scope = policy.Scope(p)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *UploadService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Upload, error) {
	u, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, uploadResource(u), policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// Open returns the metadata and a reader over the stored content. The caller
// closes the reader.
func (s *UploadService) Open(ctx context.Context, p domain.Principal, id string) (*domain.Upload, io.ReadCloser, error) {
	u, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.objects.Open(ctx, u.StorageKey)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			return nil, nil, err
		}
		return nil, nil, domain.Internal(err)
	}
	return u, rc, nil
}

// Delete removes the metadata row first so a concurrent download fails fast,
// then the object.
func (s *UploadService) Delete(ctx context.Context, p domain.Principal, id string) error {
	u, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, uploadResource(u), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policy.Scope(p), id); err != nil {
		return err
	}
	s.cleanup(ctx, u.StorageKey)
	return nil
}

func uploadResource(u *domain.Upload) policy.Resource {
	return policy.Resource{Kind: policy.KindUpload, CompanyID: u.CompanyID, OwnerID: u.CreatedBy}
}

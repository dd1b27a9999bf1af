package ports

import (
	"context"
	"io"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// UploadSpec is the list contract for uploads.
var UploadSpec = query.Spec{
	SortFields:   []string{"created_at", "file_name", "size"},
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	SearchFields: []string{"file_name", "description"},
}

// UploadFilter carries the list parameters for uploads.
type UploadFilter struct {
	Scope      query.Scope
	Params     query.Params
	UploadType string
	RelatedID  string
}

// UploadRepository persists upload metadata rows.
type UploadRepository interface {
	Create(ctx context.Context, u *domain.Upload) error
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Upload, error)
	List(ctx context.Context, filter UploadFilter) ([]*domain.Upload, int64, error)
	Delete(ctx context.Context, scope query.Scope, id string) error
	// Totals returns the number of uploads and their combined size.
	Totals(ctx context.Context, scope query.Scope) (count int64, bytes int64, err error)
}

// ObjectStore keeps file contents. Delete of a missing key succeeds.
type ObjectStore interface {
	Put(ctx context.Context, key, fileName, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// FileInput is one file of a multipart upload.
type FileInput struct {
	FileName string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// CreateUploadInput is a batch of files sharing the same metadata.
type CreateUploadInput struct {
	UploadType  domain.UploadType
	RelatedID   string
	Description string
	Files       []FileInput
}

// UploadService stores files and their metadata.
type UploadService interface {
	Create(ctx context.Context, p domain.Principal, in CreateUploadInput) ([]*domain.Upload, error)
	List(ctx context.Context, p domain.Principal, filter UploadFilter) (*query.Page[*domain.Upload], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Upload, error)
	Open(ctx context.Context, p domain.Principal, id string) (*domain.Upload, io.ReadCloser, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}

package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

var (
	pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfData = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	txtData = []byte("just some plain text")
)

func newTestUploadService(limits UploadLimits) (*UploadService, *stubUploadRepo, *stubObjectStore) {
	repo := newStubUploadRepo()
	objects := newStubObjectStore()
	svc := NewUploadService(repo, objects, limits, nopLogger)
	svc.now = fixedNow
	svc.sleep = func(time.Duration) {}
	return svc, repo, objects
}

func uploadInput(files ...ports.FileInput) ports.CreateUploadInput {
	return ports.CreateUploadInput{UploadType: domain.UploadInspection, RelatedID: "ins-1", Files: files}
}

func TestUploadService_Create_StoresFiles(t *testing.T) {
	svc, repo, objects := newTestUploadService(UploadLimits{})

	out, err := svc.Create(context.Background(), inspectorA, uploadInput(bytesFile("front.png", pngData), bytesFile("laudo.pdf", pdfData)))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(out))
	}
	if out[0].ContentType != "image/png" || out[1].ContentType != "application/pdf" {
		t.Fatalf("unexpected content types %s, %s", out[0].ContentType, out[1].ContentType)
	}
	if out[0].Size != int64(len(pngData)) {
		t.Fatalf("expected stored size %d, got %d", len(pngData), out[0].Size)
	}
	if out[0].CompanyID != "company-a" || out[0].CreatedBy != inspectorA.ID {
		t.Fatalf("unexpected ownership: %+v", out[0])
	}
	if len(repo.items) != 2 || len(objects.objects) != 2 {
		t.Fatalf("expected 2 rows and 2 objects, got %d and %d", len(repo.items), len(objects.objects))
	}
}

func TestUploadService_Create_Limits(t *testing.T) {
	cases := []struct {
		name   string
		limits UploadLimits
		files  []ports.FileInput
		want   error
	}{
		{"no files", UploadLimits{}, nil, domain.ErrNoFiles},
		{"too many", UploadLimits{MaxFiles: 1}, []ports.FileInput{bytesFile("a.png", pngData), bytesFile("b.png", pngData)}, domain.ErrTooManyFiles},
		{"too large", UploadLimits{MaxFileSize: 8}, []ports.FileInput{bytesFile("a.png", pngData)}, domain.ErrFileTooLarge},
		{"type", UploadLimits{}, []ports.FileInput{bytesFile("a.png", pngData), bytesFile("notes.png", txtData)}, domain.ErrFileTypeNotAllowed},
	}
	for _, tc := range cases {
		svc, repo, objects := newTestUploadService(tc.limits)
		if _, err := svc.Create(context.Background(), inspectorA, uploadInput(tc.files...)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if len(repo.items) != 0 || len(objects.objects) != 0 {
			t.Fatalf("%s: nothing should be stored", tc.name)
		}
	}
}

func TestUploadService_Create_ForbiddenForViewer(t *testing.T) {
	svc, _, _ := newTestUploadService(UploadLimits{})

	if _, err := svc.Create(context.Background(), viewerA, uploadInput(bytesFile("a.png", pngData))); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUploadService_Create_CleansUpWhenMetadataFails(t *testing.T) {
	svc, repo, objects := newTestUploadService(UploadLimits{})
	repo.createErr = domain.Internal(errors.New("insert failed"))
	objects.deleteFails = 1

	if _, err := svc.Create(context.Background(), inspectorA, uploadInput(bytesFile("a.png", pngData))); err == nil {
		t.Fatalf("expected error")
	}
	if len(objects.objects) != 0 {
		t.Fatalf("expected orphan object to be removed")
	}
	if objects.deleteCalls != 2 {
		t.Fatalf("expected one retry, got %d delete calls", objects.deleteCalls)
	}
}

func TestUploadService_Create_CleanupGivesUp(t *testing.T) {
	svc, repo, objects := newTestUploadService(UploadLimits{})
	repo.createErr = domain.Internal(errors.New("insert failed"))
	objects.deleteFails = 10
	before := testutil.ToFloat64(metrics.UploadCleanupFailuresTotal)

	if _, err := svc.Create(context.Background(), inspectorA, uploadInput(bytesFile("a.png", pngData))); err == nil {
		t.Fatalf("expected error")
	}
	if objects.deleteCalls != cleanupAttempts {
		t.Fatalf("expected %d delete attempts, got %d", cleanupAttempts, objects.deleteCalls)
	}
	if got := testutil.ToFloat64(metrics.UploadCleanupFailuresTotal) - before; got != 1 {
		t.Fatalf("expected cleanup failure to be counted once, got %v", got)
	}
}

func TestUploadService_OpenAndDelete(t *testing.T) {
	svc, repo, objects := newTestUploadService(UploadLimits{})
	ctx := context.Background()
	out, _ := svc.Create(ctx, inspectorA, uploadInput(bytesFile("a.png", pngData)))
	id := out[0].ID

	u, rc, err := svc.Open(ctx, viewerA, id)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != string(pngData) || u.FileName != "a.png" {
		t.Fatalf("unexpected content")
	}

	if _, _, err := svc.Open(ctx, adminB, id); !errors.Is(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected cross-tenant open to be NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, viewerA, id); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected viewer delete to be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, inspectorA, id); err != nil {
		t.Fatalf("uploader Delete returned error: %v", err)
	}
	if len(repo.items) != 0 || len(objects.objects) != 0 {
		t.Fatalf("expected row and object to be removed")
	}
}

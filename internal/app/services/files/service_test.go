package files

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/app/storage/memory"
	"github.com/shopops/backoffice/internal/errs"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return New(memory.New(), t.TempDir(), nil)
}

// repeatReader yields n zero-filled bytes without holding them in memory.
type repeatReader struct {
	remaining int64
}

func (r *repeatReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > r.remaining {
		n = r.remaining
	}
	r.remaining -= n
	return int(n), nil
}

func TestSave_WritesFileAndMetadata(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, "products", "lamp photo.PNG", "image/png", strings.NewReader("fake-png-bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if a.OriginalName != "lamp photo.PNG" {
		t.Errorf("originalName = %q", a.OriginalName)
	}
	if a.Size != int64(len("fake-png-bytes")) {
		t.Errorf("size = %d", a.Size)
	}
	if !strings.HasPrefix(a.URL, "/uploads/products/") || !strings.HasSuffix(a.URL, ".png") {
		t.Errorf("url = %q, want /uploads/products/<id>.png", a.URL)
	}

	path := filepath.Join(svc.Root(), "products", filepath.Base(a.URL))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Errorf("stored bytes = %q", data)
	}
}

func TestSave_DefaultFolderAndSanitizedName(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, "", "../../etc/passwd", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if a.Folder != "general" {
		t.Errorf("folder = %q, want general", a.Folder)
	}
	if a.OriginalName != "passwd" {
		t.Errorf("originalName = %q, want path stripped", a.OriginalName)
	}
	if strings.Contains(a.URL, "..") {
		t.Errorf("url %q must not contain path traversal", a.URL)
	}
}

func TestSave_RejectsBadFolder(t *testing.T) {
	svc := newService(t)
	_, err := svc.Save(context.Background(), "../evil", "a.txt", "text/plain", strings.NewReader("x"))
	var verr *errs.ValidationError
	if !errors.As(err, &verr) || verr.Field != "folder" {
		t.Errorf("Save() error = %v, want folder validation error", err)
	}
}

func TestSave_RejectsOversizedUpload(t *testing.T) {
	svc := newService(t)

	// A reader longer than the limit without allocating the whole thing.
	big := &repeatReader{remaining: MaxUploadSize + 2}
	_, err := svc.Save(context.Background(), "general", "big.bin", "application/octet-stream", big)
	var verr *errs.ValidationError
	if !errors.As(err, &verr) || verr.Field != "file" {
		t.Fatalf("Save() error = %v, want file validation error", err)
	}

	entries, err := os.ReadDir(filepath.Join(svc.Root(), "general"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial file left on disk: %v", entries)
	}
}

func TestDelete_RemovesRowAndFile(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, "general", "doc.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	path := filepath.Join(svc.Root(), "general", filepath.Base(a.URL))
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should be removed from disk, stat err = %v", err)
	}
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, "general", "doc.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.Remove(filepath.Join(svc.Root(), "general", filepath.Base(a.URL))); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Errorf("Delete() error = %v, want nil when file already gone", err)
	}
}

// Package files stores uploaded file bytes on local disk and their metadata
// in the attachment store.
package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/shopops/backoffice/internal/app/domain/attachment"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// MaxUploadSize caps a single uploaded file at 10 MiB.
const MaxUploadSize = 10 << 20

// folderPattern restricts folders to simple path-safe names.
var folderPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Service stores uploads under a root directory, one subdirectory per folder.
type Service struct {
	store storage.AttachmentStore
	root  string
	log   *logger.Logger
}

// New creates a configured files service rooted at dir.
func New(store storage.AttachmentStore, dir string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("files")
	}
	return &Service{store: store, root: dir, log: log}
}

// Save writes the upload to disk and records its metadata. The stored name is
// a generated id so original names never influence disk paths.
func (s *Service) Save(ctx context.Context, folder, originalName, mimeType string, r io.Reader) (attachment.Attachment, error) {
	originalName = filepath.Base(strings.TrimSpace(originalName))
	if originalName == "" || originalName == "." {
		return attachment.Attachment{}, errs.Validation("file", "file name is required")
	}
	if folder == "" {
		folder = "general"
	}
	if !folderPattern.MatchString(folder) {
		return attachment.Attachment{}, errs.Validation("folder", "folder may only contain letters, digits, dashes, and underscores")
	}

	id := uuid.NewString()
	stored := id + strings.ToLower(filepath.Ext(originalName))
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return attachment.Attachment{}, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, stored)
	f, err := os.Create(path)
	if err != nil {
		return attachment.Attachment{}, fmt.Errorf("create upload file: %w", err)
	}
	size, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size > MaxUploadSize {
		err = errs.Validation("file", "file exceeds the 10 MiB upload limit")
	}
	if err != nil {
		os.Remove(path)
		return attachment.Attachment{}, err
	}

	a := attachment.Attachment{
		ID:           id,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		Folder:       folder,
		URL:          "/uploads/" + folder + "/" + stored,
	}
	a, err = s.store.CreateAttachment(ctx, a)
	if err != nil {
		os.Remove(path)
		return attachment.Attachment{}, err
	}

	s.log.WithField("attachment_id", a.ID).
		WithField("folder", folder).
		WithField("size", size).
		Info("file uploaded")
	return a, nil
}

// Get fetches one attachment's metadata.
func (s *Service) Get(ctx context.Context, id string) (attachment.Attachment, error) {
	return s.store.GetAttachment(ctx, id)
}

// List returns attachments, optionally filtered to one folder.
func (s *Service) List(ctx context.Context, folder string) ([]attachment.Attachment, error) {
	return s.store.ListAttachments(ctx, folder)
}

// Delete removes the metadata row and the file on disk. A missing file is
// not an error; the row is authoritative.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	path := filepath.Join(s.root, a.Folder, filepath.Base(a.URL))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.WithError(err).WithField("attachment_id", id).Warn("failed to remove uploaded file")
	}
	return nil
}

// Root returns the upload root directory for static serving.
func (s *Service) Root() string { return s.root }

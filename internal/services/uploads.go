package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"goboard/internal/utils"

	"github.com/google/uuid"
)

// UploadStore keeps attachment files on the local filesystem. Files are
// written to a staging directory first and renamed into place only after
// the database transaction referencing them commits, so a crash in between
// leaves a staging orphan instead of a dangling attachment row.
type UploadStore struct {
	Dir        string
	stagingDir string
}

// StagedFile is an upload sitting in staging, not yet visible.
type StagedFile struct {
	stagePath string
	FileName  string // final stored name
	OrigName  string
}

var uploadStore *UploadStore

// GetUploadStore returns the singleton store, creating directories on
// first use. The location comes from UPLOAD_DIR (default ./uploads).
func GetUploadStore() *UploadStore {
	if uploadStore == nil {
		dir := os.Getenv("UPLOAD_DIR")
		if dir == "" {
			dir = "./uploads"
		}
		store, err := NewUploadStore(dir)
		if err != nil {
			log.Fatalf("Failed to init upload store: %v", err)
		}
		uploadStore = store
	}
	return uploadStore
}

// SetUploadStore replaces the active store. Tests point it at a temp dir.
func SetUploadStore(s *UploadStore) {
	uploadStore = s
}

func NewUploadStore(dir string) (*UploadStore, error) {
	// Staging is a sibling of the public dir, never inside it: Dir is
	// served over HTTP and uncommitted files must not be fetchable.
	// Staying next door keeps Finalize an atomic same-filesystem rename.
	staging := filepath.Clean(dir) + ".staging"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &UploadStore{Dir: dir, stagingDir: staging}, nil
}

// Stage writes the upload into staging and reserves its final name:
// a unix-nano prefix plus the sanitized original filename, so concurrent
// uploads of the same file never collide.
func (s *UploadStore) Stage(fh *multipart.FileHeader) (*StagedFile, error) {
	if fh == nil || fh.Filename == "" || fh.Size == 0 {
		return nil, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	staged := &StagedFile{
		stagePath: filepath.Join(s.stagingDir, uuid.NewString()),
		FileName:  fmt.Sprintf("%d_%s", time.Now().UnixNano(), utils.SanitizeFilename(fh.Filename)),
		OrigName:  fh.Filename,
	}

	dst, err := os.Create(staged.stagePath)
	if err != nil {
		return nil, fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(staged.stagePath)
		return nil, fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(staged.stagePath)
		return nil, fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	return staged, nil
}

// Finalize moves a staged file to its public name under Dir.
func (s *UploadStore) Finalize(f *StagedFile) error {
	if err := os.Rename(f.stagePath, filepath.Join(s.Dir, f.FileName)); err != nil {
		return fmt.Errorf("finalize upload %s: %w", f.FileName, err)
	}
	return nil
}

// Discard removes staged files after a rolled-back transaction. Removal
// failures are only logged; the staging dir is disposable.
func (s *UploadStore) Discard(files []*StagedFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := os.Remove(f.stagePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to discard staged upload %s: %v", f.stagePath, err)
		}
	}
}

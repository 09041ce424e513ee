package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"floodmap.app/internal/ports"
	apperrors "floodmap.app/pkg/errors"
)

// BlobStore keeps opaque byte blobs under a base directory. Writes go to a
// temporary file in the target directory and are renamed into place, so a
// reader never observes a partially written blob.
type BlobStore struct {
	basepath string
	logger   ports.Logger
}

func NewBlobStore(basepath string, logger ports.Logger) (*BlobStore, error) {
	if err := os.MkdirAll(basepath, 0o755); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to create storage directory %s", basepath), err)
	}
	return &BlobStore{basepath: basepath, logger: logger}, nil
}

func (s *BlobStore) fullpath(path string) string {
	return filepath.Join(s.basepath, filepath.FromSlash(path))
}

// Location returns the base directory
func (s *BlobStore) Location() string {
	return s.basepath
}

func (s *BlobStore) Read(path string) ([]byte, error) {
	fullpath := s.fullpath(path)
	data, err := os.ReadFile(fullpath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("blob %s not found", path))
		}
		s.logger.Error("Error reading blob", ports.F("path", fullpath), ports.F("error", err))
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read blob %s", path), err)
	}
	return data, nil
}

func (s *BlobStore) Write(path string, data []byte) error {
	fullpath := s.fullpath(path)
	dir := filepath.Dir(fullpath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("Error creating parent directory", ports.F("path", fullpath), ports.F("error", err))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory for %s", path), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullpath)+".tmp-*")
	if err != nil {
		s.logger.Error("Error creating temporary file", ports.F("path", fullpath), ports.F("error", err))
		return apperrors.NewStorageError(fmt.Sprintf("failed to write blob %s", path), err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, fullpath)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		s.logger.Error("Error writing blob", ports.F("path", fullpath), ports.F("error", writeErr))
		return apperrors.NewStorageError(fmt.Sprintf("failed to write blob %s", path), writeErr)
	}
	return nil
}

// Delete removes a blob or a directory of blobs
func (s *BlobStore) Delete(path string) error {
	fullpath := s.fullpath(path)
	if err := os.RemoveAll(fullpath); err != nil {
		s.logger.Error("Error deleting blob", ports.F("path", fullpath), ports.F("error", err))
		return apperrors.NewStorageError(fmt.Sprintf("failed to delete %s", path), err)
	}
	return nil
}

func (s *BlobStore) Exists(path string) (bool, error) {
	_, err := os.Stat(s.fullpath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
}

// safeSegment reports whether s can be used as a single path element
func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

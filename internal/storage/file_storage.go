// Package storage keeps attachment bytes outside the database.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Security errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrBlockedExt    = errors.New("file extension is blocked")
)

// MaxFileSize is the maximum allowed attachment size (25 MB)
const MaxFileSize = 25 * 1024 * 1024

// BlockedExtensions contains file extensions that are not allowed
var BlockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".scr": true, ".vbs": true, ".js": true,
	".jar": true, ".ps1": true, ".sh": true, ".bash": true,
	".msi": true, ".dll": true, ".sys": true,
}

// Object describes bytes that reached storage
type Object struct {
	Path string
	Size int64
}

// FileStorage is the attachment object store
type FileStorage interface {
	Save(ctx context.Context, filename string, content io.Reader) (Object, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// localStorage implements FileStorage using local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) (FileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localStorage{basePath: basePath}, nil
}

// validatePath ensures path is within basePath (prevents traversal)
func (s *localStorage) validatePath(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", ErrPathTraversal
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, cleanPath))
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", ErrPathTraversal
	}
	return absPath, nil
}

// ValidateFile checks file extension and size
func ValidateFile(filename string, size int64) error {
	if BlockedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrBlockedExt
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Save writes content under a fresh random name, sharded by its first two
// characters. Partial files are never left behind: bytes go to a temp file
// that is renamed into place only after a complete write.
func (s *localStorage) Save(ctx context.Context, filename string, content io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	uniqueName := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	relPath := filepath.Join(uniqueName[:2], uniqueName)
	dirPath := filepath.Join(s.basePath, uniqueName[:2])

	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	tmp, err := os.CreateTemp(dirPath, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// One byte past the limit tells an oversized part from an exact fit
	n, err := io.Copy(tmp, io.LimitReader(content, MaxFileSize+1))
	closeErr := tmp.Close()
	if err != nil {
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}
	if closeErr != nil {
		return Object{}, fmt.Errorf("failed to write file: %w", closeErr)
	}
	if n > MaxFileSize {
		return Object{}, ErrFileTooLarge
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.basePath, relPath)); err != nil {
		return Object{}, fmt.Errorf("failed to store file: %w", err)
	}
	return Object{Path: filepath.ToSlash(relPath), Size: n}, nil
}

// Open retrieves a file by its path
func (s *localStorage) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file by its path; a missing file is not an error
func (s *localStorage) Delete(ctx context.Context, filePath string) error {
	fullPath, err := s.validatePath(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Upload is an attachment waiting to be stored
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// Open returns a fresh reader over the upload bytes
func (u Upload) Open() (io.ReadCloser, error) {
	if u.open == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return u.open()
}

// BytesUpload wraps in-memory content
func BytesUpload(filename, contentType string, data []byte) Upload {
	return Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileUpload wraps a part of a multipart form
func FileUpload(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ReadAll loads the upload into memory, refusing anything over MaxFileSize
func (u Upload) ReadAll() ([]byte, error) {
	r, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

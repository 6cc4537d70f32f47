// Package upload validates and persists uploaded files.
//
// Two kinds are managed: profile pictures (JPEG/PNG/WebP, 5 MiB cap)
// under profiles/ and supporting documents (PDF only, 10 MiB cap)
// under documents/. Records hold only the returned public path — the
// store is the single owner of the bytes and of the delete policy.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/nadhifra/portofolio-api/internal/apperror"
)

// Kind selects the validation policy and target directory.
type Kind int

const (
	KindImage Kind = iota
	KindDocument
)

// PublicPrefix is the path segment all managed uploads live under.
// Delete refuses to touch anything outside it.
const PublicPrefix = "/uploads/"

const (
	MaxImageSize    = 5 << 20  // 5 MiB
	MaxDocumentSize = 10 << 20 // 10 MiB
)

// Allowed content types per kind, each mapped to its acceptable file
// extensions. A declared type outside the map is rejected outright; a
// filename extension that doesn't match the declared type is rejected
// too (a .exe renamed to image/png fails either way).
var (
	imageTypes = map[string][]string{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/jpg":  {".jpg", ".jpeg"},
		"image/png":  {".png"},
		"image/webp": {".webp"},
	}
	documentTypes = map[string][]string{
		"application/pdf": {".pdf"},
	}
)

// unsafeChars matches every character not allowed in the sanitized
// original filename.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Result describes a stored upload, returned verbatim to the client.
type Result struct {
	URL          string    `json:"url"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	FileSize     int64     `json:"fileSize"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Store writes uploads beneath a fixed root directory.
type Store struct {
	root   string // filesystem root, e.g. "public/uploads"
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir. Kind subdirectories are
// created lazily on first save.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{root: dir, logger: logger}
}

// Save validates and persists one uploaded file.
//
// Validation failures return apperror.ErrValidation (the handler maps
// them to 400); disk failures return plain wrapped errors (500).
//
// The storage name is "<owner>-<unix ms>-<token><ext>". The xid token
// is the collision guard: two uploads by the same owner in the same
// millisecond still get distinct names.
func (s *Store) Save(kind Kind, ownerSubject, originalName, contentType string, size int64, r io.Reader) (*Result, error) {
	allowed, maxSize, dir := policyFor(kind)

	extensions, ok := allowed[strings.ToLower(contentType)]
	if !ok {
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("content type %s is not allowed", contentType))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !containsExt(extensions, ext) {
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("file extension %q does not match content type %s", ext, contentType))
	}

	if size <= 0 {
		return nil, apperror.ValidationFailed("file", "uploaded file is empty")
	}
	if size > maxSize {
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("file size must be less than %dMB", maxSize>>20))
	}

	targetDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %s: %w", targetDir, err)
	}

	fileName := fmt.Sprintf("%s-%d-%s%s",
		sanitize(ownerSubject),
		time.Now().UnixMilli(),
		xid.New().String(),
		ext,
	)
	targetPath := filepath.Join(targetDir, fileName)

	f, err := os.Create(targetPath)
	if err != nil {
		return nil, fmt.Errorf("upload: creating file: %w", err)
	}

	// LimitReader caps the copy one byte past the limit so an
	// understated Content-Length can't smuggle an oversized body.
	written, err := io.Copy(f, io.LimitReader(r, maxSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(targetPath)
		return nil, fmt.Errorf("upload: writing file: %w", err)
	}
	if written > maxSize {
		os.Remove(targetPath)
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("file size must be less than %dMB", maxSize>>20))
	}

	return &Result{
		URL:          PublicPrefix + dir + "/" + fileName,
		FileName:     fileName,
		OriginalName: sanitize(originalName),
		FileSize:     written,
		UploadedAt:   time.Now(),
	}, nil
}

// Delete removes a previously stored file by its public path.
//
// Idempotent: a path outside the managed prefix is skipped, and a
// file that's already gone counts as success. Callers treat any
// returned error as log-only — cleanup must never fail the mutation
// that triggered it.
func (s *Store) Delete(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil // not ours to delete
	}

	rel := filepath.Clean(strings.TrimPrefix(publicPath, PublicPrefix))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("upload: removing %s: %w", publicPath, err)
	}
	return nil
}

func policyFor(kind Kind) (map[string][]string, int64, string) {
	if kind == KindDocument {
		return documentTypes, MaxDocumentSize, "documents"
	}
	return imageTypes, MaxImageSize, "profiles"
}

func containsExt(extensions []string, ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func sanitize(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

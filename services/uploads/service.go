package uploads

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")

	// ErrUnsupportedType is returned when the sniffed content type is not an
	// allowed banner format.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrUploadNotFound is returned for an unknown temp upload ID.
	ErrUploadNotFound = errors.New("upload not found")
)

// DefaultMaxBytes is the banner upload size limit.
const DefaultMaxBytes = 10 << 20 // 10MB

// Upload is a staged banner file awaiting save or discard.
type Upload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	TempURL     string    `json:"tempUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service stages banner uploads in a temp area. Files are sniffed, size
// checked, and held until the announcement is saved (Promote) or abandoned
// (DiscardTemp). Each temp file is deleted at most once.
type Service struct {
	mu       sync.Mutex
	fs       afero.Fs
	tempDir  string
	finalDir string
	maxBytes int64
	staged   map[string]*stagedUpload
}

type stagedUpload struct {
	upload  Upload
	path    string
	deleted bool
}

func NewService(fs afero.Fs, tempDir, finalDir string, maxBytes int64) (*Service, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	for _, dir := range []string{tempDir, finalDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
		}
	}
	return &Service{
		fs:       fs,
		tempDir:  tempDir,
		finalDir: finalDir,
		maxBytes: maxBytes,
		staged:   make(map[string]*stagedUpload),
	}, nil
}

func allowedType(mt *mimetype.MIME) bool {
	t := mt.String()
	return strings.HasPrefix(t, "image/") || strings.HasPrefix(t, "video/")
}

// Stage reads an incoming banner into the temp area. The content type is
// determined from the bytes, never from the client's filename or header.
func (s *Service) Stage(filename string, r io.Reader) (*Upload, error) {
	// Read one byte past the limit so oversize uploads are detected without
	// buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	mt := mimetype.Detect(data)
	if !allowedType(mt) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	id := uuid.New().String()
	tempPath := path.Join(s.tempDir, id+mt.Extension())
	if err := afero.WriteFile(s.fs, tempPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	up := Upload{
		ID:          id,
		Filename:    filename,
		ContentType: mt.String(),
		Size:        int64(len(data)),
		TempURL:     "/uploads/tmp/" + path.Base(tempPath),
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.staged[id] = &stagedUpload{upload: up, path: tempPath}
	s.mu.Unlock()

	log.Printf("[uploads] staged %s (%s, %d bytes)", id, mt.String(), len(data))
	return &up, nil
}

// Promote moves a staged upload into the permanent banner directory and
// returns its public URL. The temp entry is consumed.
func (s *Service) Promote(id string) (string, error) {
	s.mu.Lock()
	st, ok := s.staged[id]
	if ok {
		delete(s.staged, id)
	}
	s.mu.Unlock()
	if !ok {
		return "", ErrUploadNotFound
	}

	finalPath := path.Join(s.finalDir, path.Base(st.path))
	if err := s.fs.Rename(st.path, finalPath); err != nil {
		return "", fmt.Errorf("failed to promote upload: %w", err)
	}
	return "/uploads/banners/" + path.Base(finalPath), nil
}

// DiscardTemp removes a staged upload's temp file. Repeated calls for the
// same ID are no-ops, and removal failures are logged rather than surfaced;
// a leftover temp file is not worth failing the caller's flow over.
func (s *Service) DiscardTemp(id string) {
	s.mu.Lock()
	st, ok := s.staged[id]
	if ok && !st.deleted {
		st.deleted = true
		delete(s.staged, id)
	} else {
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.fs.Remove(st.path); err != nil {
		log.Printf("[uploads] failed to remove temp file %s: %v", st.path, err)
	}
}

// DiscardTempURL resolves a temp URL back to its upload ID and discards it.
// Unknown or malformed URLs are no-ops.
func (s *Service) DiscardTempURL(url string) {
	base := path.Base(url)
	s.DiscardTemp(strings.TrimSuffix(base, path.Ext(base)))
}

// Staged reports whether an upload ID is still held in the temp area.
func (s *Service) Staged(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.staged[id]
	return ok
}

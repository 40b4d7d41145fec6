package uploads

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func setupTestService(t *testing.T, maxBytes int64) (*Service, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := NewService(fs, "/data/tmp", "/data/banners", maxBytes)
	if err != nil {
		t.Fatalf("failed to create upload service: %v", err)
	}
	return svc, fs
}

func TestStage_AcceptsImage(t *testing.T) {
	svc, fs := setupTestService(t, 0)

	up, err := svc.Stage("banner.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if up.ContentType != "image/png" {
		t.Errorf("expected image/png, got %q", up.ContentType)
	}
	if !strings.HasPrefix(up.TempURL, "/uploads/tmp/") {
		t.Errorf("unexpected temp URL %q", up.TempURL)
	}

	exists, _ := afero.Exists(fs, "/data/tmp/"+up.ID+".png")
	if !exists {
		t.Error("temp file should exist after staging")
	}
}

func TestStage_RejectsDisallowedType(t *testing.T) {
	svc, _ := setupTestService(t, 0)

	_, err := svc.Stage("notes.txt", strings.NewReader("plain text, not a banner"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestStage_RejectsOversize(t *testing.T) {
	svc, _ := setupTestService(t, 16)

	big := append(append([]byte{}, pngHeader...), make([]byte, 32)...)
	_, err := svc.Stage("huge.png", bytes.NewReader(big))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestStage_IgnoresClientFilename(t *testing.T) {
	svc, _ := setupTestService(t, 0)

	// A .png name on text content must not pass the whitelist.
	_, err := svc.Stage("disguised.png", strings.NewReader("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("type check must use sniffed bytes, got %v", err)
	}
}

func TestPromote(t *testing.T) {
	svc, fs := setupTestService(t, 0)

	up, _ := svc.Stage("banner.png", bytes.NewReader(pngHeader))
	url, err := svc.Promote(up.ID)
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if url != "/uploads/banners/"+up.ID+".png" {
		t.Errorf("unexpected final URL %q", url)
	}

	tempExists, _ := afero.Exists(fs, "/data/tmp/"+up.ID+".png")
	finalExists, _ := afero.Exists(fs, "/data/banners/"+up.ID+".png")
	if tempExists || !finalExists {
		t.Errorf("expected file moved out of temp (temp=%t, final=%t)", tempExists, finalExists)
	}

	// Promoting consumes the stage; a later discard must not touch the
	// promoted file.
	svc.DiscardTemp(up.ID)
	finalExists, _ = afero.Exists(fs, "/data/banners/"+up.ID+".png")
	if !finalExists {
		t.Error("discard after promote must not remove the saved banner")
	}
}

func TestDiscardTemp_ExactlyOnce(t *testing.T) {
	svc, fs := setupTestService(t, 0)

	up, _ := svc.Stage("banner.png", bytes.NewReader(pngHeader))

	svc.DiscardTemp(up.ID)
	exists, _ := afero.Exists(fs, "/data/tmp/"+up.ID+".png")
	if exists {
		t.Error("temp file should be removed on discard")
	}
	if svc.Staged(up.ID) {
		t.Error("upload should no longer be staged")
	}

	// Second discard is a no-op, not an error or a second removal attempt.
	svc.DiscardTemp(up.ID)
	svc.DiscardTemp("never-existed")
}

func TestDiscardTempURL(t *testing.T) {
	svc, fs := setupTestService(t, 0)

	up, err := svc.Stage("banner.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	svc.DiscardTempURL(up.TempURL)
	if svc.Staged(up.ID) {
		t.Error("upload should be discarded via its temp URL")
	}
	exists, _ := afero.Exists(fs, "/data/tmp/"+up.ID+".png")
	if exists {
		t.Error("temp file should be removed")
	}

	svc.DiscardTempURL("/uploads/tmp/never-existed.png")
	svc.DiscardTempURL("not a url")
}

func TestPromote_UnknownID(t *testing.T) {
	svc, _ := setupTestService(t, 0)

	if _, err := svc.Promote("ghost"); !errors.Is(err, ErrUploadNotFound) {
		t.Errorf("expected ErrUploadNotFound, got %v", err)
	}
}

package assets_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/estate/internal/assets"
	"github.com/JaimeStill/estate/pkg/lifecycle"
	"github.com/JaimeStill/estate/pkg/storage"
)

// 1x1 lossless WebP.
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pixel() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, pixel()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pixel(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pixel(), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func newSystem(t *testing.T, opts ...assets.Option) (assets.System, string) {
	t.Helper()

	root := t.TempDir()
	blobs, err := storage.New(&storage.Config{Provider: storage.ProviderLocal, Local: storage.LocalConfig{Root: root}}, discard())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if err := blobs.Start(lifecycle.New()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	return assets.New(blobs, 1024*1024, discard(), opts...), root
}

func fixedClock(ms int64) assets.Option {
	return assets.WithClock(func() time.Time { return time.UnixMilli(ms) })
}

func TestStoreGeneratesTimestampReference(t *testing.T) {
	sys, root := newSystem(t, fixedClock(1700000000123))
	data := pngBytes(t)

	ref, err := sys.Store(context.Background(), data, "Front View.PNG")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if ref != "1700000000123.png" {
		t.Errorf("ref = %s, want 1700000000123.png", ref)
	}

	got, err := os.ReadFile(filepath.Join(root, ref))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("stored bytes differ from input")
	}
}

func TestStoreNeverOverwrites(t *testing.T) {
	sys, root := newSystem(t, fixedClock(1700000000000))
	ctx := context.Background()

	first, err := sys.Store(ctx, []byte("first"), "a.jpg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	second, err := sys.Store(ctx, []byte("second"), "b.jpg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	third, err := sys.Store(ctx, []byte("third"), "c.jpg")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	want := []string{"1700000000000.jpg", "1700000000000-1.jpg", "1700000000000-2.jpg"}
	for i, ref := range []string{first, second, third} {
		if ref != want[i] {
			t.Errorf("ref[%d] = %s, want %s", i, ref, want[i])
		}
	}

	got, _ := os.ReadFile(filepath.Join(root, first))
	if string(got) != "first" {
		t.Errorf("first asset overwritten: %q", got)
	}
}

func TestStoreSanitizesExtension(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"photo.JpEg", "42.jpeg"},
		{"noext", "42"},
		{"weird.p$n%g", "42.png"},
		{"dots.", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			sys, _ := newSystem(t, fixedClock(42))
			ref, err := sys.Store(context.Background(), []byte("x"), tt.hint)
			if err != nil {
				t.Fatalf("Store() error = %v", err)
			}
			if ref != tt.want {
				t.Errorf("ref = %s, want %s", ref, tt.want)
			}
		})
	}
}

func TestRemoveIsBestEffort(t *testing.T) {
	sys, root := newSystem(t)
	ctx := context.Background()

	ref, err := sys.Store(ctx, []byte("x"), "a.png")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	sys.Remove(ctx, ref)
	if _, err := os.Stat(filepath.Join(root, ref)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("asset still present after Remove: %v", err)
	}

	// missing, empty and malformed references are no-ops
	sys.Remove(ctx, ref)
	sys.Remove(ctx, "")
	sys.Remove(ctx, "../escape.png")
}

func TestOpenExistsList(t *testing.T) {
	sys, _ := newSystem(t, fixedClock(7))
	ctx := context.Background()
	data := pngBytes(t)

	ref, err := sys.Store(ctx, data, "x.png")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	ok, err := sys.Exists(ctx, ref)
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}

	blob, err := sys.Open(ctx, ref)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	body, _ := io.ReadAll(blob.Body)
	blob.Body.Close()
	if !bytes.Equal(body, data) || blob.ContentType != "image/png" {
		t.Errorf("Open() content type %s, %d bytes", blob.ContentType, len(body))
	}

	if _, err := sys.Open(ctx, "missing.png"); !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := sys.Open(ctx, "../../etc/passwd"); !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("Open(traversal) error = %v, want ErrNotFound", err)
	}

	objs, err := sys.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objs) != 1 || objs[0].Key != ref {
		t.Errorf("List() = %+v", objs)
	}
}

func TestValidate(t *testing.T) {
	sys, _ := newSystem(t)

	webp, err := base64.StdEncoding.DecodeString(webpPixel)
	if err != nil {
		t.Fatalf("decode webp fixture: %v", err)
	}

	tests := []struct {
		name     string
		data     []byte
		filename string
		wantErr  string
	}{
		{"png", pngBytes(t), "front.png", ""},
		{"jpeg", jpegBytes(t), "front.JPG", ""},
		{"jpeg long extension", jpegBytes(t), "front.jpeg", ""},
		{"gif", gifBytes(t), "front.gif", ""},
		{"webp", webp, "front.webp", ""},
		{"empty", nil, "front.png", "file is empty"},
		{"too large", bytes.Repeat([]byte{0}, 1024*1024+1), "front.png", "exceeds 1 MB limit"},
		{"unsupported extension", pngBytes(t), "front.bmp", "unsupported file type"},
		{"not an image", []byte("plain text"), "front.png", "not a readable image"},
		{"mismatched content", pngBytes(t), "front.jpg", "content is png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.Validate(tt.data, tt.filename)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, assets.ErrInvalidUpload) {
				t.Fatalf("Validate() error = %v, want ErrInvalidUpload", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

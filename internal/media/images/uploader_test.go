package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// testPNG returns an encoded PNG with a simple gradient so blurhash has
// something to chew on.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testPNG(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty blurhash")
	}
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	_, err := ComputeBlurHash([]byte("not an image"))
	if err == nil {
		t.Fatal("expected error for invalid image data")
	}
}

func TestUploader_HostLocal(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	up := NewUploader(testLogger(), storage, "", "")

	hosted, err := up.Host(context.Background(), testPNG(t), ".png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(hosted.URL, "/images/") {
		t.Errorf("expected local serving path, got %q", hosted.URL)
	}
	if !strings.HasSuffix(hosted.URL, ".png") {
		t.Errorf("expected .png extension, got %q", hosted.URL)
	}
	if hosted.BlurHash == "" {
		t.Error("expected blurhash to be computed")
	}

	name := strings.TrimPrefix(hosted.URL, "/images/")
	if !storage.Exists(name) {
		t.Errorf("expected stored image %q to exist", name)
	}
}

func TestUploader_HostRemote(t *testing.T) {
	var gotAuth string
	var gotFilename string
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(maxCoverSize); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			gotFilename = header.Filename
		}

		w.Write([]byte(`{"url": "https://cdn.example/abc.png"}`))
	}))
	defer host.Close()

	up := NewUploader(testLogger(), nil, host.URL, "secret-key")

	hosted, err := up.Host(context.Background(), testPNG(t), ".png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hosted.URL != "https://cdn.example/abc.png" {
		t.Errorf("url = %q", hosted.URL)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if !strings.HasSuffix(gotFilename, ".png") {
		t.Errorf("filename = %q", gotFilename)
	}
}

func TestUploader_HostRemoteFailure(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer host.Close()

	up := NewUploader(testLogger(), nil, host.URL, "")

	_, err := up.Host(context.Background(), testPNG(t), ".png")
	if err == nil {
		t.Fatal("expected error for failed upload")
	}
}

func TestUploader_FetchAndHost(t *testing.T) {
	img := testPNG(t)
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(img)
	}))
	defer source.Close()

	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	up := NewUploader(testLogger(), storage, "", "")

	hosted, err := up.FetchAndHost(context.Background(), source.URL+"/cover.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hosted.Size != int64(len(img)) {
		t.Errorf("size = %d, want %d", hosted.Size, len(img))
	}
}

func TestUploader_FetchAndHost_SourceMissing(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer source.Close()

	up := NewUploader(testLogger(), nil, "", "")

	_, err := up.FetchAndHost(context.Background(), source.URL+"/cover.jpg")
	if err == nil {
		t.Fatal("expected error for missing source image")
	}
}

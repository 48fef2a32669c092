package images

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// transferTimeout is the maximum time for a cover download or upload.
	transferTimeout = 30 * time.Second
)

// HostedImage describes an image that has been hosted and is ready to attach
// to a record.
type HostedImage struct {
	// URL is where clients fetch the image from. Either an external host URL
	// or a path served by this server.
	URL string
	// BlurHash is the computed placeholder hash, empty when the image could
	// not be decoded.
	BlurHash string
	// Size is the image size in bytes.
	Size int64
}

// Uploader fetches cover images and hosts them, either on an external image
// host or in local storage served by this server.
type Uploader struct {
	httpClient *http.Client
	uploadURL  string
	apiKey     string
	storage    *Storage
	logger     *slog.Logger
}

// NewUploader creates a new Uploader. An empty uploadURL means images are
// stored locally and served from /images/.
func NewUploader(logger *slog.Logger, storage *Storage, uploadURL, apiKey string) *Uploader {
	return &Uploader{
		httpClient: &http.Client{
			Timeout: transferTimeout,
		},
		uploadURL: uploadURL,
		apiKey:    apiKey,
		storage:   storage,
		logger:    logger,
	}
}

// FetchAndHost downloads a cover from srcURL and hosts it.
func (u *Uploader) FetchAndHost(ctx context.Context, srcURL string) (*HostedImage, error) {
	if srcURL == "" {
		return nil, errors.New("empty cover URL")
	}

	data, err := u.fetch(ctx, srcURL)
	if err != nil {
		return nil, err
	}

	return u.Host(ctx, data, path.Ext(srcURL))
}

// Host uploads raw image data and returns where it is served from.
// ext is the file extension including the dot; empty defaults to .jpg.
func (u *Uploader) Host(ctx context.Context, data []byte, ext string) (*HostedImage, error) {
	if len(data) == 0 {
		return nil, errors.New("image data cannot be empty")
	}
	if ext == "" {
		ext = ".jpg"
	}

	hash, err := ComputeBlurHash(data)
	if err != nil {
		// A cover we cannot decode is still worth hosting; clients just
		// get no placeholder.
		u.logger.Warn("failed to compute blurhash", "error", err)
		hash = ""
	}

	name := uuid.NewString() + ext

	var hostedURL string
	if u.uploadURL != "" {
		hostedURL, err = u.uploadRemote(ctx, name, data)
	} else {
		hostedURL, err = u.storeLocal(name, data)
	}
	if err != nil {
		return nil, err
	}

	u.logger.Info("hosted cover image",
		"name", name,
		"url", hostedURL,
		"size", len(data),
	)

	return &HostedImage{
		URL:      hostedURL,
		BlurHash: hash,
		Size:     int64(len(data)),
	}, nil
}

// fetch downloads image data with a size limit.
func (u *Uploader) fetch(ctx context.Context, srcURL string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty response body")
	}

	return data, nil
}

// uploadRemote sends the image to the configured host as a multipart form and
// returns the hosted URL from the response.
func (u *Uploader) uploadRemote(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload failed: status %d", resp.StatusCode)
	}

	var uploadResp struct {
		URL string `json:"url"`
	}
	if err := json.UnmarshalRead(resp.Body, &uploadResp); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if uploadResp.URL == "" {
		return "", errors.New("upload response missing url")
	}

	return uploadResp.URL, nil
}

// storeLocal saves the image to local storage and returns the serving path.
func (u *Uploader) storeLocal(name string, data []byte) (string, error) {
	if u.storage == nil {
		return "", errors.New("no image storage configured")
	}
	if err := u.storage.Save(name, data); err != nil {
		return "", err
	}
	return "/images/" + name, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"reelgen/internal/domain"
	"reelgen/internal/providers/httpx"
)

// FileStore persists generated media onto the local filesystem and serves it
// under baseURL. It stands in for object storage in single-host deployments.
type FileStore struct {
	basePath      string
	baseURL       string
	httpClient    *http.Client
	downloadLimit int64
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithHTTPClient sets the client used to fetch remote media.
func WithHTTPClient(c *http.Client) Option {
	return func(s *FileStore) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithDownloadLimit caps remote media downloads.
func WithDownloadLimit(limit int64) Option {
	return func(s *FileStore) {
		if limit > 0 {
			s.downloadLimit = limit
		}
	}
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath, baseURL string, opts ...Option) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	s := &FileStore{
		basePath:      basePath,
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient:    http.DefaultClient,
		downloadLimit: httpx.DefaultDownloadLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Read returns the bytes stored under key.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(cleanKey)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: read file: %w", err)
	}
	return data, nil
}

// URL returns the public URL of a stored key.
func (s *FileStore) URL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Persist writes media under keyPrefix plus an extension derived from its
// MIME type. Remote media is downloaded first. It returns the storage key and
// public URL.
func (s *FileStore) Persist(ctx context.Context, keyPrefix string, media domain.MediaRef) (string, string, error) {
	if s == nil {
		return "", "", errors.New("storage: no store configured")
	}
	data, mime := media.Data, media.MIME
	if !media.Inline() {
		if media.URL == "" {
			return "", "", errors.New("storage: empty media")
		}
		var err error
		var fetched string
		data, fetched, err = httpx.Download(ctx, s.httpClient, media.URL, s.downloadLimit)
		if err != nil {
			return "", "", fmt.Errorf("storage: fetch media: %w", err)
		}
		if mime == "" {
			mime = fetched
		}
	}
	key, err := s.Write(ctx, keyPrefix+Extension(mime), data)
	if err != nil {
		return "", "", err
	}
	return key, s.URL(key), nil
}

// Extension maps a media MIME type to a file extension.
func Extension(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".bin"
	}
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

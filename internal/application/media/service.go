package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/id"
)

// presignTTL bounds how long a returned secure URL stays fetchable.
const presignTTL = 15 * time.Minute

// Limits carries the per-class upload caps.
type Limits struct {
	ImageMaxBytes    int64
	DocumentMaxBytes int64
}

var imageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	Class       string // domain.MediaClassImage | domain.MediaClassDocument
	UploaderID  string
}

type Service interface {
	// Upload validates class limits, writes the object, and records asset
	// metadata. Violations surface as typed errors, never a silent drop.
	Upload(ctx context.Context, in UploadInput) (*domain.Asset, error)
	// Delete removes the object and soft-deletes the asset record. Only the
	// uploader or an admin may delete.
	Delete(ctx context.Context, publicID, requesterID string, isAdmin bool) error
	Get(ctx context.Context, publicID string) (*domain.Asset, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type assetStore interface {
	Put(ctx context.Context, a *domain.Asset) error
	Get(ctx context.Context, publicID string) (*domain.Asset, error)
	SoftDelete(ctx context.Context, publicID string) error
}

type service struct {
	objects objectStore
	assets  assetStore
	limits  Limits
}

func NewService(objects objectStore, assets assetStore, limits Limits) Service {
	return &service{objects: objects, assets: assets, limits: limits}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*domain.Asset, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("media storage not configured: %w", domain.ErrUnavailable)
	}
	max, err := s.validate(in.Class, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}

	safeName := sanitizeFilename(in.Filename)
	publicID := id.New()
	key := fmt.Sprintf("%s/%s/%s_%s", in.Class, in.UploaderID, publicID, safeName)

	hasher := sha256.New()
	// LimitReader is the backstop: a lying Content-Length must not push more
	// than the class cap into the bucket.
	tee := io.TeeReader(io.LimitReader(in.Reader, max), hasher)
	url, err := s.objects.Upload(ctx, key, tee, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("media store write: %w", domain.ErrUpstream)
	}
	secureURL, err := s.objects.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign media url: %w", domain.ErrUpstream)
	}

	now := time.Now().UTC()
	a := &domain.Asset{
		PublicID:   publicID,
		Object:     key,
		Size:       in.Size,
		Type:       in.ContentType,
		Name:       safeName,
		Hash:       hex.EncodeToString(hasher.Sum(nil)),
		URL:        url,
		SecureURL:  secureURL,
		UploadedBy: in.UploaderID,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.assets.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, publicID, requesterID string, isAdmin bool) error {
	if s.objects == nil {
		return fmt.Errorf("media storage not configured: %w", domain.ErrUnavailable)
	}
	a, err := s.assets.Get(ctx, publicID)
	if err != nil {
		return err
	}
	if !a.Enable {
		return fmt.Errorf("asset not found: %w", domain.ErrNotFound)
	}
	if a.UploadedBy != requesterID && !isAdmin {
		return fmt.Errorf("not the uploader: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, a.Object); err != nil {
		return fmt.Errorf("media store delete: %w", domain.ErrUpstream)
	}
	return s.assets.SoftDelete(ctx, publicID)
}

func (s *service) Get(ctx context.Context, publicID string) (*domain.Asset, error) {
	a, err := s.assets.Get(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !a.Enable {
		return nil, fmt.Errorf("asset not found: %w", domain.ErrNotFound)
	}
	if s.objects != nil {
		if u, err := s.objects.PresignedURL(ctx, a.Object, presignTTL); err == nil {
			a.SecureURL = u
		}
	}
	return a, nil
}

// validate returns the class byte cap after checking MIME and size.
func (s *service) validate(class, contentType string, size int64) (int64, error) {
	switch class {
	case domain.MediaClassImage:
		if !imageMIMEs[contentType] {
			return 0, fmt.Errorf("content type %q not allowed for images: %w", contentType, domain.ErrUnsupportedMediaType)
		}
		if size > s.limits.ImageMaxBytes {
			return 0, fmt.Errorf("image exceeds %d bytes: %w", s.limits.ImageMaxBytes, domain.ErrPayloadTooLarge)
		}
		return s.limits.ImageMaxBytes, nil
	case domain.MediaClassDocument:
		if !imageMIMEs[contentType] && contentType != "application/pdf" {
			return 0, fmt.Errorf("content type %q not allowed for documents: %w", contentType, domain.ErrUnsupportedMediaType)
		}
		if size > s.limits.DocumentMaxBytes {
			return 0, fmt.Errorf("document exceeds %d bytes: %w", s.limits.DocumentMaxBytes, domain.ErrPayloadTooLarge)
		}
		return s.limits.DocumentMaxBytes, nil
	default:
		return 0, fmt.Errorf("unknown media class %q: %w", class, domain.ErrBadRequest)
	}
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in object keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	switch result := b.String(); result {
	case "", ".", "..":
		return "_"
	default:
		return result
	}
}

// Package resolver turns DocumentReferences into raw bytes the extraction
// adapters can consume. References are object-storage keys, http(s) URLs or
// inline payloads; documents carrying their own text layer (PDF with
// embedded text, plain text) are read locally without an AI call.
package resolver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gradepilot/evaluator-api/internal/config"
	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

const maxDocumentSize = 20 << 20 // 20MB per answer image

type Resolver struct {
	s3         *minio.Client
	bucketName string
	client     *http.Client
	logger     *utils.Logger
}

func New(cfg *config.Config, logger *utils.Logger) (*Resolver, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &Resolver{
		s3:         client,
		bucketName: cfg.S3BucketName,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Resolve fetches the bytes behind one document reference.
func (r *Resolver) Resolve(ctx context.Context, ref models.DocumentReference) (providers.Image, error) {
	switch {
	case len(ref.Inline) > 0:
		return providers.Image{Index: ref.Index, Data: ref.Inline, ContentType: sniffContentType(ref.Inline, ref.ContentType)}, nil
	case ref.ObjectKey != "":
		return r.fromObjectStorage(ctx, ref)
	case ref.URL != "":
		return r.fromURL(ctx, ref)
	default:
		return providers.Image{Index: ref.Index}, fmt.Errorf("document reference %d has no location", ref.Index)
	}
}

func (r *Resolver) fromObjectStorage(ctx context.Context, ref models.DocumentReference) (providers.Image, error) {
	object, err := r.s3.GetObject(ctx, r.bucketName, ref.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return providers.Image{Index: ref.Index}, fmt.Errorf("failed to get object %s: %w", ref.ObjectKey, err)
	}
	defer object.Close()

	data, err := io.ReadAll(io.LimitReader(object, maxDocumentSize))
	if err != nil {
		return providers.Image{Index: ref.Index}, fmt.Errorf("failed to read object %s: %w", ref.ObjectKey, err)
	}

	return providers.Image{Index: ref.Index, Data: data, ContentType: sniffContentType(data, ref.ContentType)}, nil
}

func (r *Resolver) fromURL(ctx context.Context, ref models.DocumentReference) (providers.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return providers.Image{Index: ref.Index}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return providers.Image{Index: ref.Index}, fmt.Errorf("failed to fetch %s: %w", ref.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return providers.Image{Index: ref.Index}, fmt.Errorf("fetch %s returned status %d", ref.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return providers.Image{Index: ref.Index}, fmt.Errorf("failed to read body of %s: %w", ref.URL, err)
	}

	contentType := ref.ContentType
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	return providers.Image{Index: ref.Index, Data: data, ContentType: sniffContentType(data, contentType)}, nil
}

// LocalText returns the document's own text layer when it has one: PDFs
// with embedded text and plain-text payloads skip the AI providers
// entirely.
func (r *Resolver) LocalText(img providers.Image) (string, bool) {
	switch {
	case strings.HasPrefix(img.ContentType, "application/pdf"):
		text, err := pdfText(img.Data)
		if err != nil || strings.TrimSpace(text) == "" {
			// scanned PDF with no text layer, leave it to the providers
			return "", false
		}
		return text, true
	case strings.HasPrefix(img.ContentType, "text/"):
		text, err := decodePlainText(img.Data)
		if err != nil {
			return "", false
		}
		return text, true
	default:
		return "", false
	}
}

// sniffContentType prefers the declared content type and falls back to
// magic-byte detection.
func sniffContentType(data []byte, declared string) string {
	if declared != "" {
		return declared
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "application/pdf"
	}
	return http.DetectContentType(data)
}

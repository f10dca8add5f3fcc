package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// CloudinaryConfig holds the configuration for the media host connection
type CloudinaryConfig struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

const (
	resourceImage = "image"
	resourceVideo = "video"
	resourceAuto  = "auto"
)

type MediaCloudinary struct {
	client *resty.Client
	config CloudinaryConfig
	logger *slog.Logger

	// now is swapped in tests to get stable signatures
	now func() time.Time
}

type uploadResponse struct {
	URL       string  `json:"url"`
	SecureURL string  `json:"secure_url"`
	PublicID  string  `json:"public_id"`
	Duration  float64 `json:"duration"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewMediaCloudinary(config CloudinaryConfig, logger *slog.Logger) *MediaCloudinary {
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")+"/"+config.CloudName).
		SetTimeout(config.Timeout)

	return &MediaCloudinary{
		client: client,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

var _ repositories.MediaRepository = (*MediaCloudinary)(nil)

// UploadImage uploads with resource type auto, so any image format is accepted
func (m *MediaCloudinary) UploadImage(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error) {
	return m.upload(ctx, resourceAuto, filename, r)
}

func (m *MediaCloudinary) UploadVideo(ctx context.Context, filename string, r io.Reader) (*models.MediaAsset, error) {
	return m.upload(ctx, resourceVideo, filename, r)
}

func (m *MediaCloudinary) DeleteImage(ctx context.Context, publicID string) error {
	return m.destroy(ctx, resourceImage, publicID)
}

func (m *MediaCloudinary) DeleteVideo(ctx context.Context, publicID string) error {
	return m.destroy(ctx, resourceVideo, publicID)
}

func (m *MediaCloudinary) upload(ctx context.Context, resourceType, filename string, r io.Reader) (*models.MediaAsset, error) {
	params := m.signedParams(map[string]string{})

	var result uploadResponse
	var failure errorResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(params).
		SetFileReader("file", filename, r).
		SetResult(&result).
		SetError(&failure).
		Post("/" + resourceType + "/upload")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrMediaUploadFailed, err)
	}
	if resp.IsError() {
		m.logger.Error("Media upload rejected",
			"status", resp.StatusCode(),
			"resource_type", resourceType,
			"message", failure.Error.Message)
		return nil, fmt.Errorf("%w: status %d", repositories.ErrMediaUploadFailed, resp.StatusCode())
	}

	return &models.MediaAsset{
		URL:       result.URL,
		SecureURL: result.SecureURL,
		PublicID:  result.PublicID,
		Duration:  result.Duration,
	}, nil
}

func (m *MediaCloudinary) destroy(ctx context.Context, resourceType, publicID string) error {
	if publicID == "" {
		return nil
	}

	params := m.signedParams(map[string]string{"public_id": publicID})

	var result destroyResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(params).
		SetResult(&result).
		Post("/" + resourceType + "/destroy")
	if err != nil {
		return fmt.Errorf("%w: %v", repositories.ErrMediaDeleteFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", repositories.ErrMediaDeleteFailed, resp.StatusCode())
	}

	// "not found" is fine, the asset is already gone
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("%w: %s", repositories.ErrMediaDeleteFailed, result.Result)
	}
	return nil
}

// signedParams adds timestamp, api_key and signature to the request params
func (m *MediaCloudinary) signedParams(params map[string]string) map[string]string {
	params["timestamp"] = strconv.FormatInt(m.now().Unix(), 10)
	params["signature"] = Sign(params, m.config.APISecret)
	params["api_key"] = m.config.APIKey
	return params
}

// Sign computes the request signature: the params sorted by key, joined as
// k=v pairs with '&', followed by the secret, then SHA-1 hex encoded.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "file" || k == "api_key" || k == "signature" || k == "resource_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// PublicIDFromURL derives the public id from a delivery URL: the last path
// segment without its extension.
func PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	last := url[strings.LastIndex(url, "/")+1:]
	if i := strings.Index(last, "."); i >= 0 {
		last = last[:i]
	}
	return last
}

package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/videohub/videohub-api/internal/domain"
	"github.com/videohub/videohub-api/pkg/logger"
)

// MediaHost интерфейс хостинга медиафайлов.
type MediaHost interface {
	// Upload загружает файл и возвращает результат с публичным URL.
	Upload(ctx context.Context, file io.Reader, filename, resourceType string) (*UploadResult, error)

	// Destroy удаляет ресурс по его public ID.
	Destroy(ctx context.Context, publicID, resourceType string) error

	// ExtractPublicID извлекает public ID из URL доставки.
	ExtractPublicID(rawURL string) string
}

// UploadResult результат загрузки файла.
type UploadResult struct {
	PublicID     string  `json:"public_id"`
	SecureURL    string  `json:"secure_url"`
	ResourceType string  `json:"resource_type"`
	Format       string  `json:"format"`
	Duration     float64 `json:"duration"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Bytes        int64   `json:"bytes"`
}

// Client представляет клиент для работы с API Cloudinary
type Client struct {
	baseURL   string
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	http      *http.Client
	log       *logger.Logger
}

// Config конфигурация для клиента Cloudinary
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// NewClient создает новый клиент Cloudinary
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:   "https://api.cloudinary.com/v1_1/" + cfg.CloudName,
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		http:      &http.Client{Timeout: 120 * time.Second},
		log:       log,
	}
}

// Upload загружает файл через подписанный multipart-запрос.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, resourceType string) (*UploadResult, error) {
	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	signature := c.sign(params)

	var body strings.Builder
	writer := multipart.NewWriter(&body)

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("cloudinary: failed to write field %s: %w", key, err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("cloudinary: failed to write api_key: %w", err)
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return nil, fmt.Errorf("cloudinary: failed to write signature: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("cloudinary: failed to copy file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("cloudinary: failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/upload", c.baseURL, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("cloudinary: failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Errorw("Cloudinary upload request failed", "error", err, "filename", filename)
		return nil, domain.NewExternalServiceError("cloudinary", "request_failed", "upload request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Errorw("Cloudinary upload rejected", "status", resp.StatusCode, "body", string(payload))
		return nil, domain.NewExternalServiceError("cloudinary", "upload_rejected",
			"upload rejected by media host", resp.StatusCode, nil)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cloudinary: failed to decode upload response: %w", err)
	}

	c.log.Infow("File uploaded to Cloudinary", "publicID", result.PublicID, "resourceType", resourceType, "bytes", result.Bytes)
	return &result, nil
}

// Destroy удаляет ресурс по его public ID.
func (c *Client) Destroy(ctx context.Context, publicID, resourceType string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	}
	signature := c.sign(params)

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/%s/destroy", c.baseURL, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("cloudinary: failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Errorw("Cloudinary destroy request failed", "error", err, "publicID", publicID)
		return domain.NewExternalServiceError("cloudinary", "request_failed", "destroy request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Errorw("Cloudinary destroy rejected", "status", resp.StatusCode, "publicID", publicID)
		return domain.NewExternalServiceError("cloudinary", "destroy_rejected",
			"destroy rejected by media host", resp.StatusCode, nil)
	}

	c.log.Debugw("Cloudinary resource destroyed", "publicID", publicID, "resourceType", resourceType)
	return nil
}

// sign считает SHA-1 подпись запроса: параметры сортируются по ключу,
// склеиваются в query-строку и конкатенируются с секретом.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// ExtractPublicID извлекает public ID из URL доставки Cloudinary.
// Формат: https://res.cloudinary.com/<cloud>/<type>/upload/v<версия>/<public_id>.<ext>
// Возвращает пустую строку, если URL не похож на ссылку Cloudinary.
func (c *Client) ExtractPublicID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	uploadIdx := -1
	for i, segment := range segments {
		if segment == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 0 || uploadIdx+1 >= len(segments) {
		return ""
	}

	rest := segments[uploadIdx+1:]
	// Сегмент версии (v123456) пропускается
	if len(rest) > 1 && len(rest[0]) > 1 && rest[0][0] == 'v' && isDigits(rest[0][1:]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	publicID := strings.Join(rest, "/")
	if dot := strings.LastIndex(publicID, "."); dot > 0 {
		publicID = publicID[:dot]
	}

	return publicID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

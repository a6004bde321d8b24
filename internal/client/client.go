package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"easel/internal/config"
	"easel/internal/logging"
	"easel/internal/services"
)

// uploadFieldName is the fixed multipart field carrying the image bytes.
// It must match what the daemon reads out of the form.
const uploadFieldName = "image"

// UploadResult captures a successful asset registration.
type UploadResult struct {
	AssetID     string
	Message     string
	SourceName  string
	OriginalURL string
}

// ModifyResult captures a successful modification response.
type ModifyResult struct {
	AssetID     string
	Message     string
	ModifiedURL string
}

// Client talks to the Easel daemon over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a client from service configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Service.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Service.Timeout()},
		logger:     logging.WithComponent(logger, "client"),
	}
}

type createAssetResponse struct {
	Message string `json:"message"`
	AssetID string `json:"asset_id"`
}

type modifyRequest struct {
	AssetID string `json:"asset_id"`
	Prompt  string `json:"prompt"`
}

type modifyResponse struct {
	Message     string `json:"message"`
	AssetID     string `json:"asset_id"`
	ModifiedURL string `json:"modified_url"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Upload registers the file at filePath as a new asset.
func (c *Client) Upload(ctx context.Context, filePath string) (UploadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return UploadResult{}, services.Wrap(services.ErrValidation, "upload", "open file", "", err)
	}
	defer file.Close()

	sourceName := filepath.Base(filePath)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(uploadFieldName, sourceName)
	if err != nil {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "build form", "", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "read file", "", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "finish form", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assets", &body)
	if err != nil {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "build request", "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("upload request failed", logging.Error(err))
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "send request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, c.serviceError("upload", resp)
	}

	var decoded createAssetResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "decode response", "", err)
	}
	if decoded.AssetID == "" {
		return UploadResult{}, services.Wrap(services.ErrTransport, "upload", "decode response", "response missing asset_id", nil)
	}

	return UploadResult{
		AssetID:     decoded.AssetID,
		Message:     decoded.Message,
		SourceName:  sourceName,
		OriginalURL: c.baseURL + "/uploads/" + url.PathEscape(sourceName),
	}, nil
}

// Modify requests a prompt-driven modification of the identified asset.
// The payload carries exactly the asset id and the prompt.
func (c *Client) Modify(ctx context.Context, assetID, prompt string) (ModifyResult, error) {
	payload, err := json.Marshal(modifyRequest{AssetID: assetID, Prompt: prompt})
	if err != nil {
		return ModifyResult{}, services.Wrap(services.ErrTransport, "modify", "encode request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/modify", bytes.NewReader(payload))
	if err != nil {
		return ModifyResult{}, services.Wrap(services.ErrTransport, "modify", "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("modify request failed", logging.Error(err))
		return ModifyResult{}, services.Wrap(services.ErrTransport, "modify", "send request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ModifyResult{}, c.serviceError("modify", resp)
	}

	var decoded modifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ModifyResult{}, services.Wrap(services.ErrTransport, "modify", "decode response", "", err)
	}
	if decoded.ModifiedURL == "" {
		return ModifyResult{}, services.Wrap(services.ErrTransport, "modify", "decode response", "response missing modified_url", nil)
	}

	modifiedURL := decoded.ModifiedURL
	if strings.HasPrefix(modifiedURL, "/") {
		modifiedURL = c.baseURL + modifiedURL
	}

	return ModifyResult{
		AssetID:     decoded.AssetID,
		Message:     decoded.Message,
		ModifiedURL: modifiedURL,
	}, nil
}

// serviceError converts a non-2xx response into a tagged error. A message
// from the daemon is surfaced verbatim; anything else stays generic.
func (c *Client) serviceError(action string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && strings.TrimSpace(decoded.Message) != "" {
		return services.Wrap(services.ErrService, "", "", decoded.Message, nil)
	}
	c.logger.Debug("service returned unexpected response",
		logging.String("action", action),
		logging.Int("status", resp.StatusCode),
		logging.String("body", strings.TrimSpace(string(body))))
	return services.Wrap(services.ErrTransport, action, "", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
}

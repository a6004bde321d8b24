package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"easel/internal/services"
)

// AssetInfo describes one registered asset as reported by the daemon.
type AssetInfo struct {
	AssetID       string `json:"asset_id"`
	Kind          string `json:"kind"`
	SourceName    string `json:"source_name"`
	ContentType   string `json:"content_type"`
	SizeBytes     int64  `json:"size_bytes"`
	ParentAssetID string `json:"parent_asset_id"`
	Prompt        string `json:"prompt"`
	CreatedAt     string `json:"created_at"`
	URL           string `json:"url"`
}

// ServiceStatus describes daemon runtime information.
type ServiceStatus struct {
	Running   bool   `json:"running"`
	Originals int    `json:"originals"`
	Derived   int    `json:"derived"`
	Database  string `json:"database"`
}

// Asset fetches a single asset record by identifier.
func (c *Client) Asset(ctx context.Context, assetID string) (AssetInfo, error) {
	var info AssetInfo
	err := c.getJSON(ctx, "/api/assets/"+url.PathEscape(assetID), &info)
	return info, err
}

// Assets lists registered assets, optionally filtered by kind.
func (c *Client) Assets(ctx context.Context, kind string) ([]AssetInfo, error) {
	path := "/api/assets"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(kind)
	}
	var infos []AssetInfo
	err := c.getJSON(ctx, path, &infos)
	return infos, err
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (ServiceStatus, error) {
	var status ServiceStatus
	err := c.getJSON(ctx, "/api/status", &status)
	return status, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return services.Wrap(services.ErrTransport, "query", "build request", "", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "query", "send request", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "", "", "no asset with that identifier", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.serviceError("query", resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "query", "decode response", "", err)
	}
	return nil
}

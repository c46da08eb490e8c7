package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// apiClient — тонкая обёртка над HTTP API сервиса.
type apiClient struct {
	addr       string
	httpClient *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{
		addr: addr,
		httpClient: &http.Client{
			// батчевая индексация может работать минуты
			Timeout: 10 * time.Minute,
		},
	}
}

type batchIndexRequest struct {
	Source string `json:"source"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	ShopID string `json:"shop_id,omitempty"`
}

type batchItemError struct {
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
}

type batchIndexResponse struct {
	Total      int              `json:"total"`
	Indexed    int              `json:"indexed"`
	Failed     int              `json:"failed"`
	Errors     []batchItemError `json:"errors"`
	DurationMs int64            `json:"duration_ms"`
}

type reindexRequest struct {
	ProductID int64  `json:"product_id"`
	ShopID    string `json:"shop_id,omitempty"`
}

type reindexResponse struct {
	ProductID  int64  `json:"product_id"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type statsResponse struct {
	TotalIndexed       int64  `json:"total_indexed"`
	LastIndexedAt      string `json:"last_indexed_at,omitempty"`
	VectorIndexHealthy bool   `json:"vector_index_healthy"`
	VectorCount        uint64 `json:"vector_count"`
	MetadataRows       int64  `json:"metadata_rows"`
}

func (c *apiClient) batchIndex(req batchIndexRequest) (*batchIndexResponse, error) {
	var res batchIndexResponse
	if err := c.post("/api/v1/batch-index", req, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClient) reindex(req reindexRequest) (*reindexResponse, error) {
	var res reindexResponse
	if err := c.post("/api/v1/reindex-one", req, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClient) stats() (*statsResponse, error) {
	resp, err := c.httpClient.Get(c.addr + "/api/v1/stats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service returned status %d", resp.StatusCode)
	}

	var res statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *apiClient) post(path string, req any, res any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.addr+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, apiErr.Message)
	}

	return json.NewDecoder(resp.Body).Decode(res)
}

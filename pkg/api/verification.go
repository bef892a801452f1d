package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"rpsgame-deployer/pkg/contract"
	"rpsgame-deployer/pkg/logging"
	"rpsgame-deployer/pkg/utils"
)

// Client posts deployment payloads to a verification API.
type Client struct {
	url    string
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a client for apiURL. A nil httpClient uses a 30s timeout.
func NewClient(apiURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: apiURL, http: httpClient, logger: logging.WithComponent("api")}
}

// SendContracts sends the per-network contract data to the verification API.
func (c *Client) SendContracts(ctx context.Context, data map[string][]contract.ContractInfo) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return utils.LogErrorf("error marshaling data: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return utils.LogErrorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return utils.LogErrorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.LogErrorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return utils.LogErrorf("API returned non-OK status: %d, body: %s", resp.StatusCode, string(body))
	}

	c.logger.Info().Str("response", string(body)).Msg("verification API response")
	return nil
}

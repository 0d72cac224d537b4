package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIClient talks to the payment service's own HTTP endpoints. It implements
// ConfigSource and TokenSource for Loader/Invoker wiring.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

func (c *APIClient) FetchConfig(ctx context.Context) (*Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/payment/config", nil)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := c.do(req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *APIClient) CreateTransaction(ctx context.Context, paymentID string) (*Transaction, error) {
	body, err := json.Marshal(map[string]string{"payment_id": paymentID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/payment/transaction", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var txn Transaction
	if err := c.do(req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *APIClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checkout: %s answered %d: %s", req.URL.Path, resp.StatusCode, data)
	}
	return json.Unmarshal(data, out)
}

package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/amarajasa/weddingpay/pkg/config"
)

const (
	sandboxBaseURL    = "https://app.sandbox.midtrans.com"
	productionBaseURL = "https://app.midtrans.com"
	snapPath          = "/snap/v1/transactions"
)

// SnapRequest is the Snap transaction creation payload. The gateway
// validates that TransactionDetails.GrossAmount equals the sum of the item
// lines, so callers must keep them consistent.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	Callbacks          Callbacks          `json:"callbacks"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Callbacks struct {
	Finish  string `json:"finish"`
	Error   string `json:"error"`
	Pending string `json:"pending"`
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// APIError carries the gateway's non-2xx answer for diagnosis upstream.
type APIError struct {
	StatusCode    int             `json:"status_code"`
	ErrorMessages []string        `json:"error_messages"`
	RawBody       json.RawMessage `json:"raw_body"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("midtrans: snap api answered %d: %s", e.StatusCode, e.RawBody)
}

// Client calls the Midtrans Snap API. The server key never leaves this
// package except as the Basic auth header.
type Client struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	base := sandboxBaseURL
	if cfg.Midtrans.IsProduction {
		base = productionBaseURL
	}
	return &Client{
		baseURL:    base,
		serverKey:  cfg.Midtrans.ServerKey,
		httpClient: http.DefaultClient,
		log:        log,
	}
}

// CreateTransaction POSTs a Snap transaction and returns the checkout token
// and redirect URL. Non-2xx answers come back as *APIError.
func (c *Client) CreateTransaction(ctx context.Context, reqBody *SnapRequest) (*SnapResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("midtrans: marshal snap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+snapPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// HTTP Basic with the server key as username and empty password.
	req.SetBasicAuth(c.serverKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans: snap api call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("midtrans: read snap response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RawBody: body}
		var parsed struct {
			ErrorMessages []string `json:"error_messages"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			apiErr.ErrorMessages = parsed.ErrorMessages
		}
		c.log.Errorw("snap_transaction_failed", "status", resp.StatusCode, "order_id", reqBody.TransactionDetails.OrderID, "body", string(body))
		return nil, apiErr
	}

	var out SnapResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("midtrans: decode snap response: %w", err)
	}
	return &out, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)

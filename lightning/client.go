package lightning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Payment is a settlement record from the host payment engine. Amount is in
// millisatoshis. Extra carries the metadata the invoice was created with,
// including the extension tag.
type Payment struct {
	PaymentHash string            `json:"payment_hash"`
	Bolt11      string            `json:"bolt11"`
	Amount      int64             `json:"amount"`
	Settled     bool              `json:"paid"`
	Extra       map[string]string `json:"extra"`
}

// Tag returns the extension tag the payment was created with, if any.
func (p *Payment) Tag() string {
	return p.Extra["tag"]
}

// InvoiceParams describes the invoice to create on the host. WalletKey, when
// set, routes the invoice to that wallet instead of the client's default.
type InvoiceParams struct {
	WalletKey string            `json:"-"`
	Amount    int64             `json:"amount"` // sats
	Memo      string            `json:"memo"`
	Extra     map[string]string `json:"extra"`
}

// Client is the slice of the host payment engine this extension consumes:
// invoice creation, settlement lookup, and the paid-invoice event stream.
type Client interface {
	CreateInvoice(ctx context.Context, params InvoiceParams) (*Payment, error)
	Payment(ctx context.Context, paymentHash string) (*Payment, error)
	PaidInvoices(ctx context.Context) <-chan Payment
}

// HTTPClient talks to an LNbits-compatible host over its REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient constructs a client for the host at baseURL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type createInvoiceRequest struct {
	Out    bool              `json:"out"`
	Amount int64             `json:"amount"`
	Memo   string            `json:"memo"`
	Extra  map[string]string `json:"extra,omitempty"`
}

type createInvoiceResponse struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	Bolt11         string `json:"bolt11"`
}

// CreateInvoice asks the host to create an incoming invoice on the wallet.
func (c *HTTPClient) CreateInvoice(ctx context.Context, params InvoiceParams) (*Payment, error) {
	body := createInvoiceRequest{
		Out:    false,
		Amount: params.Amount,
		Memo:   params.Memo,
		Extra:  params.Extra,
	}

	var resp createInvoiceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/payments", params.WalletKey, body, &resp); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	bolt11 := resp.Bolt11
	if bolt11 == "" {
		bolt11 = resp.PaymentRequest
	}
	return &Payment{
		PaymentHash: resp.PaymentHash,
		Bolt11:      bolt11,
		Amount:      params.Amount * 1000,
		Extra:       params.Extra,
	}, nil
}

type paymentStatusResponse struct {
	Paid    bool `json:"paid"`
	Details struct {
		PaymentHash string            `json:"payment_hash"`
		Amount      int64             `json:"amount"`
		Extra       map[string]string `json:"extra"`
	} `json:"details"`
}

// Payment fetches the settlement status of an incoming payment by hash.
func (c *HTTPClient) Payment(ctx context.Context, paymentHash string) (*Payment, error) {
	var resp paymentStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/payments/"+paymentHash, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}

	return &Payment{
		PaymentHash: paymentHash,
		Amount:      resp.Details.Amount,
		Settled:     resp.Paid,
		Extra:       resp.Details.Extra,
	}, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, walletKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	key := c.apiKey
	if walletKey != "" {
		key = walletKey
	}
	req.Header.Set("X-Api-Key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("host returned %d: %s", resp.StatusCode, string(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

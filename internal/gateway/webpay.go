package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/config"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Webpay is the REST client for Webpay Plus.
type Webpay struct {
	baseURL      string
	commerceCode string
	apiKey       string
	http         *http.Client
}

func NewWebpay(cfg config.Gateway) *Webpay {
	return &Webpay{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		commerceCode: cfg.CommerceCode,
		apiKey:       cfg.APIKey,
		http:         &http.Client{Timeout: cfg.Timeout},
	}
}

type createBody struct {
	BuyOrder  string      `json:"buy_order"`
	SessionID string      `json:"session_id"`
	Amount    json.Number `json:"amount"`
	ReturnURL string      `json:"return_url"`
}

func (c *Webpay) Create(ctx context.Context, buyOrder, sessionID string, amount decimal.Decimal, returnURL string) (*CreateResult, error) {
	body := createBody{
		BuyOrder:  buyOrder,
		SessionID: sessionID,
		Amount:    json.Number(amount.String()),
		ReturnURL: returnURL,
	}
	raw, err := c.do(ctx, http.MethodPost, transactionsPath, body)
	if err != nil {
		return nil, apperr.Gateway("gateway create failed", err)
	}
	var out CreateResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Gateway("gateway create failed", fmt.Errorf("decode response: %w", err))
	}
	if out.Token == "" || out.URL == "" {
		return nil, apperr.Gateway("gateway create failed", errors.New("response without token or url"))
	}
	return &out, nil
}

func (c *Webpay) Commit(ctx context.Context, token string) (*CommitResult, error) {
	raw, err := c.do(ctx, http.MethodPut, transactionsPath+"/"+url.PathEscape(token), nil)
	if err != nil {
		return nil, apperr.Gateway("gateway commit failed", err)
	}
	var out CommitResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Gateway("gateway commit failed", fmt.Errorf("decode response: %w", err))
	}
	out.Raw = raw
	return &out, nil
}

type errorBody struct {
	Message string `json:"error_message"`
}

// do sends one request and returns the body of a 2xx response. Errors never
// include the API secret.
func (c *Webpay) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			// url.Error repeats the URL; keep only the transport cause.
			return nil, fmt.Errorf("%s %s: %w", method, path, uerr.Err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, e.Message)
	}
	return raw, nil
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cheerclub/billing-api/internal/apperr"
	"github.com/cheerclub/billing-api/internal/config"
)

const secret = "super-secret-key"

func newClient(t *testing.T, h http.HandlerFunc) *Webpay {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWebpay(config.Gateway{
		BaseURL:      srv.URL,
		CommerceCode: "597055555532",
		APIKey:       secret,
		Timeout:      2 * time.Second,
	})
}

func TestCreate(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, transactionsPath, r.URL.Path)
		assert.Equal(t, "597055555532", r.Header.Get("Tbk-Api-Key-Id"))
		assert.Equal(t, secret, r.Header.Get("Tbk-Api-Key-Secret"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bo-1", body["buy_order"])
		assert.Equal(t, "7", body["session_id"])
		assert.Equal(t, float64(45000), body["amount"])
		assert.Equal(t, "http://front/webpay-return", body["return_url"])

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok", "url": "https://pay/init"})
	})

	res, err := c.Create(context.Background(), "bo-1", "7", decimal.NewFromInt(45000), "http://front/webpay-return")
	require.NoError(t, err)
	assert.Equal(t, &CreateResult{Token: "tok", URL: "https://pay/init"}, res)
}

func TestCreateWithoutToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://pay/init"}`))
	})
	_, err := c.Create(context.Background(), "bo", "1", decimal.NewFromInt(1), "http://x")
	assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))
}

func TestCommit(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, transactionsPath+"/tok-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"vci":"TSY","amount":45000,"status":"AUTHORIZED","buy_order":"bo-1","session_id":"7","authorization_code":"1213","response_code":0}`))
	})

	res, err := c.Commit(context.Background(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, 0, *res.ResponseCode)
	assert.Equal(t, "AUTHORIZED", res.Status)
	assert.Equal(t, "1213", res.AuthorizationCode)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(45000)))
	assert.JSONEq(t, `{"vci":"TSY","amount":45000,"status":"AUTHORIZED","buy_order":"bo-1","session_id":"7","authorization_code":"1213","response_code":0}`, string(res.Raw))
	assert.True(t, res.Approved(false))
}

func TestApproved(t *testing.T) {
	rejected := -1
	assert.False(t, (&CommitResult{ResponseCode: &rejected}).Approved(true))
	assert.False(t, (&CommitResult{}).Approved(false))
	assert.True(t, (&CommitResult{}).Approved(true))
}

func TestUpstreamErrorHidesSecret(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_message":"Not Authorized"}`))
	})
	_, err := c.Commit(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Not Authorized")
	assert.NotContains(t, err.Error(), secret)
}

func TestTransportError(t *testing.T) {
	c := NewWebpay(config.Gateway{BaseURL: "http://127.0.0.1:1", APIKey: secret, Timeout: time.Second})
	_, err := c.Create(context.Background(), "bo", "1", decimal.NewFromInt(1), "http://x")
	require.Error(t, err)
	assert.Equal(t, apperr.KindGateway, apperr.KindOf(err))
	assert.NotContains(t, err.Error(), secret)
}

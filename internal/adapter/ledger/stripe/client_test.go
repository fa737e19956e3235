package stripe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"escrow-settlement/config"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
)

type captured struct {
	path    string
	form    map[string]string
	key     string
	account string
}

// newTestClient points a Client at a fake Stripe API answering with body and status.
func newTestClient(t *testing.T, status int, body string) (*Client, *captured) {
	t.Helper()
	got := &captured{form: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.path = r.URL.Path
		for k := range r.PostForm {
			got.form[k] = r.PostForm.Get(k)
		}
		got.key = r.Header.Get("Idempotency-Key")
		got.account = r.Header.Get("Stripe-Account")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Request-Id", "req_test")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.StripeConfig{SecretKey: "sk_test_123", APIURL: srv.URL}, srv.Client(), zerolog.New(io.Discard))
	return c, got
}

func TestClient_RefundCharge(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"re_1","object":"refund","status":"succeeded","amount":5500}`)

	res, err := c.Refund(context.Background(), ports.LedgerRefundRequest{
		ChargeRef: "ch_abc", AmountCents: 5500, IdempotencyKey: "refund:order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "re_1", res.RefundID)
	assert.Equal(t, "succeeded", res.Status)

	assert.Equal(t, "/v1/refunds", got.path)
	assert.Equal(t, "ch_abc", got.form["charge"])
	assert.Equal(t, "5500", got.form["amount"])
	assert.Empty(t, got.form["payment_intent"])
	assert.Equal(t, "refund:order-1", got.key)
}

func TestClient_RefundPaymentIntent(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"re_2","object":"refund","status":"pending"}`)

	res, err := c.Refund(context.Background(), ports.LedgerRefundRequest{
		ChargeRef: "pi_123", AmountCents: 100, IdempotencyKey: "refund:order-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, "pi_123", got.form["payment_intent"])
	assert.Empty(t, got.form["charge"])
}

func TestClient_TransferToSeller(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"tr_1","object":"transfer","amount":4000}`)

	res, err := c.Transfer(context.Background(), ports.LedgerTransferRequest{
		AmountCents:           4000,
		DestinationAccountRef: "acct_seller",
		SourceRef:             "ch_abc",
		IdempotencyKey:        "release:order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tr_1", res.TransferID)

	assert.Equal(t, "/v1/transfers", got.path)
	assert.Equal(t, "acct_seller", got.form["destination"])
	assert.Equal(t, "ch_abc", got.form["source_transaction"])
	assert.Equal(t, "usd", got.form["currency"])
	assert.Empty(t, got.account)
}

func TestClient_FeeTransferFromConnectedAccount(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"tr_fee","object":"transfer","amount":300}`)

	_, err := c.Transfer(context.Background(), ports.LedgerTransferRequest{
		AmountCents:           300,
		DestinationAccountRef: "acct_platform",
		FromAccountRef:        "acct_seller",
		IdempotencyKey:        "payout-fee:w:v3",
	})
	require.NoError(t, err)
	assert.Equal(t, "acct_seller", got.account)
	assert.Equal(t, "acct_platform", got.form["destination"])
	assert.Empty(t, got.form["source_transaction"])
}

func TestClient_InstantPayout(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"po_1","object":"payout","status":"in_transit","amount":9700}`)

	res, err := c.Payout(context.Background(), ports.LedgerPayoutRequest{
		AmountCents:           9700,
		DestinationAccountRef: "acct_seller",
		Method:                domain.PayoutMethodInstant,
		IdempotencyKey:        "payout:w:v3",
	})
	require.NoError(t, err)
	assert.Equal(t, "po_1", res.PayoutID)
	assert.Equal(t, "in_transit", res.Status)

	assert.Equal(t, "/v1/payouts", got.path)
	assert.Equal(t, "instant", got.form["method"])
	assert.Equal(t, "9700", got.form["amount"])
	assert.Equal(t, "acct_seller", got.account)
	assert.Equal(t, "payout:w:v3", got.key)
}

func TestClient_ErrorCarriesStripeDetails(t *testing.T) {
	c, _ := newTestClient(t, http.StatusPaymentRequired,
		`{"error":{"type":"invalid_request_error","code":"balance_insufficient","message":"Insufficient funds in Stripe account."}}`)

	_, err := c.Payout(context.Background(), ports.LedgerPayoutRequest{
		AmountCents: 100, DestinationAccountRef: "acct_seller", Method: domain.PayoutMethodStandard, IdempotencyKey: "k",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe payout")
	assert.Contains(t, err.Error(), "balance_insufficient")

	var se *stripego.Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusPaymentRequired, se.HTTPStatusCode)
	assert.ErrorIs(t, err, ports.ErrLedgerDeclined)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		declined bool
	}{
		{"card declined", http.StatusPaymentRequired, true},
		{"bad request", http.StatusBadRequest, true},
		{"idempotency conflict", http.StatusConflict, false},
		{"rate limited", http.StatusTooManyRequests, false},
		{"server error", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.status, `{"error":{"type":"api_error","message":"nope"}}`)
			_, err := c.Refund(context.Background(), ports.LedgerRefundRequest{
				ChargeRef: "ch_abc", AmountCents: 100, IdempotencyKey: "refund:order-9",
			})
			require.Error(t, err)
			assert.Equal(t, tt.declined, errors.Is(err, ports.ErrLedgerDeclined))
		})
	}
}

func TestClient_TransferFromPaymentIntentUsesLatestCharge(t *testing.T) {
	var transferForm url.Values
	var lookups int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/payment_intents/pi_123", func(w http.ResponseWriter, r *http.Request) {
		lookups++
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_123","object":"payment_intent","latest_charge":"ch_from_pi"}`)
	})
	mux.HandleFunc("/v1/transfers", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		transferForm = r.PostForm
		assert.Equal(t, "release:order-3", r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"tr_3","object":"transfer","amount":4000}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := NewClient(config.StripeConfig{SecretKey: "sk_test_123", APIURL: srv.URL}, srv.Client(), zerolog.New(io.Discard))

	res, err := c.Transfer(context.Background(), ports.LedgerTransferRequest{
		AmountCents:           4000,
		DestinationAccountRef: "acct_seller",
		SourceRef:             "pi_123",
		IdempotencyKey:        "release:order-3",
	})
	require.NoError(t, err)
	assert.Equal(t, "tr_3", res.TransferID)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, "ch_from_pi", transferForm.Get("source_transaction"))
}

func TestClient_TransferFromUnchargedPaymentIntentIsDeclined(t *testing.T) {
	c, got := newTestClient(t, http.StatusOK, `{"id":"pi_456","object":"payment_intent","latest_charge":null}`)

	_, err := c.Transfer(context.Background(), ports.LedgerTransferRequest{
		AmountCents: 4000, DestinationAccountRef: "acct_seller", SourceRef: "pi_456", IdempotencyKey: "release:order-4",
	})
	assert.ErrorIs(t, err, ports.ErrLedgerDeclined)
	assert.Equal(t, "/v1/payment_intents/pi_456", got.path, "no transfer is attempted")
}

package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	config "github.com/maheshrc27/myblog/configs"
	"github.com/maheshrc27/myblog/internal/transfer"
)

// PaymentGateway isolates every interaction with the payment processor.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type razorpayService struct {
	keyID      string
	keySecret  string
	baseURL    string
	maxRetries int
	client     *http.Client
}

func NewRazorpayService(cfg config.Razorpay) PaymentGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &razorpayService{
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

type gatewayStatusError struct {
	status      int
	description string
}

func (e *gatewayStatusError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("gateway returned %d: %s", e.status, e.description)
	}
	return fmt.Sprintf("gateway returned %d", e.status)
}

// CreateOrder registers a payment intent with the gateway and returns its order id.
// Only transport failures and 5xx responses are retried, up to maxRetries times.
func (s *razorpayService) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	body, err := json.Marshal(transfer.RazorpayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding order: %v", ErrGateway, err)
	}

	var orderID string
	op := func() error {
		id, err := s.postOrder(ctx, body)
		if err != nil {
			var statusErr *gatewayStatusError
			if errors.As(err, &statusErr) && statusErr.status < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			return err
		}
		orderID = id
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return orderID, nil
}

func (s *razorpayService) postOrder(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gwErr transfer.RazorpayErrorResponse
		_ = json.Unmarshal(payload, &gwErr)
		return "", &gatewayStatusError{status: resp.StatusCode, description: gwErr.Error.Description}
	}

	var order transfer.RazorpayOrderResponse
	if err := json.Unmarshal(payload, &order); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode order response: %w", err))
	}
	if order.ID == "" {
		return "", backoff.Permanent(errors.New("order response has no id"))
	}
	return order.ID, nil
}

// VerifySignature checks the gateway's HMAC-SHA256 over "order_id|payment_id",
// keyed with the API secret and hex encoded.
func (s *razorpayService) VerifySignature(orderID, paymentID, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: empty signature", ErrSignatureInvalid)
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrSignatureInvalid)
	}
	if !hmac.Equal(got, signPayment(s.keySecret, orderID, paymentID)) {
		return ErrSignatureInvalid
	}
	return nil
}

func signPayment(secret, orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}

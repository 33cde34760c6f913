package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/storefront/pkg/config"
	"go.uber.org/zap"
)

const tokenCacheKey = "paypal:access_token"

// TokenCache keeps the provider's bearer token between requests.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type PayPalClient struct {
	clientID  string
	appSecret string
	apiURL    string
	http      *http.Client
	cache     TokenCache
	logger    *zap.Logger
}

// NewPayPalClient builds a client for the REST API at cfg.APIURL. cache may
// be nil, in which case every verification fetches a fresh token.
func NewPayPalClient(cfg config.PayPalConfig, cache TokenCache, logger *zap.Logger) *PayPalClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PayPalClient{
		clientID:  cfg.ClientID,
		appSecret: cfg.AppSecret,
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		http:      &http.Client{Timeout: timeout},
		cache:     cache,
		logger:    logger.Named("paypal"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	UpdateTime    string `json:"update_time"`
	Payer         struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

// AccessToken returns a client-credentials bearer token.
func (p *PayPalClient) AccessToken(ctx context.Context) (string, error) {
	if p.cache != nil {
		if token, err := p.cache.Get(ctx, tokenCacheKey); err == nil && token != "" {
			return token, nil
		}
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.appSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := p.do(req, &tr); err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("failed to get access token: empty token")
	}

	if p.cache != nil && tr.ExpiresIn > 60 {
		ttl := time.Duration(tr.ExpiresIn-60) * time.Second
		if err := p.cache.Set(ctx, tokenCacheKey, tr.AccessToken, ttl); err != nil {
			p.logger.Warn("Failed to cache access token", zap.Error(err))
		}
	}
	return tr.AccessToken, nil
}

// VerifyPayment looks up the checkout order txID. It makes a single
// attempt and does not retry.
func (p *PayPalClient) VerifyPayment(ctx context.Context, txID string) (*Verification, error) {
	token, err := p.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/v2/checkout/orders/"+url.PathEscape(txID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var order orderResponse
	if err := p.do(req, &order); err != nil {
		return nil, err
	}

	v := &Verification{
		Completed:  order.Status == "COMPLETED",
		Status:     order.Status,
		PayerEmail: order.Payer.EmailAddress,
		UpdateTime: order.UpdateTime,
	}
	if len(order.PurchaseUnits) > 0 {
		v.Value = order.PurchaseUnits[0].Amount.Value
	}
	return v, nil
}

func (p *PayPalClient) do(req *http.Request, out interface{}) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		p.logger.Warn("Unexpected provider response",
			zap.String("url", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

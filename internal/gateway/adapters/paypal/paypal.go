// Package paypal adapts the PayPal Orders v2 REST API to the gateway
// contract: an intent is a PayPal order, confirmation captures it.
package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hostline/hostline/internal/config"
	"github.com/hostline/hostline/internal/gateway/domain"
)

type Adapter struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

func New(cfg config.GatewayConfig) *Adapter {
	return &Adapter{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:      cfg.PayPalBaseURL,
		clientID:     cfg.PayPalClientID,
		clientSecret: cfg.PayPalClientSecret,
	}
}

func (a *Adapter) Provider() string { return "paypal" }

type paypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type paypalOrder struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Links         []paypalLink `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID string `json:"id"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (a *Adapter) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(a.clientID + ":" + a.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paypal token request failed: %s", resp.Status)
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (a *Adapter) CreateIntent(ctx context.Context, intentReq domain.IntentRequest) (domain.Intent, error) {
	accessToken, err := a.getAccessToken(ctx)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]string{
					"currency_code": intentReq.Currency,
					"value":         intentReq.Amount.StringFixed(2),
				},
				"custom_id": intentReq.Metadata["order_number"],
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return domain.Intent{}, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Intent{}, fmt.Errorf("%w: create order returned %s", domain.ErrGatewayUnavailable, resp.Status)
	}

	var result paypalOrder
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Intent{}, fmt.Errorf("decode create order response: %w", err)
	}

	intent := domain.Intent{IntentID: result.ID}
	for _, link := range result.Links {
		if link.Rel == "approve" {
			intent.ApproveURL = link.Href
		}
	}
	return intent, nil
}

func (a *Adapter) Confirm(ctx context.Context, paymentReference string) (domain.Verification, error) {
	accessToken, err := a.getAccessToken(ctx)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/checkout/orders/%s/capture", a.baseURL, paymentReference),
		bytes.NewBufferString("{}"))
	if err != nil {
		return domain.Verification{}, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("read capture response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Verification{}, fmt.Errorf("%w: capture returned %s", domain.ErrGatewayUnavailable, resp.Status)
	}

	var result paypalOrder
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Verification{}, fmt.Errorf("decode capture response: %w", err)
	}

	verification := domain.Verification{
		Verified:      result.Status == "COMPLETED",
		TransactionID: result.ID,
		Raw:           raw,
	}
	for _, unit := range result.PurchaseUnits {
		if len(unit.Payments.Captures) > 0 {
			verification.TransactionID = unit.Payments.Captures[0].ID
		}
	}
	return verification, nil
}

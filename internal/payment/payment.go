// Package payment abstracts the payment-link provider. Orders paid by
// anything other than cash get a hosted payment link at checkout; the
// provider calls back to confirm, and the order's payment flag is flipped
// by link id. No reconciliation or refunds happen here.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Link is a hosted payment page handed to the customer at checkout.
type Link struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway creates payment links for non-cash orders.
type Gateway interface {
	CreateLink(ctx context.Context, orderID string, amount float64) (*Link, error)
}

// OfflineGateway issues locally generated links without contacting any
// provider. It stands in wherever a real processor is not configured; the
// confirm callback endpoint completes the flow either way.
type OfflineGateway struct {
	BaseURL string
}

func NewOfflineGateway(baseURL string) *OfflineGateway {
	if baseURL == "" {
		baseURL = "https://pay.example.invalid"
	}
	return &OfflineGateway{BaseURL: baseURL}
}

func (g *OfflineGateway) CreateLink(ctx context.Context, orderID string, amount float64) (*Link, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	id := "plink_" + hex.EncodeToString(buf)
	return &Link{
		ID:  id,
		URL: fmt.Sprintf("%s/l/%s?amount=%.2f", g.BaseURL, id, amount),
	}, nil
}

package billing

import (
	"fmt"
	"strings"

	"github.com/plfog/backoffice/internal/infrastructure/config"
)

// StripeConfig holds what the invoice gateway needs to talk to Stripe
type StripeConfig struct {
	// SecretKey is the key for the active mode (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// LiveMode reports whether SecretKey must be a live key
	LiveMode bool

	// Currency is used for every invoice item (e.g. "usd")
	Currency string
}

// NewStripeConfig picks the active key from the application config
func NewStripeConfig(cfg config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey: cfg.ActiveSecretKey(),
		LiveMode:  cfg.LiveMode,
		Currency:  cfg.Currency,
	}
}

// Configured reports whether a secret key is present. Without one invoices
// are only recorded locally.
func (c *StripeConfig) Configured() bool {
	return c != nil && c.SecretKey != ""
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	if c.LiveMode {
		if !strings.HasPrefix(c.SecretKey, "sk_live") {
			return fmt.Errorf("stripe: live mode enabled but secret key is not a live key")
		}
	} else if strings.HasPrefix(c.SecretKey, "sk_live") {
		return fmt.Errorf("stripe: test mode enabled but secret key is not a test key")
	}

	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}

	return nil
}

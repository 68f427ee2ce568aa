package settlement

import (
	"fmt"
	"strings"
)

// Provider identifies an adapter implementation
type Provider string

const (
	ProviderMock   Provider = "mock"
	ProviderStripe Provider = "stripe"
)

// Config selects and configures a settlement provider
type Config struct {
	Provider        string
	StripeSecretKey string
	Environment     string
	MockSuccessRate float64
}

// New creates a settlement adapter from config
func New(cfg Config) (Adapter, error) {
	switch Provider(strings.ToLower(cfg.Provider)) {
	case ProviderMock, "":
		mock := DefaultMockConfig()
		if cfg.MockSuccessRate > 0 {
			mock.SuccessRate = cfg.MockSuccessRate
		}
		return NewMockAdapter(mock), nil

	case ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is required")
		}
		return NewStripeAdapter(&StripeConfig{
			SecretKey:   cfg.StripeSecretKey,
			Environment: cfg.Environment,
		})

	default:
		return nil, fmt.Errorf("unsupported settlement provider: %s", cfg.Provider)
	}
}

package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	InventoryURL      string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	Markups           map[domain.Kind]decimal.Decimal
}

// LoadConfig reads environment variables, applies defaults, and validates
// basic constraints. A markup override must parse and stay positive; a
// missing override falls back to the built-in price list entry.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		InventoryURL:      strings.TrimSpace(os.Getenv("INVENTORY_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	markups, err := markupsFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.Markups = markups
	return cfg, nil
}

// PriceList builds the price list for the process, layering environment
// overrides over the defaults. Every figure variant must end up priced or
// boot fails.
func (c Config) PriceList() (*domain.PriceList, error) {
	defaults := domain.DefaultPriceList()
	merged := make(map[domain.Kind]decimal.Decimal, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		markup, err := defaults.Markup(kind)
		if err != nil {
			return nil, err
		}
		merged[kind] = markup
	}
	for kind, markup := range c.Markups {
		merged[kind] = markup
	}
	return domain.NewPriceList(merged)
}

func markupsFromEnv() (map[domain.Kind]decimal.Decimal, error) {
	vars := map[domain.Kind]string{
		domain.KindTriangle: "MARKUP_TRIANGLE",
		domain.KindSquare:   "MARKUP_SQUARE",
		domain.KindCircle:   "MARKUP_CIRCLE",
	}
	markups := make(map[domain.Kind]decimal.Decimal)
	for kind, name := range vars {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			continue
		}
		markup, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a decimal number: %w", name, err)
		}
		if markup.Sign() <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", name, markup)
		}
		markups[kind] = markup
	}
	return markups, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

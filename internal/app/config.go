package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ORDERDESK_ prefix), flags, or YAML config files.
type Config struct {
	APIBaseURL string        `usage:"Sales backend base URL (ORDERDESK_API_BASE_URL or API_BASE_URL)" flag:"api-base-url"`
	APIToken   string        `usage:"Authorization header value, sent verbatim" flag:"api-token"`
	TaxRate    string        `default:"0.06" usage:"GST rate applied to the discounted subtotal" flag:"tax-rate"`
	Timeout    time.Duration `default:"30s" usage:"Per-request HTTP timeout"`
	Snapshot   string        `default:"catalog.json.gz" usage:"Catalog snapshot path"`
	PerPage    int           `default:"1000" usage:"Page size for catalog priming" flag:"per-page"`

	Mode    string `default:"price" usage:"Action: price, submit, update or list"`
	Draft   string `usage:"Path to the order draft JSON (price, submit, update)"`
	OrderID string `usage:"Order id to update" flag:"order-id"`
	Page    int    `default:"1" usage:"Page of the order list"`
	Limit   int    `default:"20" usage:"Order list page size"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and flags.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERDESK",
		Files:     []string{"config.yaml", "/etc/orderdesk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.APIBaseURL == "" {
		return nil, errors.New("backend URL is required: set ORDERDESK_API_BASE_URL or API_BASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed environment variables that
// deployment platforms inject to the ORDERDESK_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.APIBaseURL == "" {
		if v := os.Getenv("API_BASE_URL"); v != "" {
			c.APIBaseURL = v
		}
	}
	if c.APIToken == "" {
		if v := os.Getenv("API_TOKEN"); v != "" {
			c.APIToken = v
		}
	}
}

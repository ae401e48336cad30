// Package app wires the order entry tool: config, HTTP client, catalog and
// the order service, then dispatches on the configured mode.
package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sellkit/orderdesk/internal/catalog"
	"github.com/sellkit/orderdesk/internal/order"
	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

// Run creates all dependencies and executes the configured action. It is
// the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("backend", cfg.APIBaseURL),
		zap.String("mode", cfg.Mode))

	client := salesapi.New(cfg.APIBaseURL, &http.Client{
		Timeout: cfg.Timeout,
		Transport: otelhttp.NewTransport(
			salesapi.NewTransport(http.DefaultTransport, cfg.APIToken),
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	})

	cache := catalog.New()
	if takenAt, err := cache.Restore(cfg.Snapshot); err == nil {
		lg.Info("Catalog restored from snapshot",
			zap.String("path", cfg.Snapshot),
			zap.Time("taken_at", takenAt),
			zap.Int("products", cache.Len()))
	} else {
		lg.Info("No usable snapshot, priming from backend", zap.Error(err))
		if err := cache.Prime(ctx, client, cfg.PerPage); err != nil {
			return errors.Wrap(err, "prime catalog")
		}
		lg.Info("Catalog primed", zap.Int("products", cache.Len()))
	}

	svc := order.New(client, cache, pricing.ParseNumber(cfg.TaxRate))

	switch cfg.Mode {
	case "price":
		return runPrice(cfg, svc, lg)
	case "submit":
		return runSubmit(ctx, cfg, svc, lg)
	case "update":
		return runUpdate(ctx, cfg, svc, lg)
	case "list":
		return runList(ctx, cfg, client)
	default:
		return errors.Errorf("unknown mode %q", cfg.Mode)
	}
}

func loadDraft(cfg *Config) (*order.Draft, error) {
	if cfg.Draft == "" {
		return nil, errors.New("draft path is required: set ORDERDESK_DRAFT")
	}
	return order.LoadDraft(cfg.Draft)
}

func runPrice(cfg *Config, svc *order.Service, lg *zap.Logger) error {
	d, err := loadDraft(cfg)
	if err != nil {
		return err
	}
	priced := svc.Price(d)
	logWarnings(lg, priced.Warnings)
	return printJSON(struct {
		Items  []pricing.LineItem `json:"items"`
		Totals pricing.Totals     `json:"totals"`
	}{priced.Items, priced.Totals})
}

func runSubmit(ctx context.Context, cfg *Config, svc *order.Service, lg *zap.Logger) error {
	d, err := loadDraft(cfg)
	if err != nil {
		return err
	}
	res, priced, err := svc.Submit(ctx, d)
	logWarnings(lg, priced.Warnings)
	if err != nil {
		return err
	}
	lg.Info("Order created",
		zap.String("order_id", res.ID),
		zap.String("total", priced.Totals.Total.String()))
	return printJSON(res)
}

func runUpdate(ctx context.Context, cfg *Config, svc *order.Service, lg *zap.Logger) error {
	if cfg.OrderID == "" {
		return errors.New("order id is required: set ORDERDESK_ORDER_ID")
	}
	d, err := loadDraft(cfg)
	if err != nil {
		return err
	}
	res, priced, err := svc.Update(ctx, cfg.OrderID, d)
	logWarnings(lg, priced.Warnings)
	if err != nil {
		return err
	}
	lg.Info("Order updated",
		zap.String("order_id", cfg.OrderID),
		zap.String("total", priced.Totals.Total.String()))
	return printJSON(res)
}

func runList(ctx context.Context, cfg *Config, client *salesapi.Client) error {
	orders, total, err := client.ListOrders(ctx, cfg.Page, cfg.Limit)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Orders []salesapi.Order `json:"orders"`
		Total  int              `json:"total"`
	}{orders, total})
}

func logWarnings(lg *zap.Logger, warnings []string) {
	for _, w := range warnings {
		lg.Warn("Draft check", zap.String("warning", w))
	}
}

// printJSON writes the action result to stdout, keeping logs on stderr.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

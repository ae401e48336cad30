// Command catalog-sync refreshes the local catalog snapshot from the sales
// backend and optionally pushes promotion and pricing definitions to it.
// It is a one-shot tool meant for cron and for seeding test environments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/sellkit/orderdesk/internal/catalog"
	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

func main() {
	var (
		baseURL        string
		token          string
		snapshot       string
		perPage        int
		timeout        time.Duration
		promotionsFile string
		pricingFile    string
	)

	flag.StringVar(&baseURL, "api-base-url", "", "sales backend base URL (or API_BASE_URL env)")
	flag.StringVar(&token, "token", "", "Authorization header value (or API_TOKEN env)")
	flag.StringVar(&snapshot, "snapshot", "catalog.json.gz", "snapshot output path")
	flag.IntVar(&perPage, "per-page", 1000, "page size for catalog fetches")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request HTTP timeout")
	flag.StringVar(&promotionsFile, "push-promotions", "", "JSON file of promotions to create before syncing")
	flag.StringVar(&pricingFile, "push-pricing", "", "JSON file of pricing entries to update before syncing")
	flag.Parse()

	if baseURL == "" {
		baseURL = os.Getenv("API_BASE_URL")
	}
	if token == "" {
		token = os.Getenv("API_TOKEN")
	}
	if baseURL == "" {
		slog.Error("backend URL is required: set --api-base-url or API_BASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, baseURL, token, snapshot, perPage, timeout, promotionsFile, pricingFile); err != nil {
		slog.Error("catalog sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog sync completed successfully")
}

func run(ctx context.Context, baseURL, token, snapshot string, perPage int, timeout time.Duration, promotionsFile, pricingFile string) error {
	client := salesapi.New(baseURL, &http.Client{
		Timeout:   timeout,
		Transport: salesapi.NewTransport(nil, token),
	})

	if promotionsFile != "" {
		if err := pushPromotions(ctx, client, promotionsFile); err != nil {
			return errors.Wrap(err, "push promotions")
		}
	}
	if pricingFile != "" {
		if err := pushPricing(ctx, client, pricingFile); err != nil {
			return errors.Wrap(err, "push pricing")
		}
	}

	slog.Info("priming catalog", slog.String("backend", baseURL))

	cache := catalog.New()
	if err := cache.Prime(ctx, client, perPage); err != nil {
		return errors.Wrap(err, "prime catalog")
	}

	slog.Info("catalog primed",
		slog.Int("products", cache.Len()),
		slog.Int("promotions", len(cache.Promotions())),
		slog.Int("agents", len(cache.Agents())),
	)

	if err := cache.WriteSnapshot(snapshot); err != nil {
		return errors.Wrap(err, "write snapshot")
	}

	slog.Info("snapshot written", slog.String("path", snapshot))
	return nil
}

// promotionSpec is the push file format: one promotion shell plus its rules.
type promotionSpec struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Rules     []struct {
		ProductID    string `json:"productId"`
		AgentGroupID string `json:"agentGroupId"`
		MinQuantity  string `json:"minimumQuantity"`
		MaxQuantity  string `json:"maximumQuantity"`
		Operation    string `json:"operationType"`
		Value        string `json:"value"`
	} `json:"rules"`
}

func pushPromotions(ctx context.Context, client *salesapi.Client, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read promotions file")
	}
	var specs []promotionSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return errors.Wrap(err, "parse promotions file")
	}

	for _, spec := range specs {
		id, err := client.CreatePromotion(ctx, spec.Name, spec.Status, spec.StartDate, spec.EndDate)
		if err != nil {
			return errors.Wrapf(err, "create promotion %q", spec.Name)
		}

		slog.Info("promotion created", slog.String("name", spec.Name), slog.String("id", id))

		for _, r := range spec.Rules {
			payload := salesapi.RulePayload{
				PromotionID:  id,
				ProductID:    r.ProductID,
				AgentGroupID: r.AgentGroupID,
			}
			payload.MinQuantity, _ = decimal.NewFromString(r.MinQuantity)
			if r.MaxQuantity != "" {
				maxQty, err := decimal.NewFromString(r.MaxQuantity)
				if err != nil {
					return errors.Wrapf(err, "promotion %q: bad maximum quantity %q", spec.Name, r.MaxQuantity)
				}
				payload.MaxQuantity = &maxQty
			}
			payload.Operation = pricingOperation(r.Operation)
			payload.Value, _ = decimal.NewFromString(r.Value)

			if err := client.CreatePromotionRule(ctx, payload); err != nil {
				return errors.Wrapf(err, "create rule for promotion %q", spec.Name)
			}
		}
	}
	return nil
}

// pricingOperation defaults unknown operation names to percentage, the
// common case in the push files.
func pricingOperation(s string) pricing.Operation {
	if s == string(pricing.OperationFixed) {
		return pricing.OperationFixed
	}
	return pricing.OperationPercentage
}

func pushPricing(ctx context.Context, client *salesapi.Client, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read pricing file")
	}
	var entries []struct {
		ProductID    string `json:"productId"`
		AgentGroupID string `json:"agentGroupId"`
		Price        string `json:"price"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse pricing file")
	}

	pricings := make([]salesapi.PricingEntry, 0, len(entries))
	for _, e := range entries {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return errors.Wrapf(err, "bad price %q for product %s", e.Price, e.ProductID)
		}
		pricings = append(pricings, salesapi.PricingEntry{
			ProductID:    e.ProductID,
			AgentGroupID: e.AgentGroupID,
			Price:        price,
		})
	}

	if err := client.UpdatePricings(ctx, pricings); err != nil {
		return err
	}

	slog.Info("pricing updated", slog.Int("entries", len(pricings)))
	return nil
}

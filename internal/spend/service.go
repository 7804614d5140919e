// Package spend produces month-to-date customer spend summaries compared
// against configured fixed maintenance budgets.
package spend

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetview/fleetview/internal/lookup"
)

const cacheKey = "spend:summary"

// CustomerSpend is one customer's month-to-date position.
type CustomerSpend struct {
	Customer    string  `json:"customer"`
	Spend       float64 `json:"spend"`
	FixedBudget float64 `json:"fixedBudget,omitempty"`
	// BudgetUsedPercent is zero when no budget is configured.
	BudgetUsedPercent float64 `json:"budgetUsedPercent,omitempty"`
	Invoices          int     `json:"invoices"`
}

// Summary is the full month-to-date report.
type Summary struct {
	MonthStart time.Time       `json:"monthStart"`
	AsOf       time.Time       `json:"asOf"`
	SnapshotID string          `json:"snapshotId"`
	Customers  []CustomerSpend `json:"customers"`
	TotalSpend float64         `json:"totalSpend"`
}

// RecordProvider yields the resident record snapshot.
type RecordProvider interface {
	Snapshot() (*lookup.Snapshot, error)
}

// Service computes and caches spend summaries. The Redis client may be nil,
// in which case summaries are recomputed per request.
type Service struct {
	logger     *slog.Logger
	store      RecordProvider
	client     *redis.Client
	ttl        time.Duration
	fixedCosts map[string]float64
	now        func() time.Time
}

// NewService wires the spend calculator.
func NewService(logger *slog.Logger, store RecordProvider, client *redis.Client, ttl time.Duration, fixedCosts map[string]float64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	normalized := make(map[string]float64, len(fixedCosts))
	for name, budget := range fixedCosts {
		normalized[normalizeCustomer(name)] = budget
	}
	return &Service{
		logger:     logger,
		store:      store,
		client:     client,
		ttl:        ttl,
		fixedCosts: normalized,
		now:        time.Now,
	}
}

// Summary returns the cached month-to-date report, computing it on a miss.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.client != nil {
		payload, err := s.client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Summary
			if err := json.Unmarshal(payload, &cached); err == nil && sameMonth(cached.MonthStart, s.now()) {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("spend cache read failed", slog.Any("error", err))
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the summary from the current snapshot and rewrites the
// cache. Called on cache misses and by the dataset refresh job.
func (s *Service) Refresh(ctx context.Context) (Summary, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return Summary{}, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type bucket struct {
		spend    float64
		invoices map[string]struct{}
	}
	byCustomer := map[string]*bucket{}
	for i := range snap.Records {
		r := &snap.Records[i]
		if r.InvoiceDate.Before(monthStart) || r.InvoiceDate.After(now) {
			continue
		}
		if r.CustomerName == "" {
			continue
		}
		b := byCustomer[r.CustomerName]
		if b == nil {
			b = &bucket{invoices: map[string]struct{}{}}
			byCustomer[r.CustomerName] = b
		}
		b.spend += amountOf(r)
		b.invoices[r.InvoiceNumber] = struct{}{}
	}

	summary := Summary{
		MonthStart: monthStart,
		AsOf:       now,
		SnapshotID: snap.ID,
		Customers:  make([]CustomerSpend, 0, len(byCustomer)),
	}
	for name, b := range byCustomer {
		entry := CustomerSpend{
			Customer: name,
			Spend:    b.spend,
			Invoices: len(b.invoices),
		}
		if budget, ok := s.fixedCosts[normalizeCustomer(name)]; ok && budget > 0 {
			entry.FixedBudget = budget
			entry.BudgetUsedPercent = b.spend / budget * 100
		}
		summary.Customers = append(summary.Customers, entry)
		summary.TotalSpend += b.spend
	}
	sort.Slice(summary.Customers, func(i, j int) bool {
		if summary.Customers[i].Spend != summary.Customers[j].Spend {
			return summary.Customers[i].Spend > summary.Customers[j].Spend
		}
		return summary.Customers[i].Customer < summary.Customers[j].Customer
	})

	if s.client != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.client.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("spend cache write failed", slog.Any("error", err))
			}
		}
	}
	return summary, nil
}

// amountOf mirrors the invoice aggregation's revenue pick: the sales total
// when present, otherwise the line total.
func amountOf(r *lookup.Record) float64 {
	if r.SalesTotal != 0 {
		return r.SalesTotal
	}
	return r.Total
}

func normalizeCustomer(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

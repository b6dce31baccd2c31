package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"textloop-gateway/internal/application/normalize"
	"textloop-gateway/internal/ports"

	"github.com/rs/zerolog"
)

const (
	settingsFreshness    = 5 * time.Minute
	packagesFreshness    = 5 * time.Minute
	transactionFreshness = 60 * time.Second
	reportFreshness      = 60 * time.Second
)

// AccountService serves settings, billing, and reporting for the
// authenticated store.
type AccountService struct {
	api    ports.PlatformAPI
	cache  ports.QueryCache
	logger zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(api ports.PlatformAPI, cache ports.QueryCache, logger zerolog.Logger) *AccountService {
	return &AccountService{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// Settings retrieves the store settings.
func (s *AccountService) Settings(ctx context.Context) (json.RawMessage, error) {
	return s.cache.GetOrFetch(ctx, "account:settings", settingsFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/settings", nil)
	})
}

// UpdateSettings updates the store settings.
func (s *AccountService) UpdateSettings(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	result, err := s.api.Put(ctx, "/settings", payload)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Packages retrieves the purchasable credit packages.
func (s *AccountService) Packages(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.cache.GetOrFetch(ctx, "account:packages", packagesFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/billing/packages", nil)
	})
	if err != nil {
		return nil, err
	}
	return normalize.ArrayResponse(raw, "packages"), nil
}

// Transactions retrieves a page of billing transactions.
func (s *AccountService) Transactions(ctx context.Context, page, pageSize int) (*Collection, error) {
	query := listQuery(page, pageSize)
	key := fmt.Sprintf("account:transactions:%s", query.Encode())
	raw, err := s.cache.GetOrFetch(ctx, key, transactionFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/billing/transactions", query)
	})
	if err != nil {
		return nil, err
	}

	items, pagination := normalize.PaginatedResponse(raw, "transactions")
	return &Collection{Items: items, Pagination: pagination}, nil
}

// PurchaseCredits starts a credit purchase for the given package. The
// platform owns the payment flow; the response carries its checkout URL.
func (s *AccountService) PurchaseCredits(ctx context.Context, packageID string) (json.RawMessage, error) {
	result, err := s.api.Post(ctx, "/billing/purchase", map[string]any{"packageId": packageID})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

// DashboardStats retrieves the overview numbers for the dashboard home.
func (s *AccountService) DashboardStats(ctx context.Context) (json.RawMessage, error) {
	return s.cache.GetOrFetch(ctx, "account:stats", reportFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/reports/dashboard", nil)
	})
}

// ChartSeries is the chart-ready projection of the message report: one label
// per day and aligned value arrays, in the shape the dashboard's charting
// component consumes.
type ChartSeries struct {
	Labels    []string `json:"labels"`
	Sent      []int    `json:"sent"`
	Delivered []int    `json:"delivered"`
	Failed    []int    `json:"failed"`
}

// messageReportRow is one day of the platform's message report.
type messageReportRow struct {
	Date      string `json:"date"`
	Sent      int    `json:"sent"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// MessageReport retrieves the message delivery report for the trailing
// rangeDays days, shaped into chart-ready arrays.
func (s *AccountService) MessageReport(ctx context.Context, rangeDays int) (*ChartSeries, error) {
	if rangeDays < 1 {
		rangeDays = 30
	}
	query := url.Values{}
	query.Set("days", strconv.Itoa(rangeDays))

	key := fmt.Sprintf("account:report:messages:%d", rangeDays)
	raw, err := s.cache.GetOrFetch(ctx, key, reportFreshness, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.Get(ctx, "/reports/messages", query)
	})
	if err != nil {
		return nil, err
	}

	var rows []messageReportRow
	if err := json.Unmarshal(normalize.ArrayResponse(raw, "items"), &rows); err != nil {
		s.logger.Warn().Err(err).Msg("Message report rows did not decode, returning empty series")
		rows = nil
	}

	series := &ChartSeries{
		Labels:    make([]string, 0, len(rows)),
		Sent:      make([]int, 0, len(rows)),
		Delivered: make([]int, 0, len(rows)),
		Failed:    make([]int, 0, len(rows)),
	}
	for _, row := range rows {
		series.Labels = append(series.Labels, row.Date)
		series.Sent = append(series.Sent, row.Sent)
		series.Delivered = append(series.Delivered, row.Delivered)
		series.Failed = append(series.Failed, row.Failed)
	}
	return series, nil
}

func (s *AccountService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "account:"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate account cache")
	}
}

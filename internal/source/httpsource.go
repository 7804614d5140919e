package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fleetview/fleetview/internal/lookup"
)

const (
	snapshotPath  = "/api/snapshot/line-items"
	paginatedPath = "/api/revenue/paginated"
	unitsPath     = "/api/customer-units"

	// pageSize is deliberately conservative; the upstream API times out on
	// larger windows.
	pageSize = 500
)

// HTTPSource loads the revenue feed over HTTP. It prefers the pre-generated
// snapshot endpoint and falls back to cursor pagination when the snapshot is
// missing or stale, matching the upstream contract.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPSource constructs an HTTPSource against the given base URL.
func NewHTTPSource(baseURL string, client *http.Client, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{baseURL: baseURL, client: client, logger: logger}
}

// FetchRecords loads the unit registry and the full line-item feed, returning
// mapped records.
func (s *HTTPSource) FetchRecords(ctx context.Context) ([]lookup.Record, error) {
	registry, err := s.fetchUnits(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	raws, err := s.fetchSnapshot(ctx)
	if err != nil {
		s.logger.Warn("snapshot unavailable, falling back to pagination", slog.Any("error", err))
		raws, err = s.fetchPaginated(ctx)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Info("revenue feed loaded",
		slog.Int("rows", len(raws)),
		slog.Duration("elapsed", time.Since(started)))

	return MapRecords(raws, registry), nil
}

func (s *HTTPSource) fetchUnits(ctx context.Context) (*UnitRegistry, error) {
	var raws []RawRecord
	if err := s.getJSON(ctx, s.baseURL+unitsPath, &raws); err != nil {
		return nil, fmt.Errorf("%w: customer units: %v", ErrUnavailable, err)
	}
	return BuildUnitRegistry(raws), nil
}

func (s *HTTPSource) fetchSnapshot(ctx context.Context) ([]RawRecord, error) {
	var raws []RawRecord
	if err := s.getJSON(ctx, s.baseURL+snapshotPath, &raws); err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("snapshot empty")
	}
	return raws, nil
}

type paginatedPage struct {
	Rows    []RawRecord `json:"rows"`
	HasMore bool        `json:"hasMore"`
	Cursor  string      `json:"cursor"`
}

func (s *HTTPSource) fetchPaginated(ctx context.Context) ([]RawRecord, error) {
	var (
		all    []RawRecord
		cursor string
		pages  int
	)
	for {
		u, err := url.Parse(s.baseURL + paginatedPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		q := u.Query()
		q.Set("limit", fmt.Sprintf("%d", pageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		u.RawQuery = q.Encode()

		var page paginatedPage
		if err := s.getJSON(ctx, u.String(), &page); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnavailable, pages+1, err)
		}
		if page.Rows == nil {
			return nil, fmt.Errorf("%w: page %d: malformed response", ErrUnavailable, pages+1)
		}
		all = append(all, page.Rows...)
		pages++
		if !page.HasMore {
			break
		}
		cursor = page.Cursor
	}
	s.logger.Info("paginated load complete", slog.Int("pages", pages), slog.Int("rows", len(all)))
	return all, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

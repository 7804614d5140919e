package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetview/fleetview/internal/lookup"
)

// Column aliases keep the SQL rows keyed exactly like the HTTP feed, so both
// sources share one mapper.
const revenueQuery = `
SELECT
  number                       AS "Number",
  "order"                      AS "Order",
  customer                     AS "Customer",
  unit                         AS "Unit",
  unit_nickname                AS "Unit Nickname",
  unit_miles                   AS "Unit Miles",
  shop                         AS "Shop",
  type                         AS "Type",
  item                         AS "Item",
  to_char(invoice_date, 'YYYY-MM-DD') AS "Invoice Date",
  qty                          AS "Qty",
  rate                         AS "Rate",
  total                        AS "Total",
  sales_total                  AS "Sales Total",
  part_cost                    AS "Part Cost",
  parts_margin_percent         AS "Parts Margin %",
  labor_rate                   AS "Labor Rate",
  technician_rate              AS "Technician Rate",
  actual_hours                 AS "Actual Hours",
  service_description          AS "Service Description",
  global_service_description   AS "Global Service Description",
  complaint_description        AS "Complaint Description",
  part_description             AS "Part Description",
  part_number                  AS "Part Number"
FROM revenue_line_items
ORDER BY invoice_date, number`

const unitsQuery = `
SELECT
  unit_id             AS "unitId",
  nickname,
  vin,
  chassis_year        AS "chassisYear",
  chassis_make        AS "chassisMake",
  chassis_model       AS "chassisModel",
  engine_year         AS "engineYear",
  engine_make         AS "engineMake",
  engine_model        AS "engineModel",
  mileage,
  license_plate       AS "licensePlate",
  license_plate_state AS "licensePlateState"
FROM customer_units`

// PostgresSource loads the revenue feed straight from the warehouse tables
// instead of the upstream HTTP API.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresSource constructs a PostgresSource.
func NewPostgresSource(pool *pgxpool.Pool, logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{pool: pool, logger: logger}
}

// FetchRecords queries the unit registry and line-item tables and maps them.
func (s *PostgresSource) FetchRecords(ctx context.Context) ([]lookup.Record, error) {
	unitRaws, err := s.queryRaw(ctx, unitsQuery)
	if err != nil {
		return nil, classify("customer_units", err)
	}
	registry := BuildUnitRegistry(unitRaws)

	raws, err := s.queryRaw(ctx, revenueQuery)
	if err != nil {
		return nil, classify("revenue_line_items", err)
	}
	s.logger.Info("revenue feed loaded from postgres",
		slog.Int("rows", len(raws)),
		slog.Int("units", registry.Len()))
	return MapRecords(raws, registry), nil
}

// queryRaw runs a query and materializes every row as a RawRecord keyed by
// the column aliases.
func (s *PostgresSource) queryRaw(ctx context.Context, query string) ([]RawRecord, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []RawRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		raw := make(RawRecord, len(fields))
		for i, fd := range fields {
			raw[string(fd.Name)] = values[i]
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

// classify folds database failures into the load-failure taxonomy. A missing
// relation means the warehouse sync has not run, which for the dashboard is
// the same outcome as an unreachable feed.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "42P01" {
		return fmt.Errorf("%w: relation %s missing", ErrUnavailable, table)
	}
	if err == pgx.ErrNoRows {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, table, err)
}

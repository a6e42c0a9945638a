package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool returns a pgxmock pool standing in for a *pgxpool.Pool in
// catalog source tests. With monitorPings set, Ping calls must be expected
// like queries. Call ExpectationsWereMet at the end of each test.
func NewMockPool(monitorPings bool) (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool(pgxmock.MonitorPingsOption(monitorPings))
}

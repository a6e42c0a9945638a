package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/apper-canvas/stylehub-crypto-chip/pkg/database"

// Query describes a traced read.
type Query struct {
	Operation string
	Table     string
	Statement string
	// Slow is the duration at or above which the query is logged as slow.
	// Zero disables the check.
	Slow time.Duration
}

// TraceQuery starts a client span for q. Call the returned function with the
// number of rows read and the error once the rows are consumed.
//
//	ctx, end := database.TraceQuery(ctx, q, logger)
//	defer func() { end(len(products), err) }()
func TraceQuery(ctx context.Context, q Query, logger *slog.Logger) (context.Context, func(rows int, err error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+q.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", q.Operation),
			attribute.String("db.sql.table", q.Table),
			attribute.String("db.statement", q.Statement),
		),
	)

	return ctx, func(rows int, err error) {
		span.SetAttributes(attribute.Int("db.rows_returned", rows))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if logger == nil || q.Slow <= 0 {
			return
		}
		if elapsed := time.Since(start); elapsed >= q.Slow {
			logger.WarnContext(ctx, "slow query detected",
				slog.String("operation", q.Operation),
				slog.String("table", q.Table),
				slog.Int("rows", rows),
				slog.Duration("duration", elapsed),
			)
		}
	}
}

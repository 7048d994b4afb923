package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CyberwizD/push-relay/internal/models"
)

// MultiSink fans a report out to every configured sink.
type MultiSink []ReportSink

func (m MultiSink) Report(ctx context.Context, report *models.DeliveryReport) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Report(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reporter hands delivery reports to its sink and logs failures. Sink
// errors never reach the client.
type Reporter struct {
	sink   ReportSink
	logger *slog.Logger
}

// NewReporter returns a Reporter; a nil sink turns reporting into a no-op.
func NewReporter(sink ReportSink, logger *slog.Logger) *Reporter {
	return &Reporter{sink: sink, logger: logger}
}

func (r *Reporter) Enabled() bool {
	return r != nil && r.sink != nil
}

func (r *Reporter) Report(ctx context.Context, report *models.DeliveryReport) {
	if !r.Enabled() {
		return
	}
	if err := r.sink.Report(ctx, report); err != nil {
		r.logger.Error("failed to record delivery report",
			slog.String("request_id", report.RequestID),
			slog.String("endpoint", report.Endpoint),
			slog.Any("error", err),
		)
	}
}

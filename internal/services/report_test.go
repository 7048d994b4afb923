package services

import (
	"context"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"github.com/CyberwizD/push-relay/internal/models"
	"github.com/CyberwizD/push-relay/pkg/logger"
)

type recordingSink struct {
	reports []*models.DeliveryReport
	err     error
}

func (s *recordingSink) Report(_ context.Context, r *models.DeliveryReport) error {
	s.reports = append(s.reports, r)
	return s.err
}

func TestMultiSink_ReportsToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	broken := &recordingSink{err: errors.New("db down")}
	sink := MultiSink{broken, ok}

	report := models.NewDeliveryReport("req-1", "/send-notification", models.ModeEach, ProviderName, models.SendResults{})
	err := sink.Report(context.Background(), report)

	assert.ErrorContains(t, err, "db down")
	assert.Len(t, ok.reports, 1)
	assert.Len(t, broken.reports, 1)
}

func TestReporter_NilSinkIsNoop(t *testing.T) {
	r := NewReporter(nil, logger.Discard())
	assert.False(t, r.Enabled())
	r.Report(context.Background(), &models.DeliveryReport{})

	var nilReporter *Reporter
	assert.False(t, nilReporter.Enabled())
}

func TestReporter_SwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker unreachable")}
	r := NewReporter(sink, logger.Discard())

	r.Report(context.Background(), &models.DeliveryReport{RequestID: "req-2"})
	assert.Len(t, sink.reports, 1)
}

type failingOpener struct{ err error }

func (o failingOpener) Channel() (*amqp.Channel, error) { return nil, o.err }

func TestPublisher_ChannelErrorIsReturned(t *testing.T) {
	closed := errors.New("rabbitmq: connection closed")
	pub := NewPublisher(failingOpener{err: closed}, "notifications.direct", "push.report")

	report := models.NewDeliveryReport("req-1", "/send-notification", models.ModeEach, ProviderName, models.NewSendResults(nil))
	assert.ErrorIs(t, pub.Report(context.Background(), report), closed)
}

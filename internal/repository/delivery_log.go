package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CyberwizD/push-relay/internal/models"
)

// DeliveryRecord is one row of the delivery log, keyed by request id.
type DeliveryRecord struct {
	RequestID  string `gorm:"primaryKey"`
	Endpoint   string
	Mode       string
	Provider   string
	Status     string
	Successful int
	Failed     int
	Detail     string
	UpdatedAt  time.Time
}

// DeliveryLog persists delivery reports through gorm.
type DeliveryLog struct {
	db        *gorm.DB
	tableName string
}

// NewDeliveryLog creates the log and migrates its table.
func NewDeliveryLog(db *gorm.DB, tableName string) (*DeliveryLog, error) {
	if tableName == "" {
		tableName = "push_deliveries"
	}
	if err := db.Table(tableName).AutoMigrate(&DeliveryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", tableName, err)
	}
	return &DeliveryLog{
		db:        db,
		tableName: tableName,
	}, nil
}

// Report upserts the row for report.RequestID.
func (l *DeliveryLog) Report(ctx context.Context, report *models.DeliveryReport) error {
	detail, err := json.Marshal(report.Details)
	if err != nil {
		return err
	}
	rec := DeliveryRecord{
		RequestID:  report.RequestID,
		Endpoint:   report.Endpoint,
		Mode:       report.Mode,
		Provider:   report.Provider,
		Status:     report.Status(),
		Successful: report.Successful,
		Failed:     report.Failed,
		Detail:     string(detail),
		UpdatedAt:  report.CreatedAt,
	}
	return l.db.WithContext(ctx).Table(l.tableName).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"endpoint", "mode", "provider", "status", "successful", "failed", "detail", "updated_at"}),
		}).Create(&rec).Error
}

// Get returns the stored record for requestID.
func (l *DeliveryLog) Get(ctx context.Context, requestID string) (*DeliveryRecord, error) {
	var rec DeliveryRecord
	if err := l.db.WithContext(ctx).Table(l.tableName).First(&rec, "request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

package model

import (
	"context"
	"fmt"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/log"
	"gorm.io/gorm"
)

// Discovery là bản ghi audit cho một lần tìm neighbour đã hoàn thành
type Discovery struct {
	Model
	Owner          string `json:"owner" gorm:"column:owner;type:varchar(255);not null;index:idx_target"`
	Name           string `json:"name" gorm:"column:name;type:varchar(255);not null;index:idx_target"`
	NeighbourCount int    `json:"neighbour_count" gorm:"column:neighbour_count;default:0"`
	Degraded       bool   `json:"degraded" gorm:"column:degraded;default:false"`
	FailedCount    int    `json:"failed_count" gorm:"column:failed_count;default:0"`
	DurationMs     int64  `json:"duration_ms" gorm:"column:duration_ms;default:0"`
}

func NewDiscovery(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Discovery, error) {
	discovery := &Discovery{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return discovery, nil
}

func (d *Discovery) TableName() string {
	return "discoveries"
}

func (d *Discovery) Create(msg DiscoveryMessage) error {
	ctx := context.Background()

	record := &Discovery{}
	record.Owner = TruncateString(msg.Owner, 250)
	record.Name = TruncateString(msg.Name, 250)
	record.NeighbourCount = msg.NeighbourCount
	record.Degraded = msg.Degraded
	record.FailedCount = msg.FailedCount
	record.DurationMs = msg.DurationMs
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	db, err := d.Mysql.Db()
	if err != nil {
		d.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return err
	}

	if err := db.Create(record).Error; err != nil {
		d.Logger.Error(ctx, "Failed to create discovery record: %v", err)
		return err
	}

	return nil
}

func (d *Discovery) CreateBatch(msgs []DiscoveryMessage) error {
	db, err := d.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	records := make([]Discovery, 0, len(msgs))
	now := time.Now()

	for _, msg := range msgs {
		record := Discovery{
			Owner:          TruncateString(msg.Owner, 250),
			Name:           TruncateString(msg.Name, 250),
			NeighbourCount: msg.NeighbourCount,
			Degraded:       msg.Degraded,
			FailedCount:    msg.FailedCount,
			DurationMs:     msg.DurationMs,
		}
		record.CreatedAt = now
		record.UpdatedAt = now
		records = append(records, record)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(records, 100)
		if result.Error != nil {
			return fmt.Errorf("failed to batch create discovery records: %w", result.Error)
		}
		return nil
	})
}

// Package journal keeps a history of library scans in a sqlite database.
// And serves it on GET /scans.
package journal

import (
	"context"
	"fmt"

	"gigmaster/model"

	"github.com/cdfmlr/crud/log"
	"github.com/cdfmlr/crud/orm"
	"github.com/cdfmlr/crud/service"

	"github.com/glebarez/sqlite" // pure go sqlite driver
	"gorm.io/gorm"
)

var logger = log.ZoneLogger("gigmaster/journal")

// Journal records every scan of the library.
//
// There should be only one journal in a program: it owns orm.DB.
type Journal struct{}

// Open connects the database at dsn and migrates the ScanRecord table.
func Open(dsn string) (*Journal, error) {
	if err := connectDB(dsn); err != nil {
		return nil, fmt.Errorf("journal.Open: connectDB failed: %w", err)
	}
	orm.RegisterModel(&model.ScanRecord{})
	if err := orm.DB.AutoMigrate(&model.ScanRecord{}); err != nil {
		return nil, fmt.Errorf("journal.Open: AutoMigrate failed: %w", err)
	}
	logger.WithField("dsn", dsn).Info("journal opened")
	return &Journal{}, nil
}

func connectDB(dsn string) error {
	var err error
	orm.DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: log.Logger4Gorm,
	})
	return err
}

// Record saves a scan.
func (j *Journal) Record(ctx context.Context, rec *model.ScanRecord) error {
	return service.Create(ctx, rec, service.IfNotExist())
}

// Count returns how many scans have been recorded.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	cnt, err := service.Count[model.ScanRecord](ctx)
	return int64(cnt), err
}

// Recent returns the last limit scans, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	records := make([]model.ScanRecord, 0, limit)
	err := orm.DB.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Recent: select failed")
		return nil, err
	}
	return records, nil
}

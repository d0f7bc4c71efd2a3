package repository

import (
	"errors"
	"time"

	"ingestmon/internal/db"
	"ingestmon/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngestRepository struct{}

func NewIngestRepository() *IngestRepository {
	return &IngestRepository{}
}

// Save archives entry unless a file with the same name is already archived.
// It reports whether a row was written.
func (r *IngestRepository) Save(entry model.CompletedEntry) (bool, error) {
	ingest := model.NewIngest(entry)

	result := db.DB.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ingest)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *IngestRepository) Exists(filename string) (bool, error) {
	var ingest model.Ingest
	err := db.DB.Where("filename = ?", filename).First(&ingest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	return err == nil, err
}

type Stats struct {
	Total int64      `json:"total"`
	First *time.Time `json:"first,omitempty"`
	Last  *time.Time `json:"last,omitempty"`
}

func (r *IngestRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.Ingest{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if stats.Total == 0 {
		return stats, nil
	}

	var first, last model.Ingest
	if err := db.DB.Order("completed_at asc").First(&first).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Order("completed_at desc").First(&last).Error; err != nil {
		return stats, err
	}

	stats.First = &first.CompletedAt
	stats.Last = &last.CompletedAt
	return stats, nil
}

func (r *IngestRepository) GetRecent(limit int) ([]model.Ingest, error) {
	var ingests []model.Ingest
	result := db.DB.
		Order("completed_at desc").
		Limit(limit).
		Find(&ingests)

	return ingests, result.Error
}

package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/valleteclab/portaldcp-sub004/internal/models"
)

// TenderService reads tender master data for the engine. The catalog itself
// is maintained elsewhere; the engine only takes a snapshot at session
// creation.
type TenderService struct {
	db *gorm.DB
}

func NewTenderService(db *gorm.DB) *TenderService {
	return &TenderService{db: db}
}

func (s *TenderService) TenderForDispute(tenderID string) (*models.Tender, error) {
	var tender models.Tender
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).First(&tender, "id = ?", tenderID).Error
	if err != nil {
		return nil, errors.New("tender not found")
	}
	return &tender, nil
}

func (s *TenderService) ListTenders() ([]models.Tender, error) {
	var tenders []models.Tender
	err := s.db.Order("created_at DESC").Find(&tenders).Error
	return tenders, err
}

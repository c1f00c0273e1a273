package products

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
)

// Service is the read-only catalog lookup. Orders snapshot product fields at
// creation, so nothing here ever mutates historical data.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("product_code = ?", code).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", code, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &product, nil
}

func (s *Service) List(ctx context.Context, search string, page, pageSize int) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("product_code ILIKE ? OR name_th ILIKE ? OR name_en ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var rows []models.Product
	err := query.Order("product_code asc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return rows, total, nil
}

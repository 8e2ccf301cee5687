package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/totegamma/supermarkets"
	"github.com/totegamma/supermarkets/internal/domain"
	"github.com/totegamma/supermarkets/internal/infrastructure/database/models"
)

type SupermarketRepository struct {
	db *gorm.DB
}

func NewSupermarketRepository(db *gorm.DB) *SupermarketRepository {
	return &SupermarketRepository{db: db}
}

func toDomain(m models.Supermarket) supermarkets.Supermarket {
	return supermarkets.Supermarket{
		ID:         m.ID,
		Identifier: m.Identifier,
		Name:       m.Name,
		URL:        m.URL,
		UpdatedAt:  supermarkets.TimestampOf(m.UpdatedAt),
	}
}

func (r *SupermarketRepository) List(ctx context.Context) ([]supermarkets.Supermarket, error) {
	var rows []models.Supermarket
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]supermarkets.Supermarket, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomain(row))
	}
	return result, nil
}

func (r *SupermarketRepository) Get(ctx context.Context, id int64) (supermarkets.Supermarket, error) {
	var row models.Supermarket
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return supermarkets.Supermarket{}, domain.NotFoundError{Resource: "supermarket", ID: id}
		}
		return supermarkets.Supermarket{}, err
	}
	return toDomain(row), nil
}

// Create stores a new record. UpdatedAt stays empty until the first edit.
func (r *SupermarketRepository) Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	row := models.Supermarket{
		Identifier: fields.Identifier,
		Name:       fields.Name,
		URL:        fields.URL,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return supermarkets.Supermarket{}, err
	}
	return toDomain(row), nil
}

func (r *SupermarketRepository) Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	now := time.Now().UTC()

	var row models.Supermarket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.NotFoundError{Resource: "supermarket", ID: id}
			}
			return err
		}

		row.Identifier = fields.Identifier
		row.Name = fields.Name
		row.URL = fields.URL
		row.UpdatedAt = &now

		return tx.Model(&row).Select("identifier", "name", "url", "updated_at").Updates(&row).Error
	})
	if err != nil {
		return supermarkets.Supermarket{}, err
	}
	return toDomain(row), nil
}

func (r *SupermarketRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Supermarket{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "supermarket", ID: id}
	}
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"crmcore/internal/domain"
)

type GeoRepository struct {
	db *gorm.DB
}

func NewGeoRepository(db *gorm.DB) *GeoRepository {
	return &GeoRepository{db: db}
}

func (r *GeoRepository) Countries(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	err := r.db.WithContext(ctx).Order("name ASC").Find(&countries).Error
	return countries, err
}

func (r *GeoRepository) States(ctx context.Context, countryID int64) ([]domain.State, error) {
	var states []domain.State
	err := r.db.WithContext(ctx).Where("country_id = ?", countryID).Order("name ASC").Find(&states).Error
	return states, err
}

func (r *GeoRepository) Cities(ctx context.Context, stateID int64) ([]domain.City, error) {
	var cities []domain.City
	err := r.db.WithContext(ctx).Where("state_id = ?", stateID).Order("name ASC").Find(&cities).Error
	return cities, err
}

func (r *GeoRepository) CountryByID(ctx context.Context, id int64) (*domain.Country, error) {
	var country domain.Country
	err := r.db.WithContext(ctx).First(&country, id).Error
	if err != nil {
		return nil, err
	}
	return &country, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

const (
	defaultVenueLimit = 12
	maxPageLimit      = 100
)

type VenueService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewVenueService(db *gorm.DB, log *slog.Logger) *VenueService {
	if log == nil {
		log = slog.Default()
	}
	return &VenueService{DB: db, Log: log}
}

func (s *VenueService) filtered(ctx context.Context, f models.VenueFilters) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Venue{})
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if f.MinCapacity > 0 {
		q = q.Where("capacity >= ?", f.MinCapacity)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_night <= ?", f.MaxPrice)
	}
	return q
}

func (s *VenueService) List(ctx context.Context, f models.VenueFilters) ([]models.Venue, models.Pagination, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, models.Pagination{}, fmt.Errorf("count venues: %w", err)
	}
	p := models.NewPagination(f.Page, f.Limit, defaultVenueLimit, maxPageLimit, total)

	venues := []models.Venue{}
	err := s.filtered(ctx, f).
		Order("created_at DESC").Order("id").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&venues).Error
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("list venues: %w", err)
	}
	return venues, p, nil
}

func (s *VenueService) Get(ctx context.Context, id string) (models.Venue, error) {
	var v models.Venue
	if err := s.DB.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return models.Venue{}, notFound(err, "venue", id)
	}
	return v, nil
}

func (s *VenueService) Create(ctx context.Context, in models.VenueInput) (models.Venue, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Venue{}, err
	}
	var v models.Venue
	in.Apply(&v)
	if err := s.DB.WithContext(ctx).Create(&v).Error; err != nil {
		if isDuplicateError(err) {
			return models.Venue{}, &models.Error{Kind: models.KindConflict, Message: "venue already exists", Err: err}
		}
		return models.Venue{}, fmt.Errorf("create venue: %w", err)
	}
	s.Log.Info("venue created", "venue_id", v.ID, "name", v.Name)
	return v, nil
}

func (s *VenueService) Update(ctx context.Context, id string, in models.VenueInput) (models.Venue, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Venue{}, err
	}
	var v models.Venue
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&v, "id = ?", id).Error; err != nil {
			return notFound(err, "venue", id)
		}
		in.Apply(&v)
		return tx.Save(&v).Error
	})
	if err != nil {
		return models.Venue{}, err
	}
	s.Log.Info("venue updated", "venue_id", id)
	return v, nil
}

// Delete refuses to remove a venue that live bookings still reference.
func (s *VenueService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v models.Venue
		if err := tx.First(&v, "id = ?", id).Error; err != nil {
			return notFound(err, "venue", id)
		}
		var refs int64
		if err := tx.Model(&models.Booking{}).Where("venue_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("count venue bookings: %w", err)
		}
		if refs > 0 {
			return &models.Error{Kind: models.KindConflict, Message: fmt.Sprintf("venue has %d booking(s)", refs)}
		}
		if err := tx.Delete(&v).Error; err != nil {
			if isForeignKeyError(err) {
				return &models.Error{Kind: models.KindConflict, Message: "venue is still referenced", Err: err}
			}
			return fmt.Errorf("delete venue: %w", err)
		}
		s.Log.Info("venue deleted", "venue_id", id)
		return nil
	})
}

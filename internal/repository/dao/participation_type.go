package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrTypeNotFound = errors.New("participation type not found")

type ParticipationType struct {
	ID uint `gorm:"primaryKey"`

	OwnerUserID   uint   `gorm:"index;not null"`
	Name          string `gorm:"not null"`
	DefaultPoints int    `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ParticipationTypeDAO struct {
	db *gorm.DB
}

func NewParticipationTypeDAO(db *gorm.DB) *ParticipationTypeDAO {
	return &ParticipationTypeDAO{
		db: db,
	}
}

func (d *ParticipationTypeDAO) Insert(ctx context.Context, pt ParticipationType) (ParticipationType, error) {
	result := d.db.WithContext(ctx).Create(&pt)
	if result.Error != nil {
		return ParticipationType{}, result.Error
	}

	return pt, nil
}

func (d *ParticipationTypeDAO) FindByID(ctx context.Context, id uint) (ParticipationType, error) {
	var pt ParticipationType

	result := d.db.WithContext(ctx).First(&pt, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ParticipationType{}, ErrTypeNotFound
		}

		return ParticipationType{}, result.Error
	}

	return pt, nil
}

func (d *ParticipationTypeDAO) FindByOwner(ctx context.Context, ownerID uint) ([]ParticipationType, error) {
	var types []ParticipationType

	result := d.db.WithContext(ctx).Where("owner_user_id = ?", ownerID).Order("id").Find(&types)
	if result.Error != nil {
		return nil, result.Error
	}

	return types, nil
}

func (d *ParticipationTypeDAO) Update(ctx context.Context, pt ParticipationType) (ParticipationType, error) {
	result := d.db.WithContext(ctx).Model(&ParticipationType{}).Where("id = ?", pt.ID).Updates(map[string]interface{}{
		"name":           pt.Name,
		"default_points": pt.DefaultPoints,
	})
	if result.Error != nil {
		return ParticipationType{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ParticipationType{}, ErrTypeNotFound
	}

	return d.FindByID(ctx, pt.ID)
}

func (d *ParticipationTypeDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&ParticipationType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTypeNotFound
	}

	return nil
}

package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Antenna/internal/model"
)

// RadarRepository — доступ к радарам пользователей заглушки.
type RadarRepository interface {
	// ListSection возвращает страницу радаров раздела (по id) и общее число радаров в разделе.
	ListSection(ctx context.Context, userID int64, section string, offset, limit int) ([]model.Radar, int64, error)
	// Upsert создаёт или обновляет радары по id.
	Upsert(ctx context.Context, radars []model.Radar) error
	// CountByUser возвращает число радаров пользователя.
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type radarRepo struct {
	db *gorm.DB
}

// NewRadarRepository создаёт репозиторий радаров.
func NewRadarRepository(db *gorm.DB) RadarRepository {
	return &radarRepo{db: db}
}

func (r *radarRepo) ListSection(ctx context.Context, userID int64, section string, offset, limit int) ([]model.Radar, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Radar{}).Where("user_id = ? AND section = ?", userID, section)
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	list := make([]model.Radar, 0)
	if err := scope().Order("id").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *radarRepo) Upsert(ctx context.Context, radars []model.Radar) error {
	if len(radars) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&radars).Error
}

func (r *radarRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Radar{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

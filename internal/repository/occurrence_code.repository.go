package repository

import (
	"context"
	"errors"

	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"gorm.io/gorm"
)

// ErrOccurrenceCodeNotFound is returned when a code is absent from the
// reference table.
var ErrOccurrenceCodeNotFound = errors.New("occurrence code not found")

type OccurrenceCodeRepository struct {
	*pg.DB
}

func NewOccurrenceCodeRepository(db *pg.DB) *OccurrenceCodeRepository {
	return &OccurrenceCodeRepository{db}
}

func (r *OccurrenceCodeRepository) List(ctx context.Context) ([]*model.OccurrenceCode, error) {
	var entities []*OccurrenceCodeEntity
	if err := r.Read(ctx).Order("code").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toOccurrenceCodeModels(entities), nil
}

func (r *OccurrenceCodeRepository) Get(ctx context.Context, code string) (*model.OccurrenceCode, error) {
	var entity OccurrenceCodeEntity
	err := r.Read(ctx).Where("code = ?", code).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOccurrenceCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return toOccurrenceCodeModel(&entity), nil
}

// FinalizationCodes returns the codes whose process classification is in the
// given set. The reconciler uses it to decide when a shipment is closed.
func (r *OccurrenceCodeRepository) FinalizationCodes(ctx context.Context, processes []string) ([]string, error) {
	var codes []string
	err := r.Read(ctx).Model(&OccurrenceCodeEntity{}).
		Where("process IN ?", processes).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Seed inserts the reference table when it is empty. Existing rows are left
// untouched so manual fixes survive restarts.
func (r *OccurrenceCodeRepository) Seed(ctx context.Context, codes []model.OccurrenceCode) (int, error) {
	var existing int64
	if err := r.Write(ctx).Model(&OccurrenceCodeEntity{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	entities := make([]*OccurrenceCodeEntity, 0, len(codes))
	for i := range codes {
		entities = append(entities, toOccurrenceCodeEntity(&codes[i]))
	}
	if err := r.Write(ctx).Create(entities).Error; err != nil {
		return 0, err
	}
	return len(entities), nil
}

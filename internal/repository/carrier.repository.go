package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
	"github.com/rastreioapp/tracking-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrCarrierNotFound is returned when a carrier does not exist.
	ErrCarrierNotFound = errors.New("carrier not found")
	// ErrDuplicateCarrier is returned when the name or code collides with a
	// non-deleted carrier.
	ErrDuplicateCarrier = errors.New("carrier name or code already exists")
)

type CarrierRepository struct {
	*pg.DB
}

func NewCarrierRepository(db *pg.DB) *CarrierRepository {
	return &CarrierRepository{db}
}

func (r *CarrierRepository) Create(ctx context.Context, m *model.Carrier) (*model.Carrier, error) {
	var dupes int64
	err := notDeleted(r.Write(ctx).Model(&CarrierEntity{})).
		Where("name = ? OR code = ?", m.Name, m.Code).
		Count(&dupes).Error
	if err != nil {
		return nil, err
	}
	if dupes > 0 {
		return nil, ErrDuplicateCarrier
	}

	entity := toCarrierEntity(m)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toCarrierModel(entity), nil
}

func (r *CarrierRepository) Get(ctx context.Context, id uuid.UUID) (*model.Carrier, error) {
	var entity CarrierEntity
	err := notDeleted(r.Read(ctx)).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCarrierNotFound
	}
	if err != nil {
		return nil, err
	}
	return toCarrierModel(&entity), nil
}

func (r *CarrierRepository) GetByCode(ctx context.Context, code string) (*model.Carrier, error) {
	var entity CarrierEntity
	err := notDeleted(r.Read(ctx)).Where("code = ?", code).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCarrierNotFound
	}
	if err != nil {
		return nil, err
	}
	return toCarrierModel(&entity), nil
}

// List returns carriers ordered default-first. activeOnly narrows to enabled
// carriers, which is what the frontend dropdown wants.
func (r *CarrierRepository) List(ctx context.Context, activeOnly bool) ([]*model.Carrier, error) {
	q := notDeleted(r.Read(ctx).Model(&CarrierEntity{}))
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var entities []*CarrierEntity
	if err := q.Order("is_default DESC, name").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCarrierModels(entities), nil
}

func (r *CarrierRepository) Update(ctx context.Context, id uuid.UUID, u model.CarrierUpdate) (*model.Carrier, error) {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Code != nil {
		cols["code"] = *u.Code
	}
	if u.Active != nil {
		cols["active"] = *u.Active
	}
	if u.IsDefault != nil {
		cols["is_default"] = *u.IsDefault
	}

	if len(cols) > 0 {
		if u.Name != nil || u.Code != nil {
			var dupes int64
			q := notDeleted(r.Write(ctx).Model(&CarrierEntity{})).Where("id <> ?", id)
			switch {
			case u.Name != nil && u.Code != nil:
				q = q.Where("name = ? OR code = ?", *u.Name, *u.Code)
			case u.Name != nil:
				q = q.Where("name = ?", *u.Name)
			default:
				q = q.Where("code = ?", *u.Code)
			}
			if err := q.Count(&dupes).Error; err != nil {
				return nil, err
			}
			if dupes > 0 {
				return nil, ErrDuplicateCarrier
			}
		}

		cols["updated_at"] = time.Now().UTC()
		res := notDeleted(r.Write(ctx).Model(&CarrierEntity{})).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrCarrierNotFound
		}
	}
	return r.Get(ctx, id)
}

func (r *CarrierRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res := notDeleted(r.Write(ctx).Model(&CarrierEntity{})).Where("id = ?", id).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCarrierNotFound
	}
	return nil
}

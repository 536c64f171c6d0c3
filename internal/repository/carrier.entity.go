package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/rastreioapp/tracking-gateway/internal/model"
)

type CarrierEntity struct {
	ID   uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name string    `gorm:"column:name;size:100;not null;index"`
	Code string    `gorm:"column:code;size:20;not null;index"`
	// No default tag on Active: gorm drops zero-value fields that carry one,
	// which would store an inactive carrier as active.
	Active    bool       `gorm:"column:active;not null"`
	IsDefault bool       `gorm:"column:is_default;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

func (CarrierEntity) TableName() string { return "carriers" }

func toCarrierEntity(m *model.Carrier) *CarrierEntity {
	if m == nil {
		return nil
	}
	return &CarrierEntity{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		Active:    m.Active,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: m.DeletedAt,
	}
}

func toCarrierModel(e *CarrierEntity) *model.Carrier {
	if e == nil {
		return nil
	}
	return &model.Carrier{
		ID:        e.ID,
		Name:      e.Name,
		Code:      e.Code,
		Active:    e.Active,
		IsDefault: e.IsDefault,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		DeletedAt: e.DeletedAt,
	}
}

func toCarrierModels(entities []*CarrierEntity) []*model.Carrier {
	if entities == nil {
		return nil
	}
	out := make([]*model.Carrier, len(entities))
	for i, e := range entities {
		out[i] = toCarrierModel(e)
	}
	return out
}

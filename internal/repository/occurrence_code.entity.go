package repository

import (
	"time"

	"github.com/rastreioapp/tracking-gateway/internal/model"
)

type OccurrenceCodeEntity struct {
	Code        string    `gorm:"primaryKey;column:code;size:10"`
	Description string    `gorm:"column:description;size:255;not null"`
	Type        string    `gorm:"column:type;size:50;not null;index"`
	Process     string    `gorm:"column:process;size:50;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OccurrenceCodeEntity) TableName() string { return "occurrence_codes" }

func toOccurrenceCodeEntity(m *model.OccurrenceCode) *OccurrenceCodeEntity {
	if m == nil {
		return nil
	}
	return &OccurrenceCodeEntity{
		Code:        m.Code,
		Description: m.Description,
		Type:        m.Type,
		Process:     m.Process,
	}
}

func toOccurrenceCodeModel(e *OccurrenceCodeEntity) *model.OccurrenceCode {
	if e == nil {
		return nil
	}
	return &model.OccurrenceCode{
		Code:        e.Code,
		Description: e.Description,
		Type:        e.Type,
		Process:     e.Process,
	}
}

func toOccurrenceCodeModels(entities []*OccurrenceCodeEntity) []*model.OccurrenceCode {
	if entities == nil {
		return nil
	}
	out := make([]*model.OccurrenceCode, len(entities))
	for i, e := range entities {
		out[i] = toOccurrenceCodeModel(e)
	}
	return out
}

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Carrier struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Active    bool       `json:"active"`
	IsDefault bool       `json:"is_default"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

type CarrierCreateRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Active    *bool  `json:"active"`
	IsDefault bool   `json:"is_default"`
}

func (p CarrierCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Code == "" {
		return errors.New("code is required")
	}
	return nil
}

// CarrierUpdate applies only its non-nil fields.
type CarrierUpdate struct {
	Name      *string `json:"name"`
	Code      *string `json:"code"`
	Active    *bool   `json:"active"`
	IsDefault *bool   `json:"is_default"`
}

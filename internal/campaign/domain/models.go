package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
	DiscountText    = "text"
)

// CodeLength is the length of generated campaign codes.
const CodeLength = 12

// MaxCustomFields bounds the per-campaign custom field list.
const MaxCustomFields = 5

func ValidDiscountType(t string) bool {
	switch t {
	case DiscountPercent, DiscountFixed, DiscountText:
		return true
	default:
		return false
	}
}

// Campaign is a configured promotion. campaign_code is unique per tenant,
// not globally.
type Campaign struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	TenantID         snowflake.ID   `gorm:"not null;index;uniqueIndex:campaigns_tenant_code" json:"tenant_id"`
	CampaignCode     string         `gorm:"column:campaign_code;not null;uniqueIndex:campaigns_tenant_code" json:"campaign_code"`
	Name             string         `gorm:"not null" json:"name"`
	Description      string         `json:"description,omitempty"`
	DiscountType     string         `gorm:"column:discount_type;not null" json:"discount_type"`
	DiscountValue    float64        `gorm:"column:discount_value;not null" json:"discount_value"`
	FormConfig       datatypes.JSON `gorm:"column:form_config" json:"form_config"`
	IsActive         bool           `gorm:"column:is_active;not null;default:false" json:"is_active"`
	ExpiryDate       *time.Time     `gorm:"column:expiry_date" json:"expiry_date,omitempty"`
	CouponExpiryDate *time.Time     `gorm:"column:coupon_expiry_date" json:"coupon_expiry_date,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// FieldSpec controls visibility and requiredness of a fixed form field.
type FieldSpec struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// CustomField is a campaign-defined extra form field.
type CustomField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FormConfig is the typed shape of the campaign's signup form. It is
// validated at the boundary and stored as a JSON column.
type FormConfig struct {
	Email        FieldSpec     `json:"email"`
	FirstName    FieldSpec     `json:"first_name"`
	LastName     FieldSpec     `json:"last_name"`
	Phone        FieldSpec     `json:"phone"`
	Address      FieldSpec     `json:"address"`
	CustomFields []CustomField `json:"custom_fields"`
}

// DefaultFormConfig matches the form seeded at campaign creation:
// email and names visible+required, phone and address hidden.
func DefaultFormConfig() FormConfig {
	visible := FieldSpec{Visible: true, Required: true}
	return FormConfig{
		Email:        visible,
		FirstName:    visible,
		LastName:     visible,
		Phone:        FieldSpec{},
		Address:      FieldSpec{},
		CustomFields: []CustomField{},
	}
}

func (f FormConfig) Validate() error {
	if len(f.CustomFields) > MaxCustomFields {
		return ErrTooManyCustomFields
	}
	for _, field := range f.CustomFields {
		if field.Name == "" {
			return ErrInvalidCustomField
		}
	}
	return nil
}

// ParseFormConfig decodes the stored JSON column into the typed config.
func (c *Campaign) ParseFormConfig() (FormConfig, error) {
	if len(c.FormConfig) == 0 {
		return DefaultFormConfig(), nil
	}
	var cfg FormConfig
	if err := json.Unmarshal(c.FormConfig, &cfg); err != nil {
		return FormConfig{}, err
	}
	if cfg.CustomFields == nil {
		cfg.CustomFields = []CustomField{}
	}
	return cfg, nil
}

// EncodeFormConfig validates and serializes a typed config for storage.
func EncodeFormConfig(cfg FormConfig) (datatypes.JSON, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Expired reports whether the campaign's expiry date has passed.
func (c *Campaign) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && now.After(*c.ExpiryDate)
}

var (
	ErrTooManyCustomFields = errors.New("too_many_custom_fields")
	ErrInvalidCustomField  = errors.New("invalid_custom_field")
)

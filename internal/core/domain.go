package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategorySpeaker   Category = "Speaker"
	CategoryAmplifier Category = "Amplifier"
	CategoryPlayerDAC Category = "Player/DAC"
	CategoryCable     Category = "Cable"
	CategoryAccessory Category = "Accessory"
	CategoryOther     Category = "Other"
)

// MonthAll is the sentinel month meaning "no month filter".
const MonthAll Month = "all"

type (
	// Category is the equipment type of a sale record. The known
	// constants cover the common gear; any other text is accepted
	// as a free-form tag.
	Category string

	// Date is a calendar day in YYYY-MM-DD form. The lexical prefix
	// of a valid Date is its month, so grouping and filtering work
	// by string comparison.
	Date string

	// Month is a YYYY-MM prefix of a Date, or the MonthAll sentinel.
	Month string

	// SaleRecord is one equipment sale. Amounts are cents in a
	// single currency.
	SaleRecord struct {
		ID           string   `json:"id"`
		Brand        string   `json:"brand"`
		Category     Category `json:"type"`
		Model        string   `json:"model"`
		CostPrice    Money    `json:"costPrice"`
		ShippingCost Money    `json:"shippingCost"`
		SellingPrice Money    `json:"sellingPrice"`
		Date         Date     `json:"date"`
		Note         string   `json:"note,omitempty"`
	}
)

var (
	ErrEmptyBrand    = errors.New("empty brand")
	ErrEmptyModel    = errors.New("empty model")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNotFound      = errors.New("record not found")
)

const dateLayout = "2006-01-02"

// Known reports whether c is one of the predefined categories.
func (c Category) Known() bool {
	switch c {
	case CategorySpeaker, CategoryAmplifier, CategoryPlayerDAC, CategoryCable, CategoryAccessory, CategoryOther:
		return true
	}
	return false
}

// KnownCategories lists the predefined categories in display order.
func KnownCategories() []Category {
	return []Category{
		CategorySpeaker,
		CategoryAmplifier,
		CategoryPlayerDAC,
		CategoryCable,
		CategoryAccessory,
		CategoryOther,
	}
}

// NewDate builds a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(dateLayout))
}

// Today returns the current local day.
func Today() Date {
	return Date(time.Now().Format(dateLayout))
}

// Valid reports whether d is a well-formed YYYY-MM-DD day.
func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

func (d Date) Validate() error {
	if !d.Valid() {
		return ErrInvalidDate
	}
	return nil
}

// MonthOf returns the YYYY-MM prefix of d. A malformed date has no
// month: ok is false and the date matches no filter.
func (d Date) MonthOf() (Month, bool) {
	if !d.Valid() {
		return "", false
	}
	return Month(d[:7]), true
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r SaleRecord) Validate() error {
	if strings.TrimSpace(r.Brand) == "" {
		return ErrEmptyBrand
	}
	if strings.TrimSpace(r.Model) == "" {
		return ErrEmptyModel
	}
	if err := r.CostPrice.Validate(); err != nil {
		return err
	}
	if err := r.ShippingCost.Validate(); err != nil {
		return err
	}
	if err := r.SellingPrice.Validate(); err != nil {
		return err
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Profit is the per-record margin: selling price minus cost and shipping.
func (r SaleRecord) Profit() Money {
	return Money{Cents: r.SellingPrice.Cents - r.CostPrice.Cents - r.ShippingCost.Cents}
}

package core

import "testing"

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date("2024-01-15"), true},
		{Date("2024-13-01"), false},
		{Date("2024-1-5"), false}, // missing zero padding
		{Date("yesterday"), false},
		{Date(""), false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateMonthOf(t *testing.T) {
	m, ok := Date("2024-01-15").MonthOf()
	if !ok || m != Month("2024-01") {
		t.Fatalf("expected 2024-01, got %q (ok=%v)", m, ok)
	}
	if _, ok := Date("not-a-date").MonthOf(); ok {
		t.Fatalf("expected no month for malformed date")
	}
}

func TestCategoryKnown(t *testing.T) {
	for _, c := range KnownCategories() {
		if !c.Known() {
			t.Fatalf("%q should be known", c)
		}
	}
	if Category("Turntable Mat").Known() {
		t.Fatalf("free-form tag should not be known")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero is a valid amount, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestSaleRecordValidate(t *testing.T) {
	good := SaleRecord{
		ID:           "r1",
		Brand:        "Sony",
		Category:     CategorySpeaker,
		Model:        "X1",
		CostPrice:    Money{Cents: 1000},
		ShippingCost: Money{Cents: 100},
		SellingPrice: Money{Cents: 1500},
		Date:         Date("2024-01-15"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(r SaleRecord) SaleRecord
		want   error
	}{
		{func(r SaleRecord) SaleRecord { r.Brand = ""; return r }, ErrEmptyBrand},
		{func(r SaleRecord) SaleRecord { r.Brand = "   "; return r }, ErrEmptyBrand},
		{func(r SaleRecord) SaleRecord { r.Model = ""; return r }, ErrEmptyModel},
		{func(r SaleRecord) SaleRecord { r.CostPrice = Money{Cents: -1}; return r }, ErrInvalidAmount},
		{func(r SaleRecord) SaleRecord { r.SellingPrice = Money{Cents: -50}; return r }, ErrInvalidAmount},
		{func(r SaleRecord) SaleRecord { r.Date = "01/15/2024"; return r }, ErrInvalidDate},
	}
	for i, tc := range cases {
		err := tc.mutate(good).Validate()
		if err != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestSaleRecordProfit(t *testing.T) {
	r := SaleRecord{
		CostPrice:    Money{Cents: 1000},
		ShippingCost: Money{Cents: 100},
		SellingPrice: Money{Cents: 1500},
	}
	if got := r.Profit(); got.Cents != 400 {
		t.Fatalf("expected 400, got %d", got.Cents)
	}
}

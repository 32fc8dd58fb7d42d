package core

import (
	"testing"
	"time"
)

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{Week, true},
		{Month, true},
		{Year, true},
		{Period("day"), false},
		{Period(""), false},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "tx-1",
		Amount:      50000,
		Description: "ăn phở",
		SpentAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "tx-2", Amount: 1, Description: "", SpentAt: good.SpentAt},
		{ID: "tx-3", Amount: 1, Description: "   ", SpentAt: good.SpentAt},
		{ID: "tx-4", Amount: 1, Description: "ok", SpentAt: time.Time{}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	good := Budget{ID: "b-1", Name: "Ăn uống", Category: "food", LimitAmount: 1000000, StartDate: start, EndDate: end}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{ID: "b-2", Name: "x", Category: "food", LimitAmount: 0, StartDate: start, EndDate: end},
		{ID: "b-3", Name: "x", Category: "food", LimitAmount: -5, StartDate: start, EndDate: end},
		{ID: "b-4", Name: "x", Category: "food", LimitAmount: 1, StartDate: end, EndDate: start},
		{ID: "b-5", Name: "x", Category: "food", LimitAmount: 1},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// A single-day budget window is valid.
	sameDay := Budget{ID: "b-6", Name: "x", Category: "food", LimitAmount: 1, StartDate: start, EndDate: start}
	if err := sameDay.Validate(); err != nil {
		t.Fatalf("expected same-day range to be ok, got %v", err)
	}
}

func TestFormatVND(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{50000, "50.000"},
		{1500000, "1.500.000"},
		{1234567890, "1.234.567.890"},
		{1499.5, "1.500"},
		{-20000, "-20.000"},
	}
	for _, tc := range cases {
		if got := FormatVND(tc.in); got != tc.want {
			t.Errorf("FormatVND(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

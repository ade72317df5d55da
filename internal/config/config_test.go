package config

import (
	"errors"
	"testing"

	"github.com/Dhoini/storefront-billing/internal/domain"
)

func TestResolvePrice(t *testing.T) {
	cfg := &Config{Plans: DefaultPlans()}

	tests := []struct {
		plan     string
		interval string
		want     string
		wantErr  bool
	}{
		{plan: "basic", interval: IntervalMonthly, want: "price_1RqSK0Cu6bmtuBQfCjwQ4pkI"},
		{plan: "basic", interval: "", want: "price_1RqSK0Cu6bmtuBQfCjwQ4pkI"},
		{plan: "basic", interval: IntervalYearly, want: "price_1RqTE0Cu6bmtuBQfYBroUu9a"},
		{plan: "pro", interval: IntervalMonthly, want: "price_1RqTG8Cu6bmtuBQfxhba36iM"},
		{plan: "unknown", interval: IntervalMonthly, wantErr: true},
		{plan: "basic", interval: "weekly", wantErr: true},
	}

	for _, tt := range tests {
		got, err := cfg.ResolvePrice(tt.plan, tt.interval)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidPlan) {
				t.Fatalf("ResolvePrice(%q, %q) error = %v, want ErrInvalidPlan", tt.plan, tt.interval, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ResolvePrice(%q, %q) unexpected error: %v", tt.plan, tt.interval, err)
		}
		if got != tt.want {
			t.Fatalf("ResolvePrice(%q, %q) = %q, want %q", tt.plan, tt.interval, got, tt.want)
		}
	}
}

func TestResolvePriceRequiresYearlyPrice(t *testing.T) {
	cfg := &Config{Plans: map[string]Plan{
		"starter": {Name: "Starter", PriceID: "price_monthly_only"},
	}}

	if _, err := cfg.ResolvePrice("starter", IntervalYearly); !errors.Is(err, domain.ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan for missing yearly price, got %v", err)
	}
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodicity(t *testing.T) {
	tests := []struct {
		in    string
		want  Periodicity
		valid bool
	}{
		{"monthly", PeriodicityMonthly, true},
		{"annually", PeriodicityAnnually, true},
		{"  Monthly ", PeriodicityMonthly, true},
		{"ANNUALLY", PeriodicityAnnually, true},
		{"weekly", PeriodicityMonthly, false},
		{"", PeriodicityMonthly, false},
	}

	for _, tt := range tests {
		got, ok := ParsePeriodicity(tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestProductComplete(t *testing.T) {
	price := 9.99
	p := PeriodicityMonthly

	assert.True(t, Product{Price: &price, Periodicity: &p}.Complete())
	assert.False(t, Product{Price: &price}.Complete())
	assert.False(t, Product{Periodicity: &p}.Complete())
	assert.False(t, Product{}.Complete())
}

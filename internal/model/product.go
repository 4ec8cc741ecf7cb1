package model

import (
	"strings"
	"time"
)

type Periodicity string

const (
	PeriodicityMonthly  Periodicity = "monthly"
	PeriodicityAnnually Periodicity = "annually"
)

func (p Periodicity) String() string { return string(p) }

func (p Periodicity) Valid() bool {
	return p == PeriodicityMonthly || p == PeriodicityAnnually
}

// ParsePeriodicity normalizes input. Returns (value, true) if valid;
// otherwise (monthly, false).
func ParsePeriodicity(s string) (Periodicity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return PeriodicityMonthly, true
	case "annually":
		return PeriodicityAnnually, true
	default:
		return PeriodicityMonthly, false
	}
}

// Product is immutable once created; subscriptions snapshot price and
// periodicity at subscribe time instead of referencing these live.
// Price and Periodicity are pointers because rows predating those columns
// may miss them; subscribe refuses such products.
type Product struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Description  string       `db:"description"`
	Customizable bool         `db:"customizable"`
	Price        *float64     `db:"price"`
	Periodicity  *Periodicity `db:"periodicity"`
	CreatedAt    time.Time    `db:"created_at"`
}

// Complete reports whether the product carries both billing fields.
func (p Product) Complete() bool {
	return p.Price != nil && p.Periodicity != nil
}

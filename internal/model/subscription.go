package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SubscriptionStatus string

const (
	StatusActive  SubscriptionStatus = "active"
	StatusExpired SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string { return string(s) }

// CustomizationMap is the free-form settings document of a subscription to
// a customizable product. Stored as JSON text; nil means "not customizable",
// an empty map is a valid customization.
type CustomizationMap map[string]any

func (m CustomizationMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *CustomizationMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("customization: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}

	return json.Unmarshal(raw, m)
}

// Subscription is the DB entity persisted in the subscriptions table.
// PriceAtSubscription and PeriodicityAtSubscription are copied from the
// product at subscribe time and never changed afterwards.
type Subscription struct {
	ID                        string           `db:"id"`
	CustomerID                string           `db:"customer_id"`
	ProductID                 string           `db:"product_id"`
	StartDate                 time.Time        `db:"start_date"`
	ExpirationDate            time.Time        `db:"expiration_date"`
	Customization             CustomizationMap `db:"customization"`
	PriceAtSubscription       *float64         `db:"price_at_subscription"`
	PeriodicityAtSubscription *Periodicity     `db:"periodicity_at_subscription"`
	CreatedAt                 time.Time        `db:"created_at"`
	UpdatedAt                 time.Time        `db:"updated_at"`
}

// StatusAt derives the point-in-time status. A subscription whose
// expiration equals the evaluation instant counts as expired.
func (s Subscription) StatusAt(now time.Time) SubscriptionStatus {
	if s.ExpirationDate.After(now) {
		return StatusActive
	}
	return StatusExpired
}

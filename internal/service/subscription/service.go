// Package subscription implements the subscription lifecycle: creation
// with snapshot pricing, derived status, customization edits, and
// expiration extension. Every committed mutation leaves a lifecycle event
// in the outbox within the same transaction.
package subscription

import (
	"context"
	"reflect"
	"time"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
	"github.com/nkazemy/subman/internal/util"
)

// UpdateResult distinguishes "changed" from "nothing to do, and that's
// fine". The Notice is informational, never an error.
type UpdateResult struct {
	Updated bool
	Notice  string
}

const (
	NoticeSettingsUpToDate  = "settings already up to date, no changes made"
	NoticeExpirationCurrent = "subscription expiration date already at or past this value"
)

type Service struct {
	customers repository.CustomersRepository
	products  repository.ProductsRepository
	subs      repository.SubscriptionsRepository
	topic     string
	now       func() time.Time
}

func New(
	customers repository.CustomersRepository,
	products repository.ProductsRepository,
	subs repository.SubscriptionsRepository,
	eventsTopic string,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		subs:      subs,
		topic:     eventsTopic,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// parseDate accepts RFC 3339 as well as the bare ISO form
// YYYY-MM-DDTHH:MM:SS (interpreted as UTC).
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Subscribe validates in a fixed order, each check short-circuiting with
// its own error, then persists the subscription with price and
// periodicity snapshotted from the product.
func (s *Service) Subscribe(ctx context.Context, customerID, productID, expiration string, customization model.CustomizationMap) (string, error) {
	if !util.ValidID(customerID) || !util.ValidID(productID) {
		return "", apperr.ErrInvalidID
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return "", apperr.Store("customer lookup", err)
	}
	if customer == nil {
		return "", apperr.ErrCustomerNotFound
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return "", apperr.Store("product lookup", err)
	}
	if product == nil {
		return "", apperr.ErrProductNotFound
	}

	expirationDate, ok := parseDate(expiration)
	if !ok {
		return "", apperr.ErrInvalidDateFormat
	}

	now := s.now()
	if expirationDate.Before(now) {
		return "", apperr.ErrExpirationInPast
	}

	active, err := s.subs.HasActive(ctx, customerID, productID, now)
	if err != nil {
		return "", apperr.Store("active subscription check", err)
	}
	if active {
		return "", apperr.ErrDuplicateActive
	}

	if product.Customizable && customization == nil {
		return "", apperr.ErrMissingCustomization
	}
	if !product.Customizable && customization != nil {
		return "", apperr.ErrUnexpectedCustomization
	}

	if !product.Complete() {
		return "", apperr.ErrIncompleteProductData
	}

	sub := model.Subscription{
		ID:                        util.NewID(),
		CustomerID:                customerID,
		ProductID:                 productID,
		StartDate:                 now,
		ExpirationDate:            expirationDate,
		Customization:             customization,
		PriceAtSubscription:       product.Price,
		PeriodicityAtSubscription: product.Periodicity,
	}

	ev := s.event(model.EventSubscriptionCreated, sub.ID, customerID, productID, now)
	if err := s.subs.Create(ctx, sub, ev, s.topic); err != nil {
		return "", apperr.Store("create subscription", err)
	}

	metrics.SubscriptionOps.WithLabelValues("created").Inc()
	return sub.ID, nil
}

// Status derives active/expired at call time; never stored.
func (s *Service) Status(ctx context.Context, id string) (model.SubscriptionStatus, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	return sub.StatusAt(s.now()), nil
}

// Settings returns the stored customization map. An empty map is valid;
// only subscriptions to customizable products have settings at all.
func (s *Service) Settings(ctx context.Context, id string) (model.CustomizationMap, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireCustomizable(ctx, sub.ProductID); err != nil {
		return nil, err
	}
	if sub.Customization == nil {
		return model.CustomizationMap{}, nil
	}
	return sub.Customization, nil
}

// EditSettings replaces the whole customization map. A replacement equal
// to the stored value succeeds with a notice and performs no write.
func (s *Service) EditSettings(ctx context.Context, id string, newSettings model.CustomizationMap) (UpdateResult, error) {
	sub, err := s.get(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if err := s.requireCustomizable(ctx, sub.ProductID); err != nil {
		return UpdateResult{}, err
	}

	if settingsEqual(sub.Customization, newSettings) {
		return UpdateResult{Updated: false, Notice: NoticeSettingsUpToDate}, nil
	}

	ev := s.event(model.EventSubscriptionSettingsUpdated, sub.ID, sub.CustomerID, sub.ProductID, s.now())
	if err := s.subs.SetCustomization(ctx, id, newSettings, ev, s.topic); err != nil {
		return UpdateResult{}, apperr.Store("update settings", err)
	}

	metrics.SubscriptionOps.WithLabelValues("settings_updated").Inc()
	return UpdateResult{Updated: true}, nil
}

// Extend moves the expiration date forward, never backward. A target at
// or before the current expiration succeeds with a notice and no write.
func (s *Service) Extend(ctx context.Context, id, newExpiration string) (UpdateResult, error) {
	if !util.ValidID(id) {
		return UpdateResult{}, apperr.ErrInvalidID
	}

	expirationDate, ok := parseDate(newExpiration)
	if !ok {
		return UpdateResult{}, apperr.ErrInvalidDateFormat
	}

	now := s.now()
	if expirationDate.Before(now) {
		return UpdateResult{}, apperr.ErrExpirationInPast
	}

	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return UpdateResult{}, apperr.Store("subscription lookup", err)
	}
	if sub == nil {
		return UpdateResult{}, apperr.ErrSubscriptionNotFound
	}

	if !sub.ExpirationDate.Before(expirationDate) {
		return UpdateResult{Updated: false, Notice: NoticeExpirationCurrent}, nil
	}

	ev := s.event(model.EventSubscriptionExtended, sub.ID, sub.CustomerID, sub.ProductID, now)
	if err := s.subs.SetExpiration(ctx, id, expirationDate, ev, s.topic); err != nil {
		return UpdateResult{}, apperr.Store("extend subscription", err)
	}

	metrics.SubscriptionOps.WithLabelValues("extended").Inc()
	return UpdateResult{Updated: true}, nil
}

// GetByID is the ownership-check helper for the boundary layer. Malformed
// ids yield (nil, nil), not an error.
func (s *Service) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	if !util.ValidID(id) {
		return nil, nil
	}
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("subscription lookup", err)
	}
	return sub, nil
}

func (s *Service) get(ctx context.Context, id string) (*model.Subscription, error) {
	if !util.ValidID(id) {
		return nil, apperr.ErrInvalidID
	}
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("subscription lookup", err)
	}
	if sub == nil {
		return nil, apperr.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *Service) requireCustomizable(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return apperr.Store("product lookup", err)
	}
	if product == nil || !product.Customizable {
		return apperr.ErrNotCustomizable
	}
	return nil
}

func (s *Service) event(eventType, subID, customerID, productID string, at time.Time) model.SubscriptionEvent {
	return model.SubscriptionEvent{
		EventID:        util.NewID(),
		EventType:      eventType,
		SubscriptionID: subID,
		CustomerID:     customerID,
		ProductID:      productID,
		OccurredAt:     at,
	}
}

// settingsEqual compares two JSON-decoded maps; both sides come through
// encoding/json, so their value types line up for deep equality.
func settingsEqual(a, b model.CustomizationMap) bool {
	if len(a) == 0 && len(b) == 0 {
		return (a == nil) == (b == nil)
	}
	return reflect.DeepEqual(a, b)
}

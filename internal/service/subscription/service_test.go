package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/util"
)

// ---- fakes ----

type fakeCustomers struct {
	byID map[string]*model.Customer
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (*model.Customer, error) {
	return f.byID[id], nil
}
func (f *fakeCustomers) GetByEmail(_ context.Context, _ string) (*model.Customer, error) {
	return nil, nil
}
func (f *fakeCustomers) Insert(_ context.Context, _ model.Customer) error { return nil }

type fakeProducts struct {
	byID map[string]*model.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*model.Product, error) {
	return f.byID[id], nil
}
func (f *fakeProducts) GetByName(_ context.Context, _ string) (*model.Product, error) {
	return nil, nil
}
func (f *fakeProducts) Insert(_ context.Context, _ model.Product) error { return nil }

type fakeSubs struct {
	byID   map[string]*model.Subscription
	active bool

	created       []model.Subscription
	customization []model.CustomizationMap
	expirations   []time.Time
	events        []model.SubscriptionEvent
}

func (f *fakeSubs) GetByID(_ context.Context, id string) (*model.Subscription, error) {
	return f.byID[id], nil
}

func (f *fakeSubs) HasActive(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	return f.active, nil
}

func (f *fakeSubs) Create(_ context.Context, sub model.Subscription, ev model.SubscriptionEvent, _ string) error {
	f.created = append(f.created, sub)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSubs) SetCustomization(_ context.Context, _ string, c model.CustomizationMap, ev model.SubscriptionEvent, _ string) error {
	f.customization = append(f.customization, c)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSubs) SetExpiration(_ context.Context, _ string, exp time.Time, ev model.SubscriptionEvent, _ string) error {
	f.expirations = append(f.expirations, exp)
	f.events = append(f.events, ev)
	return nil
}

// ---- fixture ----

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *Service
	customers  *fakeCustomers
	products   *fakeProducts
	subs       *fakeSubs
	customerID string
	plainID    string // non-customizable product
	customID   string // customizable product
}

func newFixture() *fixture {
	price := 100.0
	monthly := model.PeriodicityMonthly

	customerID := util.NewID()
	plainID := util.NewID()
	customID := util.NewID()

	customers := &fakeCustomers{byID: map[string]*model.Customer{
		customerID: {ID: customerID, Name: "Acme", Email: "billing@acme.example"},
	}}
	products := &fakeProducts{byID: map[string]*model.Product{
		plainID: {ID: plainID, Name: "Starter", Price: &price, Periodicity: &monthly},
		customID: {
			ID: customID, Name: "Widget", Customizable: true,
			Price: &price, Periodicity: &monthly,
		},
	}}
	subs := &fakeSubs{byID: map[string]*model.Subscription{}}

	svc := New(customers, products, subs, "subscriptions.events")
	svc.now = func() time.Time { return testNow }

	return &fixture{
		svc:        svc,
		customers:  customers,
		products:   products,
		subs:       subs,
		customerID: customerID,
		plainID:    plainID,
		customID:   customID,
	}
}

func (f *fixture) expiration() string {
	return testNow.Add(30 * 24 * time.Hour).Format("2006-01-02T15:04:05")
}

// ---- Subscribe ----

func TestSubscribe(t *testing.T) {
	f := newFixture()

	id, err := f.svc.Subscribe(context.Background(), f.customerID, f.plainID, f.expiration(), nil)
	require.NoError(t, err)
	assert.True(t, util.ValidID(id))

	require.Len(t, f.subs.created, 1)
	sub := f.subs.created[0]
	assert.Equal(t, f.customerID, sub.CustomerID)
	assert.Equal(t, f.plainID, sub.ProductID)
	assert.Equal(t, testNow, sub.StartDate)
	require.NotNil(t, sub.PriceAtSubscription)
	assert.Equal(t, 100.0, *sub.PriceAtSubscription)
	require.NotNil(t, sub.PeriodicityAtSubscription)
	assert.Equal(t, model.PeriodicityMonthly, *sub.PeriodicityAtSubscription)

	require.Len(t, f.subs.events, 1)
	assert.Equal(t, model.EventSubscriptionCreated, f.subs.events[0].EventType)
	assert.Equal(t, id, f.subs.events[0].SubscriptionID)
}

func TestSubscribeMalformedIDs(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Subscribe(context.Background(), "nope", f.plainID, f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.svc.Subscribe(context.Background(), f.customerID, "nope", f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestSubscribeUnknownCustomerAndProduct(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Subscribe(context.Background(), util.NewID(), f.plainID, f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrCustomerNotFound)

	_, err = f.svc.Subscribe(context.Background(), f.customerID, util.NewID(), f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

func TestSubscribeBadDate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Subscribe(context.Background(), f.customerID, f.plainID, "next tuesday", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidDateFormat)

	_, err = f.svc.Subscribe(context.Background(), f.customerID, f.plainID, "2026-08-27T00:00:00", nil)
	assert.ErrorIs(t, err, apperr.ErrExpirationInPast)
}

func TestSubscribeDuplicateActive(t *testing.T) {
	f := newFixture()
	f.subs.active = true

	_, err := f.svc.Subscribe(context.Background(), f.customerID, f.plainID, f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrDuplicateActive)
	assert.Empty(t, f.subs.created)
}

func TestSubscribeCustomizationRules(t *testing.T) {
	f := newFixture()

	// customizable product requires settings
	_, err := f.svc.Subscribe(context.Background(), f.customerID, f.customID, f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrMissingCustomization)

	// non-customizable product refuses them
	_, err = f.svc.Subscribe(context.Background(), f.customerID, f.plainID, f.expiration(),
		model.CustomizationMap{"color": "red"})
	assert.ErrorIs(t, err, apperr.ErrUnexpectedCustomization)

	// empty map satisfies a customizable product
	id, err := f.svc.Subscribe(context.Background(), f.customerID, f.customID, f.expiration(),
		model.CustomizationMap{})
	require.NoError(t, err)
	assert.True(t, util.ValidID(id))
}

func TestSubscribeIncompleteProduct(t *testing.T) {
	f := newFixture()
	incompleteID := util.NewID()
	f.products.byID[incompleteID] = &model.Product{ID: incompleteID, Name: "Legacy"}

	_, err := f.svc.Subscribe(context.Background(), f.customerID, incompleteID, f.expiration(), nil)
	assert.ErrorIs(t, err, apperr.ErrIncompleteProductData)
}

func TestSubscribeAcceptsRFC3339(t *testing.T) {
	f := newFixture()

	id, err := f.svc.Subscribe(context.Background(), f.customerID, f.plainID,
		testNow.Add(time.Hour).Format(time.RFC3339), nil)
	require.NoError(t, err)
	assert.True(t, util.ValidID(id))
}

// ---- Status ----

func TestStatus(t *testing.T) {
	f := newFixture()
	activeID := util.NewID()
	expiredID := util.NewID()
	f.subs.byID[activeID] = &model.Subscription{ID: activeID, ExpirationDate: testNow.Add(time.Hour)}
	f.subs.byID[expiredID] = &model.Subscription{ID: expiredID, ExpirationDate: testNow}

	st, err := f.svc.Status(context.Background(), activeID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, st)

	st, err = f.svc.Status(context.Background(), expiredID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, st)

	_, err = f.svc.Status(context.Background(), util.NewID())
	assert.ErrorIs(t, err, apperr.ErrSubscriptionNotFound)

	_, err = f.svc.Status(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

// ---- Settings ----

func (f *fixture) addSubscription(productID string, c model.CustomizationMap) string {
	id := util.NewID()
	f.subs.byID[id] = &model.Subscription{
		ID:             id,
		CustomerID:     f.customerID,
		ProductID:      productID,
		StartDate:      testNow.Add(-24 * time.Hour),
		ExpirationDate: testNow.Add(24 * time.Hour),
		Customization:  c,
	}
	return id
}

func TestSettings(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.customID, model.CustomizationMap{"color": "blue"})

	got, err := f.svc.Settings(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.CustomizationMap{"color": "blue"}, got)
}

func TestSettingsNotCustomizable(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.plainID, nil)

	_, err := f.svc.Settings(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotCustomizable)
}

func TestSettingsNilBecomesEmptyMap(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.customID, nil)

	got, err := f.svc.Settings(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- EditSettings ----

func TestEditSettings(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.customID, model.CustomizationMap{"color": "blue"})

	res, err := f.svc.EditSettings(context.Background(), id, model.CustomizationMap{"color": "red"})
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Empty(t, res.Notice)

	require.Len(t, f.subs.customization, 1)
	assert.Equal(t, model.CustomizationMap{"color": "red"}, f.subs.customization[0])
	require.Len(t, f.subs.events, 1)
	assert.Equal(t, model.EventSubscriptionSettingsUpdated, f.subs.events[0].EventType)
}

func TestEditSettingsNoChange(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.customID, model.CustomizationMap{"color": "blue"})

	res, err := f.svc.EditSettings(context.Background(), id, model.CustomizationMap{"color": "blue"})
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, NoticeSettingsUpToDate, res.Notice)

	// identical replacement must not touch the store
	assert.Empty(t, f.subs.customization)
	assert.Empty(t, f.subs.events)
}

func TestEditSettingsOnPlainProduct(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.plainID, nil)

	_, err := f.svc.EditSettings(context.Background(), id, model.CustomizationMap{"color": "red"})
	assert.ErrorIs(t, err, apperr.ErrNotCustomizable)
}

// ---- Extend ----

func TestExtend(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.plainID, nil)

	target := testNow.Add(60 * 24 * time.Hour)
	res, err := f.svc.Extend(context.Background(), id, target.Format("2006-01-02T15:04:05"))
	require.NoError(t, err)
	assert.True(t, res.Updated)

	require.Len(t, f.subs.expirations, 1)
	assert.True(t, f.subs.expirations[0].Equal(target))
	require.Len(t, f.subs.events, 1)
	assert.Equal(t, model.EventSubscriptionExtended, f.subs.events[0].EventType)
}

func TestExtendNotForward(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.plainID, nil) // expires testNow+24h

	// earlier than the current expiration but still in the future
	res, err := f.svc.Extend(context.Background(), id,
		testNow.Add(12*time.Hour).Format("2006-01-02T15:04:05"))
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Equal(t, NoticeExpirationCurrent, res.Notice)
	assert.Empty(t, f.subs.expirations)

	// exactly the current expiration is also a no-op
	res, err = f.svc.Extend(context.Background(), id,
		testNow.Add(24*time.Hour).Format("2006-01-02T15:04:05"))
	require.NoError(t, err)
	assert.False(t, res.Updated)
}

func TestExtendValidation(t *testing.T) {
	f := newFixture()
	id := f.addSubscription(f.plainID, nil)

	_, err := f.svc.Extend(context.Background(), "garbage", f.expiration())
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = f.svc.Extend(context.Background(), id, "soon")
	assert.ErrorIs(t, err, apperr.ErrInvalidDateFormat)

	_, err = f.svc.Extend(context.Background(), id, "2020-01-01T00:00:00")
	assert.ErrorIs(t, err, apperr.ErrExpirationInPast)

	_, err = f.svc.Extend(context.Background(), util.NewID(), f.expiration())
	assert.ErrorIs(t, err, apperr.ErrSubscriptionNotFound)
}

// ---- GetByID ----

func TestGetByIDMalformed(t *testing.T) {
	f := newFixture()

	sub, err := f.svc.GetByID(context.Background(), "not-a-ulid")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

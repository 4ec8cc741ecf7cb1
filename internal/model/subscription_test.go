package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	future := Subscription{ExpirationDate: now.Add(time.Second)}
	assert.Equal(t, StatusActive, future.StatusAt(now))

	past := Subscription{ExpirationDate: now.Add(-time.Second)}
	assert.Equal(t, StatusExpired, past.StatusAt(now))

	// expiration exactly at the evaluation instant counts as expired
	boundary := Subscription{ExpirationDate: now}
	assert.Equal(t, StatusExpired, boundary.StatusAt(now))
}

func TestCustomizationMapValue(t *testing.T) {
	var nilMap CustomizationMap
	v, err := nilMap.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	m := CustomizationMap{"color": "blue", "size": float64(3)}
	v, err = m.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"blue","size":3}`, string(v.([]byte)))

	// empty map is a valid customization, distinct from nil
	empty := CustomizationMap{}
	v, err = empty.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(v.([]byte)))
}

func TestCustomizationMapScan(t *testing.T) {
	var m CustomizationMap
	require.NoError(t, m.Scan([]byte(`{"lang":"en"}`)))
	assert.Equal(t, CustomizationMap{"lang": "en"}, m)

	require.NoError(t, m.Scan(`{"lang":"de"}`))
	assert.Equal(t, CustomizationMap{"lang": "de"}, m)

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	assert.Error(t, m.Scan(42))
}

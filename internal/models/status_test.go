package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
)

func TestParseOrderStatus(t *testing.T) {
	for _, status := range AllOrderStatuses {
		parsed, err := ParseOrderStatus(string(status))

		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
}

func TestParseOrderStatusRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "shipped", "PENDIENTE", "pendiente "} {
		_, err := ParseOrderStatus(label)

		require.Error(t, err, "label %q", label)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestCanTransitionCoversAllPairs(t *testing.T) {
	for _, from := range AllOrderStatuses {
		for _, to := range AllOrderStatuses {
			assert.True(t, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "En proceso", OrderStatusEnProceso.Label())
	assert.Equal(t, "Pendiente", OrderStatusPendiente.Label())
}

func TestNewOrderStartsPending(t *testing.T) {
	order := NewOrder("usr-1", "Ana Pérez", "ana@example.com")

	assert.Equal(t, OrderStatusPendiente, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.False(t, order.HasShipping())
}

package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data   string
		action CallbackAction
	}{
		{"confirm_order_ord-123", ActionConfirmOrder},
		{"prepare_shipping_ord-123", ActionPrepareShipping},
		{"view_details_ord-123", ActionViewDetails},
		{"cancel_order_ord-123", ActionCancelOrder},
		{"send_email_ord-123", ActionSendEmail},
		{"no_phone_ord-123", ActionNoPhone},
		{"view_stats_ord-123", ActionViewStats},
	}

	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			cb, ok := ParseCallback(tc.data)

			require.True(t, ok)
			assert.Equal(t, tc.action, cb.Action)
			assert.Equal(t, "ord-123", cb.OrderID)
		})
	}
}

func TestParseCallbackUnknown(t *testing.T) {
	for _, data := range []string{"", "refund_order_ord-123", "ord-123"} {
		_, ok := ParseCallback(data)
		assert.False(t, ok, "data %q must not parse", data)
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	for action := ActionConfirmOrder; action <= ActionViewStats; action++ {
		cb := Callback{Action: action, OrderID: "ord-abc12345"}

		parsed, ok := ParseCallback(cb.Data())

		require.True(t, ok, "action %s", action)
		assert.Equal(t, cb, parsed)
	}
}

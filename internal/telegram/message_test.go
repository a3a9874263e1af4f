package telegram

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

func sampleOrder() *models.Order {
	discountType := "percentage"

	order := models.NewOrder("usr-1", "Ana Pérez", "ana@example.com")
	order.ID = "ord-abc12345"
	order.TotalAmount = decimal.RequireFromString("81.00")
	order.Items = []*models.OrderItem{
		{
			ProductID:     "prd-ring",
			Name:          "Anillo de plata",
			Quantity:      1,
			OriginalPrice: decimal.RequireFromString("45.00"),
			FinalPrice:    decimal.RequireFromString("45.00"),
		},
		{
			ProductID:     "prd-earrings",
			Name:          "Aretes de cobre",
			Quantity:      2,
			OriginalPrice: decimal.RequireFromString("20.00"),
			FinalPrice:    decimal.RequireFromString("18.00"),
			DiscountType:  &discountType,
			DiscountValue: decimal.NewNullDecimal(decimal.RequireFromString("10")),
		},
	}

	return order
}

func TestFormatOrderMessage(t *testing.T) {
	msg := FormatOrderMessage(sampleOrder())

	assert.Contains(t, msg, "ord-abc12345")
	assert.Contains(t, msg, "Ana Pérez")
	assert.Contains(t, msg, "ana@example.com")
	assert.Contains(t, msg, "Anillo de plata x1")
	assert.Contains(t, msg, "Aretes de cobre x2")
	assert.Contains(t, msg, "$18.00 c/u = $36.00")
	assert.Contains(t, msg, "antes $20.00", "discounted lines show the original price")
	assert.Contains(t, msg, "Total: $81.00")
	assert.Contains(t, msg, "Entrega en persona")
}

func TestFormatOrderMessageWithShipping(t *testing.T) {
	order := sampleOrder()
	addr := "Calle 23 #456"
	city := "La Habana"
	country := "Cuba"
	order.ShippingAddr = &addr
	order.ShippingCity = &city
	order.ShippingCtry = &country

	msg := FormatOrderMessage(order)

	assert.Contains(t, msg, "Envío")
	assert.Contains(t, msg, "Calle 23 #456")
	assert.Contains(t, msg, "La Habana, Cuba")
	assert.NotContains(t, msg, "Entrega en persona")
}

func TestFormatStatsMessage(t *testing.T) {
	msg := FormatStatsMessage(map[models.OrderStatus]int{
		models.OrderStatusPendiente: 3,
		models.OrderStatusEnviado:   1,
	})

	assert.Contains(t, msg, "Pendiente: 3")
	assert.Contains(t, msg, "Enviado: 1")
	assert.Contains(t, msg, "Cancelado: 0")
	assert.Contains(t, msg, "Total: 4")
}

func TestBuildOrderKeyboardWithPhone(t *testing.T) {
	order := sampleOrder()
	phone := "555-123-4567"
	order.CustomerPhone = &phone

	kb := BuildOrderKeyboard(order, "+53")

	require.Len(t, kb.InlineKeyboard, 4)

	last := kb.InlineKeyboard[3]
	require.Len(t, last, 1)
	require.NotNil(t, last[0].URL)
	assert.Equal(t, "https://wa.me/535551234567", *last[0].URL)
}

func TestBuildOrderKeyboardWithoutPhone(t *testing.T) {
	kb := BuildOrderKeyboard(sampleOrder(), "+53")

	require.Len(t, kb.InlineKeyboard, 4)

	last := kb.InlineKeyboard[3]
	require.Len(t, last, 2)
	require.NotNil(t, last[0].CallbackData)
	assert.Equal(t, "send_email_ord-abc12345", *last[0].CallbackData)
	require.NotNil(t, last[1].CallbackData)
	assert.Equal(t, "no_phone_ord-abc12345", *last[1].CallbackData)
}

func TestBuildOrderKeyboardActionButtons(t *testing.T) {
	kb := BuildOrderKeyboard(sampleOrder(), "+53")

	var data []string

	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}

	joined := strings.Join(data, " ")
	assert.Contains(t, joined, "confirm_order_ord-abc12345")
	assert.Contains(t, joined, "cancel_order_ord-abc12345")
	assert.Contains(t, joined, "prepare_shipping_ord-abc12345")
	assert.Contains(t, joined, "view_details_ord-abc12345")
	assert.Contains(t, joined, "view_stats_ord-abc12345")
}

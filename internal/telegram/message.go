package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

// FormatOrderMessage builds the Markdown order summary sent to the shop
// operator when an order is placed.
func FormatOrderMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString("🛍 *Nuevo pedido*\n\n")
	fmt.Fprintf(&b, "*Pedido:* `%s`\n", order.ID)
	fmt.Fprintf(&b, "*Cliente:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "*Email:* %s\n", order.CustomerEmail)

	if order.CustomerPhone != nil && *order.CustomerPhone != "" {
		fmt.Fprintf(&b, "*Teléfono:* %s\n", *order.CustomerPhone)
	}

	if order.HasShipping() {
		b.WriteString("\n📦 *Envío*\n")
		fmt.Fprintf(&b, "%s\n", *order.ShippingAddr)

		location := joinNonEmpty(", ",
			deref(order.ShippingCity),
			deref(order.ShippingState),
			deref(order.ShippingZip),
			deref(order.ShippingCtry),
		)

		if location != "" {
			fmt.Fprintf(&b, "%s\n", location)
		}
	} else {
		b.WriteString("\n📦 *Entrega en persona*\n")
	}

	b.WriteString("\n🧾 *Productos*\n")

	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s x%d — $%s c/u = $%s\n",
			item.Name, item.Quantity, item.FinalPrice.StringFixed(2), item.Subtotal().StringFixed(2))

		if item.DiscountType != nil {
			fmt.Fprintf(&b, "  _antes $%s_\n", item.OriginalPrice.StringFixed(2))
		}
	}

	fmt.Fprintf(&b, "\n💰 *Total: $%s*\n", order.TotalAmount.StringFixed(2))

	if order.Notes != nil && *order.Notes != "" {
		fmt.Fprintf(&b, "\n📝 *Nota:* %s\n", *order.Notes)
	}

	return b.String()
}

// FormatOrderDetails builds the follow-up message for the view-details
// button.
func FormatOrderDetails(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 *Detalles del pedido* `%s`\n\n", order.ID)
	fmt.Fprintf(&b, "*Estado:* %s\n", order.Status.Label())
	fmt.Fprintf(&b, "*Cliente:* %s (%s)\n", order.CustomerName, order.CustomerEmail)
	fmt.Fprintf(&b, "*Creado:* %s\n", order.CreatedAt.Format("02/01/2006 15:04"))

	b.WriteString("\n")

	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s x%d = $%s\n", item.Name, item.Quantity, item.Subtotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\n*Total: $%s*", order.TotalAmount.StringFixed(2))

	return b.String()
}

// FormatStatsMessage renders per-status order counts for the view-stats
// button.
func FormatStatsMessage(counts map[models.OrderStatus]int) string {
	var b strings.Builder

	b.WriteString("📊 *Pedidos por estado*\n\n")

	total := 0

	for _, status := range models.AllOrderStatuses {
		count := counts[status]
		total += count
		fmt.Fprintf(&b, "%s: %d\n", status.Label(), count)
	}

	fmt.Fprintf(&b, "\n*Total: %d*", total)

	return b.String()
}

// BuildOrderKeyboard builds the inline keyboard attached to the order
// message. The last row depends on the customer's phone: a WhatsApp
// deep link when it is reachable, contact fallbacks otherwise.
func BuildOrderKeyboard(order *models.Order, countryCode string) tgbotapi.InlineKeyboardMarkup {
	confirm := Callback{Action: ActionConfirmOrder, OrderID: order.ID}
	cancel := Callback{Action: ActionCancelOrder, OrderID: order.ID}
	prepare := Callback{Action: ActionPrepareShipping, OrderID: order.ID}
	details := Callback{Action: ActionViewDetails, OrderID: order.ID}
	stats := Callback{Action: ActionViewStats, OrderID: order.ID}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirmar", confirm.Data()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancelar", cancel.Data()),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("📦 Preparar envío", prepare.Data()),
			tgbotapi.NewInlineKeyboardButtonData("📋 Ver detalles", details.Data()),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("📊 Estadísticas", stats.Data()),
		},
	}

	rows = append(rows, contactRow(order, countryCode))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func contactRow(order *models.Order, countryCode string) []tgbotapi.InlineKeyboardButton {
	if order.CustomerPhone != nil {
		if phone, ok := NormalizePhone(*order.CustomerPhone, countryCode); ok {
			url := "https://wa.me/" + strings.TrimPrefix(phone, "+")
			return []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonURL("💬 WhatsApp", url),
			}
		}
	}

	email := Callback{Action: ActionSendEmail, OrderID: order.ID}
	noPhone := Callback{Action: ActionNoPhone, OrderID: order.ID}

	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✉️ Enviar email", email.Data()),
		tgbotapi.NewInlineKeyboardButtonData("📵 Sin teléfono", noPhone.Data()),
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string

	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

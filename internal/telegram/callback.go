package telegram

import (
	"fmt"
	"strings"
)

// CallbackAction enumerates the inline-button actions the bot
// understands. The vocabulary is closed: callback data is parsed once at
// the webhook boundary and dispatched exhaustively.
type CallbackAction int

const (
	ActionConfirmOrder CallbackAction = iota
	ActionPrepareShipping
	ActionViewDetails
	ActionCancelOrder
	ActionSendEmail
	ActionNoPhone
	ActionViewStats
)

// Wire prefixes for callback data. The order id follows the prefix.
const (
	prefixConfirmOrder    = "confirm_order_"
	prefixPrepareShipping = "prepare_shipping_"
	prefixViewDetails     = "view_details_"
	prefixCancelOrder     = "cancel_order_"
	prefixSendEmail       = "send_email_"
	prefixNoPhone         = "no_phone_"
	prefixViewStats       = "view_stats_"
)

// Callback is a parsed inline-button press
type Callback struct {
	Action  CallbackAction
	OrderID string
}

// ParseCallback maps raw callback data onto the closed action set.
// Unrecognized data returns ok=false; the webhook still acknowledges it
// so the client UI leaves its loading state.
func ParseCallback(data string) (Callback, bool) {
	prefixes := []struct {
		prefix string
		action CallbackAction
	}{
		{prefixConfirmOrder, ActionConfirmOrder},
		{prefixPrepareShipping, ActionPrepareShipping},
		{prefixViewDetails, ActionViewDetails},
		{prefixCancelOrder, ActionCancelOrder},
		{prefixSendEmail, ActionSendEmail},
		{prefixNoPhone, ActionNoPhone},
		{prefixViewStats, ActionViewStats},
	}

	for _, p := range prefixes {
		if strings.HasPrefix(data, p.prefix) {
			return Callback{
				Action:  p.action,
				OrderID: strings.TrimPrefix(data, p.prefix),
			}, true
		}
	}

	return Callback{}, false
}

// Data renders the callback back to its wire form for keyboard buttons.
func (c Callback) Data() string {
	var prefix string

	switch c.Action {
	case ActionConfirmOrder:
		prefix = prefixConfirmOrder
	case ActionPrepareShipping:
		prefix = prefixPrepareShipping
	case ActionViewDetails:
		prefix = prefixViewDetails
	case ActionCancelOrder:
		prefix = prefixCancelOrder
	case ActionSendEmail:
		prefix = prefixSendEmail
	case ActionNoPhone:
		prefix = prefixNoPhone
	case ActionViewStats:
		prefix = prefixViewStats
	}

	return fmt.Sprintf("%s%s", prefix, c.OrderID)
}

func (a CallbackAction) String() string {
	switch a {
	case ActionConfirmOrder:
		return "confirm_order"
	case ActionPrepareShipping:
		return "prepare_shipping"
	case ActionViewDetails:
		return "view_details"
	case ActionCancelOrder:
		return "cancel_order"
	case ActionSendEmail:
		return "send_email"
	case ActionNoPhone:
		return "no_phone"
	case ActionViewStats:
		return "view_stats"
	default:
		return "unknown"
	}
}

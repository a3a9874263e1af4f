package models

import (
	"fmt"

	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
)

// OrderStatus represents the fulfillment state of an order. The labels
// are the ones the storefront and admin UI display, so they are stored
// as-is.
type OrderStatus string

const (
	OrderStatusPendiente OrderStatus = "pendiente"
	OrderStatusAceptado  OrderStatus = "aceptado"
	OrderStatusEnProceso OrderStatus = "en_proceso"
	OrderStatusEnviado   OrderStatus = "enviado"
	OrderStatusEntregado OrderStatus = "entregado"
	OrderStatusCancelado OrderStatus = "cancelado"
)

// AllOrderStatuses lists every valid status.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPendiente,
	OrderStatusAceptado,
	OrderStatusEnProceso,
	OrderStatusEnviado,
	OrderStatusEntregado,
	OrderStatusCancelado,
}

// StatusTransitions is the explicit transition table. Every state may
// move to every other state: the back office uses status overwrites for
// corrections, including reopening cancelled or delivered orders.
var StatusTransitions = func() map[OrderStatus][]OrderStatus {
	t := make(map[OrderStatus][]OrderStatus, len(AllOrderStatuses))

	for _, from := range AllOrderStatuses {
		for _, to := range AllOrderStatuses {
			if from != to {
				t[from] = append(t[from], to)
			}
		}
	}

	return t
}()

// ParseOrderStatus validates a status label against the closed set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)

	if !status.Valid() {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("unknown order status: %q", s))
	}

	return status, nil
}

// Valid reports whether the status is one of the six known labels.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendiente, OrderStatusAceptado, OrderStatusEnProceso,
		OrderStatusEnviado, OrderStatusEntregado, OrderStatusCancelado:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the transition table allows moving from
// s to next. A no-op transition to the same status is always allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return true
	}

	for _, allowed := range StatusTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Label returns a human-readable form of the status for messages.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPendiente:
		return "Pendiente"
	case OrderStatusAceptado:
		return "Aceptado"
	case OrderStatusEnProceso:
		return "En proceso"
	case OrderStatusEnviado:
		return "Enviado"
	case OrderStatusEntregado:
		return "Entregado"
	case OrderStatusCancelado:
		return "Cancelado"
	default:
		return string(s)
	}
}

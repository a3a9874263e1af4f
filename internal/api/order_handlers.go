package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/internal/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// createOrderHandler places a new order
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	order, err := s.orderService.CreateOrder(r.Context(), &req)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// getOrdersHandler lists orders, optionally filtered by user
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var (
		orders []*models.Order
		err    error
	)

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		orders, err = s.orderService.GetOrdersByUser(r.Context(), userID, limit, offset)
	} else {
		orders, err = s.orderService.GetAllOrders(r.Context(), limit, offset)
	}

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if orders == nil {
		orders = []*models.Order{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    orders,
	})
}

// getOrderByIDHandler returns an order by ID
func (s *Server) getOrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.orderService.GetOrder(r.Context(), id)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// updateOrderStatusHandler overwrites the status of an order
func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	status, err := models.ParseOrderStatus(req.Status)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	order, err := s.orderService.UpdateOrderStatus(r.Context(), id, status)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// deleteOrderHandler removes an order and its items
func (s *Server) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.orderService.DeleteOrder(r.Context(), id); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

// getOrderStatsHandler returns order counts per status
func (s *Server) getOrderStatsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := s.orderService.CountByStatus(r.Context())

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"total":     total,
			"by_status": counts,
		},
	})
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

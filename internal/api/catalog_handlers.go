package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/RbroH99/les-sha-accesories/internal/models"
)

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Stock       int             `json:"stock"`
	TagIDs      []string        `json:"tag_ids,omitempty"`
}

func (p *productRequest) validate() string {
	switch {
	case p.Name == "":
		return "name is required"
	case p.Price.IsNegative():
		return "price must not be negative"
	case p.Stock < 0:
		return "stock must not be negative"
	default:
		return ""
	}
}

// createProductHandler adds a product to the catalog
func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if msg := req.validate(); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product := models.NewProduct(req.Name, req.Description, req.Price, req.Image)
	product.CategoryID = req.CategoryID
	product.Stock = req.Stock
	product.TagIDs = req.TagIDs

	if err := s.productRepo.Create(r.Context(), product); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// getProductsHandler lists catalog products
func (s *Server) getProductsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	products, err := s.productRepo.GetAll(r.Context(), includeInactive, limit, offset)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if products == nil {
		products = []*models.Product{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    products,
	})
}

// getProductByIDHandler returns a product by ID
func (s *Server) getProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := s.productRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// updateProductHandler replaces the mutable fields of a product
func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if msg := req.validate(); msg != "" {
		s.respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := s.productRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Image = req.Image
	product.CategoryID = req.CategoryID
	product.Stock = req.Stock
	product.TagIDs = req.TagIDs
	product.UpdatedAt = models.GetCurrentTime()

	if err := s.productRepo.Update(r.Context(), product); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// deleteProductHandler soft deletes a product so past orders keep their
// snapshots
func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.productRepo.Deactivate(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// createCategoryHandler adds a category
func (s *Server) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		s.respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := models.NewCategory(req.Name, req.Description)

	if err := s.categoryRepo.Create(r.Context(), category); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    category,
	})
}

// getCategoriesHandler lists categories
func (s *Server) getCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	categories, err := s.categoryRepo.GetAll(r.Context(), includeInactive)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if categories == nil {
		categories = []*models.Category{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    categories,
	})
}

// getCategoryByIDHandler returns a category by ID
func (s *Server) getCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	category, err := s.categoryRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    category,
	})
}

// updateCategoryHandler renames a category
func (s *Server) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	category, err := s.categoryRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedAt = models.GetCurrentTime()

	if err := s.categoryRepo.Update(r.Context(), category); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    category,
	})
}

// deleteCategoryHandler soft deletes a category
func (s *Server) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.categoryRepo.Deactivate(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

type tagRequest struct {
	Name string `json:"name"`
}

// createTagHandler adds a tag
func (s *Server) createTagHandler(w http.ResponseWriter, r *http.Request) {
	var req tagRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		s.respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	tag := models.NewTag(req.Name)

	if err := s.tagRepo.Create(r.Context(), tag); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    tag,
	})
}

// getTagsHandler lists tags
func (s *Server) getTagsHandler(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	tags, err := s.tagRepo.GetAll(r.Context(), includeInactive)

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if tags == nil {
		tags = []*models.Tag{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    tags,
	})
}

// getTagByIDHandler returns a tag by ID
func (s *Server) getTagByIDHandler(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tagRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    tag,
	})
}

// updateTagHandler renames a tag
func (s *Server) updateTagHandler(w http.ResponseWriter, r *http.Request) {
	var req tagRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	tag, err := s.tagRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	tag.Name = req.Name
	tag.UpdatedAt = models.GetCurrentTime()

	if err := s.tagRepo.Update(r.Context(), tag); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    tag,
	})
}

// deleteTagHandler soft deletes a tag
func (s *Server) deleteTagHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.tagRepo.Deactivate(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

type discountRequest struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Value      decimal.Decimal `json:"value"`
	IsGeneric  bool            `json:"is_generic"`
	StartsAt   *string         `json:"starts_at,omitempty"`
	EndsAt     *string         `json:"ends_at,omitempty"`
	ProductIDs []string        `json:"product_ids,omitempty"`
}

// createDiscountHandler adds a discount
func (s *Server) createDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var req discountRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	discountType := models.DiscountType(req.Type)

	if !discountType.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "type must be percentage or fixed")
		return
	}

	if req.Value.IsNegative() {
		s.respondWithError(w, http.StatusBadRequest, "value must not be negative")
		return
	}

	discount := models.NewDiscount(req.Name, discountType, req.Value, req.IsGeneric)
	discount.ProductIDs = req.ProductIDs

	startsAt, endsAt, err := parseDiscountWindow(req.StartsAt, req.EndsAt)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	discount.StartsAt = startsAt
	discount.EndsAt = endsAt

	if err := s.discountRepo.Create(r.Context(), discount); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    discount,
	})
}

// getDiscountsHandler lists discounts
func (s *Server) getDiscountsHandler(w http.ResponseWriter, r *http.Request) {
	discounts, err := s.discountRepo.GetAll(r.Context())

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	if discounts == nil {
		discounts = []*models.Discount{}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    discounts,
	})
}

// getDiscountByIDHandler returns a discount by ID
func (s *Server) getDiscountByIDHandler(w http.ResponseWriter, r *http.Request) {
	discount, err := s.discountRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    discount,
	})
}

// updateDiscountHandler replaces the mutable fields of a discount
func (s *Server) updateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var req discountRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	discountType := models.DiscountType(req.Type)

	if !discountType.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "type must be percentage or fixed")
		return
	}

	discount, err := s.discountRepo.GetByID(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	startsAt, endsAt, err := parseDiscountWindow(req.StartsAt, req.EndsAt)

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	discount.Name = req.Name
	discount.Type = discountType
	discount.Value = req.Value
	discount.IsGeneric = req.IsGeneric
	discount.StartsAt = startsAt
	discount.EndsAt = endsAt
	discount.ProductIDs = req.ProductIDs
	discount.UpdatedAt = models.GetCurrentTime()

	if err := s.discountRepo.Update(r.Context(), discount); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    discount,
	})
}

func parseDiscountWindow(startsAt, endsAt *string) (*time.Time, *time.Time, error) {
	parse := func(field string, v *string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}

		t, err := time.Parse(time.RFC3339, *v)

		if err != nil {
			return nil, fmt.Errorf("%s must be RFC 3339", field)
		}

		return &t, nil
	}

	start, err := parse("starts_at", startsAt)

	if err != nil {
		return nil, nil, err
	}

	end, err := parse("ends_at", endsAt)

	if err != nil {
		return nil, nil, err
	}

	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("ends_at must not precede starts_at")
	}

	return start, end, nil
}

// deleteDiscountHandler removes a discount; order snapshots are not
// affected
func (s *Server) deleteDiscountHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.discountRepo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
	})
}

package handlers

import (
	"net/http"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
)

// CatalogHandler serves the service, supply and category endpoints.
type CatalogHandler struct {
	catalog *repository.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListServices returns the clinic's service catalog.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	items, err := h.catalog.ListServices(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, items, len(items))
}

// GetService returns one service.
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	service, err := h.catalog.GetService(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, service)
}

// CreateService adds a service to the catalog.
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.ServiceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	service := &models.Service{ClinicID: membership.ClinicID, IsActive: true}
	if err := applyServiceRequest(service, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.catalog.CreateService(r.Context(), service); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, service)
}

// UpdateService edits a service. Price changes only affect future
// treatments.
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.ServiceRequest
	if !decodeValid(w, r, &req) {
		return
	}

	service, err := h.catalog.GetService(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := applyServiceRequest(service, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.catalog.UpdateService(r.Context(), service); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, service)
}

// DeleteService soft-deletes a service.
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.catalog.DeleteService(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSupplies returns the clinic's supplies.
func (h *CatalogHandler) ListSupplies(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	items, err := h.catalog.ListSupplies(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, items, len(items))
}

// CreateSupply adds a supply.
func (h *CatalogHandler) CreateSupply(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.SupplyRequest
	if !decodeValid(w, r, &req) {
		return
	}

	supply := &models.Supply{ClinicID: membership.ClinicID, IsActive: true}
	applySupplyRequest(supply, req)

	if err := h.catalog.CreateSupply(r.Context(), supply); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, supply)
}

// UpdateSupply edits a supply.
func (h *CatalogHandler) UpdateSupply(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.SupplyRequest
	if !decodeValid(w, r, &req) {
		return
	}

	supply, err := h.catalog.GetSupply(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	applySupplyRequest(supply, req)

	if err := h.catalog.UpdateSupply(r.Context(), supply); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, supply)
}

// DeleteSupply soft-deletes a supply.
func (h *CatalogHandler) DeleteSupply(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.catalog.DeleteSupply(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories returns categories, optionally filtered by kind
// (service or expense).
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	items, err := h.catalog.ListCategories(r.Context(), membership.ClinicID, r.URL.Query().Get("kind"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, items, len(items))
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Kind  string `json:"kind" validate:"required,oneof=service expense"`
	Color string `json:"color,omitempty" validate:"omitempty,max=20"`
}

// CreateCategory adds a category.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	category := &models.Category{
		ClinicID: membership.ClinicID,
		Name:     req.Name,
		Kind:     req.Kind,
		Color:    req.Color,
	}
	if err := h.catalog.CreateCategory(r.Context(), category); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, category)
}

// DeleteCategory removes a category.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyServiceRequest(service *models.Service, req models.ServiceRequest) error {
	service.Name = req.Name
	service.Description = req.Description
	service.PriceCents = req.PriceCents
	service.VariableCostCents = req.VariableCostCents
	if req.DurationMinutes > 0 {
		service.DurationMinutes = req.DurationMinutes
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return err
	}
	service.CategoryID = categoryID
	return nil
}

func applySupplyRequest(supply *models.Supply, req models.SupplyRequest) {
	supply.Name = req.Name
	supply.Category = req.Category
	supply.UnitCostCents = req.UnitCostCents
	supply.StockQuantity = req.StockQuantity
	supply.ReorderPoint = req.ReorderPoint
}

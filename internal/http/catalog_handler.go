package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type supplierRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type catalogHandler struct {
	categorySvc service.CategoryService
	supplierSvc service.SupplierService
}

func newCatalogHandler(categorySvc service.CategoryService, supplierSvc service.SupplierService) *catalogHandler {
	return &catalogHandler{
		categorySvc: categorySvc,
		supplierSvc: supplierSvc,
	}
}

func (h *catalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) error {
	categories, err := h.categorySvc.ListCategories(r.Context())
	if err != nil {
		return fmt.Errorf("category service list categories: %w", err)
	}

	return writeJSON(w, http.StatusOK, categories)
}

func (h *catalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) error {
	var body categoryRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	category, err := h.categorySvc.CreateCategory(r.Context(), service.CategoryParams(body))
	if err != nil {
		return fmt.Errorf("category service create category: %w", err)
	}

	return writeJSON(w, http.StatusCreated, category)
}

func (h *catalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var body categoryRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	category, err := h.categorySvc.UpdateCategory(r.Context(), id, service.CategoryParams(body))
	if err != nil {
		return fmt.Errorf("category service update category: %w", err)
	}

	return writeJSON(w, http.StatusOK, category)
}

func (h *catalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.categorySvc.DeleteCategory(r.Context(), id); err != nil {
		return fmt.Errorf("category service delete category: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}

func (h *catalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) error {
	suppliers, err := h.supplierSvc.ListSuppliers(r.Context())
	if err != nil {
		return fmt.Errorf("supplier service list suppliers: %w", err)
	}

	return writeJSON(w, http.StatusOK, suppliers)
}

func (h *catalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) error {
	var body supplierRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	supplier, err := h.supplierSvc.CreateSupplier(r.Context(), service.SupplierParams(body))
	if err != nil {
		return fmt.Errorf("supplier service create supplier: %w", err)
	}

	return writeJSON(w, http.StatusCreated, supplier)
}

func (h *catalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var body supplierRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	supplier, err := h.supplierSvc.UpdateSupplier(r.Context(), id, service.SupplierParams(body))
	if err != nil {
		return fmt.Errorf("supplier service update supplier: %w", err)
	}

	return writeJSON(w, http.StatusOK, supplier)
}

func (h *catalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.supplierSvc.DeleteSupplier(r.Context(), id); err != nil {
		return fmt.Errorf("supplier service delete supplier: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Supplier deleted successfully"})
}

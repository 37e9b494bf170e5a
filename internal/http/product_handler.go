package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/model"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/ptr"
)

type productRequest struct {
	Sku         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	SupplierID  *uuid.UUID      `json:"supplier_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	ImageURL    *string         `json:"image_url"`
}

// productUpdateRequest keeps the numeric fields as pointers so an omitted
// stock reaches validation as missing instead of as zero.
type productUpdateRequest struct {
	Sku         string           `json:"sku"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	SupplierID  *uuid.UUID       `json:"supplier_id"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	MinStock    *int             `json:"min_stock"`
	ImageURL    *string          `json:"image_url"`
	Notes       string           `json:"notes"`
}

type productHandler struct {
	productSvc service.ProductService
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	var (
		search     *string
		categoryID *uuid.UUID
		supplierID *uuid.UUID
		lowStock   *bool
	)
	if err := bindQuery(r, "search", &search); err != nil {
		return err
	}
	if err := bindQuery(r, "category_id", &categoryID); err != nil {
		return err
	}
	if err := bindQuery(r, "supplier_id", &supplierID); err != nil {
		return err
	}
	if err := bindQuery(r, "low_stock", &lowStock); err != nil {
		return err
	}

	products, err := h.productSvc.ListProducts(r.Context(), model.ProductFilter{
		Search:       ptr.Value(search),
		CategoryID:   categoryID,
		SupplierID:   supplierID,
		LowStockOnly: ptr.Value(lowStock),
	})
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	return writeJSON(w, http.StatusOK, products)
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		return fmt.Errorf("product service get product: %w", err)
	}

	return writeJSON(w, http.StatusOK, product)
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var body productRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Sku:         body.Sku,
		Name:        body.Name,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		SupplierID:  body.SupplierID,
		Price:       body.Price,
		Stock:       body.Stock,
		MinStock:    body.MinStock,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	return writeJSON(w, http.StatusCreated, product)
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var body productUpdateRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Sku:         body.Sku,
		Name:        body.Name,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		SupplierID:  body.SupplierID,
		Price:       body.Price,
		Stock:       body.Stock,
		MinStock:    body.MinStock,
		ImageURL:    body.ImageURL,
		Notes:       body.Notes,
	})
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return writeJSON(w, http.StatusOK, product)
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

func (h *productHandler) ListProductMovements(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var limit *int
	if err := bindQuery(r, "limit", &limit); err != nil {
		return err
	}

	movements, err := h.productSvc.ListProductMovements(r.Context(), id, ptr.Value(limit))
	if err != nil {
		return fmt.Errorf("product service list product movements: %w", err)
	}

	return writeJSON(w, http.StatusOK, movements)
}

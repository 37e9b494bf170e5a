package apperr

import "github.com/tuanvumaihuynh/inventory-backoffice/pkg/zerror"

const (
	ValidationErrorCode    = "VALIDATION_FAILED"
	ProductNotFoundCode    = "PRODUCT_NOT_FOUND"
	CategoryNotFoundCode   = "CATEGORY_NOT_FOUND"
	SupplierNotFoundCode   = "SUPPLIER_NOT_FOUND"
	DuplicateSKUCode       = "DUPLICATE_SKU"
	DuplicateCategoryCode  = "DUPLICATE_CATEGORY_NAME"
	DuplicateSupplierCode  = "DUPLICATE_SUPPLIER_NAME"
	DanglingReferenceCode  = "DANGLING_REFERENCE"
	StorageUnavailableCode = "STORAGE_UNAVAILABLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr  = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	CategoryNotFoundErr = zerror.NewNotFound(CategoryNotFoundCode, "category not found")
	SupplierNotFoundErr = zerror.NewNotFound(SupplierNotFoundCode, "supplier not found")

	DuplicateSKUErr      = zerror.NewBadRequest(DuplicateSKUCode, "product with this SKU already exists")
	DuplicateCategoryErr = zerror.NewBadRequest(DuplicateCategoryCode, "category with this name already exists")
	DuplicateSupplierErr = zerror.NewBadRequest(DuplicateSupplierCode, "supplier with this name already exists")

	DanglingReferenceErr = zerror.NewBadRequest(DanglingReferenceCode, "referenced record does not exist")

	StorageUnavailableErr = zerror.NewInternalServerError(StorageUnavailableCode, "storage is unavailable")
)

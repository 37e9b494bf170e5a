package swagger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/inventory-backoffice/api-contract"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/http/swagger"
)

func TestRegister(t *testing.T) {
	contract, err := apicontract.Load(context.Background())
	require.NoError(t, err)

	r := chi.NewRouter()
	require.NoError(t, swagger.Register(r, contract))

	get := func(path string) *httptest.ResponseRecorder {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		return resp
	}

	t.Run("Should render the UI with the contract title", func(t *testing.T) {
		resp := get("/docs")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<title>"+contract.Info.Title+"</title>")
		assert.Contains(t, resp.Body.String(), "/docs/openapi.json")
	})

	t.Run("Should serve the authored YAML", func(t *testing.T) {
		resp := get("/docs/openapi.yml")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
		assert.Equal(t, apicontract.GetSpecBytes(), resp.Body.Bytes())
	})

	t.Run("Should serve the contract as JSON", func(t *testing.T) {
		resp := get("/docs/openapi.json")
		require.Equal(t, http.StatusOK, resp.Code)

		var doc struct {
			Paths map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
		assert.Contains(t, doc.Paths, "/api/stats")
		assert.Contains(t, doc.Paths, "/api/products/{id}")
	})
}

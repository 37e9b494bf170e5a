package swagger

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/inventory-backoffice/api-contract"
)

const (
	docsPath     = "/docs"
	specYAMLPath = "/docs/openapi.yml"
	specJSONPath = "/docs/openapi.json"

	swaggerUIVersion = "5.29.3"
)

// Register mounts Swagger UI and the API contract it renders. The contract is
// served as authored (YAML) and as the JSON encoding of the validated document.
func Register(r chi.Router, contract *openapi3.T) error {
	specJSON, err := contract.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal api contract: %w", err)
	}
	page := []byte(renderPage(contract.Info.Title, specJSONPath))

	r.Get(docsPath, serveBytes("text/html; charset=utf-8", page))
	r.Get(specYAMLPath, serveBytes("application/yaml", apicontract.GetSpecBytes()))
	r.Get(specJSONPath, serveBytes("application/json", specJSON))

	return nil
}

func serveBytes(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}

func renderPage(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@%[3]s/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@%[3]s/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[2]s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
    });
  };
</script>
</body>
</html>
`, title, specURL, swaggerUIVersion)
}

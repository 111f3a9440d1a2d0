package router

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/kube-openapi/pkg/spec3"
	"k8s.io/kube-openapi/pkg/validation/spec"
)

const healthSchemaRef = "#/components/schemas/HealthResponse"

// openAPIDocument renders the OpenAPI 3 document once at router build time.
func openAPIDocument(version string) []byte {
	doc := &spec3.OpenAPI{
		Version: "3.0.3",
		Info: &spec.Info{InfoProps: spec.InfoProps{
			Title:       "OTA Server",
			Description: "Firmware distribution for over-the-air updates.",
			Version:     version,
		}},
		Paths: &spec3.Paths{Paths: map[string]*spec3.Path{
			PathHealth: {PathProps: spec3.PathProps{Get: &spec3.Operation{OperationProps: spec3.OperationProps{
				OperationId: "health",
				Tags:        []string{"health"},
				Summary:     "Service health",
				Responses: responses(map[int]*spec3.Response{
					http.StatusOK: jsonResponse("Service is healthy", spec.RefSchema(healthSchemaRef)),
				}),
			}}}},
			PathFirmware: {PathProps: spec3.PathProps{Get: &spec3.Operation{OperationProps: spec3.OperationProps{
				OperationId: "downloadFirmware",
				Tags:        []string{"firmware"},
				Summary:     "Download the current firmware image",
				Responses: responses(map[int]*spec3.Response{
					http.StatusOK: {ResponseProps: spec3.ResponseProps{
						Description: "Firmware image",
						Content: map[string]*spec3.MediaType{
							"application/octet-stream": {MediaTypeProps: spec3.MediaTypeProps{
								Schema: &spec.Schema{SchemaProps: spec.SchemaProps{Type: []string{"string"}, Format: "binary"}},
							}},
						},
					}},
					http.StatusInternalServerError: jsonResponse("Firmware unavailable", errorSchema()),
				}),
			}}}},
		}},
		Components: &spec3.Components{Schemas: map[string]*spec.Schema{
			"HealthResponse": {SchemaProps: spec.SchemaProps{
				Type:     []string{"object"},
				Required: []string{"status", "version"},
				Properties: map[string]spec.Schema{
					"status":  *spec.StringProperty(),
					"version": *spec.StringProperty(),
				},
			}},
		}},
	}
	out, err := json.Marshal(doc)
	if err != nil {
		panic("router: marshal openapi document: " + err.Error())
	}
	return out
}

func responses(byStatus map[int]*spec3.Response) *spec3.Responses {
	return &spec3.Responses{ResponsesProps: spec3.ResponsesProps{StatusCodeResponses: byStatus}}
}

func jsonResponse(description string, schema *spec.Schema) *spec3.Response {
	return &spec3.Response{ResponseProps: spec3.ResponseProps{
		Description: description,
		Content: map[string]*spec3.MediaType{
			"application/json": {MediaTypeProps: spec3.MediaTypeProps{Schema: schema}},
		},
	}}
}

func errorSchema() *spec.Schema {
	return &spec.Schema{SchemaProps: spec.SchemaProps{
		Type:       []string{"object"},
		Properties: map[string]spec.Schema{"error": *spec.StringProperty()},
	}}
}

func (h *handlers) openAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", h.doc)
}

const swaggerUI = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>OTA Server API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "` + PathOpenAPI + `", dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

func (h *handlers) docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerUI))
}

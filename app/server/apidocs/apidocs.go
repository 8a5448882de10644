package apidocs

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"path"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Load parses and validates the embedded OpenAPI document.
func Load(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

type Opts func(*config)

// configures the Doc middlewares
type config struct {
	// SpecURL the url to find the spec for
	SpecURL string
	// ServerURL replaces the servers list of the document when set.
	ServerURL string
}

func WithServerURL(url string) Opts {
	return func(c *config) {
		c.ServerURL = url
	}
}

func prepare(basePath string, cfg *config, doc *openapi3.T) (string, string, []byte, error) {
	docPath := path.Join(basePath, "ui")

	// html
	tmpl := template.Must(template.New("apidoc").Parse(pageTemplate))
	buf := bytes.NewBuffer(nil)
	if err := tmpl.Execute(buf, cfg); err != nil {
		return "", "", nil, err
	}
	uiHTML := buf.String()

	// json
	if cfg.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: cfg.ServerURL}}
	}
	responseJSON, err := doc.MarshalJSON()
	if err != nil {
		return "", "", nil, err
	}

	return docPath, uiHTML, responseJSON, nil
}

// Doc creates a middleware serving a documentation site for doc under basePath.
func Doc(basePath string, doc *openapi3.T, opts ...Opts) (echo.MiddlewareFunc, error) {
	cfg := &config{
		SpecURL: path.Join(basePath, "openapi.json"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	docPath, uiHTML, responseJSON, err := prepare(basePath, cfg, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare api docs: %w", err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			switch reqPath {
			case basePath, docPath, cfg.SpecURL:
			default:
				return next(c)
			}

			switch reqPath {
			case docPath:
				return c.HTML(http.StatusOK, uiHTML)
			case cfg.SpecURL:
				return c.JSONBlob(http.StatusOK, responseJSON)
			default:
				return c.Redirect(http.StatusFound, docPath)
			}
		}
	}, nil
}

const pageTemplate = `
<!DOCTYPE html>
<html lang="en">
  <head>
    <title>API documentation</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>

  <body>
    <script id="api-reference" data-url="{{ .SpecURL }}"></script>

    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`

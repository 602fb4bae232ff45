// Package docs sirve la documentación OpenAPI del API.
package docs

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

// ErrNilRouter se retorna al registrar sobre un router nulo
var ErrNilRouter = errors.New("docs: router nulo")

// OpenAPI contiene la especificación embebida
//
//go:embed openapi.yaml
var OpenAPI []byte

// JSON convierte la especificación embebida a JSON
func JSON() ([]byte, error) {
	var spec map[string]any
	if err := yaml.Unmarshal(OpenAPI, &spec); err != nil {
		return nil, fmt.Errorf("openapi.yaml inválido: %w", err)
	}
	return json.Marshal(spec)
}

// Register agrega las rutas de documentación:
//
//	GET /api-docs               -> ReDoc
//	GET /api-docs/openapi.yaml  -> especificación embebida
//	GET /api-docs/openapi.json  -> la misma especificación en JSON
func Register(r fiber.Router) error {
	if r == nil {
		return ErrNilRouter
	}
	specJSON, err := JSON()
	if err != nil {
		return err
	}

	r.Get("/api-docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(indexHTML)
	})
	r.Get("/api-docs/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml; charset=utf-8")
		return c.Send(OpenAPI)
	})
	r.Get("/api-docs/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(specJSON)
	})
	return nil
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>DICRI Evidence API - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/api-docs/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`

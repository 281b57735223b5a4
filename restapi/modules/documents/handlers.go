// Package documents implements the REST API handlers for SBOM document
// upload, listing, retrieval and export.
package documents

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/enrich"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/internal/store"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
	"github.com/surajkum4r/CERT-In-SBOM-Mapper/util"
)

// Upload accepts a CycloneDX JSON SBOM, enriches every component with the
// compliance properties and stores the resulting document.
func Upload(docs *store.DocumentStore, resolver *enrich.DocumentResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, fileName, err := readUpload(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		bom, err := model.DecodeBOM(bytes.NewReader(body))
		if err != nil {
			msg := util.DescribeError(err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  msg.Title,
				"detail": msg.Message,
				"action": msg.Action,
			})
		}

		enriched, err := resolver.ResolveDocument(c.Context(), bom)
		if err != nil {
			msg := util.DescribeError(err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  msg.Title,
				"detail": msg.Message,
				"action": msg.Action,
			})
		}
		bom.Components = &enriched

		doc := docs.Add(&model.Document{
			FileName:   fileName,
			UploadedAt: time.Now().UTC(),
			BOM:        bom,
		})

		// The enriched document goes straight back to the caller.
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// readUpload supports both multipart form uploads and raw JSON bodies.
func readUpload(c *fiber.Ctx) ([]byte, string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open uploaded file: %w", err)
		}
		defer f.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(f); err != nil {
			return nil, "", fmt.Errorf("failed to read uploaded file: %w", err)
		}
		return buf.Bytes(), file.Filename, nil
	}

	if len(c.Body()) == 0 {
		return nil, "", fmt.Errorf("request body is empty; upload an SBOM as multipart 'file' or raw JSON")
	}
	return c.Body(), "sbom.json", nil
}

// List returns document summaries, newest first.
func List(docs *store.DocumentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all := docs.List()
		out := make([]fiber.Map, 0, len(all))
		for _, doc := range all {
			out = append(out, fiber.Map{
				"id":         doc.ID,
				"fileName":   doc.FileName,
				"uploadedAt": doc.UploadedAt,
				"components": len(model.Components(doc.BOM)),
			})
		}
		return c.JSON(fiber.Map{"documents": out})
	}
}

// Get returns the full enriched document.
func Get(docs *store.DocumentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docs.Get(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(doc)
	}
}

// Export renders the enriched document as JSON or as a CSV table with one
// row per component and one column per compliance property.
func Export(docs *store.DocumentStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docs.Get(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		switch c.Query("format", "json") {
		case "json":
			buf := new(bytes.Buffer)
			if err := model.EncodeBOM(buf, doc.BOM); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.enriched.json", doc.ID))
			return c.Send(buf.Bytes())
		case "csv":
			data, err := renderCSV(doc)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
			c.Set(fiber.HeaderContentType, "text/csv")
			c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.enriched.csv", doc.ID))
			return c.Send(data)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported format; use json or csv"})
		}
	}
}

func renderCSV(doc *model.Document) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	header := append([]string{"component", "version"}, model.PropertyNames...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, comp := range model.Components(doc.BOM) {
		row := make([]string, 0, len(header))
		row = append(row, comp.Name, comp.Version)

		props := map[string]string{}
		if comp.Properties != nil {
			for _, p := range *comp.Properties {
				props[p.Name] = p.Value
			}
		}
		for _, name := range model.PropertyNames {
			row = append(row, props[name])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

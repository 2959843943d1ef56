// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shopping

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/phpdave11/gofpdf"

	"foodgram/internal/models"
)

// PDFFilename is the attachment name of the PDF export.
const PDFFilename = "shopping_list.pdf"

const pdfFontFamily = "ListFont"

// PDFRenderer lays the shopping list out on A4 pages. With a TrueType font
// configured, Cyrillic renders as-is; the built-in Helvetica fallback only
// covers cp1252 and loses other characters.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer returns a renderer using the TrueType font at fontPath, or
// the built-in Helvetica when fontPath is empty.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	if fontPath == "" {
		slog.Warn("no SHOPPING_PDF_FONT configured, PDF export falls back to Helvetica")
	}
	return &PDFRenderer{fontPath: fontPath}
}

// Render produces the PDF document for list.
func (p *PDFRenderer) Render(list *models.ShoppingList) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Shopping list", true)

	family, translate := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if p.fontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", p.fontPath)
		pdf.AddUTF8Font(pdfFontFamily, "B", p.fontPath)
		family, translate = pdfFontFamily, func(s string) string { return s }
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}

	pdf.AddPage()
	lines := Lines(list)

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, translate(lines[0]), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "B", 13)
	pdf.CellFormat(0, 8, translate(headingProducts), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 12)
	for i, item := range list.Items {
		pdf.CellFormat(0, 7, translate(ItemLine(i+1, item)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(family, "B", 13)
	pdf.CellFormat(0, 8, translate(headingRecipes), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 12)
	for _, name := range list.RecipeNames {
		pdf.MultiCell(0, 7, translate(name), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

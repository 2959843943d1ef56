// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package shopping

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"foodgram/internal/models"
)

// Text export headings.
const (
	headingTitle    = "Список покупок на дату: "
	headingProducts = "Продукты:"
	headingRecipes  = "Для приготовления следующих рецептов:"
	dateLayout      = "02-01-2006"
)

// TextFilename is the attachment name of the plain-text export.
const TextFilename = "shopping_list.txt"

// Capitalize upper-cases the first letter of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// ItemLine formats one numbered product line.
func ItemLine(n int, item models.ShoppingItem) string {
	return fmt.Sprintf("%d. %s (%s) — %d", n, Capitalize(item.Name), item.MeasurementUnit, item.TotalAmount)
}

// Lines returns the export line by line: title, products, recipe names.
func Lines(list *models.ShoppingList) []string {
	lines := make([]string, 0, len(list.Items)+len(list.RecipeNames)+3)
	lines = append(lines, headingTitle+list.Date.Format(dateLayout), headingProducts)
	for i, item := range list.Items {
		lines = append(lines, ItemLine(i+1, item))
	}
	lines = append(lines, headingRecipes)
	lines = append(lines, list.RecipeNames...)
	return lines
}

// RenderText renders the list as newline-separated plain text.
func RenderText(list *models.ShoppingList) string {
	return strings.Join(Lines(list), "\n")
}

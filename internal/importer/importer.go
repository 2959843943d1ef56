// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer loads reference data (ingredients and tags) from JSON,
// YAML or CSV files into the store. Existing rows are left untouched.
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"foodgram/internal/models"
	"foodgram/internal/slug"
)

// Format is an import file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for files whose extension is not recognised.
var ErrUnknownFormat = errors.New("unknown import format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// IngredientSink stores ingredients, skipping existing (name, unit) pairs.
type IngredientSink interface {
	Import(ctx context.Context, items []models.Ingredient) (int, error)
}

// TagSink stores tags, skipping existing slugs.
type TagSink interface {
	Import(ctx context.Context, tags []models.Tag) (int, error)
}

// Result summarises one import run.
type Result struct {
	Read     int
	Inserted int
}

// Importer reads reference files and hands them to the store.
type Importer struct {
	ingredients IngredientSink
	tags        TagSink
}

// New returns an Importer over the given sinks.
func New(ingredients IngredientSink, tags TagSink) *Importer {
	return &Importer{ingredients: ingredients, tags: tags}
}

// ImportIngredients loads the ingredient file at path.
func (im *Importer) ImportIngredients(ctx context.Context, path string) (Result, error) {
	items, err := readFile(path, ReadIngredients)
	if err != nil {
		return Result{}, err
	}
	n, err := im.ingredients.Import(ctx, items)
	if err != nil {
		return Result{}, fmt.Errorf("store ingredients: %w", err)
	}
	slog.Info("ingredients imported", "file", path, "read", len(items), "inserted", n)
	return Result{Read: len(items), Inserted: n}, nil
}

// ImportTags loads the tag file at path.
func (im *Importer) ImportTags(ctx context.Context, path string) (Result, error) {
	tags, err := readFile(path, ReadTags)
	if err != nil {
		return Result{}, err
	}
	n, err := im.tags.Import(ctx, tags)
	if err != nil {
		return Result{}, fmt.Errorf("store tags: %w", err)
	}
	slog.Info("tags imported", "file", path, "read", len(tags), "inserted", n)
	return Result{Read: len(tags), Inserted: n}, nil
}

func readFile[T any](path string, read func(io.Reader, Format) ([]T, error)) ([]T, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	items, err := read(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// ReadIngredients decodes, validates and de-duplicates ingredients. CSV
// rows are "name,measurement_unit" with an optional header row.
func ReadIngredients(r io.Reader, format Format) ([]models.Ingredient, error) {
	var items []models.Ingredient
	var err error
	if format == FormatCSV {
		items, err = readCSV(r, []string{"name", "measurement_unit"}, func(row []string) models.Ingredient {
			return models.Ingredient{Name: row[0], MeasurementUnit: row[1]}
		})
	} else {
		err = decode(r, format, &items)
	}
	if err != nil {
		return nil, err
	}

	type key struct{ name, unit string }
	seen := make(map[key]bool, len(items))
	out := items[:0]
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		it.MeasurementUnit = strings.TrimSpace(it.MeasurementUnit)
		if err := checkLen(i, "name", it.Name, models.MaxIngredientNameLen); err != nil {
			return nil, err
		}
		if err := checkLen(i, "measurement_unit", it.MeasurementUnit, models.MaxUnitLen); err != nil {
			return nil, err
		}
		k := key{it.Name, it.MeasurementUnit}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out, nil
}

// ReadTags decodes, validates and de-duplicates tags. A missing slug is
// generated from the name. CSV rows are "name[,slug]".
func ReadTags(r io.Reader, format Format) ([]models.Tag, error) {
	var tags []models.Tag
	var err error
	if format == FormatCSV {
		tags, err = readCSV(r, []string{"name", "slug"}, func(row []string) models.Tag {
			t := models.Tag{Name: row[0]}
			if len(row) > 1 {
				t.Slug = row[1]
			}
			return t
		})
	} else {
		err = decode(r, format, &tags)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for i, t := range tags {
		t.Name = strings.TrimSpace(t.Name)
		t.Slug = strings.TrimSpace(t.Slug)
		if t.Slug == "" {
			t.Slug = slug.Truncate(slug.Generate(t.Name), models.MaxTagLen)
		}
		if err := checkLen(i, "name", t.Name, models.MaxTagLen); err != nil {
			return nil, err
		}
		if err := checkLen(i, "slug", t.Slug, models.MaxTagLen); err != nil {
			return nil, err
		}
		if seen[t.Slug] {
			continue
		}
		seen[t.Slug] = true
		out = append(out, t)
	}
	return out, nil
}

func decode(r io.Reader, format Format, dst any) error {
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(dst); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// readCSV parses rows of at least one column, skipping a first row equal
// to header. Short rows are padded so mapRow can index every column.
func readCSV[T any](r io.Reader, header []string, mapRow func([]string) T) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []T
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode csv: %w", err)
		}
		if line == 1 && isHeader(row, header) {
			continue
		}
		if len(row) == 0 || len(row) > len(header) {
			return nil, fmt.Errorf("line %d: want up to %d columns, got %d", line, len(header), len(row))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		out = append(out, mapRow(row))
	}
}

func isHeader(row, header []string) bool {
	if len(row) == 0 || len(row) > len(header) {
		return false
	}
	for i, col := range row {
		if !strings.EqualFold(strings.TrimSpace(col), header[i]) {
			return false
		}
	}
	return true
}

func checkLen(i int, field, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("record %d: %s is empty", i+1, field)
	}
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("record %d: %s longer than %d characters", i+1, field, limit)
	}
	return nil
}

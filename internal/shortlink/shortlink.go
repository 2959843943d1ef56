// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package shortlink issues and resolves short codes for recipes. Codes are
// random, stored one-to-one with the recipe, and never derived from ids.
package shortlink

import (
	"context"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/skip2/go-qrcode"

	"foodgram/internal/apperr"
	"foodgram/internal/models"
	"foodgram/internal/store"
)

// Code shape.
const (
	Alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	CodeLength = 6
)

// maxCodeAttempts bounds regeneration after short_code collisions.
const maxCodeAttempts = 10

// qrSize is the edge length of the generated QR PNG in pixels.
const qrSize = 256

// ErrAttemptsExhausted is the cause recorded when no free code was found.
var ErrAttemptsExhausted = errors.New("short code attempts exhausted")

// Store persists short links.
type Store interface {
	FindByRecipe(ctx context.Context, recipeID int64) (*models.ShortLink, error)
	FindByCode(ctx context.Context, code string) (*models.ShortLink, error)
	Insert(ctx context.Context, recipeID int64, code string) (*models.ShortLink, error)
}

// Generator returns a fresh candidate code.
type Generator func() (string, error)

// NanoID draws CodeLength characters from Alphabet.
func NanoID() (string, error) {
	return gonanoid.Generate(Alphabet, CodeLength)
}

// Codec issues and resolves short codes.
type Codec struct {
	store    Store
	generate Generator
}

// New returns a Codec over st. A nil gen uses NanoID.
func New(st Store, gen Generator) *Codec {
	if gen == nil {
		gen = NanoID
	}
	return &Codec{store: st, generate: gen}
}

// CodeFor returns the recipe's code, creating it on first use. The caller
// must have checked that the recipe exists.
func (c *Codec) CodeFor(ctx context.Context, recipeID int64) (string, error) {
	link, err := c.store.FindByRecipe(ctx, recipeID)
	if err != nil {
		return "", apperr.Internal("load short link", err)
	}
	if link != nil {
		return link.ShortCode, nil
	}

	for range maxCodeAttempts {
		code, err := c.generate()
		if err != nil {
			return "", apperr.Internal("generate short code", err)
		}

		link, err := c.store.Insert(ctx, recipeID, code)
		if err == nil {
			return link.ShortCode, nil
		}

		switch store.ConstraintOf(err) {
		case store.ConstraintShortLinkCode:
			continue
		case store.ConstraintShortLinkRecipe:
			// A concurrent request created the link first.
			existing, err := c.store.FindByRecipe(ctx, recipeID)
			if err != nil {
				return "", apperr.Internal("reload short link", err)
			}
			if existing == nil {
				return "", apperr.Internal("reload short link", fmt.Errorf("recipe %d: link vanished", recipeID))
			}
			return existing.ShortCode, nil
		}
		if errors.Is(err, store.ErrMissingReference) {
			return "", apperr.NotFoundf("recipe %d not found", recipeID)
		}
		return "", apperr.Internal("insert short link", err)
	}
	return "", apperr.Internal("issue short link", ErrAttemptsExhausted)
}

// Resolve returns the recipe id behind code.
func (c *Codec) Resolve(ctx context.Context, code string) (int64, error) {
	if !wellFormed(code) {
		return 0, apperr.NotFound("Короткая ссылка не найдена")
	}
	link, err := c.store.FindByCode(ctx, code)
	if err != nil {
		return 0, apperr.Internal("resolve short link", err)
	}
	if link == nil {
		return 0, apperr.NotFound("Короткая ссылка не найдена")
	}
	return link.RecipeID, nil
}

func wellFormed(code string) bool {
	if code == "" || len(code) > 16 {
		return false
	}
	for _, r := range code {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// URL joins the public base URL and code into the shareable link.
func URL(base, code string) string {
	return base + "/s/" + code + "/"
}

// QR encodes url as a PNG QR code.
func QR(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

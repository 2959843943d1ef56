// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Foodgram API.
// Handlers are grouped by resource (auth, users, reference data, recipes)
// and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodgram/internal/apperr"
	"foodgram/internal/middleware"
)

// Pagination defaults for list endpoints.
const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

const internalErrorDetail = "Внутренняя ошибка сервера."

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to its HTTP status and body. Field errors become
// {"field": ["message"]}, everything else {"detail": "message"}. Internal
// failures are logged with the request id and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Code == apperr.CodeInternal {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromCtx(r.Context()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": internalErrorDetail})
		return
	}

	switch {
	case len(e.Details) > 0:
		body := make(map[string][]string, len(e.Details))
		for field, msg := range e.Details {
			body[field] = []string{msg}
		}
		writeJSON(w, e.HTTPStatus(), body)
	case e.Field != "":
		writeJSON(w, e.HTTPStatus(), map[string][]string{e.Field: {e.Message}})
	default:
		writeJSON(w, e.HTTPStatus(), map[string]string{"detail": e.Message})
	}
}

// fieldError builds a single-field 400 error.
func fieldError(field, msg string) error {
	return apperr.Validation("validation failed", map[string]string{field: msg})
}

// decodeJSON decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fieldError("non_field_errors", "Слишком большой запрос.")
		}
		return fieldError("non_field_errors", fmt.Sprintf("Неверный JSON: %v", err))
	}
	return nil
}

// pathID parses a positive integer route parameter. Anything else is a 404,
// the same answer an unmatched route gives.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("Страница не найдена.")
	}
	return id, nil
}

// pageRequest is a parsed page/limit pair.
type pageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page.
func (p pageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

var errInvalidPage = apperr.NotFound("Неправильная страница")

// parsePage reads ?page= and ?limit=. An unusable limit falls back to the
// default; an unusable page number is a 404.
func parsePage(r *http.Request) (pageRequest, error) {
	q := r.URL.Query()
	p := pageRequest{Page: 1, Limit: defaultPageSize}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = min(n, maxPageSize)
		}
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > math.MaxInt/p.Limit {
			return p, errInvalidPage
		}
		p.Page = n
	}
	return p, nil
}

// page is the paginated list envelope.
type page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// newPage builds the envelope for results, linking neighbours relative to
// base + the request path. A page past the end of a non-empty result set
// is a 404.
func newPage(r *http.Request, base string, p pageRequest, count int, results any) (*page, error) {
	if p.Page > 1 && p.Offset() >= count {
		return nil, errInvalidPage
	}
	out := &page{Count: count, Results: results}
	if p.Offset()+p.Limit < count {
		next := pageURL(r, base, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(r, base, p.Page-1)
		out.Previous = &prev
	}
	return out, nil
}

// pageURL rewrites the request URL to point at page n. Page 1 drops the
// parameter entirely.
func pageURL(r *http.Request, base string, n int) string {
	q := r.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	return base + u.String()
}

// Package response renders the JSON envelope shared by every API endpoint:
//
//	{"success": bool, "message": string, "data": any, "errors": [...], "timestamp": RFC3339}
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Data      any                 `json:"data,omitempty"`
	Errors    []domain.FieldError `json:"errors,omitempty"`
	Timestamp string              `json:"timestamp"`
}

// Pagination describes the position of one page inside a listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	NextPage     *int  `json:"nextPage"`
	PrevPage     *int  `json:"prevPage"`
}

// Page is the data payload of a paginated listing.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

var now = time.Now

func timestamp() string { return now().UTC().Format(time.RFC3339) }

// OK writes a 200 success envelope.
func OK(c echo.Context, message string, data any) error {
	return Success(c, http.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(c echo.Context, message string, data any) error {
	return Success(c, http.StatusCreated, message, data)
}

func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

// Error writes a failure envelope.
func Error(c echo.Context, status int, message string, fields []domain.FieldError) error {
	return c.JSON(status, Envelope{
		Success:   false,
		Message:   message,
		Errors:    fields,
		Timestamp: timestamp(),
	})
}

// Paginated writes a 200 envelope around one page of result.
func Paginated[T any](c echo.Context, message string, result *domain.ListResult[T]) error {
	return OK(c, message, NewPage(result))
}

// NewPage builds the paginated payload for result.
func NewPage[T any](result *domain.ListResult[T]) Page[T] {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Pagination: NewPagination(result.Page, result.Limit, result.Total)}
}

// NewPagination computes the navigation fields for page of limit items out of total.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	p := Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

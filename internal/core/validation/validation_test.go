package validation

import (
	"errors"
	"testing"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type postShape struct {
	Title string   `json:"title" validate:"required,max=10"`
	Tags  []string `json:"tags" validate:"omitempty,max=2,dive,max=3"`
	Color string   `json:"color" validate:"omitempty,hexcolor6"`
	Owner *string  `json:"owner" validate:"omitempty,eq=|mongodb"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("validation error must unwrap to ErrValidation")
	}
	out := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestStruct_NamesFieldsByJSONTag(t *testing.T) {
	err := Struct(postShape{Title: ""})
	fields := fieldsOf(t, err)
	if fields["title"] != "title is required" {
		t.Fatalf("unexpected title message: %q (all: %v)", fields["title"], fields)
	}
}

func TestStruct_CollectsEveryFieldError(t *testing.T) {
	err := Struct(postShape{Title: "far too long title", Tags: []string{"ok", "toolong"}, Color: "red"})
	fields := fieldsOf(t, err)

	for _, want := range []string{"title", "tags[1]", "color"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("expected an error for %s, got %v", want, fields)
		}
	}
	if fields["title"] != "title cannot exceed 10 characters" {
		t.Errorf("unexpected title message: %q", fields["title"])
	}
}

func TestStruct_OptionalIDAcceptsEmptyPointer(t *testing.T) {
	empty := ""
	if err := Struct(postShape{Title: "ok", Owner: &empty}); err != nil {
		t.Fatalf("empty id should clear, got %v", err)
	}
	bad := "nope"
	fields := fieldsOf(t, Struct(postShape{Title: "ok", Owner: &bad}))
	if _, ok := fields["owner"]; !ok {
		t.Fatalf("expected owner error, got %v", fields)
	}
}

func TestStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Admin123!": true,
		"abc12":     false,
		"abcdefgh":  false,
		"12345678":  false,
		"pass1234":  true,
	}
	for in, want := range cases {
		if got := StrongPassword(in); got != want {
			t.Errorf("StrongPassword(%q) = %v, want %v", in, got, want)
		}
	}
}

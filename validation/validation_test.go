package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/endpointkit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "John")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRange(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 65535, false},
		{"below", -1, true},
		{"above", 65536, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Range("port", tc.value, 0, 65535)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("Range(%d) errors=%v, want %v", tc.value, v.Errors(), tc.wantErr)
			}
		})
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New().OneOf("level", "info", []string{"debug", "info"})
	if v.HasErrors() {
		t.Error("expected info to be allowed")
	}
	v = New().OneOf("level", "loud", []string{"debug", "info"})
	if !v.HasErrors() {
		t.Fatal("expected error for disallowed value")
	}
	if !strings.Contains(v.Errors()[0].Message, "loud") {
		t.Errorf("message should echo the bad value, got %q", v.Errors()[0].Message)
	}
}

func TestValidatorValidateAndChaining(t *testing.T) {
	v := New().
		Required("name", "").
		Min("timeout", -1, 0).
		Custom(false, "root", "must start with /")

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, field := range []string{"name", "timeout", "root"} {
		if !strings.Contains(appErr.Message, field) {
			t.Errorf("expected message to mention %q, got %q", field, appErr.Message)
		}
	}
	if New().Err() != nil {
		t.Error("empty validator should report nil error")
	}
}

func TestStructValid(t *testing.T) {
	type Route struct {
		Name string `yaml:"name" validate:"required"`
	}
	if err := Struct(Route{Name: "list"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructReportsYAMLFieldNames(t *testing.T) {
	type Route struct {
		RouteName string `yaml:"name" validate:"required"`
	}
	err := Struct(Route{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Message, "name: is required") {
		t.Errorf("expected yaml field name in message, got %q", err.Message)
	}
}

func TestStructUniqueSlice(t *testing.T) {
	type item struct {
		Name string `yaml:"name" validate:"required"`
	}
	type shape struct {
		Items []item `yaml:"items" validate:"unique=Name,dive"`
	}

	if err := Struct(shape{Items: []item{{"a"}, {"b"}}}); err != nil {
		t.Errorf("expected unique items to pass, got %v", err)
	}

	err := Struct(shape{Items: []item{{"a"}, {"a"}}})
	if err == nil {
		t.Fatal("expected duplicate names to fail")
	}
	if !strings.Contains(err.Message, "unique") {
		t.Errorf("expected uniqueness message, got %q", err.Message)
	}
}

package db

import (
	"strings"
	"testing"
)

func validDefinition() *IndexDefinition {
	return &IndexDefinition{
		Name:     "collegerag:nit-hamirpur:idx",
		Prefixes: []string{"collegerag:nit-hamirpur:doc:"},
		Fields: []IndexField{
			{Name: "college", Type: IndexFieldTag},
			{Name: "__vector", Type: IndexFieldVector, VectorDim: 384},
		},
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexDefinition_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*IndexDefinition)
		wantSub string
	}{
		{"empty name", func(d *IndexDefinition) { d.Name = "" }, "name is required"},
		{"bad name", func(d *IndexDefinition) { d.Name = "a b" }, "invalid characters"},
		{"no fields", func(d *IndexDefinition) { d.Fields = nil }, "at least one field"},
		{"empty field name", func(d *IndexDefinition) { d.Fields[0].Name = "" }, "field name is required"},
		{"duplicate field", func(d *IndexDefinition) { d.Fields[1].Name = "college" }, "duplicate"},
		{"vector without dim", func(d *IndexDefinition) { d.Fields[1].VectorDim = 0 }, "positive DIM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(def)
			err := def.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "collegerag:nit-hamirpur:idx", "a_b-c:1"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}

	invalid := []string{"", "a b", "a*b", "idx\n"}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

package transform

import (
	"strings"
	"testing"
)

func TestFormulaSubstitution(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		row     map[string]interface{}
		want    float64
	}{
		{
			name:    "Simple Addition",
			formula: "{a}+{b}",
			row:     map[string]interface{}{"a": 5.0, "b": 3.0},
			want:    8,
		},
		{
			name:    "Missing Field Substitutes Zero",
			formula: "{a}+{b}",
			row:     map[string]interface{}{"a": 5.0},
			want:    5,
		},
		{
			name:    "Non Numeric String Substitutes Zero",
			formula: "{a}*{b}",
			row:     map[string]interface{}{"a": "abc", "b": 7.0},
			want:    0,
		},
		{
			name:    "Numeric String Coerces",
			formula: "{qty}*{price}",
			row:     map[string]interface{}{"qty": "4", "price": "2.5"},
			want:    10,
		},
		{
			name:    "Float Division",
			formula: "{a}/{b}",
			row:     map[string]interface{}{"a": 5, "b": 2},
			want:    2.5,
		},
		{
			name:    "Parentheses",
			formula: "({a}+{b})*{c}",
			row:     map[string]interface{}{"a": 1, "b": 2, "c": 3},
			want:    9,
		},
		{
			name:    "Negative Value",
			formula: "{a}+{b}",
			row:     map[string]interface{}{"a": -2.5, "b": 1.0},
			want:    -1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Execute(nil, TypeFormula, Params{"formula": tt.formula}, Context{Row: tt.row})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			f, ok := got.(float64)
			if !ok {
				t.Fatalf("Execute() returned %T, want float64", got)
			}
			if f != tt.want {
				t.Errorf("Execute() = %v, want %v", f, tt.want)
			}
		})
	}
}

func TestFormulaSafety(t *testing.T) {
	tests := []struct {
		name    string
		formula string
	}{
		{"Letters", "{a}+os"},
		{"Semicolon", "{a}; {b}"},
		{"Function Call", "import(\"os\")"},
		{"Backtick", "`rm -rf`"},
		{"Assignment", "x := {a}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := map[string]interface{}{"a": 1.0, "b": 2.0}
			_, err := Execute(nil, TypeFormula, Params{"formula": tt.formula}, Context{Row: row})
			if err == nil {
				t.Fatalf("Execute() accepted unsafe formula %q", tt.formula)
			}
			if !strings.Contains(err.Error(), "unsafe") {
				t.Errorf("Execute() error = %v, want unsafe-character rejection", err)
			}
		})
	}
}

func TestFormulaNonFinite(t *testing.T) {
	row := map[string]interface{}{"a": 1.0, "b": 0.0}
	_, err := Execute(nil, TypeFormula, Params{"formula": "{a}/{b}"}, Context{Row: row})
	if err == nil {
		t.Fatal("Execute() accepted division by zero")
	}
}

func TestFormulaValidate(t *testing.T) {
	if err := ValidateParams(TypeFormula, Params{"formula": "{a}*2"}); err != nil {
		t.Errorf("ValidateParams() rejected valid formula: %v", err)
	}
	if err := ValidateParams(TypeFormula, Params{"formula": ""}); err == nil {
		t.Error("ValidateParams() accepted empty formula")
	}
	if err := ValidateParams(TypeFormula, Params{"formula": "{a}+eval()"}); err == nil {
		t.Error("ValidateParams() accepted formula with letters")
	}
}

package transform

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestDirect(t *testing.T) {
	value := map[string]interface{}{"nested": true}
	got, err := Execute(value, TypeDirect, nil, Context{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got == nil {
		t.Fatal("Execute() dropped the value")
	}

	if err := ValidateParams(TypeDirect, Params{"anything": 1}); err == nil {
		t.Error("ValidateParams() accepted parameters for direct transform")
	}
}

func TestLookup(t *testing.T) {
	table := map[string]interface{}{"HKG": "Hong Kong", "TPE": "Taipei"}

	tests := []struct {
		name   string
		value  interface{}
		params Params
		want   interface{}
	}{
		{
			name:   "Hit",
			value:  "HKG",
			params: Params{"table": table},
			want:   "Hong Kong",
		},
		{
			name:   "Miss With Default",
			value:  "XXX",
			params: Params{"table": table, "default": "Unknown"},
			want:   "Unknown",
		},
		{
			name:   "Miss Without Default Returns Original",
			value:  "XXX",
			params: Params{"table": table},
			want:   "XXX",
		},
		{
			name:   "Nil Coerces To Empty Key",
			value:  nil,
			params: Params{"table": table, "default": "n/a"},
			want:   "n/a",
		},
		{
			name:   "Numeric Key",
			value:  10.0,
			params: Params{"table": map[string]interface{}{"10": "ten"}},
			want:   "ten",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Execute(tt.value, TypeLookup, tt.params, Context{})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupByTableName(t *testing.T) {
	ctx := Context{
		LookupTable: func(name string) (map[string]string, bool) {
			if name == "ports" {
				return map[string]string{"HKG": "Hong Kong"}, true
			}
			return nil, false
		},
	}

	got, err := Execute("HKG", TypeLookup, Params{"table_name": "ports"}, ctx)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "Hong Kong" {
		t.Errorf("Execute() = %v, want Hong Kong", got)
	}

	if _, err := Execute("HKG", TypeLookup, Params{"table_name": "missing"}, ctx); err == nil {
		t.Error("Execute() accepted unknown table name")
	}
}

func TestLookupValidate(t *testing.T) {
	if err := ValidateParams(TypeLookup, Params{"table": map[string]interface{}{}}); err == nil {
		t.Error("ValidateParams() accepted empty lookup table")
	}
	if err := ValidateParams(TypeLookup, Params{"table_name": "ports"}); err != nil {
		t.Errorf("ValidateParams() rejected table_name reference: %v", err)
	}
}

func TestConcat(t *testing.T) {
	row := map[string]interface{}{
		"origin":      "HKG",
		"destination": "LAX",
	}
	params := Params{
		"fields":    []interface{}{"origin", "destination", "carrier"},
		"separator": "-",
	}

	got, err := Execute(nil, TypeConcat, params, Context{Row: row})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// carrier is missing and coerces to empty string
	if got != "HKG-LAX-" {
		t.Errorf("Execute() = %v, want HKG-LAX-", got)
	}

	if err := ValidateParams(TypeConcat, Params{"fields": []interface{}{}}); err == nil {
		t.Error("ValidateParams() accepted empty fields list")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		index interface{}
		want  string
	}{
		{"First Part", "2026-01-22", 0, "2026"},
		{"Last Part Negative Index", "2026-01-22", -1, "22"},
		{"Negative From End", "2026-01-22", -2, "01"},
		{"Out Of Range Positive", "2026-01-22", 5, ""},
		{"Out Of Range Negative", "2026-01-22", -5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Params{"separator": "-", "index": tt.index}
			got, err := Execute(tt.value, TypeSplit, params, Context{})
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}

	if err := ValidateParams(TypeSplit, Params{"separator": "", "index": 0}); err == nil {
		t.Error("ValidateParams() accepted empty separator")
	}
}

// Persisted rules come back from the driver with params decoded into the
// driver's own map and array types, not the plain maps and slices the
// request path builds. Every handler must read both encodings.
func TestParamsSurviveBSONRoundTrip(t *testing.T) {
	type persistedRule struct {
		Params Params `bson:"transform_params"`
	}

	roundTrip := func(t *testing.T, params Params) Params {
		t.Helper()
		raw, err := bson.Marshal(persistedRule{Params: params})
		if err != nil {
			t.Fatalf("bson.Marshal() error = %v", err)
		}
		var decoded persistedRule
		if err := bson.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("bson.Unmarshal() error = %v", err)
		}
		return decoded.Params
	}

	t.Run("Lookup Inline Table", func(t *testing.T) {
		params := roundTrip(t, Params{
			"table":   map[string]interface{}{"CNSHA": "Shanghai", "HKHKG": "Hong Kong"},
			"default": "Unknown",
		})

		if err := ValidateParams(TypeLookup, params); err != nil {
			t.Fatalf("ValidateParams() error = %v", err)
		}
		got, err := Execute("CNSHA", TypeLookup, params, Context{})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != "Shanghai" {
			t.Errorf("Execute() = %v, want Shanghai", got)
		}
		got, err = Execute("XXX", TypeLookup, params, Context{})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != "Unknown" {
			t.Errorf("Execute() miss = %v, want Unknown", got)
		}
	})

	t.Run("Concat Fields", func(t *testing.T) {
		params := roundTrip(t, Params{
			"fields":    []interface{}{"origin", "destination"},
			"separator": "/",
		})

		if err := ValidateParams(TypeConcat, params); err != nil {
			t.Fatalf("ValidateParams() error = %v", err)
		}
		row := map[string]interface{}{"origin": "HKG", "destination": "LAX"}
		got, err := Execute(nil, TypeConcat, params, Context{Row: row})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != "HKG/LAX" {
			t.Errorf("Execute() = %v, want HKG/LAX", got)
		}
	})

	t.Run("Split Index", func(t *testing.T) {
		params := roundTrip(t, Params{"separator": "-", "index": 1})

		if err := ValidateParams(TypeSplit, params); err != nil {
			t.Fatalf("ValidateParams() error = %v", err)
		}
		got, err := Execute("2026-01-22", TypeSplit, params, Context{})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != "01" {
			t.Errorf("Execute() = %v, want 01", got)
		}
	})
}

func TestCustomRejected(t *testing.T) {
	if err := ValidateParams(TypeCustom, Params{"script": "anything"}); err == nil {
		t.Fatal("ValidateParams() accepted custom transform")
	}
	if IsSupported(TypeCustom) {
		t.Fatal("IsSupported() reports custom transform as runnable")
	}
	if _, err := Execute("x", TypeCustom, nil, Context{}); err == nil {
		t.Fatal("Execute() ran custom transform")
	}
}

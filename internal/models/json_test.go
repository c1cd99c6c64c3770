package models

import (
	"strings"
	"testing"
)

func TestMatchKey(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "form-2", "form-2"},
		{"number", 2021, "2021"},
		{"bool", true, "true"},
		{"null", nil, "null"},
		{"object", map[string]interface{}{"a": 1}, ""},
		{"array", []int{1, 2}, ""},
		{"long string", strings.Repeat("x", 300), ""},
		{"escaped", "a \"quoted\" word", "a \"quoted\" word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewJSONValue(tt.value)
			if err != nil {
				t.Fatalf("NewJSONValue failed: %v", err)
			}
			if got := v.MatchKey(); got != tt.want {
				t.Errorf("MatchKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	v, _ := NewJSONValue(map[string]interface{}{"pages": 12})
	decoded, err := v.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	m, ok := decoded.(map[string]interface{})
	if !ok || m["pages"] != float64(12) {
		t.Errorf("Unexpected decoded value: %#v", decoded)
	}
}

func TestScanScalars(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"int64", int64(2021), "2021"},
		{"float64", float64(2.5), "2.5"},
		{"bool", true, "true"},
		{"nil", nil, "null"},
		{"bytes", []byte(`{"a":1}`), `{"a":1}`},
		{"string", `"form-2"`, `"form-2"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v JSONValue
			if err := v.Scan(tt.value); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if got := string(v.JSON); got != tt.want {
				t.Errorf("Scan() = %s, want %s", got, tt.want)
			}
		})
	}
}

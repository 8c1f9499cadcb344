package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer

	data := map[string]any{
		"name":  "test",
		"value": 123,
	}

	err := Output(data, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("name = %v, want %q", result["name"], "test")
	}
}

func TestOutput_YAMLDefault(t *testing.T) {
	var buf bytes.Buffer

	err := Output(map[string]any{"name": "test"}, OutputOptions{
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), "name: test") {
		t.Errorf("yaml output = %q", buf.String())
	}
}

func TestOutput_Raw(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"bytes", []byte("raw bytes"), "raw bytes"},
		{"string", "raw string", "raw string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Output(tt.value, OutputOptions{
				Format: FormatRaw,
				Writer: &buf,
			})
			if err != nil {
				t.Fatalf("Output error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestOutput_UnsupportedFormat(t *testing.T) {
	err := Output("x", OutputOptions{Format: "xml", Writer: &bytes.Buffer{}})
	if err == nil {
		t.Error("unsupported format accepted")
	}
}

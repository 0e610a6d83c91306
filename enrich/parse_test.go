package enrich

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Classification
	}{
		{"plain", `{"category":"fuel","vendor":"Shell","confidence":0.7}`, Classification{"fuel", "Shell", 0.7}},
		{"fenced", "```json\n{\"category\":\"rent\",\"vendor\":\"\",\"confidence\":1}\n```", Classification{"rent", "", 1}},
		{"preamble", `Here you go: {"category":"Taxes","vendor":" IRS ","confidence":0.4} hope it helps`, Classification{"taxes", "IRS", 0.4}},
		{"missing quote", `{category":"fees","vendor":"Chase","confidence":0.5}`, Classification{"fees", "Chase", 0.5}},
		{"confidence clamped", `{"category":"income","confidence":7}`, Classification{"income", "", 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := parseClassification([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *cls)
		})
	}

	for _, raw := range []string{"", "no json here", `{"vendor":"Shell"}`, `[1,2]`} {
		_, err := parseClassification([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidResponse, raw)
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{category": "x"}`, `{"category": "x"}`},
		{`{"a": 1, b_2": 2}`, `{"a": 1, "b_2": 2}`},
		{`{"a": [1, 2,], "b": 3,}`, `{"a": [1, 2], "b": 3}`},
		{`{"note": "a, b\": c", "x": 1}`, `{"note": "a, b\": c", "x": 1}`},
		{`{"ok": true}`, `{"ok": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			repaired := repairJSON(tt.input)
			assert.Equal(t, tt.expected, repaired)
			assert.True(t, json.Valid([]byte(repaired)))
		})
	}
}

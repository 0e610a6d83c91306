// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package enrich

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseClassification extracts a Classification from raw model output.
func parseClassification(raw []byte) (*Classification, error) {
	text := repairJSON(extractObject(string(raw)))

	var cls Classification
	if err := json.Unmarshal([]byte(text), &cls); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	cls.Category = strings.ToLower(strings.TrimSpace(cls.Category))
	cls.Vendor = strings.TrimSpace(cls.Vendor)
	if cls.Category == "" {
		return nil, fmt.Errorf("%w: empty category", ErrInvalidResponse)
	}
	cls.Confidence = min(max(cls.Confidence, 0), 1)
	return &cls, nil
}

// extractObject strips markdown fences and any text around the outermost
// JSON object.
func extractObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// repairJSON fixes two defects small models produce: keys missing their
// opening quote (`{category": "x"}`) and trailing commas before a closing
// brace or bracket. String contents are never touched.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			b.WriteByte(ch)
		case '{', ',':
			if ch == ',' && closesNext(s, i+1) {
				continue
			}
			b.WriteByte(ch)

			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			k := j
			for k < len(s) && isKeyByte(s[k]) {
				k++
			}
			if k > j && k+1 < len(s) && s[k] == '"' && s[k+1] == ':' {
				b.WriteString(s[i+1 : j])
				b.WriteByte('"')
				b.WriteString(s[j : k+1])
				i = k
			}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i] == '}' || s[i] == ']'
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

func isKeyByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

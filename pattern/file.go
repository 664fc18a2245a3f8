package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

// fileSchema validates the on-disk pattern file before it is decoded, so a
// malformed file is rejected wholesale instead of producing a partial set.
const fileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "type": {"type": "string", "enum": ["text", "image"]},
      "bbox": {
        "type": "array",
        "items": {"type": "number"},
        "minItems": 4,
        "maxItems": 4
      },
      "text": {"type": "string"},
      "description": {"type": "string"}
    },
    "required": ["type", "bbox"],
    "additionalProperties": false
  }
}`

var compiledSchema = jsonschema.MustCompileString("patterns.json", fileSchema)

// record is the wire format of a single pattern: an object with the kind
// name, four bbox coordinates in left, top, right, bottom order, and the
// optional text and description fields.
type record struct {
	Type        string     `json:"type"`
	BBox        [4]float64 `json:"bbox"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
}

func toRecord(p Pattern) record {
	return record{
		Type:        p.Kind.String(),
		BBox:        p.BBox.Coords(),
		Text:        p.Text,
		Description: p.Description,
	}
}

func fromRecord(r record) Pattern {
	return Pattern{
		Kind:        KindFromString(r.Type),
		BBox:        engine.NewRect(r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]),
		Text:        r.Text,
		Description: r.Description,
	}
}

// Save writes the pattern set to path as a JSON array, preserving order.
// Saving then loading yields an identical sequence.
func Save(path string, patterns []Pattern) error {
	records := make([]record, len(patterns))
	for i, p := range patterns {
		records[i] = toRecord(p)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding patterns: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing pattern file: %w", err)
	}
	return nil
}

// Load reads a pattern file written by Save. The file is validated against
// the pattern schema first; any structural problem fails the whole load.
func Load(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pattern file %s is not valid JSON: %w", path, err)
	}
	if err := compiledSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("pattern file %s does not match the pattern schema: %w", path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding pattern file %s: %w", path, err)
	}

	patterns := make([]Pattern, len(records))
	for i, r := range records {
		patterns[i] = fromRecord(r)
	}
	return patterns, nil
}

// Describe returns a short human-readable summary of a pattern set, one
// line per pattern.
func Describe(patterns []Pattern) string {
	var b strings.Builder
	for i, p := range patterns {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, p.Kind, p.Description)
		if p.Kind == KindText {
			fmt.Fprintf(&b, " %q", p.Text)
		}
		c := p.BBox.Coords()
		fmt.Fprintf(&b, " @ (%.1f, %.1f, %.1f, %.1f)\n", c[0], c[1], c[2], c[3])
	}
	return b.String()
}

package pattern

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	patterns := []Pattern{
		{
			Kind:        KindText,
			BBox:        engine.NewRect(72, 700, 540, 720),
			Text:        "CONFIDENTIAL",
			Description: "footer stamp",
		},
		{
			Kind:        KindImage,
			BBox:        engine.NewRect(200, 300, 400, 500),
			Description: "company logo",
		},
		{
			Kind: KindText,
			BBox: engine.NewRect(0, 0, 100, 20),
			Text: "",
		},
	}

	path := filepath.Join(t.TempDir(), "patterns.json")
	if err := Save(path, patterns); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(loaded, patterns) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, patterns)
	}
}

func TestSaveEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := Save(path, nil); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d patterns from empty file, want 0", len(loaded))
	}
}

func TestLoadRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `this is not json`},
		{"object instead of array", `{"type": "text", "bbox": [0,0,1,1]}`},
		{"missing bbox", `[{"type": "text", "text": "DRAFT"}]`},
		{"missing type", `[{"bbox": [0, 0, 1, 1]}]`},
		{"bad type value", `[{"type": "vector", "bbox": [0, 0, 1, 1]}]`},
		{"short bbox", `[{"type": "text", "bbox": [0, 0, 1]}]`},
		{"long bbox", `[{"type": "text", "bbox": [0, 0, 1, 1, 1]}]`},
		{"bbox wrong element type", `[{"type": "text", "bbox": [0, 0, 1, "x"]}]`},
		{"unknown field", `[{"type": "text", "bbox": [0, 0, 1, 1], "color": "red"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted a malformed file")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestDescribe(t *testing.T) {
	patterns := []Pattern{
		{Kind: KindText, Text: "DRAFT", Description: "stamp", BBox: engine.NewRect(1, 2, 3, 4)},
		{Kind: KindImage, Description: "logo", BBox: engine.NewRect(5, 6, 7, 8)},
	}
	out := Describe(patterns)
	if !strings.Contains(out, `1. [text] stamp "DRAFT" @ (1.0, 2.0, 3.0, 4.0)`) {
		t.Errorf("missing text line in:\n%s", out)
	}
	if !strings.Contains(out, "2. [image] logo @ (5.0, 6.0, 7.0, 8.0)") {
		t.Errorf("missing image line in:\n%s", out)
	}
}

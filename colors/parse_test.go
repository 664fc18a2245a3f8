package colors

import (
	"testing"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    engine.RGB
		wantErr bool
	}{
		{"hex lowercase", "#ff0080", engine.RGB{R: 255, G: 0, B: 128}, false},
		{"hex uppercase", "#FF0080", engine.RGB{R: 255, G: 0, B: 128}, false},
		{"triplet", "255,0,128", engine.RGB{R: 255, G: 0, B: 128}, false},
		{"triplet with spaces", " 10 , 20 , 30 ", engine.RGB{R: 10, G: 20, B: 30}, false},
		{"black", "0,0,0", engine.RGB{}, false},
		{"bad hex", "#zzzzzz", engine.RGB{}, true},
		{"short hex", "#fff0", engine.RGB{}, true},
		{"two channels", "10,20", engine.RGB{}, true},
		{"four channels", "10,20,30,40", engine.RGB{}, true},
		{"channel too big", "10,20,300", engine.RGB{}, true},
		{"negative channel", "-1,20,30", engine.RGB{}, true},
		{"not a number", "a,b,c", engine.RGB{}, true},
		{"empty", "", engine.RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList([]string{"#ff0000", "0,128,0"})
	if err != nil {
		t.Fatalf("ParseList() error: %v", err)
	}
	want := []engine.RGB{{R: 255}, {G: 128}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ParseList() = %+v, want %+v", got, want)
	}

	if _, err := ParseList([]string{"#ff0000", "bogus"}); err == nil {
		t.Error("ParseList() accepted an invalid entry")
	}
}

func TestHex(t *testing.T) {
	if got := Hex(engine.RGB{R: 255, G: 0, B: 128}); got != "#ff0080" {
		t.Errorf("Hex() = %q, want \"#ff0080\"", got)
	}
	if got := Hex(engine.White); got != "#ffffff" {
		t.Errorf("Hex(white) = %q, want \"#ffffff\"", got)
	}
}

func TestDominantString(t *testing.T) {
	d := Dominant{RGB: engine.RGB{R: 200, G: 16, B: 16}, Percentage: 12.5}
	want := "#c81010 (200,16,16): 12.50%"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

package overlay

import (
	"image"
	"testing"

	"github.com/andresmejia3/facelog/internal/types"
)

func TestLayout(t *testing.T) {
	faces := []types.LabeledFace{{
		Face:  types.FaceResult{Loc: types.Box{Top: 10, Right: 50, Bottom: 60, Left: 20}},
		Match: types.Match{Name: "alice", Known: true},
	}}

	items := Layout(faces, 4)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	it := items[0]

	if want := image.Rect(80, 40, 200, 240); it.Box != want {
		t.Errorf("Box = %v, want %v", it.Box, want)
	}
	if want := image.Rect(80, 240-LabelHeight, 200, 240); it.Strip != want {
		t.Errorf("Strip = %v, want %v", it.Strip, want)
	}
	if want := image.Pt(86, 234); it.Text != want {
		t.Errorf("Text = %v, want %v", it.Text, want)
	}
	if it.Label != "alice" || !it.Known {
		t.Errorf("Unexpected label %q known=%v", it.Label, it.Known)
	}
}

func TestLayout_ZeroScaleTreatedAsOne(t *testing.T) {
	faces := []types.LabeledFace{{Face: types.FaceResult{Loc: types.Box{Top: 1, Right: 2, Bottom: 3, Left: 0}}}}
	if got := Layout(faces, 0)[0].Box; got != image.Rect(0, 1, 2, 3) {
		t.Errorf("Box = %v", got)
	}
}

func TestASCIILabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"alice", "alice"},
		{"Jiří", "Jiri"},
		{"José Núñez", "Jose Nunez"},
		{"Unknown", "Unknown"},
		{"李", "?"},
	}
	for _, tt := range tests {
		if got := ASCIILabel(tt.in); got != tt.want {
			t.Errorf("ASCIILabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package types

import "testing"

func TestBoxScale(t *testing.T) {
	b := Box{Top: 10, Right: 40, Bottom: 50, Left: 5}
	got := b.Scale(4)
	want := Box{Top: 40, Right: 160, Bottom: 200, Left: 20}
	if got != want {
		t.Errorf("Scale(4) = %+v, want %+v", got, want)
	}

	if got := b.Scale(1); got != b {
		t.Errorf("Scale(1) changed the box: %+v", got)
	}
}

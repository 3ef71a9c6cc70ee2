// Package overlay computes where boxes and name labels go on a displayed frame.
package overlay

import (
	"image"
	"strings"
	"unicode"

	"github.com/andresmejia3/facelog/internal/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LabelHeight is the height in pixels of the filled strip under a name.
const LabelHeight = 35

// TextInset is the offset of the name from the strip's left and bottom edges.
const TextInset = 6

// Item is everything needed to draw one face.
type Item struct {
	Box   image.Rectangle // face box on the full-size frame
	Strip image.Rectangle // filled label strip along the box bottom
	Text  image.Point     // baseline origin of the label
	Label string
	Known bool
}

// Layout scales detected boxes back to frame size and places their labels.
func Layout(faces []types.LabeledFace, scale int) []Item {
	if scale < 1 {
		scale = 1
	}

	items := make([]Item, 0, len(faces))
	for _, f := range faces {
		b := f.Face.Loc.Scale(scale)
		items = append(items, Item{
			Box:   image.Rect(b.Left, b.Top, b.Right, b.Bottom),
			Strip: image.Rect(b.Left, b.Bottom-LabelHeight, b.Right, b.Bottom),
			Text:  image.Pt(b.Left+TextInset, b.Bottom-TextInset),
			Label: ASCIILabel(f.Match.Name),
			Known: f.Match.Known,
		})
	}
	return items
}

// ASCIILabel strips diacritics and replaces what is left outside ASCII with
// '?', since the Hershey fonts OpenCV draws with only cover ASCII.
func ASCIILabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return '?'
		}
		return r
	}, out)
}

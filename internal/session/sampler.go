package session

// Sampler decides which frames go through recognition.
type Sampler struct {
	Every int // process one frame out of Every; values below 1 mean every frame
}

// ShouldProcess reports whether the frame with this zero-based index is
// recognized. The first frame is always processed.
func (s Sampler) ShouldProcess(index int) bool {
	if s.Every <= 1 {
		return true
	}
	return index%s.Every == 0
}

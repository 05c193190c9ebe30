package parser

import "sort"

// LineIndex maps byte offsets to 1-based line and column numbers.
type LineIndex struct {
	starts []int
	size   int
}

// NewLineIndex records the start offset of every line in source.
func NewLineIndex(source []byte) *LineIndex {
	starts := make([]int, 1, 64)
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(source)}
}

// Lines returns the number of lines in the source.
func (idx *LineIndex) Lines() int {
	return len(idx.starts)
}

// Position returns the 1-based line and column of offset. Offsets outside
// the source are clamped to its bounds.
func (idx *LineIndex) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > idx.size {
		offset = idx.size
	}
	// Index of the last line start <= offset.
	i := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	return i + 1, offset - idx.starts[i] + 1
}

package parser

import "testing"

func TestLineIndex_Position(t *testing.T) {
	idx := NewLineIndex([]byte("ab\ncd\n\nef"))

	tests := []struct {
		offset     int
		wantLine   int
		wantColumn int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
		{-5, 1, 1},
		{100, 4, 3},
	}

	for _, tt := range tests {
		line, col := idx.Position(tt.offset)
		if line != tt.wantLine || col != tt.wantColumn {
			t.Errorf("Position(%d) = (%d, %d), want (%d, %d)", tt.offset, line, col, tt.wantLine, tt.wantColumn)
		}
	}

	if idx.Lines() != 4 {
		t.Errorf("Lines() = %d, want 4", idx.Lines())
	}
}

func TestLineIndex_Empty(t *testing.T) {
	idx := NewLineIndex(nil)
	line, col := idx.Position(0)
	if line != 1 || col != 1 {
		t.Errorf("Position(0) on empty source = (%d, %d), want (1, 1)", line, col)
	}
}

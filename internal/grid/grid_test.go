package grid

import (
	"errors"
	"math"
	"testing"
)

func TestFillKeepsUncoveredCellsZero(t *testing.T) {
	g, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := g.Fill([]Sample{{0, 0, 5}, {2, 3, 7}}); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	nonzero := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if g.At(r, c) != 0 {
				nonzero++
			}
		}
	}
	if nonzero != 2 {
		t.Errorf("nonzero cells: got %d, want 2", nonzero)
	}
	if g.At(0, 0) != 5 || g.At(2, 3) != 7 {
		t.Errorf("values: got %v and %v, want 5 and 7", g.At(0, 0), g.At(2, 3))
	}
}

func TestAssembleFlipsRows(t *testing.T) {
	g, err := Assemble([]Sample{{0, 0, 5}, {2, 3, 7}}, 4)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if g.At(3, 0) != 5 {
		t.Errorf("sample row 0 should land on image row 3, got %v", g.At(3, 0))
	}
	if g.At(1, 3) != 7 {
		t.Errorf("sample row 2 should land on image row 1, got %v", g.At(1, 3))
	}
	if g.At(0, 0) != 0 {
		t.Errorf("image row 0 col 0: got %v, want 0", g.At(0, 0))
	}
}

func TestFlipOddSizeKeepsMiddleRow(t *testing.T) {
	g, _ := New(3)
	_ = g.Fill([]Sample{{1, 1, 10}, {0, 2, 1}})
	g.FlipUD()

	if g.At(1, 1) != 10 {
		t.Errorf("middle row moved: got %v", g.At(1, 1))
	}
	if g.At(2, 2) != 1 {
		t.Errorf("row 0 -> row 2: got %v", g.At(2, 2))
	}

	g.FlipUD()
	if g.At(0, 2) != 1 {
		t.Errorf("double flip is not identity: got %v", g.At(0, 2))
	}
}

func TestFillLastWriteWins(t *testing.T) {
	g, _ := New(2)
	_ = g.Fill([]Sample{{1, 1, 1}, {1, 1, 2}, {1, 1, 3}})

	if g.At(1, 1) != 3 {
		t.Errorf("got %v, want 3", g.At(1, 1))
	}
}

func TestFillStoresNonFinite(t *testing.T) {
	g, _ := New(2)
	_ = g.Fill([]Sample{{0, 0, math.NaN()}, {0, 1, math.Inf(1)}})

	if !math.IsNaN(g.At(0, 0)) || !math.IsInf(g.At(0, 1), 1) {
		t.Errorf("non-finite values changed: %v %v", g.At(0, 0), g.At(0, 1))
	}
}

func TestAssembleOutOfBounds(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
	}{
		{"row too large", Sample{4, 0, 1}},
		{"col too large", Sample{0, 4, 1}},
		{"negative row", Sample{-1, 0, 1}},
		{"negative col", Sample{0, -1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble([]Sample{{0, 0, 1}, tt.sample}, 4)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("got %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestNewInvalidSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		if _, err := New(size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d): got %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestValuesAliasesStorage(t *testing.T) {
	g, _ := New(2)
	_ = g.Set(1, 0, 4)

	v := g.Values()
	if len(v) != 4 || v[2] != 4 {
		t.Errorf("Values: got %v", v)
	}
	if r := g.Row(1); r[0] != 4 {
		t.Errorf("Row(1): got %v", r)
	}
}

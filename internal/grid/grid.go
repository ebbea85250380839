// Package grid assembles sparse (row, col, value) samples into a dense square grid.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrOutOfBounds is returned when a sample index falls outside the grid.
	ErrOutOfBounds = errors.New("sample out of bounds")

	// ErrInvalidSize is returned for a non-positive grid size.
	ErrInvalidSize = errors.New("invalid grid size")
)

// Sample is a single sparse value. Row and Col are zero-based indices in
// sample space, where row 0 is the southern edge of the mesh cell.
type Sample struct {
	Row   int
	Col   int
	Value float64
}

// Grid is a dense Size x Size array of values.
type Grid struct {
	data *mat.Dense
	size int
}

// New returns a zero filled grid.
func New(size int) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	return &Grid{data: mat.NewDense(size, size, nil), size: size}, nil
}

// Size returns the edge length in cells.
func (g *Grid) Size() int { return g.size }

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float64 { return g.data.At(row, col) }

// Row returns a view of one row. The slice aliases the grid storage.
func (g *Grid) Row(row int) []float64 { return g.data.RawRowView(row) }

// Values returns the row-major backing slice. It aliases the grid storage.
func (g *Grid) Values() []float64 { return g.data.RawMatrix().Data }

// Set stores v at (row, col), rejecting indices outside the grid.
func (g *Grid) Set(row, col int, v float64) error {
	if row < 0 || row >= g.size || col < 0 || col >= g.size {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, row, col, g.size, g.size)
	}

	g.data.Set(row, col, v)
	return nil
}

// Fill writes samples in order. A later sample at the same cell wins.
// Non-finite values are stored as is.
func (g *Grid) Fill(samples []Sample) error {
	for i, s := range samples {
		if err := g.Set(s.Row, s.Col, s.Value); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return nil
}

// FlipUD reverses row order in place.
func (g *Grid) FlipUD() {
	tmp := make([]float64, g.size)
	for top, bottom := 0, g.size-1; top < bottom; top, bottom = top+1, bottom-1 {
		a, b := g.data.RawRowView(top), g.data.RawRowView(bottom)
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Assemble builds a grid from samples and flips it so that row 0 is the
// northernmost row, matching raster row order.
func Assemble(samples []Sample, size int) (*Grid, error) {
	g, err := New(size)
	if err != nil {
		return nil, err
	}

	if err := g.Fill(samples); err != nil {
		return nil, err
	}

	g.FlipUD()
	return g, nil
}

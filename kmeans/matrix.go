package kmeans

import "fmt"

// Matrix is a row-major dataset of Rows vectors with Cols float32 values
// each. It is borrowed by the index and never mutated.
type Matrix struct {
	Data []float32
	Rows int
	Cols int
}

// NewMatrix wraps data as a rows x cols matrix.
func NewMatrix(data []float32, rows, cols int) (*Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("kmeans: matrix data length %d does not match %dx%d", len(data), rows, cols)
	}
	return &Matrix{Data: data, Rows: rows, Cols: cols}, nil
}

// Row returns the i-th row as a view into the backing array.
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

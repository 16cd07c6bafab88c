package semantic

import (
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
)

// ImportNPY reads a 2-D float32 or float64 NumPy matrix and tags its rows
// with ids in order. The row count must equal len(ids).
func ImportNPY(path string, ids []string, modelName string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening npy file: %w", err)
	}
	defer f.Close()

	return ReadNPY(f, ids, modelName)
}

// ReadNPY is ImportNPY over an arbitrary reader.
func ReadNPY(r io.Reader, ids []string, modelName string) (*Matrix, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading npy header: %w", err)
	}

	descr := npy.Header.Descr
	if len(descr.Shape) != 2 {
		return nil, fmt.Errorf("npy matrix must be 2-D, got shape %v", descr.Shape)
	}
	if descr.Fortran {
		return nil, fmt.Errorf("fortran-ordered npy matrices are not supported")
	}
	rows, dims := descr.Shape[0], descr.Shape[1]
	if rows != len(ids) {
		return nil, fmt.Errorf("npy matrix has %d rows, corpus has %d papers", rows, len(ids))
	}

	var flat []float32
	switch descr.Type {
	case "<f4":
		flat = make([]float32, rows*dims)
		if err := npy.Read(&flat); err != nil {
			return nil, fmt.Errorf("reading npy data: %w", err)
		}
	case "<f8":
		wide := make([]float64, rows*dims)
		if err := npy.Read(&wide); err != nil {
			return nil, fmt.Errorf("reading npy data: %w", err)
		}
		flat = make([]float32, len(wide))
		for i, v := range wide {
			flat[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q (want <f4 or <f8)", descr.Type)
	}
	if len(flat) != rows*dims {
		return nil, fmt.Errorf("npy data has %d values, want %d", len(flat), rows*dims)
	}

	m := NewMatrix(modelName, dims)
	m.Source = "npy"
	for i, id := range ids {
		if err := m.Append(id, flat[i*dims:(i+1)*dims:(i+1)*dims]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return m, nil
}

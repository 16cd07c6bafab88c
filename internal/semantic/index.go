package semantic

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scholarmind/scholarmind/internal/config"
)

// Errors returned by matrix operations.
var (
	ErrIndexNotFound      = errors.New("embedding matrix not found")
	ErrUnsupportedVersion = errors.New("unsupported matrix version")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrDuplicateRow       = errors.New("duplicate matrix row id")
)

const (
	// IndexFileName is the name of the embedding matrix file.
	IndexFileName = "embeddings.gob"

	// MaxQueryLength is the maximum query length (in characters) sent to the embedder.
	// all-minilm truncates at 256 word pieces; anything past ~2000 characters is dropped anyway.
	MaxQueryLength = 2000

	// CurrentIndexVersion is the format version for compatibility checking.
	// Increment this when making breaking changes to the matrix format.
	CurrentIndexVersion = 1
)

// IndexPath returns the path to the embedding matrix file.
func IndexPath(repoRoot string) string {
	return filepath.Join(config.CachePath(repoRoot), IndexFileName)
}

// NewMatrix creates a new empty matrix.
func NewMatrix(modelName string, dimensions int) *Matrix {
	return &Matrix{
		Version:    CurrentIndexVersion,
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
	}
}

// Append adds a row for paperID. Rows keep insertion order.
func (m *Matrix) Append(paperID string, vector []float32) error {
	if len(vector) != m.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), m.Dimensions)
	}
	m.IDs = append(m.IDs, paperID)
	m.Vectors = append(m.Vectors, vector)
	return nil
}

// RowIndex maps each paper id to its matrix row.
func (m *Matrix) RowIndex() (map[string]int, error) {
	rows := make(map[string]int, len(m.IDs))
	for i, id := range m.IDs {
		if _, dup := rows[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRow, id)
		}
		rows[id] = i
	}
	return rows, nil
}

// Save persists the matrix to disk using GOB encoding.
func (m *Matrix) Save(repoRoot string) error {
	indexPath := IndexPath(repoRoot)

	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	// Write to a temp file first, then rename for atomicity
	tempPath := indexPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding matrix: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads the embedding matrix from disk.
// Returns ErrUnsupportedVersion if the matrix was written with an incompatible format.
func Load(repoRoot string) (*Matrix, error) {
	f, err := os.Open(IndexPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening matrix file: %w", err)
	}
	defer f.Close()

	var m Matrix
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding matrix: %w", err)
	}

	if m.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'sm index build')",
			ErrUnsupportedVersion, m.Version, CurrentIndexVersion)
	}
	if len(m.IDs) != len(m.Vectors) {
		return nil, fmt.Errorf("corrupt matrix: %d ids for %d rows", len(m.IDs), len(m.Vectors))
	}

	return &m, nil
}

// IndexSize returns the size of the matrix file in bytes.
func IndexSize(repoRoot string) (int64, error) {
	info, err := os.Stat(IndexPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrIndexNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// Exists checks if the matrix file exists.
func Exists(repoRoot string) bool {
	_, err := os.Stat(IndexPath(repoRoot))
	return err == nil
}

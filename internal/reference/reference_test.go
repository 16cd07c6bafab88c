package reference

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     Reference
		wantErr error
	}{
		{"valid", Reference{ID: "2101.00001", NormalizedPopularity: 0.5}, nil},
		{"zero popularity", Reference{ID: "a", NormalizedPopularity: 0}, nil},
		{"full popularity", Reference{ID: "a", NormalizedPopularity: 1}, nil},
		{"missing id", Reference{NormalizedPopularity: 0.5}, ErrMissingID},
		{"blank id", Reference{ID: "  ", NormalizedPopularity: 0.5}, ErrMissingID},
		{"negative popularity", Reference{ID: "a", NormalizedPopularity: -0.1}, ErrInvalidPopularity},
		{"popularity above one", Reference{ID: "a", NormalizedPopularity: 1.01}, ErrInvalidPopularity},
		{"NaN popularity", Reference{ID: "a", NormalizedPopularity: math.NaN()}, ErrInvalidPopularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmbeddingText(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"title and abstract", Reference{Title: "Attention", Abstract: "We propose."}, "Attention. We propose."},
		{"title only", Reference{Title: "Attention"}, "Attention"},
		{"abstract only", Reference{Abstract: " We propose. "}, "We propose."},
		{"empty", Reference{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.EmbeddingText(); got != tt.want {
				t.Errorf("EmbeddingText() = %q, want %q", got, tt.want)
			}
		})
	}
}

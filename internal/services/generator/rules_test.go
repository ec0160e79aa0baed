package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"EuroLens/internal/domain/models"
)

func TestValidateNumbers(t *testing.T) {
	tests := []struct {
		name  string
		nums  []int
		valid bool
	}{
		{"balanced", []int{10, 20, 30, 40, 45}, true},
		{"sum too low", []int{1, 2, 3, 4, 5}, false},
		{"sum too high", []int{36, 38, 41, 47, 49}, false},
		{"all even", []int{20, 22, 24, 26, 28}, false},
		{"all odd", []int{27, 29, 31, 33, 35}, false},
		{"all high", []int{26, 27, 30, 33, 40}, false},
		{"all low", []int{15, 18, 21, 23, 25}, false},
		{"two adjacent pairs", []int{10, 11, 12, 30, 41}, false},
		{"one adjacent pair", []int{10, 11, 22, 30, 41}, true},
		{"sum lower bound", []int{3, 10, 20, 27, 30}, true},
		{"sum upper bound", []int{20, 33, 39, 42, 46}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, flags := ValidateNumbers(tt.nums)
			assert.Equal(t, tt.valid, ok)
			if ok {
				assert.Equal(t, []string{models.FlagOptimalSum, models.FlagBalancedParity, models.FlagSpreadRange}, flags)
			} else {
				assert.Empty(t, flags)
			}
		})
	}
}

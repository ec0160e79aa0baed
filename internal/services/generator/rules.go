package generator

import "EuroLens/internal/domain/models"

const (
	minSum        = 90
	maxSum        = 180
	lowHalfMax    = 25
	maxAdjacent   = 1
	pickedNumbers = models.NumbersPerDraw
	pickedStars   = models.StarsPerDraw
)

// ValidateNumbers applies the shape rules to an ascending set of five
// numbers. Rules run in order and stop at the first failure; on success the
// descriptive flags are returned.
func ValidateNumbers(nums []int) (bool, []string) {
	flags := make([]string, 0, 3)

	sum := 0
	for _, n := range nums {
		sum += n
	}
	if sum < minSum || sum > maxSum {
		return false, nil
	}
	flags = append(flags, models.FlagOptimalSum)

	even := 0
	for _, n := range nums {
		if n%2 == 0 {
			even++
		}
	}
	if even == 0 || even == len(nums) {
		return false, nil
	}
	flags = append(flags, models.FlagBalancedParity)

	low := 0
	for _, n := range nums {
		if n <= lowHalfMax {
			low++
		}
	}
	if low == 0 || low == len(nums) {
		return false, nil
	}
	flags = append(flags, models.FlagSpreadRange)

	adjacent := 0
	for i := 1; i < len(nums); i++ {
		if nums[i]-nums[i-1] == 1 {
			adjacent++
		}
	}
	if adjacent > maxAdjacent {
		return false, nil
	}

	return true, flags
}

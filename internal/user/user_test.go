package user

import (
	"errors"
	"testing"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotFound, ErrUsernameTaken, ErrEmailTaken}
	for i, a := range sentinels {
		for j, b := range sentinels {
			got := errors.Is(a, b)
			want := i == j
			if got != want {
				t.Errorf("errors.Is(sentinels[%d], sentinels[%d]) = %v, want %v", i, j, got, want)
			}
		}
	}
}

package dims

import (
	"math"

	"github.com/pkg/errors"
)

// CheckedAdd returns a+b, or ErrOverflow.
func CheckedAdd(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, errors.Wrapf(ErrOverflow, "%d + %d", a, b)
	}
	return c, nil
}

// CheckedMul returns a*b, or ErrOverflow.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, errors.Wrapf(ErrOverflow, "%d * %d", a, b)
	}
	return c, nil
}

// CheckedDiv returns a/b truncated towards zero, ErrDivisionByZero if b is 0, or ErrOverflow for MinInt64/-1.
func CheckedDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, errors.Wrapf(ErrDivisionByZero, "%d / 0", a)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, errors.Wrapf(ErrOverflow, "%d / %d", a, b)
	}
	return a / b, nil
}

package contracts

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
)

// ErrOutOfRange is returned when a remote uint256 does not fit the local type.
var ErrOutOfRange = errors.New("value out of local range")

var maxInt = big.NewInt(math.MaxInt)

// ToInt converts a remote counter to int. Nil and negative values are rejected
// as well as anything above math.MaxInt.
func ToInt(v *big.Int) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("nil counter: %w", ErrOutOfRange)
	}
	if v.Sign() < 0 || v.Cmp(maxInt) > 0 {
		return 0, fmt.Errorf("counter %s: %w", v, ErrOutOfRange)
	}
	return int(v.Int64()), nil
}

// ToTime converts a remote unix-seconds timestamp to time.Time.
func ToTime(v *big.Int) (time.Time, error) {
	if v == nil {
		return time.Time{}, fmt.Errorf("nil timestamp: %w", ErrOutOfRange)
	}
	if v.Sign() < 0 || !v.IsInt64() {
		return time.Time{}, fmt.Errorf("timestamp %s: %w", v, ErrOutOfRange)
	}
	return time.Unix(v.Int64(), 0), nil
}

package revshare

import "errors"

var (
	// ErrPercentExceeded indicates a revenue percent above MaxPercent basis points.
	ErrPercentExceeded = errors.New("revshare: percent exceeds 10000 basis points")
)

package ids

import (
	"strconv"
	"strings"
)

const (
	ObjectPrefix = "O"
	PlayerPrefix = "P"
)

func ObjectID(n uint64) string { return ObjectPrefix + strconv.FormatUint(n, 10) }
func PlayerID(n uint64) string { return PlayerPrefix + strconv.FormatUint(n, 10) }

func MaxU64(a, b uint64) uint64 {
	if a >= b {
		return a
	}
	return b
}

func ParseUintAfterPrefix(prefix, id string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextAfter returns the smallest counter value above every id in existing
// that carries prefix, and at least floor.
func NextAfter(prefix string, existing []string, floor uint64) uint64 {
	next := floor
	for _, id := range existing {
		if n, ok := ParseUintAfterPrefix(prefix, id); ok {
			next = MaxU64(next, n+1)
		}
	}
	return next
}

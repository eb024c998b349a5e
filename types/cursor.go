package types

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const cursorPrefix = "offset:"

// MaxOffset bounds the number of skipped rows, so that offsets and the next cursor never overflow
const MaxOffset = 1 << 30

// EncodeCursor returns the opaque cursor pointing at the given row offset
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor returns the offset of a cursor. Cursors that were not produced by EncodeCursor
// point at the first row.
func DecodeCursor(cursor string) int {
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	value := string(decoded)
	if !strings.HasPrefix(value, cursorPrefix) {
		return 0
	}
	offset, err := strconv.Atoi(value[len(cursorPrefix):])
	if err != nil || offset < 0 {
		return 0
	}
	if offset > MaxOffset {
		return MaxOffset
	}
	return offset
}

// Offset returns the number of rows skipped by the page options
func (p PageOptions) Offset() int {
	switch p.Mode {
	case PageOffset:
		if p.Page <= 1 || p.PerPage <= 0 {
			return 0
		}
		if p.Page-1 > MaxOffset/p.PerPage {
			return MaxOffset
		}
		return (p.Page - 1) * p.PerPage
	case PageCursor:
		return DecodeCursor(p.Cursor)
	default:
		return 0
	}
}

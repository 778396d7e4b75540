package repository

import (
	"fmt"
	"time"
)

// Compound keyset cursor "id:unix". Ties on the timestamp are broken by id
// so pagination never skips or repeats rows.

func parseCursor(cursor string) (time.Time, int64, error) {
	var id, ts int64
	if _, err := fmt.Sscanf(cursor, "%d:%d", &id, &ts); err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	return time.Unix(ts, 0), id, nil
}

func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.Unix())
}

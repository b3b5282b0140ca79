package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSnapshotNotFound reports that no cart has been stored for a session yet.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Persister stores one serialized cart per session. Save overwrites wholesale.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
}

func encodeLines(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

func decodeLines(payload []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("line for product %d has quantity %d", l.ID, l.Quantity)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("product %d appears in more than one line", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return lines, nil
}

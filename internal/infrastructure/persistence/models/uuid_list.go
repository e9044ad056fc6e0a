package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUIDList stores a list of UUIDs as a JSON array in a text column.
// A nil or empty list is stored as "[]".
type UUIDList []uuid.UUID

// Value implements driver.Valuer
func (l UUIDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]uuid.UUID(l))
	if err != nil {
		return nil, fmt.Errorf("marshal uuid list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan uuid list: unsupported type %T", value)
	}

	if len(raw) == 0 {
		*l = nil
		return nil
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("scan uuid list: %w", err)
	}
	if len(ids) == 0 {
		*l = nil
		return nil
	}
	*l = ids
	return nil
}

package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONMap stores arbitrary event payloads in a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
	return json.Unmarshal(data, m)
}

// AuditLog is one recorded event. Rows are written once and never touched
// again.
type AuditLog struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID    string    `json:"event_id" gorm:"column:event_id"`
	EventType  string    `json:"event_type" gorm:"column:event_type"`
	ActorID    *string   `json:"actor_id,omitempty" gorm:"column:actor_id"`
	Payload    JSONMap   `json:"payload" gorm:"column:payload;type:jsonb"`
	OccurredAt time.Time `json:"occurred_at" gorm:"column:occurred_at"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

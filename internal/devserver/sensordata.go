package devserver

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
)

// ReadingStore serves the time-series rows behind GET .../data. It reads
// through sqlx instead of the ORM because each row is half fixed columns and
// half free-form payload, and the result has to stay a dynamic row map.
type ReadingStore struct {
	db *sqlx.DB
}

func NewReadingStore(db *sqlx.DB) *ReadingStore {
	return &ReadingStore{db: db}
}

const readingsQuery = `
	SELECT sensor_id, network_id, recorded_at, payload
	FROM sensor_readings
	WHERE network_id = ? AND sensor_id = ?
	ORDER BY recorded_at`

// Rows returns one flat map per reading: the fixed columns plus whatever
// measured fields the payload carries. Different sensor models report
// different fields, so row shapes vary within one result.
func (r *ReadingStore) Rows(networkID, sensorID string) ([]sensor.DataRow, error) {
	rows, err := r.db.Queryx(r.db.Rebind(readingsQuery), networkID, sensorID)
	if err != nil {
		return nil, internal.NewInternalError("failed to query sensor readings", err)
	}
	defer rows.Close()

	out := make([]sensor.DataRow, 0)
	for rows.Next() {
		raw := map[string]interface{}{}
		if err := rows.MapScan(raw); err != nil {
			return nil, internal.NewInternalError("failed to scan sensor reading", err)
		}
		out = append(out, flattenReading(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, internal.NewInternalError("failed to iterate sensor readings", err)
	}
	return out, nil
}

func flattenReading(raw map[string]interface{}) sensor.DataRow {
	row := sensor.DataRow{
		"sensorId":  asString(raw["sensor_id"]),
		"networkId": asString(raw["network_id"]),
	}

	switch ts := raw["recorded_at"].(type) {
	case time.Time:
		row["timestamp"] = ts.Format(time.RFC3339)
	default:
		row["timestamp"] = asString(ts)
	}

	// Measured fields live in the payload column as JSON.
	var measured map[string]interface{}
	if err := json.Unmarshal(payloadBytes(raw["payload"]), &measured); err == nil {
		for key, value := range measured {
			row[key] = value
		}
	}
	return row
}

func payloadBytes(v interface{}) []byte {
	switch p := v.(type) {
	case []byte:
		return p
	case string:
		return []byte(p)
	default:
		return nil
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

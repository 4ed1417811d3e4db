package entity

import (
	"encoding/json"
	"time"
)

// naive ISO 8601 as Python's datetime.isoformat() emits it: no zone
// suffix, optional fractional seconds. Always UTC on this API.
const naiveISO8601 = "2006-01-02T15:04:05.999999999"

// Time is a timestamp as the API serializes it. The server emits naive
// ISO 8601; RFC 3339 decodes too. Encoding stays RFC 3339.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.ParseInLocation(naiveISO8601, s, time.UTC)
	}
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

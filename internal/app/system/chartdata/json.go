package chartdata

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes a backend daily row. The "date" member becomes
// Row.Date; every numeric member becomes a named series in Row.Values.
// Non-numeric members other than "date" (timestamps, status strings) are
// ignored rather than rejected, since endpoint payloads vary.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Values = make(map[string]float64, len(raw))
	for name, value := range raw {
		if name == "date" {
			if err := json.Unmarshal(value, &r.Date); err != nil {
				return fmt.Errorf("chartdata: date member: %w", err)
			}
			continue
		}
		var n float64
		if err := json.Unmarshal(value, &n); err == nil {
			r.Values[name] = n
		}
	}
	if r.Date == "" {
		return fmt.Errorf("chartdata: row missing date member")
	}
	return nil
}

// MarshalJSON emits the row back as a flat object, the shape chart
// templates consume.
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	flat["date"] = r.Date
	for name, value := range r.Values {
		flat[name] = value
	}
	return json.Marshal(flat)
}

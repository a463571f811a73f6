/*
Package weather contains the core data structures for weather records.

It defines the Record and ForecastEntry structs used for batch uploads,
database persistence, and the responses sent to clients, along with the
tolerant parser for admin batch files.
*/
package weather

import (
	"encoding/json"
	"fmt"
)

// ForecastEntry is one upcoming entry in a location's forecast sequence.
type ForecastEntry struct {
	Weather     string  `json:"weather"`
	Temperature float64 `json:"temperature"`
}

// Record represents the stored weather state for a single location.
// Fields use JSON tags matching the batch file and wire vocabulary.
type Record struct {
	Location           string          `json:"location"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	CurrentWeather     string          `json:"current_weather"`
	CurrentTemperature float64         `json:"current_temperature"`
	Forecast           []ForecastEntry `json:"forecast"`
}

// ParseBatch decodes an admin batch file: a JSON array of weather records.
// Individual records that do not match the record shape are skipped rather
// than failing the batch; the skipped count is returned alongside the records
// that parsed. A payload that is not a JSON array at all is an error.
func ParseBatch(data []byte) ([]Record, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("batch payload is not a JSON array of weather records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			skipped++
			continue
		}
		if rec.Location == "" {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/crimson-sun/airs/internal/model"
)

// ReadIncidents decodes a JSON array of incidents, the same shape Export
// writes.
func ReadIncidents(r io.Reader) ([]model.Incident, error) {
	var incidents []model.Incident
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&incidents); err != nil {
		return nil, fmt.Errorf("report: decode incidents: %w", err)
	}
	return incidents, nil
}

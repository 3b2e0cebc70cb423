package render

import (
	"github.com/goccy/go-json"

	"github.com/matzehuels/crimescope/pkg/chart"
	"github.com/matzehuels/crimescope/pkg/errors"
)

// JSON renders m as indented JSON.
func JSON(m *chart.Model) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode model %s", m.ChartID)
	}
	return append(data, '\n'), nil
}

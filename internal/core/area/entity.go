package area

import (
	"encoding/json"
	"fmt"
	"strings"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/geo"
	"github.com/paulmach/orb"
)

const previewIDLength = 6

// AOI is a named area of interest registered with the remote API. AOIs are
// shared between all users of the same account.
type AOI struct {
	ID       string
	Name     string
	Polygon  orb.Polygon
	Geometry json.RawMessage
}

// Preview is the label shown in area pickers, e.g. "Valencia - 3f9a1c..."
func (a *AOI) Preview() string {
	id := a.ID
	if len(id) > previewIDLength {
		id = id[:previewIDLength]
	}
	return fmt.Sprintf("%s - %s...", a.Name, id)
}

// CreateAreaRequest represents a request to register a new AOI
type CreateAreaRequest struct {
	Name    string
	Polygon orb.Polygon
}

// Normalize trims the requested name
func (r *CreateAreaRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// IsValid validates the create request
func (r *CreateAreaRequest) IsValid() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("area name cannot be empty")
	}
	if err := geo.ValidatePolygon(r.Polygon); err != nil {
		return fmt.Errorf("invalid polygon: %w", err)
	}
	return nil
}

func fromPorts(data ports.AOIData) AOI {
	aoi := AOI{ID: data.ID, Name: data.Name, Geometry: data.Geometry}
	if len(data.Geometry) > 0 {
		if polygon, err := geo.ParsePolygon(data.Geometry); err == nil {
			aoi.Polygon = polygon
		}
	}
	return aoi
}

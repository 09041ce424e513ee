// Package geo validates GeoJSON payloads at the system boundary and converts them
// into typed orb geometries.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type typeProbe struct {
	Type string `json:"type"`
}

// ParseFeatureCollection accepts a FeatureCollection, a single Feature or a bare
// geometry and always returns a FeatureCollection.
func ParseFeatureCollection(data []byte) (*geojson.FeatureCollection, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		return fc, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		return geojson.NewFeatureCollection().Append(f), nil
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		return geojson.NewFeatureCollection().Append(geojson.NewFeature(g.Geometry())), nil
	case "":
		return nil, fmt.Errorf("geojson object has no type")
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", probe.Type)
	}
}

// Normalize parses data and re-encodes it as a FeatureCollection.
func Normalize(data []byte) ([]byte, error) {
	fc, err := ParseFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return out, nil
}

// ParsePolygon accepts a Polygon geometry or a Feature wrapping one.
func ParsePolygon(data []byte) (orb.Polygon, error) {
	fc, err := ParseFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) != 1 {
		return nil, fmt.Errorf("expected a single polygon, got %d features", len(fc.Features))
	}
	if fc.Features[0].Geometry == nil {
		return nil, fmt.Errorf("feature has no geometry")
	}
	polygon, ok := fc.Features[0].Geometry.(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("expected Polygon geometry, got %s", fc.Features[0].Geometry.GeoJSONType())
	}
	if err := ValidatePolygon(polygon); err != nil {
		return nil, err
	}
	return polygon, nil
}

// ValidatePolygon checks ring closure, ring size and WGS84 coordinate ranges.
func ValidatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("polygon has no rings")
	}
	for i, ring := range p {
		if len(ring) < 4 {
			return fmt.Errorf("ring %d has %d points, need at least 4", i, len(ring))
		}
		if !ring.Closed() {
			return fmt.Errorf("ring %d is not closed", i)
		}
		for _, pt := range ring {
			if pt.Lon() < -180 || pt.Lon() > 180 || pt.Lat() < -90 || pt.Lat() > 90 {
				return fmt.Errorf("coordinate %v out of range", pt)
			}
		}
	}
	return nil
}

// PolygonCoordinates returns the polygon as nested [lon, lat] arrays, the
// shape expected under a GeoJSON "coordinates" key.
func PolygonCoordinates(p orb.Polygon) [][][2]float64 {
	rings := make([][][2]float64, len(p))
	for i, ring := range p {
		pts := make([][2]float64, len(ring))
		for j, pt := range ring {
			pts[j] = [2]float64{pt[0], pt[1]}
		}
		rings[i] = pts
	}
	return rings
}

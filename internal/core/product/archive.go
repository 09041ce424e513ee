package product

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"floodmap.app/pkg/errors"
	"floodmap.app/pkg/geo"
)

const maxGeometryFileBytes = 256 << 20

// Geometries holds the flood and footprint FeatureCollections extracted from
// a product archive.
type Geometries struct {
	Flood         []byte
	Footprint     []byte
	FloodFile     string
	FootprintFile string
}

// ExtractGeometries locates exactly one flood file and one footprint file in
// a zip archive. Names are matched case-insensitively; a name containing
// "footprint" is never a flood candidate.
func ExtractGeometries(archive []byte) (*Geometries, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, errors.NewMalformedArchiveError("product archive is not a readable zip", err)
	}

	var floods, footprints []*zip.File
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/") {
			continue
		}
		if strings.HasPrefix(file.Name, "__MACOSX/") {
			continue
		}
		name := strings.ToLower(path.Base(file.Name))
		ext := path.Ext(name)
		if ext != ".geojson" && ext != ".json" {
			continue
		}
		switch {
		case strings.Contains(name, "footprint"):
			footprints = append(footprints, file)
		case strings.Contains(name, "flood"):
			floods = append(floods, file)
		}
	}

	flood, err := pickSingle(floods, "flood")
	if err != nil {
		return nil, err
	}
	footprint, err := pickSingle(footprints, "footprint")
	if err != nil {
		return nil, err
	}

	floodData, err := readGeometry(flood)
	if err != nil {
		return nil, err
	}
	footprintData, err := readGeometry(footprint)
	if err != nil {
		return nil, err
	}

	return &Geometries{
		Flood:         floodData,
		Footprint:     footprintData,
		FloodFile:     flood.Name,
		FootprintFile: footprint.Name,
	}, nil
}

func pickSingle(candidates []*zip.File, kind string) (*zip.File, error) {
	switch len(candidates) {
	case 0:
		return nil, errors.NewMalformedArchiveError(fmt.Sprintf("archive has no %s geometry file", kind), nil)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name
		}
		return nil, errors.NewMalformedArchiveError(
			fmt.Sprintf("archive has %d %s geometry files: %s", len(candidates), kind, strings.Join(names, ", ")), nil)
	}
}

func readGeometry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, errors.NewMalformedArchiveError("open "+file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxGeometryFileBytes+1))
	if err != nil {
		return nil, errors.NewMalformedArchiveError("read "+file.Name, err)
	}
	if len(data) > maxGeometryFileBytes {
		return nil, errors.NewMalformedArchiveError(file.Name+" exceeds the geometry size limit", nil)
	}

	normalized, err := geo.Normalize(data)
	if err != nil {
		return nil, errors.NewMalformedArchiveError(file.Name+" is not valid GeoJSON", err)
	}
	return normalized, nil
}

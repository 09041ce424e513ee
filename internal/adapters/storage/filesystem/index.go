package filesystem

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"floodmap.app/internal/ports"
	apperrors "floodmap.app/pkg/errors"
	"github.com/jszwec/csvutil"
)

const indexTimeLayout = time.RFC3339Nano

// indexRow is the on-disk layout of one index entry
type indexRow struct {
	AOIID         string `csv:"aoi_id"`
	Datetime      string `csv:"datetime"`
	Product       string `csv:"product"`
	FloodPath     string `csv:"flood_geojson_path"`
	FootprintPath string `csv:"footprint_geojson_path"`
}

func decodeIndex(data []byte) ([]ports.IndexEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	decoder, err := csvutil.NewDecoder(csv.NewReader(bytes.NewReader(data)))
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("failed to read index header", err)
	}

	var rows []indexRow
	if err := decoder.Decode(&rows); err != nil && err != io.EOF {
		return nil, apperrors.NewStorageError("failed to decode index", err)
	}

	entries := make([]ports.IndexEntry, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(indexTimeLayout, row.Datetime)
		if err != nil {
			return nil, apperrors.NewStorageError(
				fmt.Sprintf("index row for product %s has an unreadable datetime %q", row.Product, row.Datetime), err)
		}
		entries = append(entries, ports.IndexEntry{
			AOIID:         row.AOIID,
			Timestamp:     ts.UTC(),
			ProductID:     row.Product,
			FloodPath:     row.FloodPath,
			FootprintPath: row.FootprintPath,
		})
	}
	return entries, nil
}

func encodeIndex(entries []ports.IndexEntry) ([]byte, error) {
	rows := make([]indexRow, len(entries))
	for i, e := range entries {
		rows[i] = indexRow{
			AOIID:         e.AOIID,
			Datetime:      e.Timestamp.UTC().Format(indexTimeLayout),
			Product:       e.ProductID,
			FloodPath:     e.FloodPath,
			FootprintPath: e.FootprintPath,
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to encode index", err)
	}
	return data, nil
}

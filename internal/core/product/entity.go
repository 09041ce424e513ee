package product

import (
	"fmt"
	"strings"
	"time"

	"floodmap.app/internal/ports"
)

// GroupKeyLayout formats group keys for display and for request payloads.
// Fractional seconds are kept so a label parses back to the exact key.
const GroupKeyLayout = time.RFC3339Nano

// Product is a flood product discovered for an AOI. GroupKey is zero until
// the product has been through GroupByTime.
type Product struct {
	ID        string
	AOIID     string
	Timestamp time.Time
	GroupKey  time.Time
}

// State is the materialization state of a single product
type State int

const (
	StateUnknown State = iota
	StateDiscovered
	StateDownloading
	StateMaterialized
	StateFailed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateDownloading:
		return "downloading"
	case StateMaterialized:
		return "materialized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what happened to one member of a group download
type Outcome string

const (
	OutcomeMaterialized Outcome = "materialized"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeFailed       Outcome = "failed"
)

// MemberSummary describes one product inside a group summary
type MemberSummary struct {
	ProductID  string
	Timestamp  time.Time
	Downloaded bool
	Artifact   *ports.IndexEntry
}

// GroupSummary is the per-group view returned by AvailableProducts
type GroupSummary struct {
	AOIID   string
	Key     time.Time
	Members []MemberSummary
}

// Label returns the group key as displayed to the user
func (g GroupSummary) Label() string {
	return g.Key.UTC().Format(GroupKeyLayout)
}

// Downloaded reports whether every member of the group is materialized
func (g GroupSummary) Downloaded() bool {
	for _, m := range g.Members {
		if !m.Downloaded {
			return false
		}
	}
	return len(g.Members) > 0
}

// Artifact returns the index entry of the first materialized member, if any
func (g GroupSummary) Artifact() *ports.IndexEntry {
	for _, m := range g.Members {
		if m.Artifact != nil {
			return m.Artifact
		}
	}
	return nil
}

// Products returns the members as products carrying the group key
func (g GroupSummary) Products() []Product {
	products := make([]Product, 0, len(g.Members))
	for _, m := range g.Members {
		products = append(products, Product{
			ID:        m.ProductID,
			AOIID:     g.AOIID,
			Timestamp: m.Timestamp,
			GroupKey:  g.Key,
		})
	}
	return products
}

// MemberResult is the outcome of materializing one member
type MemberResult struct {
	ProductID string
	Outcome   Outcome
	State     State
	Entry     *ports.IndexEntry
	Err       error
}

// DownloadResult reports every member of a group download individually
type DownloadResult struct {
	AOIID    string
	GroupKey time.Time
	Members  []MemberResult
}

// Count returns the number of members with the given outcome
func (r *DownloadResult) Count(outcome Outcome) int {
	n := 0
	for _, m := range r.Members {
		if m.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failed returns the members whose materialization failed
func (r *DownloadResult) Failed() []MemberResult {
	var failed []MemberResult
	for _, m := range r.Members {
		if m.Outcome == OutcomeFailed {
			failed = append(failed, m)
		}
	}
	return failed
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsValid validates the date range
func (r DateRange) IsValid() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("from and to dates are required")
	}
	if r.From.After(r.To) {
		return fmt.Errorf("from date %s is after to date %s",
			r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	}
	return nil
}

// AreaCoverage counts the materialized products of one AOI
type AreaCoverage struct {
	AOIID        string
	Name         string
	Materialized int
	Latest       time.Time
}

// CoverageReport reconciles the AOI listing with the index
type CoverageReport struct {
	Areas    []AreaCoverage
	Orphaned []ports.IndexEntry
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

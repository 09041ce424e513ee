package product

import (
	"sort"
	"time"
)

// DefaultGroupGap is the largest distance from the current group anchor at
// which a product still joins that group.
const DefaultGroupGap = 60 * time.Second

// Group is a run of products sharing a group key
type Group struct {
	Key      time.Time
	Products []Product
}

// GroupByTime returns a sorted copy of products with GroupKey set. A product
// starts a new group when it is more than gap after the current anchor; the
// anchor is the first timestamp of the group, so a chain of close passes can
// span well over gap end to end. Ties on timestamp are ordered by product id
// so the result does not depend on input order.
func GroupByTime(products []Product, gap time.Duration) []Product {
	if len(products) == 0 {
		return []Product{}
	}

	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	anchor := sorted[0].Timestamp
	for i := range sorted {
		if sorted[i].Timestamp.Sub(anchor) > gap {
			anchor = sorted[i].Timestamp
		}
		sorted[i].GroupKey = anchor
	}
	return sorted
}

// GroupProducts groups with DefaultGroupGap
func GroupProducts(products []Product) []Product {
	return GroupByTime(products, DefaultGroupGap)
}

// Partition splits the output of GroupByTime into groups, in key order.
func Partition(grouped []Product) []Group {
	var groups []Group
	for _, p := range grouped {
		if n := len(groups); n > 0 && groups[n-1].Key.Equal(p.GroupKey) {
			groups[n-1].Products = append(groups[n-1].Products, p)
			continue
		}
		groups = append(groups, Group{Key: p.GroupKey, Products: []Product{p}})
	}
	return groups
}

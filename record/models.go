// Package record defines the cost-record entity: one cost observation per
// (date, service, region) triple.
package record

import (
	"github.com/xraph/costwatch/types"
)

// CostRecord is one daily cost observation for a service in a region.
// The ledger holds at most one record per (Date, Service, Region); the
// reconciliation engine enforces this by replacing, never appending, rows
// for any date present in an incoming batch.
type CostRecord struct {
	types.Entity

	Date    types.Date `json:"date"`
	Service string     `json:"service"`
	Region  string     `json:"region"`
	Cost    types.Cost `json:"cost"`
}

// Key returns the record's natural key string "date|service|region".
// Stores use it as the primary key so replacement is a plain upsert.
func (r *CostRecord) Key() string {
	return r.Date.String() + "|" + r.Service + "|" + r.Region
}

// QueryOpts filters cost-record listings. Zero values mean "no filter".
type QueryOpts struct {
	Service string
	Region  string
	Start   types.Date
	End     types.Date
	Limit   int
	Offset  int
}

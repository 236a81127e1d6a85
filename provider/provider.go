// Package provider defines the narrow contract between Costwatch and a
// cloud billing provider client.
//
// The wire types mirror the shape of a grouped daily cost query (AWS Cost
// Explorer's GetCostAndUsage with DAILY granularity and SERVICE/REGION
// grouping, and its equivalents elsewhere). Costwatch does not ship a
// concrete cloud client; callers inject an implementation at wiring time,
// the same way audit backends are injected.
package provider

import (
	"context"

	"github.com/xraph/costwatch/types"
)

// Group is one dimension group inside a time bucket. Keys are positional:
// service first, region second. Amount is the monetary figure as the
// provider reports it, usually a decimal string.
type Group struct {
	Keys   []string `json:"keys"`
	Amount string   `json:"amount"`
}

// TimeBucket is one day of grouped cost figures. Start identifies the day;
// providers send either a plain date or an RFC 3339 timestamp.
type TimeBucket struct {
	Start  string  `json:"start"`
	End    string  `json:"end,omitempty"`
	Groups []Group `json:"groups"`
}

// Response is one provider query result: a list of daily time buckets
// covering the requested window. An empty response is legitimate; a quiet
// window simply has no usage.
type Response struct {
	Buckets []TimeBucket `json:"buckets"`
}

// Client fetches grouped daily cost data from a billing provider.
// Implementations own credentials, retries, and pagination; Costwatch only
// sees the assembled response.
type Client interface {
	// FetchDailyCosts returns daily cost figures grouped by service and
	// region for the window [start, end).
	FetchDailyCosts(ctx context.Context, start, end types.Date) (*Response, error)
}

// ClientFunc is an adapter to use a plain function as a Client.
type ClientFunc func(ctx context.Context, start, end types.Date) (*Response, error)

// FetchDailyCosts implements Client.
func (f ClientFunc) FetchDailyCosts(ctx context.Context, start, end types.Date) (*Response, error) {
	return f(ctx, start, end)
}

package costwatch

import (
	"strings"

	"github.com/xraph/costwatch/provider"
	"github.com/xraph/costwatch/record"
	"github.com/xraph/costwatch/types"
)

// Normalize converts a raw provider response into a flat batch of cost
// records ready for reconciliation. Keys are positional: the first is the
// service name, the second the region. The bucket start date is parsed as
// either a plain date or an RFC 3339 timestamp and truncated to the day.
//
// Normalization is all-or-nothing: any malformed entry rejects the whole
// response with a MalformedError and nothing reaches the ledger. Malformed
// means a missing or blank service or region key, an unparseable bucket
// date, or an amount that is not a valid non-negative decimal.
func Normalize(resp *provider.Response) ([]*record.CostRecord, error) {
	if resp == nil {
		return nil, nil
	}

	var out []*record.CostRecord

	for bi, bucket := range resp.Buckets {
		day, err := types.ParseDate(bucket.Start)
		if err != nil {
			return nil, &MalformedError{Bucket: bi, Group: -1, Reason: "invalid bucket start date", Err: err}
		}

		for gi, group := range bucket.Groups {
			service, region, reason := splitKeys(group.Keys)
			if reason != "" {
				return nil, &MalformedError{Bucket: bi, Group: gi, Reason: reason}
			}

			cost, err := types.ParseCost(group.Amount)
			if err != nil {
				return nil, &MalformedError{Bucket: bi, Group: gi, Reason: "invalid cost amount", Err: err}
			}

			if cost.IsNegative() {
				return nil, &MalformedError{Bucket: bi, Group: gi, Reason: "negative cost amount"}
			}

			out = append(out, &record.CostRecord{
				Entity:  types.NewEntity(),
				Date:    day,
				Service: service,
				Region:  region,
				Cost:    cost,
			})
		}
	}

	return out, nil
}

func splitKeys(keys []string) (service, region, reason string) {
	if len(keys) < 2 {
		return "", "", "missing service/region keys"
	}

	service = strings.TrimSpace(keys[0])
	region = strings.TrimSpace(keys[1])

	if service == "" {
		return "", "", "blank service key"
	}

	if region == "" {
		return "", "", "blank region key"
	}

	return service, region, ""
}

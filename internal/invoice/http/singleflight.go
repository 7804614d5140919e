package invoicehttp

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var detailGroup singleflight.Group

// singleflightDetail collapses concurrent aggregations of the same invoice
// so a burst of identical requests only pays for one pass over the dataset.
func singleflightDetail(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := detailGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}

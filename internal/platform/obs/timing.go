package obs

import (
	"context"
	"flight-market-service/internal/logging"
	"time"
)

// Time logs the duration of an operation when the returned func is deferred.
//
//	defer obs.Time(ctx, "flights.Upsert")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logging.Ctx(ctx).Warn().
				Str("op", name).
				Int64("dur_ms", dur.Milliseconds()).
				Err(*errp).
				Msg("operation failed")
			return
		}
		logging.Ctx(ctx).Debug().
			Str("op", name).
			Int64("dur_ms", dur.Milliseconds()).
			Msg("operation done")
	}
}

package service

import (
	"math"
	"time"

	"github.com/Indeera01/parkly-backend/internal/db"
	"github.com/Indeera01/parkly-backend/internal/errors"
)

// ComputePrice prices a booking interval against the space's rates.
//
// Day-rate pricing always rounds up to whole days; hourly pricing is
// pro-rata with no rounding. The asymmetry (a 1-hour booking on a
// day-rate-only space costs a full day) is deliberate pricing policy and
// must not be "fixed".
func ComputePrice(space *db.ParkingSpace, start, end time.Time) (float64, error) {
	hours := end.Sub(start).Hours()
	days := hours / 24

	perDay := rate(space.PricePerDay)
	perHour := rate(space.PricePerHour)

	switch {
	case perDay > 0 && days >= 1:
		return math.Ceil(days) * perDay, nil
	case perHour > 0:
		return hours * perHour, nil
	case perDay > 0:
		return math.Ceil(days) * perDay, nil
	}
	return 0, errors.Reject(errors.ReasonNoPricingConfigured)
}

// rate treats a missing or zero rate as not configured, matching how older
// space records stored "no rate" as 0.
func rate(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

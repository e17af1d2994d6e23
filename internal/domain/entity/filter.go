package entity

import (
	"fmt"
	"time"
)

const (
	FilterMinPrice = 0
	FilterMaxPrice = MaxPrice
)

var (
	FilterMinDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	FilterMaxDate = time.Date(2070, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Filter is an acceptance window over the market. A listing passes when it
// falls inside all three ranges.
type Filter struct {
	PriceLo     int       `json:"price_lo"`
	PriceHi     int       `json:"price_hi"`
	ConditionLo Condition `json:"condition_lo"`
	ConditionHi Condition `json:"condition_hi"`
	DateLo      time.Time `json:"date_lo"`
	DateHi      time.Time `json:"date_hi"`
}

func DefaultFilter() Filter {
	return Filter{
		PriceLo:     FilterMinPrice,
		PriceHi:     FilterMaxPrice,
		ConditionLo: ConditionPoor,
		ConditionHi: ConditionBrandNew,
		DateLo:      FilterMinDate,
		DateHi:      FilterMaxDate,
	}
}

// Validate rejects a filter iff one of its ranges is inverted.
func (f Filter) Validate() error {
	if f.PriceLo > f.PriceHi {
		return fmt.Errorf("%w: price lower bound %d is above upper bound %d", ErrInvalidFilter, f.PriceLo, f.PriceHi)
	}
	if f.ConditionLo > f.ConditionHi {
		return fmt.Errorf("%w: condition lower bound %d is above upper bound %d", ErrInvalidFilter, f.ConditionLo, f.ConditionHi)
	}
	if f.DateLo.After(f.DateHi) {
		return fmt.Errorf("%w: date lower bound %s is after upper bound %s", ErrInvalidFilter,
			FormatTimestamp(f.DateLo), FormatTimestamp(f.DateHi))
	}
	return nil
}

// Clamp pulls every bound into the fixed filter limits.
func (f Filter) Clamp() Filter {
	f.PriceLo = clampInt(f.PriceLo, FilterMinPrice, FilterMaxPrice)
	f.PriceHi = clampInt(f.PriceHi, FilterMinPrice, FilterMaxPrice)
	f.ConditionLo = Condition(clampInt(int(f.ConditionLo), int(ConditionPoor), int(ConditionBrandNew)))
	f.ConditionHi = Condition(clampInt(int(f.ConditionHi), int(ConditionPoor), int(ConditionBrandNew)))
	f.DateLo = clampTime(f.DateLo, FilterMinDate, FilterMaxDate)
	f.DateHi = clampTime(f.DateHi, FilterMinDate, FilterMaxDate)
	return f
}

func (f Filter) Accepts(e MarketEntry) bool {
	return e.Price >= f.PriceLo && e.Price <= f.PriceHi &&
		e.Condition >= f.ConditionLo && e.Condition <= f.ConditionHi &&
		!e.ListedAt.Before(f.DateLo) && !e.ListedAt.After(f.DateHi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampTime(v, lo, hi time.Time) time.Time {
	if v.IsZero() || v.Before(lo) {
		return lo
	}
	if v.After(hi) {
		return hi
	}
	return v
}

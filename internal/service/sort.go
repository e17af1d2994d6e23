package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

type SortKey string

const (
	SortByPrice     SortKey = "price"
	SortByCondition SortKey = "condition"
	SortByDistance  SortKey = "distance"
	SortByDate      SortKey = "date"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByPrice, SortByCondition, SortByDistance, SortByDate:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case Ascending, Descending:
		return o, nil
	case "":
		return Ascending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b entity.Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Latitude - a.Latitude)
	dLong := toRad(b.Longitude - a.Longitude)
	lat1, lat2 := toRad(a.Latitude), toRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLong/2)*math.Sin(dLong/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SortListings returns a sorted copy of listings. Equal keys keep their
// input order. Sorting by distance needs ref.
func SortListings(listings []entity.SaleListing, key SortKey, order SortOrder, ref *entity.Coordinate) ([]entity.SaleListing, error) {
	var less func(a, b entity.SaleListing) bool
	switch key {
	case SortByPrice:
		less = func(a, b entity.SaleListing) bool { return a.Price < b.Price }
	case SortByCondition:
		less = func(a, b entity.SaleListing) bool { return a.Condition < b.Condition }
	case SortByDate:
		less = func(a, b entity.SaleListing) bool { return a.ListedAt.Before(b.ListedAt) }
	case SortByDistance:
		if ref == nil {
			return nil, ErrLocationUnavailable
		}
		origin := *ref
		less = func(a, b entity.SaleListing) bool {
			return DistanceKm(origin, a.Location.Coordinate) < DistanceKm(origin, b.Location.Coordinate)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
	if order != Ascending && order != Descending {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}

	out := cloneListings(listings)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

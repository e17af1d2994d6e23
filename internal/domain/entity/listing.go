package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxPrice is the exclusive upper bound of a listing price.
const MaxPrice = 10000

type Condition int

const (
	ConditionPoor Condition = iota
	ConditionFair
	ConditionExcellent
	ConditionBrandNew
)

var conditionNames = map[Condition]string{
	ConditionPoor:      "Poor",
	ConditionFair:      "Fair",
	ConditionExcellent: "Excellent",
	ConditionBrandNew:  "Brand New",
}

func (c Condition) Valid() bool {
	return c >= ConditionPoor && c <= ConditionBrandNew
}

func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
}

func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude) &&
		c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Location is a named point.
type Location struct {
	Title string `json:"title"`
	Coordinate
}

func (l Location) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidLocation)
	}
	if !l.Coordinate.Valid() {
		return fmt.Errorf("%w: coordinate out of range", ErrInvalidLocation)
	}
	return nil
}

func ValidatePrice(price int) error {
	if price <= 0 || price >= MaxPrice {
		return fmt.Errorf("%w: must be greater than 0 and less than %d", ErrInvalidPrice, MaxPrice)
	}
	return nil
}

func ValidateCondition(c Condition) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCondition, int(c))
	}
	return nil
}

// MarketEntry is a listing as stored in the market collection, before its
// photocard reference is resolved. Its id is the photocard id.
type MarketEntry struct {
	PhotocardID string    `json:"photocard_id"`
	Price       int       `json:"price"`
	Location    Location  `json:"location"`
	Condition   Condition `json:"condition"`
	ListedAt    time.Time `json:"date"`
}

func NewMarketEntry(photocardID string, price int, location Location, condition Condition, now time.Time) (*MarketEntry, error) {
	if photocardID == "" {
		return nil, fmt.Errorf("%w: empty photocard id", ErrInvalidPhotocard)
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if err := ValidateCondition(condition); err != nil {
		return nil, err
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	return &MarketEntry{
		PhotocardID: photocardID,
		Price:       price,
		Location:    location,
		Condition:   condition,
		ListedAt:    now.UTC().Truncate(time.Second),
	}, nil
}

type SaleListing struct {
	Photocard Photocard `json:"photocard"`
	Price     int       `json:"price"`
	Location  Location  `json:"location"`
	Condition Condition `json:"condition"`
	ListedAt  time.Time `json:"date"`
}

func NewSaleListing(p Photocard, e MarketEntry) SaleListing {
	return SaleListing{
		Photocard: p,
		Price:     e.Price,
		Location:  e.Location,
		Condition: e.Condition,
		ListedAt:  e.ListedAt,
	}
}

func (l SaleListing) ID() string {
	return l.Photocard.ID
}

func (l SaleListing) Entry() MarketEntry {
	return MarketEntry{
		PhotocardID: l.Photocard.ID,
		Price:       l.Price,
		Location:    l.Location,
		Condition:   l.Condition,
		ListedAt:    l.ListedAt,
	}
}

func (l SaleListing) SearchField(scope SearchScope) (string, bool) {
	return l.Photocard.SearchField(scope)
}

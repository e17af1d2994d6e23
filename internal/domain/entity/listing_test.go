package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocation = Location{Title: "Melbourne", Coordinate: Coordinate{Latitude: -37.8136, Longitude: 144.9631}}

func TestValidatePrice(t *testing.T) {
	assert.True(t, errors.Is(ValidatePrice(0), ErrInvalidPrice))
	assert.True(t, errors.Is(ValidatePrice(-3), ErrInvalidPrice))
	assert.True(t, errors.Is(ValidatePrice(MaxPrice), ErrInvalidPrice))
	assert.NoError(t, ValidatePrice(1))
	assert.NoError(t, ValidatePrice(MaxPrice-1))
}

func TestNewMarketEntry_Success(t *testing.T) {
	now := time.Date(2024, 4, 20, 10, 11, 12, 999, time.UTC)

	entry, err := NewMarketEntry("pc1", 25, testLocation, ConditionExcellent, now)

	require.NoError(t, err)
	assert.Equal(t, "pc1", entry.PhotocardID)
	assert.Equal(t, 25, entry.Price)
	assert.Equal(t, ConditionExcellent, entry.Condition)
	assert.Equal(t, now.Truncate(time.Second), entry.ListedAt)
}

func TestNewMarketEntry_ValidationErrors(t *testing.T) {
	now := time.Now()

	_, err := NewMarketEntry("pc1", 25, testLocation, Condition(4), now)
	assert.True(t, errors.Is(err, ErrInvalidCondition))

	_, err = NewMarketEntry("pc1", 10000, testLocation, ConditionFair, now)
	assert.True(t, errors.Is(err, ErrInvalidPrice))

	_, err = NewMarketEntry("pc1", 25, Location{Coordinate: testLocation.Coordinate}, ConditionFair, now)
	assert.True(t, errors.Is(err, ErrInvalidLocation))

	_, err = NewMarketEntry("pc1", 25, Location{Title: "Nowhere", Coordinate: Coordinate{Latitude: 91}}, ConditionFair, now)
	assert.True(t, errors.Is(err, ErrInvalidLocation))
}

func TestCondition_String(t *testing.T) {
	assert.Equal(t, "Poor", ConditionPoor.String())
	assert.Equal(t, "Brand New", ConditionBrandNew.String())
	assert.Equal(t, "Condition(7)", Condition(7).String())
}

func TestNewPhotocard_DerivesCatalogKeys(t *testing.T) {
	owner := Owner{UID: "u1", Email: "u1@example.com", DisplayName: "Uno"}

	p, err := NewPhotocard("pc1", owner, "BLACKPINK", "Jisoo", " Born Pink ", "images", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "blackpink", p.GroupUID)
	assert.Equal(t, "jisoo", p.IdolUID)
	assert.Equal(t, "Born Pink", p.Album)
	assert.Equal(t, "born pink", p.AlbumUID)
	assert.Equal(t, "pc1.jpg", p.ImageName)
	assert.Equal(t, "images/pc1.jpg", p.ImagePath)
	assert.False(t, p.Favourite)
	assert.True(t, p.OwnedBy("u1"))
	assert.False(t, p.OwnedBy(""))
}

func TestNewPhotocard_RequiresNames(t *testing.T) {
	_, err := NewPhotocard("pc1", Owner{UID: "u1"}, "BLACKPINK", "", "Born Pink", "images", time.Now())
	assert.True(t, errors.Is(err, ErrInvalidPhotocard))
}

func TestIdol_Matches(t *testing.T) {
	idol, err := NewIdol("blackpink", "ROSÉ")
	require.NoError(t, err)

	assert.True(t, idol.Matches(Photocard{Idol: "Rosé", Group: "BLACKPINK"}))
	assert.False(t, idol.Matches(Photocard{Idol: "Rosé", Group: "Solo"}))
}

func TestCatalog_SearchField(t *testing.T) {
	idol, err := NewIdol("BLACKPINK", "Jisoo")
	require.NoError(t, err)

	v, ok := idol.Group.SearchField(ScopeGroup)
	assert.True(t, ok)
	assert.Equal(t, "BLACKPINK", v)
	_, ok = idol.Group.SearchField(ScopeIdol)
	assert.False(t, ok)

	v, ok = idol.SearchField(ScopeIdol)
	assert.True(t, ok)
	assert.Equal(t, "Jisoo", v)
	v, ok = idol.SearchField(ScopeGroup)
	assert.True(t, ok)
	assert.Equal(t, "BLACKPINK", v)
	_, ok = idol.SearchField(ScopeAlbum)
	assert.False(t, ok)

	album := Album{UID: "born pink", Name: "Born Pink"}
	v, ok = album.SearchField(ScopeAlbum)
	assert.True(t, ok)
	assert.Equal(t, "Born Pink", v)
	_, ok = album.SearchField(ScopeGroup)
	assert.False(t, ok)
}

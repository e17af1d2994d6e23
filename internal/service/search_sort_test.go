package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	cards := []entity.Photocard{{ID: "1", Idol: "Jisoo"}, {ID: "2", Idol: "Rosé"}}

	got := Search(cards, entity.ScopeIdol, "ro")

	assert.Equal(t, []string{"2"}, cardIDs(got))
	assert.Equal(t, []string{"2"}, cardIDs(Search(cards, entity.ScopeIdol, "RO")))
}

func TestSearch_EmptyTermReturnsInput(t *testing.T) {
	cards := []entity.Photocard{{ID: "1", Idol: "Jisoo"}, {ID: "2", Idol: "Rosé"}}

	got := Search(cards, entity.ScopeGroup, "")

	require.Len(t, got, 2)
	assert.Same(t, &cards[0], &got[0])
}

func TestSearch_MissingFieldNeverMatches(t *testing.T) {
	listings := []entity.SaleListing{
		{Photocard: entity.Photocard{ID: "1", Album: "Born Pink"}},
		{Photocard: entity.Photocard{ID: "2"}},
	}

	assert.Equal(t, []string{"1"}, listingIDs(Search(listings, entity.ScopeAlbum, "pink")))
	assert.Empty(t, Search(listings, entity.ScopeGroup, "a"))
}

func TestSearch_ResultIsSubsetMatchingTerm(t *testing.T) {
	cards := []entity.Photocard{
		{ID: "1", Group: "BLACKPINK"}, {ID: "2", Group: "TWICE"}, {ID: "3", Group: "Pink Fantasy"},
	}
	got := Search(cards, entity.ScopeGroup, "pInK")
	assert.Equal(t, []string{"1", "3"}, cardIDs(got))
}

func TestSortListings_PriceDescending(t *testing.T) {
	listings := []entity.SaleListing{testListing("a", "u2", 30), testListing("b", "u2", 10)}
	listings[0], listings[1] = listings[1], listings[0]

	got, err := SortListings(listings, SortByPrice, Descending, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{30, 10}, []int{got[0].Price, got[1].Price})
	assert.Equal(t, "b", listings[0].ID(), "input must not be reordered")
}

func TestSortListings_StableForEqualKeys(t *testing.T) {
	listings := []entity.SaleListing{
		testListing("a", "u2", 20), testListing("b", "u2", 10), testListing("c", "u2", 20), testListing("d", "u2", 10),
	}

	first, err := SortListings(listings, SortByPrice, Ascending, nil)
	require.NoError(t, err)
	second, err := SortListings(first, SortByPrice, Ascending, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "d", "a", "c"}, listingIDs(first))
	assert.Equal(t, listingIDs(first), listingIDs(second))

	desc, err := SortListings(listings, SortByPrice, Descending, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b", "d"}, listingIDs(desc))
}

func TestSortListings_ConditionAndDate(t *testing.T) {
	older := testListing("old", "u2", 10)
	older.ListedAt = testListedAt.Add(-time.Hour)
	older.Condition = entity.ConditionBrandNew
	newer := testListing("new", "u2", 10)
	newer.Condition = entity.ConditionPoor

	byDate, err := SortListings([]entity.SaleListing{newer, older}, SortByDate, Ascending, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new"}, listingIDs(byDate))

	byCondition, err := SortListings([]entity.SaleListing{older, newer}, SortByCondition, Ascending, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, listingIDs(byCondition))
}

func TestSortListings_DistanceNeedsLocation(t *testing.T) {
	listings := []entity.SaleListing{testListing("a", "u2", 30)}

	got, err := SortListings(listings, SortByDistance, Ascending, nil)

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
}

func TestSortListings_DistanceFromReference(t *testing.T) {
	sydney := testListing("syd", "u2", 10)
	sydney.Location = entity.Location{Title: "Sydney", Coordinate: entity.Coordinate{Latitude: -33.8688, Longitude: 151.2093}}
	geelong := testListing("gee", "u2", 10)
	geelong.Location = entity.Location{Title: "Geelong", Coordinate: entity.Coordinate{Latitude: -38.1499, Longitude: 144.3617}}

	ref := testLocation.Coordinate
	got, err := SortListings([]entity.SaleListing{sydney, geelong}, SortByDistance, Ascending, &ref)

	require.NoError(t, err)
	assert.Equal(t, []string{"gee", "syd"}, listingIDs(got))
}

func TestDistanceKm_MelbourneSydney(t *testing.T) {
	sydney := entity.Coordinate{Latitude: -33.8688, Longitude: 151.2093}
	assert.InDelta(t, 714, DistanceKm(testLocation.Coordinate, sydney), 5)
	assert.InDelta(t, 0, DistanceKm(sydney, sydney), 1e-9)
}

func TestParseSortKeyAndOrder(t *testing.T) {
	key, err := ParseSortKey("distance")
	require.NoError(t, err)
	assert.Equal(t, SortByDistance, key)

	_, err = ParseSortKey("popularity")
	assert.True(t, errors.Is(err, ErrInvalidSortKey))

	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, order)

	_, err = ParseSortOrder("sideways")
	assert.True(t, errors.Is(err, ErrInvalidSortOrder))
}

func TestSearch_OverCatalogDirectories(t *testing.T) {
	groups := []entity.Group{{UID: "blackpink", Name: "BLACKPINK"}, {UID: "twice", Name: "TWICE"}}
	assert.Equal(t, []entity.Group{groups[1]}, Search(groups, entity.ScopeGroup, "tw"))

	idols := []entity.Idol{
		{UID: "jisoo", Name: "Jisoo", Group: groups[0]},
		{UID: "jihyo", Name: "Jihyo", Group: groups[1]},
	}
	assert.Equal(t, []entity.Idol{idols[0], idols[1]}, Search(idols, entity.ScopeIdol, "JI"))
	assert.Equal(t, []entity.Idol{idols[1]}, Search(idols, entity.ScopeGroup, "twice"))

	albums := []entity.Album{{UID: "born pink", Name: "Born Pink"}, {UID: "the album", Name: "The Album"}}
	assert.Equal(t, []entity.Album{albums[0]}, Search(albums, entity.ScopeAlbum, "pink"))
}

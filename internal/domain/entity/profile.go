package entity

import (
	"fmt"
	"strings"
)

type Group struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func NewGroup(name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, fmt.Errorf("%w: group name is required", ErrInvalidPhotocard)
	}
	return Group{UID: CatalogUID(name), Name: name}, nil
}

type Idol struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Group Group  `json:"group"`
}

func NewIdol(groupName, name string) (Idol, error) {
	group, err := NewGroup(groupName)
	if err != nil {
		return Idol{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Idol{}, fmt.Errorf("%w: idol name is required", ErrInvalidPhotocard)
	}
	return Idol{UID: CatalogUID(name), Name: name, Group: group}, nil
}

// Matches reports whether a photocard shows this idol of this group.
func (i Idol) Matches(p Photocard) bool {
	return strings.EqualFold(p.Idol, i.Name) && strings.EqualFold(p.Group, i.Group.Name)
}

func (g Group) Matches(p Photocard) bool {
	return strings.EqualFold(p.Group, g.Name)
}

// SearchField matches the group scope only.
func (g Group) SearchField(scope SearchScope) (string, bool) {
	if scope != ScopeGroup {
		return "", false
	}
	return g.Name, g.Name != ""
}

func (i Idol) SearchField(scope SearchScope) (string, bool) {
	var v string
	switch scope {
	case ScopeIdol:
		v = i.Name
	case ScopeGroup:
		v = i.Group.Name
	}
	return v, v != ""
}

type Album struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func (a Album) SearchField(scope SearchScope) (string, bool) {
	if scope != ScopeAlbum {
		return "", false
	}
	return a.Name, a.Name != ""
}

// Profile is a user document with its bias selection.
type Profile struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	FavGroup *Group `json:"fav_group,omitempty"`
	FavIdol  *Idol  `json:"fav_idol,omitempty"`
}

func (p Profile) Owner() Owner {
	return Owner{UID: p.UID, Email: p.Email, DisplayName: p.Name}
}

// ExternalProfile is what another user sees of a profile.
type ExternalProfile struct {
	UID        string      `json:"uid"`
	Name       string      `json:"name"`
	FavGroup   *Group      `json:"fav_group,omitempty"`
	FavIdol    *Idol       `json:"fav_idol,omitempty"`
	Favourites []Photocard `json:"favourites"`
}

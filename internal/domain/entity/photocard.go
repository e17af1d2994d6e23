package entity

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Owner identifies a user. Photocards carry it as their ownership fields.
type Owner struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Photocard struct {
	ID        string    `json:"id"`
	Idol      string    `json:"idol"`
	IdolUID   string    `json:"idol_uid"`
	Group     string    `json:"group"`
	GroupUID  string    `json:"group_uid"`
	Album     string    `json:"album"`
	AlbumUID  string    `json:"album_uid"`
	Owner     Owner     `json:"owner"`
	ImageName string    `json:"image_name"`
	ImagePath string    `json:"image_file_path"`
	Image     []byte    `json:"image,omitempty"`
	Favourite bool      `json:"favourite"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogUID derives the catalog key of a group, idol or album name.
func CatalogUID(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func ImageFileName(photocardID string) string {
	return photocardID + ".jpg"
}

func NewPhotocard(id string, owner Owner, group, idol, album, imagePrefix string, now time.Time) (*Photocard, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidPhotocard)
	}
	if owner.UID == "" {
		return nil, fmt.Errorf("%w: missing owner", ErrInvalidPhotocard)
	}
	group, idol, album = strings.TrimSpace(group), strings.TrimSpace(idol), strings.TrimSpace(album)
	if group == "" || idol == "" || album == "" {
		return nil, fmt.Errorf("%w: group, idol and album are required", ErrInvalidPhotocard)
	}

	name := ImageFileName(id)
	return &Photocard{
		ID:        id,
		Idol:      idol,
		IdolUID:   CatalogUID(idol),
		Group:     group,
		GroupUID:  CatalogUID(group),
		Album:     album,
		AlbumUID:  CatalogUID(album),
		Owner:     owner,
		ImageName: name,
		ImagePath: path.Join(imagePrefix, name),
		CreatedAt: now.UTC().Truncate(time.Second),
	}, nil
}

func (p Photocard) OwnedBy(uid string) bool {
	return uid != "" && p.Owner.UID == uid
}

// WithoutImage returns a copy safe to cache or persist.
func (p Photocard) WithoutImage() Photocard {
	p.Image = nil
	return p
}

func (p Photocard) SearchField(scope SearchScope) (string, bool) {
	var v string
	switch scope {
	case ScopeIdol:
		v = p.Idol
	case ScopeGroup:
		v = p.Group
	case ScopeAlbum:
		v = p.Album
	}
	return v, v != ""
}

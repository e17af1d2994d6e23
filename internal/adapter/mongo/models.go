package mongo

import (
	"path"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

const (
	photocardRefPrefix = "photocards"
	marketRefPrefix    = "market"
	groupRefPrefix     = "groups"
)

type marketDocument struct {
	ID           string  `bson:"_id"`
	PhotocardRef string  `bson:"photocard_ref"`
	Price        int     `bson:"price"`
	Location     string  `bson:"location"`
	LocationLat  float64 `bson:"location_lat"`
	LocationLong float64 `bson:"location_long"`
	Condition    int     `bson:"condition"`
	Date         string  `bson:"date"`
}

func marketDocumentFromEntry(e entity.MarketEntry) marketDocument {
	return marketDocument{
		ID:           e.PhotocardID,
		PhotocardRef: path.Join(photocardRefPrefix, e.PhotocardID),
		Price:        e.Price,
		Location:     e.Location.Title,
		LocationLat:  e.Location.Latitude,
		LocationLong: e.Location.Longitude,
		Condition:    int(e.Condition),
		Date:         entity.FormatTimestamp(e.ListedAt),
	}
}

func (d marketDocument) toEntry() (entity.MarketEntry, error) {
	listedAt, err := entity.ParseTimestamp(d.Date)
	if err != nil {
		return entity.MarketEntry{}, err
	}
	id := d.ID
	if d.PhotocardRef != "" {
		id = path.Base(d.PhotocardRef)
	}
	return entity.MarketEntry{
		PhotocardID: id,
		Price:       d.Price,
		Location: entity.Location{
			Title:      d.Location,
			Coordinate: entity.Coordinate{Latitude: d.LocationLat, Longitude: d.LocationLong},
		},
		Condition: entity.Condition(d.Condition),
		ListedAt:  listedAt,
	}, nil
}

type photocardDocument struct {
	ID              string `bson:"_id"`
	Idol            string `bson:"idol"`
	IdolUID         string `bson:"idol_uid"`
	Group           string `bson:"group"`
	GroupUID        string `bson:"group_uid"`
	Album           string `bson:"album"`
	AlbumUID        string `bson:"album_uid"`
	User            string `bson:"user"`
	UserUID         string `bson:"user_uid"`
	UserDisplayName string `bson:"user_display_name"`
	ImageName       string `bson:"image_name"`
	ImageFilePath   string `bson:"image_file_path"`
	Favourite       bool   `bson:"favourite"`
	Date            string `bson:"date"`
}

func photocardDocumentFromEntity(p entity.Photocard) photocardDocument {
	return photocardDocument{
		ID:              p.ID,
		Idol:            p.Idol,
		IdolUID:         p.IdolUID,
		Group:           p.Group,
		GroupUID:        p.GroupUID,
		Album:           p.Album,
		AlbumUID:        p.AlbumUID,
		User:            p.Owner.Email,
		UserUID:         p.Owner.UID,
		UserDisplayName: p.Owner.DisplayName,
		ImageName:       p.ImageName,
		ImageFilePath:   p.ImagePath,
		Favourite:       p.Favourite,
		Date:            entity.FormatTimestamp(p.CreatedAt),
	}
}

func (d photocardDocument) toEntity() entity.Photocard {
	// A malformed creation date leaves CreatedAt zero rather than hiding the card.
	createdAt, _ := entity.ParseTimestamp(d.Date)
	return entity.Photocard{
		ID:       d.ID,
		Idol:     d.Idol,
		IdolUID:  d.IdolUID,
		Group:    d.Group,
		GroupUID: d.GroupUID,
		Album:    d.Album,
		AlbumUID: d.AlbumUID,
		Owner: entity.Owner{
			UID:         d.UserUID,
			Email:       d.User,
			DisplayName: d.UserDisplayName,
		},
		ImageName: d.ImageName,
		ImagePath: d.ImageFilePath,
		Favourite: d.Favourite,
		CreatedAt: createdAt,
	}
}

type userDocument struct {
	ID          string `bson:"_id"`
	UID         string `bson:"uid"`
	Email       string `bson:"email"`
	Name        string `bson:"name"`
	FavGroupRef string `bson:"fav_group_ref,omitempty"`
	FavIdolRef  string `bson:"fav_idol_ref,omitempty"`
}

type userPhotocardDocument struct {
	ID           string    `bson:"_id"`
	UserUID      string    `bson:"user_uid"`
	PhotocardRef string    `bson:"photocard_ref"`
	AddedAt      time.Time `bson:"added_at"`
}

type userSaleDocument struct {
	ID             string    `bson:"_id"`
	UserUID        string    `bson:"user_uid"`
	SaleListingRef string    `bson:"sale_listing_ref"`
	AddedAt        time.Time `bson:"added_at"`
}

type groupDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type idolDocument struct {
	ID       string `bson:"_id"`
	GroupUID string `bson:"group_uid"`
	UID      string `bson:"uid"`
	Name     string `bson:"name"`
}

type albumDocument struct {
	ID       string `bson:"_id"`
	GroupUID string `bson:"group_uid"`
	IdolUID  string `bson:"idol_uid"`
	UID      string `bson:"uid"`
	Name     string `bson:"name"`
}

type albumPhotocardDocument struct {
	ID           string `bson:"_id"`
	AlbumID      string `bson:"album_id"`
	PhotocardRef string `bson:"photocard_ref"`
}

func groupRef(groupUID string) string {
	return path.Join(groupRefPrefix, groupUID)
}

func idolRef(groupUID, idolUID string) string {
	return path.Join(groupRefPrefix, groupUID, "idols", idolUID)
}

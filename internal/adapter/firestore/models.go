package firestore

import (
	"cloud.google.com/go/firestore"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
)

type marketDoc struct {
	PhotocardRef *firestore.DocumentRef `firestore:"photocard_ref"`
	Price        int                    `firestore:"price"`
	Location     string                 `firestore:"location"`
	LocationLat  float64                `firestore:"location_lat"`
	LocationLong float64                `firestore:"location_long"`
	Condition    int                    `firestore:"condition"`
	Date         string                 `firestore:"date"`
}

func (d marketDoc) toEntry(docID string) (entity.MarketEntry, error) {
	listedAt, err := entity.ParseTimestamp(d.Date)
	if err != nil {
		return entity.MarketEntry{}, err
	}
	id := docID
	if d.PhotocardRef != nil {
		id = d.PhotocardRef.ID
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

type photocardDoc struct {
	Idol            string `firestore:"idol"`
	IdolUID         string `firestore:"idol_uid"`
	Group           string `firestore:"group"`
	GroupUID        string `firestore:"group_uid"`
	Album           string `firestore:"album"`
	AlbumUID        string `firestore:"album_uid"`
	User            string `firestore:"user"`
	UserUID         string `firestore:"user_uid"`
	UserDisplayName string `firestore:"user_display_name"`
	ImageName       string `firestore:"image_name"`
	ImageFilePath   string `firestore:"image_file_path"`
	Favourite       bool   `firestore:"favourite"`
	Date            string `firestore:"date"`
}

func photocardDocFrom(p entity.Photocard) photocardDoc {
	return photocardDoc{
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

func (d photocardDoc) toEntity(id string) entity.Photocard {
	createdAt, _ := entity.ParseTimestamp(d.Date)
	return entity.Photocard{
		ID:       id,
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

type userDoc struct {
	UID         string                 `firestore:"uid"`
	Email       string                 `firestore:"email"`
	Name        string                 `firestore:"name"`
	FavGroupRef *firestore.DocumentRef `firestore:"fav_group_ref"`
	FavIdolRef  *firestore.DocumentRef `firestore:"fav_idol_ref"`
}

type nameDoc struct {
	Name string `firestore:"name"`
}

package service

import "github.com/Abdurahmanit/GroupProject/photocard-service/internal/listener"

const (
	TopicPortfolio         listener.Topic = "portfolio"
	TopicUserSales         listener.Topic = "user-sales"
	TopicBuyMarket         listener.Topic = "buy-market"
	TopicFavourites        listener.Topic = "favourites"
	TopicAlbums            listener.Topic = "albums"
	TopicFavIdol           listener.Topic = "fav-idol"
	TopicFavGroup          listener.Topic = "fav-group"
	TopicBiasIdolListings  listener.Topic = "bias-idol-listings"
	TopicBiasGroupListings listener.Topic = "bias-group-listings"
	TopicExternalProfile   listener.Topic = "external-profile"
)

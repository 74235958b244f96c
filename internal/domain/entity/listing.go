package entity

import "time"

// Listing is a house token offered on the market.
type Listing struct {
	TokenID  string    `json:"tokenId"`
	Seller   string    `json:"seller"`
	PriceWei string    `json:"priceWei"`
	ListedAt time.Time `json:"listedAt"`
}

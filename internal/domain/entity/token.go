package entity

// TokenAttribute is one trait of an ERC-721 metadata document.
type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// TokenInfo is the metadata record of a house token.
type TokenInfo struct {
	TokenID     string           `json:"tokenId"`
	MetadataURI string           `json:"metadataUri,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Image       string           `json:"image,omitempty"`
	Attributes  []TokenAttribute `json:"attributes,omitempty"`
}

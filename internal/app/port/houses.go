package port

import (
	"context"

	"houses_market/internal/app/state"
	"houses_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// HousesService holds the operations views perform on a session's state.
type HousesService interface {
	ConnectAccount(st *state.GlobalState, address string) error
	DisconnectAccount(st *state.GlobalState)

	// BindContract attaches the configured contract to the state and returns its address.
	BindContract(ctx context.Context, st *state.GlobalState) (common.Address, error)

	// LoadOwnedHouses refreshes ownedTokensIds and tokensInfo. Returns the number of tokens owned.
	LoadOwnedHouses(ctx context.Context, st *state.GlobalState) (int, error)

	// SetListings replaces listedTokens and listingTimings together.
	SetListings(st *state.GlobalState, listings []entity.Listing)

	// RecordPurchase bumps buyReload and returns the new value.
	RecordPurchase(st *state.GlobalState) uint64
}

// SessionStore owns one state record per page session.
type SessionStore interface {
	Get(id string) (*state.GlobalState, bool)
	Create() (string, *state.GlobalState)
	Count() int
}

// NetworkCheckService probes every configured network before deployment.
type NetworkCheckService interface {
	CheckNetworks(ctx context.Context) []entity.NetworkReport
}

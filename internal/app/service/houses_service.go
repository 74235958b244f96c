package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/app/state"
	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidAddress         = errors.New("invalid account address")
	ErrNoAccount              = errors.New("no account connected")
	ErrNoContract             = errors.New("no contract bound")
	ErrContractNotConfigured  = errors.New("contract address is not configured")
	ErrUnsupportedContractRef = errors.New("bound contract does not support token reads")
	ErrAccountChanged         = errors.New("account changed while loading houses")
)

// ContractFactory builds a contract binding on top of a network client.
type ContractFactory func(address common.Address, caller ethereum.ContractCaller) port.HouseContract

// HousesServiceConfig carries the settings HousesService needs from configuration.
type HousesServiceConfig struct {
	Network         entity.NetworkDefinition
	ContractAddress string
	MaxConcurrent   int
	CallTimeout     time.Duration
}

// housesServiceImpl implements port.HousesService.
type housesServiceImpl struct {
	clientProvider  port.BlockchainClientProvider
	newContract     ContractFactory
	metadata        port.MetadataFetcher
	network         entity.NetworkDefinition
	contractAddress string
	maxConcurrent   int
	callTimeout     time.Duration
	logger          port.Logger
}

// NewHousesService creates a new instance of housesServiceImpl.
func NewHousesService(
	cp port.BlockchainClientProvider,
	newContract ContractFactory,
	md port.MetadataFetcher,
	cfg HousesServiceConfig,
	l port.Logger,
) port.HousesService {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &housesServiceImpl{
		clientProvider:  cp,
		newContract:     newContract,
		metadata:        md,
		network:         cfg.Network,
		contractAddress: cfg.ContractAddress,
		maxConcurrent:   cfg.MaxConcurrent,
		callTimeout:     cfg.CallTimeout,
		logger:          l,
	}
}

// ConnectAccount sets the session account after checking the address format.
func (s *housesServiceImpl) ConnectAccount(st *state.GlobalState, address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	account := common.HexToAddress(address)
	st.SetAccount(&account)
	s.logger.Info("Account connected", "account", account.Hex())
	return nil
}

// DisconnectAccount clears the session account.
func (s *housesServiceImpl) DisconnectAccount(st *state.GlobalState) {
	st.SetAccount(nil)
}

// BindContract attaches the configured houses contract to the session.
func (s *housesServiceImpl) BindContract(ctx context.Context, st *state.GlobalState) (common.Address, error) {
	if s.contractAddress == "" {
		return common.Address{}, ErrContractNotConfigured
	}
	client, err := s.clientProvider.GetClient(ctx, s.network)
	if err != nil {
		return common.Address{}, err
	}
	address := common.HexToAddress(s.contractAddress)
	st.SetContract(s.newContract(address, client))
	s.logger.Info("Contract bound", "contract", address.Hex(), "network", s.network.Name)
	return address, nil
}

// LoadOwnedHouses reads the account's tokens from the bound contract and fetches their
// metadata. A metadata failure leaves that token with only its id and URI; contract
// failures abort the load and leave the state untouched. The result is discarded if the
// session switched accounts while it was loading.
func (s *housesServiceImpl) LoadOwnedHouses(ctx context.Context, st *state.GlobalState) (int, error) {
	account := st.Account()
	if account == nil {
		return 0, ErrNoAccount
	}
	handle := st.Contract()
	if handle == nil {
		return 0, ErrNoContract
	}
	houses, ok := handle.(port.HouseContract)
	if !ok {
		return 0, ErrUnsupportedContractRef
	}

	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	balance, err := houses.BalanceOf(ctx, *account)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	if !balance.IsInt64() {
		return 0, fmt.Errorf("balance %s out of range", balance)
	}
	count := int(balance.Int64())

	ids := make([]*big.Int, count)
	infos := make([]entity.TokenInfo, count)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)
	for i := 0; i < count; i++ {
		eg.Go(func() error {
			id, err := houses.TokenOfOwnerByIndex(egCtx, *account, big.NewInt(int64(i)))
			if err != nil {
				return fmt.Errorf("failed to read token at index %d: %w", i, err)
			}
			ids[i] = id
			infos[i] = s.loadTokenInfo(egCtx, houses, id)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Error("Failed to load owned houses", "account", account.Hex(), "error", err)
		return 0, err
	}

	stale := false
	st.Update(func(snap *state.Snapshot) {
		if snap.Account == nil || *snap.Account != *account {
			stale = true
			return
		}
		snap.OwnedTokensIDs = ids
		snap.TokensInfo = infos
	})
	if stale {
		s.logger.Warn("Account changed while loading houses, discarding result", "account", account.Hex())
		return 0, ErrAccountChanged
	}
	s.logger.Info("Owned houses loaded", "account", account.Hex(), "count", count)
	return count, nil
}

func (s *housesServiceImpl) loadTokenInfo(ctx context.Context, houses port.HouseContract, id *big.Int) entity.TokenInfo {
	fallback := entity.TokenInfo{TokenID: id.String()}

	uri, err := houses.TokenURI(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to read token URI", "tokenId", id.String(), "error", err)
		return fallback
	}
	fallback.MetadataURI = uri

	info, err := s.metadata.Fetch(ctx, uri)
	if err != nil {
		s.logger.Warn("Failed to fetch token metadata", "tokenId", id.String(), "uri", uri, "error", err)
		return fallback
	}
	info.TokenID = id.String()
	info.MetadataURI = uri
	return info
}

// SetListings replaces the market listings and their timings in one update.
func (s *housesServiceImpl) SetListings(st *state.GlobalState, listings []entity.Listing) {
	timings := make([]time.Time, len(listings))
	for i, l := range listings {
		timings[i] = l.ListedAt
	}
	st.Update(func(snap *state.Snapshot) {
		snap.ListedTokens = listings
		snap.ListingTimings = timings
	})
	s.logger.Debug("Listings replaced", "count", len(listings))
}

// RecordPurchase signals views that a purchase happened.
func (s *housesServiceImpl) RecordPurchase(st *state.GlobalState) uint64 {
	v := st.IncrementBuyReload()
	metrics.Purchases.Inc()
	s.logger.Info("Purchase recorded", "buyReload", v)
	return v
}

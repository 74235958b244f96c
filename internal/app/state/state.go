// Package state holds the record shared by the views of one page session.
//
// The record has no cross-field invariants: any consumer may overwrite any field at
// any time and writes are not validated. Each accessor is safe for concurrent use, but
// a sequence of setters is not atomic as a group; use Update for that.
package state

import (
	"math/big"
	"slices"
	"sync"
	"time"

	"houses_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// ContractHandle is a reference to a deployed contract binding.
type ContractHandle interface {
	Address() common.Address
}

// GlobalState is the wallet and marketplace record of a page session.
type GlobalState struct {
	mu sync.RWMutex

	account        *common.Address
	ownedTokensIDs []*big.Int
	tokensInfo     []entity.TokenInfo
	listedTokens   []entity.Listing
	contract       ContractHandle
	listingTimings []time.Time
	buyReload      uint64
}

// Snapshot is a detached copy of a GlobalState, shaped for rendering and JSON.
type Snapshot struct {
	Account         *common.Address    `json:"account"`
	OwnedTokensIDs  []*big.Int         `json:"ownedTokensIds"`
	TokensInfo      []entity.TokenInfo `json:"tokensInfo"`
	ListedTokens    []entity.Listing   `json:"listedTokens"`
	Contract        ContractHandle     `json:"-"`
	ContractAddress *common.Address    `json:"contract"`
	ListingTimings  []time.Time        `json:"listingTimings"`
	BuyReload       uint64             `json:"buyReload"`
}

// New returns a record with no account, no contract, a zero reload counter and empty sequences.
func New() *GlobalState {
	return &GlobalState{
		ownedTokensIDs: []*big.Int{},
		tokensInfo:     []entity.TokenInfo{},
		listedTokens:   []entity.Listing{},
		listingTimings: []time.Time{},
	}
}

func copyAddress(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func copyIDs(ids []*big.Int) []*big.Int {
	out := make([]*big.Int, len(ids))
	for i, id := range ids {
		if id != nil {
			out[i] = new(big.Int).Set(id)
		}
	}
	return out
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

// Account returns the connected account, or nil.
func (s *GlobalState) Account() *common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAddress(s.account)
}

// SetAccount overwrites the connected account. nil disconnects.
func (s *GlobalState) SetAccount(account *common.Address) {
	s.mu.Lock()
	s.account = copyAddress(account)
	s.mu.Unlock()
}

func (s *GlobalState) OwnedTokensIDs() []*big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.ownedTokensIDs)
}

func (s *GlobalState) SetOwnedTokensIDs(ids []*big.Int) {
	s.mu.Lock()
	s.ownedTokensIDs = copyIDs(ids)
	s.mu.Unlock()
}

func (s *GlobalState) TokensInfo() []entity.TokenInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrEmpty(s.tokensInfo)
}

func (s *GlobalState) SetTokensInfo(info []entity.TokenInfo) {
	s.mu.Lock()
	s.tokensInfo = cloneOrEmpty(info)
	s.mu.Unlock()
}

func (s *GlobalState) ListedTokens() []entity.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrEmpty(s.listedTokens)
}

func (s *GlobalState) SetListedTokens(listings []entity.Listing) {
	s.mu.Lock()
	s.listedTokens = cloneOrEmpty(listings)
	s.mu.Unlock()
}

// Contract returns the bound contract handle, or nil.
func (s *GlobalState) Contract() ContractHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contract
}

func (s *GlobalState) SetContract(c ContractHandle) {
	s.mu.Lock()
	s.contract = c
	s.mu.Unlock()
}

func (s *GlobalState) ListingTimings() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrEmpty(s.listingTimings)
}

func (s *GlobalState) SetListingTimings(timings []time.Time) {
	s.mu.Lock()
	s.listingTimings = cloneOrEmpty(timings)
	s.mu.Unlock()
}

func (s *GlobalState) BuyReload() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buyReload
}

func (s *GlobalState) SetBuyReload(v uint64) {
	s.mu.Lock()
	s.buyReload = v
	s.mu.Unlock()
}

// IncrementBuyReload signals that a purchase happened and returns the new counter value.
func (s *GlobalState) IncrementBuyReload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyReload++
	return s.buyReload
}

// Snapshot copies every field under a single read lock.
func (s *GlobalState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *GlobalState) snapshotLocked() Snapshot {
	snap := Snapshot{
		Account:        copyAddress(s.account),
		OwnedTokensIDs: copyIDs(s.ownedTokensIDs),
		TokensInfo:     cloneOrEmpty(s.tokensInfo),
		ListedTokens:   cloneOrEmpty(s.listedTokens),
		Contract:       s.contract,
		ListingTimings: cloneOrEmpty(s.listingTimings),
		BuyReload:      s.buyReload,
	}
	if s.contract != nil {
		addr := s.contract.Address()
		snap.ContractAddress = &addr
	}
	return snap
}

// Update applies fn to a copy of the record and writes every field back while holding
// the write lock, so readers never observe a partial multi-field update.
// ContractAddress is derived and ignored on write.
func (s *GlobalState) Update(fn func(snap *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	fn(&snap)

	s.account = copyAddress(snap.Account)
	s.ownedTokensIDs = copyIDs(snap.OwnedTokensIDs)
	s.tokensInfo = cloneOrEmpty(snap.TokensInfo)
	s.listedTokens = cloneOrEmpty(snap.ListedTokens)
	s.contract = snap.Contract
	s.listingTimings = cloneOrEmpty(snap.ListingTimings)
	s.buyReload = snap.BuyReload
}

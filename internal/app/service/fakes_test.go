package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

type fakeClient struct {
	def      entity.NetworkDefinition
	chainID  *big.Int
	balances map[common.Address]*big.Int
	chainErr error
}

func (f *fakeClient) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error) {
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return f.chainID, nil
}

func (f *fakeClient) BalanceAt(_ context.Context, a common.Address, _ *big.Int) (*big.Int, error) {
	if b, ok := f.balances[a]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeClient) Definition() entity.NetworkDefinition { return f.def }
func (f *fakeClient) Close()                               {}

type fakeProvider struct {
	clients map[string]*fakeClient
}

func (p *fakeProvider) GetClient(_ context.Context, def entity.NetworkDefinition) (port.BlockchainClient, error) {
	c, ok := p.clients[def.Name]
	if !ok {
		return nil, fmt.Errorf("failed to create EVM client for %s: dial refused", def.Name)
	}
	return c, nil
}

// fakeHouses is an in-memory houses token.
type fakeHouses struct {
	address common.Address
	owned   map[common.Address][]*big.Int
	uris    map[string]string
	failAt  int
}

func (f *fakeHouses) Address() common.Address { return f.address }

func (f *fakeHouses) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return big.NewInt(int64(len(f.owned[owner]))), nil
}

func (f *fakeHouses) TokenOfOwnerByIndex(_ context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	if f.failAt >= 0 && int(index.Int64()) == f.failAt {
		return nil, errors.New("execution reverted")
	}
	return f.owned[owner][index.Int64()], nil
}

func (f *fakeHouses) TokenURI(_ context.Context, id *big.Int) (string, error) {
	uri, ok := f.uris[id.String()]
	if !ok {
		return "", errors.New("nonexistent token")
	}
	return uri, nil
}

type fakeMetadata struct {
	mu    sync.Mutex
	docs  map[string]entity.TokenInfo
	calls int
}

func (f *fakeMetadata) Fetch(_ context.Context, uri string) (entity.TokenInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	doc, ok := f.docs[uri]
	if !ok {
		return entity.TokenInfo{}, errors.New("status 404")
	}
	return doc, nil
}

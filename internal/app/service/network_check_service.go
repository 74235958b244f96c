package service

import (
	"context"
	"fmt"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// networkCheckServiceImpl implements port.NetworkCheckService.
type networkCheckServiceImpl struct {
	networks       []entity.NetworkDefinition
	clientProvider port.BlockchainClientProvider
	maxConcurrent  int
	logger         port.Logger
}

// NewNetworkCheckService creates a service probing the given networks.
func NewNetworkCheckService(networks []entity.NetworkDefinition, cp port.BlockchainClientProvider, maxConcurrent int, l port.Logger) port.NetworkCheckService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &networkCheckServiceImpl{
		networks:       networks,
		clientProvider: cp,
		maxConcurrent:  maxConcurrent,
		logger:         l,
	}
}

// CheckNetworks dials every network, reads its chain id and the balance of each signer.
// Reports come back in configuration order; failures are recorded per network.
func (s *networkCheckServiceImpl) CheckNetworks(ctx context.Context) []entity.NetworkReport {
	reports := make([]entity.NetworkReport, len(s.networks))

	var eg errgroup.Group
	eg.SetLimit(s.maxConcurrent)
	for i, def := range s.networks {
		eg.Go(func() error {
			reports[i] = s.checkNetwork(ctx, def)
			return nil
		})
	}
	_ = eg.Wait()

	return reports
}

func (s *networkCheckServiceImpl) checkNetwork(ctx context.Context, def entity.NetworkDefinition) entity.NetworkReport {
	report := entity.NetworkReport{Network: def.Name, URL: def.URL, ExpectedChainID: def.ChainID}

	client, err := s.clientProvider.GetClient(ctx, def)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		report.Error = fmt.Sprintf("failed to read chain id: %v", err)
		return report
	}
	report.ChainID = chainID.String()

	for _, key := range def.Accounts {
		address, err := utils.AddressFromKey(key)
		if err != nil {
			report.Error = err.Error()
			return report
		}
		balance, err := client.BalanceAt(ctx, address, nil)
		if err != nil {
			report.Error = fmt.Sprintf("failed to read balance of %s: %v", address.Hex(), err)
			return report
		}
		report.Signers = append(report.Signers, entity.SignerReport{
			Address:        address.Hex(),
			BalanceWei:     balance.String(),
			FormattedEther: utils.FormatBigInt(balance, utils.EtherDecimals),
		})
		if balance.Sign() == 0 {
			s.logger.Warn("Signer has no funds", "network", def.Name, "address", address.Hex())
		}
	}

	s.logger.Info("Network check passed", "network", def.Name, "chainId", report.ChainID, "signers", len(report.Signers))
	return report
}

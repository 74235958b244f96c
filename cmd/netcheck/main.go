// Command netcheck verifies the deployment networks before contracts are deployed:
// every configured network is dialed, its chain id compared with the configuration
// and the balance of each resolved signer reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"houses_market/internal/app/service"
	"houses_market/internal/domain/entity"
	"houses_market/internal/infrastructure/configloader"
	clientprovider "houses_market/internal/infrastructure/network/client"
	"houses_market/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	cfgPath := flag.String("config", utils.GetEnv("CONFIG_PATH", "config/config.yml"), "path to the configuration file")
	network := flag.String("network", "", "check only this network")
	asJSON := flag.Bool("json", false, "print reports as JSON")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	log := slog.New(zapslog.NewHandler(zapLogger.Core()))
	slog.SetDefault(log)

	if err := configloader.LoadDotEnv(".env"); err != nil {
		zapLogger.Fatal("Failed to load .env", zap.Error(err))
	}
	cfg, err := configloader.Load(*cfgPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.String("path", *cfgPath), zap.Error(err))
	}

	networks := cfg.NetworkDefinitions()
	if *network != "" {
		def, ok := cfg.Network(*network)
		if !ok {
			zapLogger.Fatal("Unknown network", zap.String("network", *network), zap.Strings("known", cfg.NetworkNames()))
		}
		networks = []entity.NetworkDefinition{def}
	}

	provider := clientprovider.NewEVMClientProvider(
		time.Duration(cfg.RpcClient.ConnectTimeoutMs)*time.Millisecond,
		time.Duration(cfg.RpcClient.CallTimeoutMs)*time.Millisecond,
		log,
	)
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	checker := service.NewNetworkCheckService(networks, provider, len(networks), log)
	reports := checker.CheckNetworks(ctx)

	if *asJSON {
		out, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			zapLogger.Fatal("Failed to encode reports", zap.Error(err))
		}
		fmt.Println(string(out))
	} else {
		printReports(cfg.Solidity, reports)
	}

	for _, r := range reports {
		if !r.OK() {
			os.Exit(1)
		}
	}
}

func printReports(solidity string, reports []entity.NetworkReport) {
	fmt.Printf("solidity %s\n", solidity)
	for _, r := range reports {
		status := "ok"
		if !r.OK() {
			status = "FAILED: " + r.Error
		}
		fmt.Printf("%-12s %-32s chainId=%-8s %s\n", r.Network, r.URL, r.ChainID, status)
		for _, s := range r.Signers {
			fmt.Printf("  %s %s ETH\n", s.Address, s.FormattedEther)
		}
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alphabill-org/alphabill-fees/logger"
	"github.com/alphabill-org/alphabill-fees/rpc"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
	"github.com/alphabill-org/alphabill-fees/types"
)

const defaultServerAddress = "localhost:26866"

type serveConfig struct {
	registryConfig
	rpc.ServerConfiguration

	Minter string
}

func newServeCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &serveConfig{registryConfig: registryConfig{Base: baseConfig}}
	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Runs the fee charging ledger with REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config)
		},
	}
	addRegistryDBFlag(cmd, &config.DBFile)
	addGenesisFileFlag(cmd, &config.GenesisFile)
	cmd.Flags().StringVar(&config.Minter, "minter", "", "0x-prefixed hex id of the only account allowed to mint, anyone may mint when empty")
	cmd.Flags().StringVar(&config.Address, "address", defaultServerAddress, "address to listen on, in the form \"host:port\"")
	cmd.Flags().DurationVar(&config.ReadTimeout, "read-timeout", 5*time.Second, "maximum duration for reading the entire request")
	cmd.Flags().DurationVar(&config.ReadHeaderTimeout, "read-header-timeout", time.Second, "amount of time allowed to read request headers")
	cmd.Flags().DurationVar(&config.WriteTimeout, "write-timeout", 10*time.Second, "maximum duration before timing out writes of the response")
	cmd.Flags().DurationVar(&config.IdleTimeout, "idle-timeout", 30*time.Second, "maximum amount of time to wait for the next request when keep-alive is enabled")
	cmd.Flags().Int64Var(&config.MaxBodyBytes, "max-body", rpc.DefaultMaxBodyBytes, "maximum number of bytes the server will read parsing the request body")
	return cmd
}

func serve(ctx context.Context, config *serveConfig) (rErr error) {
	if config.IsAddressEmpty() {
		return errors.New("server address is empty")
	}
	var opts []genericasset.Option
	if config.Minter != "" {
		var minter types.AccountID
		if err := minter.UnmarshalText([]byte(config.Minter)); err != nil {
			return fmt.Errorf("invalid minter: %w", err)
		}
		opts = append(opts, genericasset.WithMinter(minter))
	}

	obs := config.Base.observe
	log := obs.Logger()

	gen, err := genesis.LoadFile(config.genesisFilename())
	if err != nil {
		return err
	}
	reg, closeDB, err := openRegistry(config.dbFilename(), false)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, closeDB()) }()

	s, err := loadLedger(gen, reg, log)
	if err != nil {
		return err
	}
	node, err := newLedgerNode(reg, s, obs, opts...)
	if err != nil {
		return err
	}

	srv := rpc.NewHTTPServer(&config.ServerConfiguration, obs,
		rpc.MetricsEndpoints(obs.PrometheusRegisterer()),
		rpc.NewFeesAPI(reg, node, log),
		rpc.NewLedgerAPI(node, log),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		errch := make(chan error, 1)
		go func() {
			log.InfoContext(ctx, fmt.Sprintf("REST server starting on %s", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errch <- err
				return
			}
			errch <- nil
		}()

		select {
		case <-ctx.Done():
			if err := srv.Close(); err != nil {
				log.WarnContext(ctx, "REST server close error", logger.Error(err))
			}
			if exitErr := <-errch; exitErr != nil {
				log.WarnContext(ctx, "REST server exited with error", logger.Error(exitErr))
			} else {
				log.InfoContext(ctx, "REST server exited")
			}
			return ctx.Err()
		case err := <-errch:
			return err
		}
	})
	return g.Wait()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/app"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/config"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
)

var (
	cfgPath string
	envPath string
)

var rootCmd = &cobra.Command{
	Use:               "evroute",
	Short:             "Charging aware EV route planner",
	PersistentPreRunE: loadEnv,
	RunE:              run,
	SilenceUsage:      true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve route requests over HTTP and MQTT",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadEnv exports the dotenv file so that K_ overrides can live next to the
// configuration. A missing file is ignored.
func loadEnv(cmd *cobra.Command, args []string) error {
	if envPath == "" {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func loadService() (*config.Config, *app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	return svc.Run(ctx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/api/handlers"
	"github.com/linesmerrill/car-spec-api/config"
	"github.com/linesmerrill/car-spec-api/users"
)

const shutdownTimeout = 15 * time.Second

var (
	adminUsername string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:          "car-spec-api",
	Short:        "Car specification catalog API",
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := handlers.App{Config: *config.New()}
		ctx := cmd.Context()
		if err := a.Connect(ctx); err != nil {
			return err
		}
		defer func() { _ = a.Close(context.Background()) }()

		user, err := a.Users().Register(ctx, adminUsername, adminPassword, true)
		if errors.Is(err, users.ErrDuplicateUser) {
			return fmt.Errorf("user %q already exists", adminUsername)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Admin user '%s' created with id %d\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, createAdminCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	a := handlers.App{Config: *config.New()}
	ctx := cmd.Context()

	if err := a.Initialize(ctx); err != nil { //initialize database and router
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("car-spec-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zap.S().With("error", err).Error("car-spec-api exited")
		stop()
		os.Exit(1)
	}
}

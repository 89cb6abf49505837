// Terrasaver — data backend for the globe screensaver.
//
// Usage:
//
//	terrasaver serve                # run the localhost HTTP API
//	terrasaver news <country>       # one-shot news fetch, JSON to stdout
//	terrasaver stats <iso3> <iso2>  # one-shot stats fetch, JSON to stdout
//	terrasaver version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/terrasaver/terrasaver/internal/api"
	"github.com/terrasaver/terrasaver/internal/config"
	"github.com/terrasaver/terrasaver/internal/feed"
	"github.com/terrasaver/terrasaver/internal/stats"
	"github.com/terrasaver/terrasaver/internal/store"
)

var version = "dev"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:          "terrasaver",
		Short:        "News and country-statistics backend for the globe screensaver",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is a development convenience; absence is fine.
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "terrasaver.yaml", "path to YAML config")

	rootCmd.AddCommand(serveCmd(&cfgPath))
	rootCmd.AddCommand(newsCmd(&cfgPath))
	rootCmd.AddCommand(statsCmd(&cfgPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the localhost HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer st.Close()

			server := api.NewServer(
				newsFetcher(cfg),
				stats.NewFetcher(),
				st,
				cfg.Feeds.CacheTTL.Std(),
				cfg.Stats.CacheTTL.Std(),
			)

			srv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: server.Routes(),
			}

			go func() {
				slog.Info("starting API server", "addr", cfg.Server.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("server failed", "error", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			slog.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func newsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "news <country>",
		Short: "Fetch normalized news for an ISO-2 country code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			result := newsFetcher(cfg).FetchNews(cmd.Context(), args[0])
			return printJSON(result)
		},
	}
}

func statsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <iso3> <iso2>",
		Short: "Fetch a country statistics snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(*cfgPath); err != nil {
				return err
			}
			snapshot, err := stats.NewFetcher().CountryStats(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(snapshot)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("terrasaver %s\n", version)
		},
	}
}

func newsFetcher(cfg config.Config) *feed.Fetcher {
	resolver := feed.NewResolver(cfg.Feeds.ExternalConfig)
	return feed.NewFetcher(resolver, feed.APIKeys{
		News:      cfg.Feeds.NewsAPIKey,
		WorldNews: cfg.Feeds.WorldNewsAPIKey,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

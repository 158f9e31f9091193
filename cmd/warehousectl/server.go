package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/config"
	"warehouse-in-go/pkg/db"
	"warehouse-in-go/pkg/observations"
	"warehouse-in-go/pkg/server"
	"warehouse-in-go/pkg/server/endpoints"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
	"warehouse-in-go/pkg/storage"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the warehouse application server",
	Long: `Run the warehouse application server.

To run the server requires the environment variables DATABASE_URL and
WAREHOUSE_ADMIN_JWT_SECRET.

By default, database migrations are run on startup. Use --no-migrate to skip.
Use --watch-config to reload the config file on change.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}
		if os.Getenv("WAREHOUSE_ADMIN_JWT_SECRET") == "" {
			fmt.Fprintln(os.Stderr, "WAREHOUSE_ADMIN_JWT_SECRET environment variable is required")
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to load configuration:", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
			os.Exit(1)
		}
		config.Set(cfg)

		// SIGHUP reloads the config file ("warehousectl configuration apply")
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				if err := config.Reload(); err != nil {
					log.Println("Config reload failed:", err)
					continue
				}
				log.Println("Configuration reloaded")
			}
		}()

		watchConfig, _ := cmd.Flags().GetBool("watch-config")
		if watchConfig {
			stop := make(chan struct{})
			defer close(stop)
			err := config.Watch(stop, func(cfg *config.WarehouseConfig) {
				log.Printf("Configuration reloaded from %s\n", cfg.ConfigFilePath())
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "Unable to watch config file:", err)
				os.Exit(1)
			}
		}

		database, err := db.Connect(db.Config{URL: db.URL()})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		fileStorage, err := storage.NewLocalStorage(cfg.StoragePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to open file storage:", err)
			os.Exit(1)
		}

		stores := server.Stores{
			Projects:     gormstore.NewProjectsStore(database),
			Releases:     gormstore.NewReleasesStore(database),
			Files:        gormstore.NewFilesStore(database),
			Users:        gormstore.NewUsersStore(database),
			Observations: gormstore.NewObservationsStore(database),
			Health:       gormstore.NewHealthStore(database),
		}

		evaluator := observations.NewEvaluator(
			stores.Projects,
			stores.Observations,
			cfg.QuarantineReportThreshold,
		)

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(stores, fileStorage, evaluator, cfg, database, host, port)

		if err := endpoints.RegisterAll(s); err != nil {
			fmt.Fprintln(os.Stderr, "Unable to register endpoints:", err)
			os.Exit(1)
		}

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload configuration when the config file changes")
}

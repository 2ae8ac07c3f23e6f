package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/mwo/internal/config"
	"github.com/example/mwo/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the mwo database",
		Long: `Initialize the mwo database (default ~/.mwo/mwo.db) with the required
schema and write ~/.mwo/config.json if none exists.

With --seed, a demo property (hotels, departments, locations, users, SLA
targets and spare parts) is loaded into an empty database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve()
			if err != nil {
				return err
			}

			fmt.Printf("Initializing mwo database at %s\n", cfg.DBPath)

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Println("✓ Database initialized successfully")

			if seed {
				var hotels int
				if err := database.QueryRow("SELECT COUNT(*) FROM hotels").Scan(&hotels); err != nil {
					return fmt.Errorf("failed to inspect database: %w", err)
				}
				if hotels > 0 {
					fmt.Println("⚠ Reference data already present, skipping seed")
				} else {
					if err := db.SeedFixtures(database); err != nil {
						return fmt.Errorf("failed to seed database: %w", err)
					}
					fmt.Println("✓ Demo property seeded")
				}
			}

			written, err := initConfig(cfg, seed)
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			if written != "" {
				fmt.Printf("✓ Config file created at %s\n", written)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  mwo order create \"Air conditioner not cooling\" --location 2 --priority critical --submit")
			fmt.Println("  mwo order list --open")

			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Load the demo property")

	return cmd
}

// initConfig writes ~/.mwo/config.json unless one already exists and
// returns the path written.
func initConfig(cfg *config.Config, seeded bool) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if _, err := config.LoadConfig(home); err == nil {
		return "", nil
	}

	out := *cfg
	if seeded {
		if out.ActorUserID == 0 {
			out.ActorUserID = 2
		}
		if out.DefaultHotelID == 0 {
			out.DefaultHotelID = 1
		}
	}
	if err := config.SaveConfig(home, &out); err != nil {
		return "", err
	}
	return filepath.Join(home, ".mwo", "config.json"), nil
}

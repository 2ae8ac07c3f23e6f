package cli

import (
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/mwo/internal/config"
	"github.com/example/mwo/internal/db"
	"github.com/example/mwo/internal/logging"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the mwo environment",
		Long: `Health check for mwo.

Validates:
- Configuration (config.json, MWO_* overrides, sweep interval)
- Database reachability and schema version
- Reference data (hotels and SLA targets)
- Binary installation and PATH

Examples:
  mwo doctor              # Run full health check
  mwo doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{}
			hasErrors := false

			cfg, cfgResult := checkConfig()
			results = append(results, cfgResult)

			if cfg != nil {
				database, dbResult := checkDatabase(cfg.DBPath)
				results = append(results, dbResult)
				if database != nil {
					results = append(results, checkSchema(database))
					results = append(results, checkReferenceData(database))
					database.Close()
				}
			}
			results = append(results, checkBinary())

			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'mwo init' to create the database.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

func checkConfig() (*config.Config, CheckResult) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	if _, err := cfg.Sweep(); err != nil {
		return cfg, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	if _, err := logging.New(cfg.LogLevel); err != nil {
		return cfg, CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}
	}
	if cfg.ActorUserID == 0 {
		return cfg, CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: "  No actor_user_id configured; commands need --as <user-id>",
		}
	}
	return cfg, CheckResult{Name: "Config", Status: "✓"}
}

func checkDatabase(path string) (*sql.DB, CheckResult) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, CheckResult{Name: "Database", Status: "✗", Details: "  Missing: " + path}
	}
	// Opened without migrating so a stale schema is reported, not fixed.
	database, err := sql.Open("sqlite3", db.DSN(path))
	if err != nil {
		return nil, CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, CheckResult{Name: "Database", Status: "✗", Details: "  " + err.Error()}
	}
	return database, CheckResult{Name: "Database", Status: "✓"}
}

func checkSchema(database *sql.DB) CheckResult {
	current, err := db.CurrentVersion(database)
	if err != nil {
		return CheckResult{Name: "Schema", Status: "✗", Details: "  " + err.Error()}
	}
	if latest := db.LatestVersion(); current != latest {
		return CheckResult{
			Name:    "Schema",
			Status:  "✗",
			Details: fmt.Sprintf("  At version %d, expected %d", current, latest),
		}
	}
	return CheckResult{Name: "Schema", Status: "✓"}
}

func checkReferenceData(database *sql.DB) CheckResult {
	var hotels, targets int
	if err := database.QueryRow("SELECT COUNT(*) FROM hotels WHERE is_active = 1").Scan(&hotels); err != nil {
		return CheckResult{Name: "Reference data", Status: "✗", Details: "  " + err.Error()}
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM sla_configurations WHERE is_active = 1").Scan(&targets); err != nil {
		return CheckResult{Name: "Reference data", Status: "✗", Details: "  " + err.Error()}
	}
	switch {
	case hotels == 0:
		return CheckResult{Name: "Reference data", Status: "⚠", Details: "  No active hotels; run 'mwo init --seed' for a demo property"}
	case targets == 0:
		return CheckResult{Name: "Reference data", Status: "⚠", Details: "  No SLA targets; orders will have no deadline"}
	}
	return CheckResult{Name: "Reference data", Status: "✓"}
}

// checkBinary validates that mwo on PATH is the running binary
func checkBinary() CheckResult {
	path, err := exec.LookPath("mwo")
	if err != nil {
		return CheckResult{Name: "Binary", Status: "⚠", Details: "  mwo not found in PATH"}
	}
	self, err := os.Executable()
	if err != nil {
		return CheckResult{Name: "Binary", Status: "✓"}
	}
	resolvedPath, _ := filepath.EvalSymlinks(path)
	resolvedSelf, _ := filepath.EvalSymlinks(self)
	if resolvedPath != resolvedSelf {
		return CheckResult{
			Name:    "Binary",
			Status:  "⚠",
			Details: fmt.Sprintf("  PATH resolves to %s, running %s", path, self),
		}
	}
	return CheckResult{Name: "Binary", Status: "✓"}
}

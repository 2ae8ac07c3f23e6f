package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mwo/internal/cli"
	"github.com/example/mwo/internal/version"
	"github.com/example/mwo/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mwo",
		Short:   "mwo - maintenance work orders for hotel properties",
		Version: version.String(),
		Long: `mwo tracks maintenance orders from request to verification: assignment,
SLA deadlines, spare part consumption and the requester's sign-off.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.OrderCmd())
	rootCmd.AddCommand(cli.PartCmd())
	rootCmd.AddCommand(cli.SLACmd())

	err := rootCmd.Execute()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

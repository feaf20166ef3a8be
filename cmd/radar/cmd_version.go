package main

import (
	"fmt"
	"os"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/nulzo/model-radar/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and optionally check for updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(os.Stdout, "%s %s\n",
				cli.Gradient("model-radar", cli.BrandBlue, cli.BrandPurple, 0.5), version.Version)
			if !check {
				return nil
			}

			u, err := version.NewChecker().Check(cmd.Context(), version.Version)
			if err != nil {
				return err
			}
			if u.Outdated {
				fmt.Println("---------------------------------------------------------")
				fmt.Printf("WARNING: You are running an outdated version (%s).\n", u.Current)
				fmt.Printf("   The latest version is %s.\n", u.Latest)
				fmt.Println("---------------------------------------------------------")
				return nil
			}
			fmt.Printf("%s up to date (latest %s)\n", cli.CheckMark(), u.Latest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

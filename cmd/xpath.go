// File: cmd/xpath.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newXPathCmd() *cobra.Command {
	var flags locatorFlags
	cmd := &cobra.Command{
		Use:   "xpath",
		Short: "Print the XPath expression a locator compiles to",
		Example: `  testy xpath --tag input --type checkbox --label "Stop the process" --search contains --label-position ancestor
  testy xpath --container-class login --tag button --label "Sign in" --search equals,trim`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.build()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), l.XPath())
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/sidediff/internal/presentation"
)

func newMethodsCmd(a *app) *cobra.Command {
	var f diffFlags
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List intra-line comparison methods",
		Long: `List the intra-line comparison methods with their jsdiff aliases.
Either name is accepted by --method and the diff.method config key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := f.formatter(cmd, a)
			if err != nil {
				return err
			}
			return out.FormatMethods(presentation.FromMethods())
		},
	}
	f.registerFormat(cmd)
	return cmd
}

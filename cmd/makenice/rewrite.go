package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRewriteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite [text...]",
		Short: "Run one /make-nice command locally and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			resp := opts.commandHandler(cfg, logger).Handle(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", resp.ResponseType, resp.Text)
			if !resp.Public() {
				return fmt.Errorf("command did not produce a public reply")
			}
			return nil
		},
	}
}

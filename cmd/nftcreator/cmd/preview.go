package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onchainnft/nftcreator/contracts"
	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render previews without touching the chain",
}

var previewHelixCmd = &cobra.Command{
	Use:   "helix <out.svg>",
	Short: "Render the triple helix template with the given hues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hues.Validate(); err != nil {
			return fmt.Errorf("%w: %w", flow.ErrValidation, err)
		}

		return helixFile(args[0]).Render(hues)
	},
}

var previewWatchCmd = &cobra.Command{
	Use:   "watch <code-file> <out.html>",
	Short: "Rewrite a preview page every time the token code changes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := preview.FileRenderer[string]{
			Path:   args[1],
			Encode: preview.CodePage,
		}

		b := preview.NewBinding[string](out)

		return preview.WatchFile(cmd.Context(), args[0], func(code string) error {
			if err := b.Push(code); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "preview updated: %s (%d bytes on chain)\n", args[1], len(flow.EncodeCode(code)))

			return nil
		})
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the generative templates",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, t := range contracts.Templates() {
			status := "coming soon"
			if t.Available {
				status = "available"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s %s\n", t.ID, t.Title, status)
		}
	},
}

func init() {
	hueFlags(previewHelixCmd)

	previewCmd.AddCommand(previewHelixCmd, previewWatchCmd)
	rootCmd.AddCommand(previewCmd, templatesCmd)
}

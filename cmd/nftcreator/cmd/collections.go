package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/types"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List and create collections",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the collections the configured account created, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Refresh(cmd.Context()); err != nil {
			return err
		}

		printCollections(cmd, a.session.Collections().Collections, cfg.Marketplace.BaseURL)

		return nil
	},
}

var createFields flow.CollectionFields

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Deploy a new collection through the factory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.session.NewCollectionForm().SubmitWith(cmd.Context(), createFields)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "transaction %s mined\n", res.TxHash.Hex())

		if res.Collection != nil {
			fmt.Fprintf(out, "collection %s deployed at %s\n", res.Collection.Name, res.Collection.Address.Hex())
			fmt.Fprintln(out, res.MarketplaceURL)
		}

		if snap := a.session.Collections(); snap.Err != "" {
			fmt.Fprintf(out, "listing not refreshed: %s\n", snap.Err)
		}

		return nil
	},
}

func printCollections(cmd *cobra.Command, cols []types.Collection, marketplace string) {
	out := cmd.OutOrStdout()

	if len(cols) == 0 {
		fmt.Fprintln(out, "no collections")

		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOL\tTYPE\tADDRESS\tBLOCK\tMARKETPLACE")

	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", c.Name, c.Symbol, c.FileType, c.Address.Hex(), c.BlockNumber, c.MarketplaceURL(marketplace))
	}

	_ = w.Flush()
	fmt.Fprintf(out, "%d collections found\n", len(cols))
}

func init() {
	createCmd.Flags().StringVar(&createFields.Name, "name", "", "collection name")
	createCmd.Flags().StringVar(&createFields.Symbol, "symbol", "", "collection symbol")
	createCmd.Flags().StringVar(&createFields.FileType, "file-type", "", "token file type: html or svg")

	collectionsCmd.AddCommand(listCmd, createCmd)
	rootCmd.AddCommand(collectionsCmd)
}

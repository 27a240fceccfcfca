package cmd

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/onchainnft/nftcreator/flow"
	"github.com/onchainnft/nftcreator/preview"
	"github.com/onchainnft/nftcreator/types"
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a token",
}

var (
	hues        types.ColorParameters
	previewPath string
)

var mintTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Mint a triple helix with the given hues",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var r preview.Renderer[types.ColorParameters]
		if previewPath != "" {
			r = helixFile(previewPath)
		}

		res, err := a.session.NewTemplateMintForm(r).SubmitParams(cmd.Context(), hues)
		if err != nil {
			return err
		}

		printMint(cmd, res)

		return nil
	},
}

var (
	customCollection string
	customFields     flow.CustomFields
	customFile       string
)

var mintCustomCmd = &cobra.Command{
	Use:   "custom",
	Short: "Mint a token of one of your collections from an html or svg file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !common.IsHexAddress(customCollection) {
			return fmt.Errorf("%w: --collection %q is not an address", flow.ErrValidation, customCollection)
		}

		if customFile != "" {
			b, err := os.ReadFile(customFile)
			if err != nil {
				return err
			}

			customFields.Code = string(b)
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Refresh(cmd.Context()); err != nil {
			return err
		}

		addr := common.HexToAddress(customCollection)

		c, ok := a.session.Collection(addr)
		if !ok {
			return fmt.Errorf("%w: %s", flow.ErrCollectionNotFound, addr.Hex())
		}

		res, err := a.session.NewCustomMintForm(c).SubmitWith(cmd.Context(), customFields)
		if err != nil {
			return err
		}

		printMint(cmd, res)

		return nil
	},
}

func printMint(cmd *cobra.Command, res types.MintResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "transaction %s mined\n", res.TxHash.Hex())

	if res.TokenID == nil {
		fmt.Fprintln(out, "token id not found in receipt")

		return
	}

	fmt.Fprintf(out, "token %s minted on %s\n", res.TokenID, res.Contract.Hex())

	if res.MarketplaceURL != "" {
		fmt.Fprintln(out, res.MarketplaceURL)
	}
}

func helixFile(path string) preview.FileRenderer[types.ColorParameters] {
	return preview.FileRenderer[types.ColorParameters]{
		Path:   path,
		Encode: func(p types.ColorParameters) []byte { return preview.HelixSVG(p, 400) },
	}
}

func hueFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&hues.Hue1, "hue1", flow.DefaultColors.Hue1, "first strand hue, 0-360")
	cmd.Flags().IntVar(&hues.Hue2, "hue2", flow.DefaultColors.Hue2, "second strand hue, 0-360")
	cmd.Flags().IntVar(&hues.Hue3, "hue3", flow.DefaultColors.Hue3, "third strand hue, 0-360")
}

func init() {
	hueFlags(mintTemplateCmd)
	mintTemplateCmd.Flags().StringVar(&previewPath, "preview", "", "also write the rendered svg here")

	mintCustomCmd.Flags().StringVar(&customCollection, "collection", "", "collection contract address")
	mintCustomCmd.Flags().StringVar(&customFields.Title, "title", "", "token title")
	mintCustomCmd.Flags().StringVar(&customFields.Description, "description", "", "token description")
	mintCustomCmd.Flags().StringVar(&customFile, "file", "", "html or svg file holding the token code")

	mintCmd.AddCommand(mintTemplateCmd, mintCustomCmd)
	rootCmd.AddCommand(mintCmd)
}

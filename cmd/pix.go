package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/pix-checkout/internal/pix"
	"github.com/frahmantamala/pix-checkout/internal/qrcode"
)

var pixCmd = &cobra.Command{
	Use:   "pix",
	Short: "Build, verify and render PIX payloads",
}

var (
	buildKeyURL    string
	buildName      string
	buildCity      string
	buildReference string
	buildNormalize bool
	qrOutput       string
	qrSize         int
)

var pixBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a dynamic PIX payload",
	Example: `  pix-checkout pix build --key-url qrcode.example.com/pix/ABC123 \
    --name "PAG INTERMEDIACOES" --city "SAO BERNARDO DO CAMPO"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, city := buildName, buildCity
		if buildNormalize {
			name, city = pix.NormalizeText(name), pix.NormalizeText(city)
		}
		payload, err := pix.Payload{
			KeyURL:         buildKeyURL,
			MerchantName:   name,
			MerchantCity:   city,
			ReferenceLabel: buildReference,
		}.Build()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), payload)
		return nil
	},
}

var pixVerifyCmd = &cobra.Command{
	Use:   "verify <payload>",
	Short: "Check the CRC of a PIX payload and print its fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decoded, err := pix.Parse(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "checksum:  %s (ok)\n", decoded.Checksum)
		fmt.Fprintf(out, "key url:   %s\n", decoded.KeyURL)
		fmt.Fprintf(out, "merchant:  %s\n", decoded.MerchantName)
		fmt.Fprintf(out, "city:      %s\n", decoded.MerchantCity)
		fmt.Fprintf(out, "reference: %s\n", decoded.ReferenceLabel)
		for _, f := range decoded.Fields {
			fmt.Fprintf(out, "  %s %02d %s\n", f.ID, len(f.Value), f.Value)
		}
		return nil
	},
}

var pixQRCmd = &cobra.Command{
	Use:   "qr <payload>",
	Short: "Render a PIX payload as a PNG QR code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		png, err := qrcode.NewRenderer(qrSize).Render(args[0])
		if err != nil {
			return err
		}
		if qrOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), qrcode.DataURI(png))
			return nil
		}
		if err := os.WriteFile(qrOutput, png, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", qrOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", qrOutput, len(png))
		return nil
	},
}

func init() {
	pixBuildCmd.Flags().StringVar(&buildKeyURL, "key-url", "", "PIX key URL (required)")
	pixBuildCmd.Flags().StringVar(&buildName, "name", "", "Merchant name (required)")
	pixBuildCmd.Flags().StringVar(&buildCity, "city", "", "Merchant city (required)")
	pixBuildCmd.Flags().StringVar(&buildReference, "reference", "", "Reference label, *** when empty")
	pixBuildCmd.Flags().BoolVar(&buildNormalize, "normalize", false, "Strip accents and upper-case name and city")
	_ = pixBuildCmd.MarkFlagRequired("key-url")
	_ = pixBuildCmd.MarkFlagRequired("name")
	_ = pixBuildCmd.MarkFlagRequired("city")

	pixQRCmd.Flags().StringVarP(&qrOutput, "output", "o", "", "PNG file to write; prints a data URI when empty")
	pixQRCmd.Flags().IntVar(&qrSize, "size", qrcode.DefaultSize, "Image size in pixels")

	pixCmd.AddCommand(pixBuildCmd, pixVerifyCmd, pixQRCmd)
}

package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
	"github.com/KaramelBytes/smartbiz-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	tplFormat string
	tplOutput string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an example input file with the required columns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		switch tplFormat {
		case "csv":
			if err := schema.WriteTemplateCSV(&buf); err != nil {
				return err
			}
		case "xlsx":
			if tplOutput == "" {
				return fmt.Errorf("--format xlsx requires -o/--output")
			}
			if err := schema.WriteTemplateXLSX(&buf); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use csv|xlsx)", tplFormat)
		}

		if tplOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), buf.String())
			return nil
		}
		if err := utils.SafeWriteFile(tplOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote template to %s\n", tplOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringVar(&tplFormat, "format", "csv", "template format: csv|xlsx")
	templateCmd.Flags().StringVarP(&tplOutput, "output", "o", "", "path to write the template (stdout for csv if omitted)")
}

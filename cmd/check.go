package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/smartbiz-cli/internal/analysis"
	"github.com/KaramelBytes/smartbiz-cli/internal/parser"
	"github.com/spf13/cobra"
)

var chkFlags analyzeFlags

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a sales file and list the values available for filtering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		popt, err := chkFlags.parserOptions()
		if err != nil {
			return err
		}
		nopt, err := chkFlags.normalizeOptions(currentConfig())
		if err != nil {
			return err
		}
		tbl, err := parser.ReadFile(path, popt)
		if err != nil {
			return err
		}
		set, err := analysis.Normalize(tbl, nopt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		ch := analysis.Choices(set)
		fmt.Fprintf(out, "✓ %s: %d records\n", path, set.Len())
		if ch.From != nil {
			fmt.Fprintf(out, "Period: %s to %s\n", ch.From, ch.To)
		} else {
			fmt.Fprintln(out, "Period: -")
		}
		fmt.Fprintf(out, "Categories (%d): %s\n", len(ch.Categories), strings.Join(ch.Categories, ", "))
		fmt.Fprintf(out, "Customers (%d): %s\n", len(ch.Customers), strings.Join(ch.Customers, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	fl := checkCmd.Flags()
	fl.StringVar(&chkFlags.sheetName, "sheet-name", "", "XLSX: sheet name to check")
	fl.IntVar(&chkFlags.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&chkFlags.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.StringVar(&chkFlags.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&chkFlags.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.BoolVar(&chkFlags.dayFirst, "day-first", false, "read ambiguous slash dates as DD/MM/YYYY")
}

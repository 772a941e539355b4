package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/smartbiz-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abFlags     analyzeFlags
	abOutputDir string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := abFlags.validate(); err != nil {
			return err
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		out := cmd.OutOrStdout()

		total := len(files)
		used := map[string]int{}
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := abFlags.analyze(path)
			if err != nil {
				return err
			}
			body, err := abFlags.render(rep)
			if err != nil {
				return err
			}
			if abOutputDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}

			name := utils.ReportName(path, abFlags.ext())
			if n := used[name]; n > 0 {
				// same basename from another directory
				stem := name[:len(name)-len(abFlags.ext())]
				name = fmt.Sprintf("%s__%d%s", stem, n+1, abFlags.ext())
			}
			used[utils.ReportName(path, abFlags.ext())]++
			dst := filepath.Join(abOutputDir, name)
			if err := utils.SafeWriteFile(dst, body); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dst)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, de-duplicated and sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one report per input into this directory")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

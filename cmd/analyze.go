package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/KaramelBytes/smartbiz-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/smartbiz-cli/internal/config"
	"github.com/KaramelBytes/smartbiz-cli/internal/logger"
	"github.com/KaramelBytes/smartbiz-cli/internal/parser"
	"github.com/KaramelBytes/smartbiz-cli/internal/utils"
	"github.com/spf13/cobra"
)

// analyzeFlags are shared by analyze and analyze-batch.
type analyzeFlags struct {
	from       string
	to         string
	categories []string
	customers  []string
	top        int
	threshold  float64
	format     string
	sheetName  string
	sheetIndex int
	delimiter  string
	decimal    string
	thousands  string
	dayFirst   bool
	maxRows    int
	name       string
	bizType    string
	year       int
}

func (f *analyzeFlags) register(c *cobra.Command) {
	fl := c.Flags()
	fl.StringVar(&f.from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	fl.StringVar(&f.to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	fl.StringArrayVar(&f.categories, "category", nil, "restrict to category (repeatable)")
	fl.StringArrayVar(&f.customers, "customer", nil, "restrict to customer (repeatable)")
	fl.IntVar(&f.top, "top", 0, "rows in ranked tables (default from config)")
	fl.Float64Var(&f.threshold, "threshold", 0, "Pareto cumulative share cut-off in (0, 1] (default from config)")
	fl.StringVar(&f.format, "format", "markdown", "output format: markdown|json")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.BoolVar(&f.dayFirst, "day-first", false, "read ambiguous slash dates as DD/MM/YYYY")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	fl.StringVar(&f.name, "name", "", "business name shown on the report")
	fl.StringVar(&f.bizType, "type", "", "business type: "+strings.Join(analysis.BusinessTypes, "|"))
	fl.IntVar(&f.year, "year", 0, "founding year")
}

// validate checks flag values that do not depend on the input file.
func (f *analyzeFlags) validate() error {
	switch f.format {
	case "markdown", "md", "json":
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|json)", f.format)
	}
	if f.threshold < 0 || f.threshold > 1 {
		return fmt.Errorf("invalid --threshold: %v (use a value in (0, 1])", f.threshold)
	}
	if f.top < 0 {
		return fmt.Errorf("invalid --top: %d", f.top)
	}
	return nil
}

func (f *analyzeFlags) ext() string {
	if f.format == "json" {
		return ".json"
	}
	return ".md"
}

func (f *analyzeFlags) parserOptions() (parser.Options, error) {
	opt := parser.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex, MaxRows: f.maxRows}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *analyzeFlags) normalizeOptions(c *cfgpkg.Global) (analysis.NormalizeOptions, error) {
	opt := analysis.NormalizeOptions{DayFirst: c.DayFirst || f.dayFirst}
	dec, err := cfgpkg.ParseSeparator(c.DecimalSeparator)
	if err != nil {
		return opt, fmt.Errorf("config decimal_separator: %w", err)
	}
	thou, err := cfgpkg.ParseSeparator(c.ThousandsSeparator)
	if err != nil {
		return opt, fmt.Errorf("config thousands_separator: %w", err)
	}
	opt.DecimalSeparator, opt.ThousandsSeparator = dec, thou

	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

// profile merges flag values over the configured profile. It returns nil
// when neither names a profile.
func (f *analyzeFlags) profile(c *cfgpkg.Global) (*analysis.BusinessProfile, error) {
	p := analysis.BusinessProfile{Name: c.ProfileName, BusinessType: c.BusinessType, FoundingYear: c.FoundingYear}
	if f.name != "" {
		p.Name = f.name
	}
	if f.bizType != "" {
		p.BusinessType = f.bizType
	}
	if f.year != 0 {
		p.FoundingYear = f.year
	}
	if p == (analysis.BusinessProfile{}) {
		return nil, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// analyze runs the full pipeline for one file: read, normalize, filter, aggregate.
func (f *analyzeFlags) analyze(path string) (*analysis.Report, error) {
	c := currentConfig()
	popt, err := f.parserOptions()
	if err != nil {
		return nil, err
	}
	nopt, err := f.normalizeOptions(c)
	if err != nil {
		return nil, err
	}
	from, err := parseDateFlag("from", f.from)
	if err != nil {
		return nil, err
	}
	to, err := parseDateFlag("to", f.to)
	if err != nil {
		return nil, err
	}
	prof, err := f.profile(c)
	if err != nil {
		return nil, err
	}

	tbl, err := parser.ReadFile(path, popt)
	if err != nil {
		return nil, err
	}
	set, err := analysis.Normalize(tbl, nopt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	opt := analysis.Options{TopN: c.TopN, ParetoThreshold: c.ParetoThreshold, Profile: prof}
	if f.top > 0 {
		opt.TopN = f.top
	}
	if f.threshold > 0 {
		opt.ParetoThreshold = f.threshold
	}
	criteria := analysis.FilterCriteria{
		DateRange:  analysis.DateRangeOf(set, from, to),
		Categories: f.categories,
		Customers:  f.customers,
	}
	rep, err := analysis.Analyze(set, criteria, opt)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	rep.Source = filepath.Base(path)

	runLog := logger.WithFields(log, map[string]interface{}{"run_id": rep.RunID, "file": rep.Source})
	runLog.Info().
		Int("records", rep.TotalRecords).
		Int("filtered", rep.FilteredRecords).
		Msg("analysis complete")
	return rep, nil
}

// render formats rep in the selected output format.
func (f *analyzeFlags) render(rep *analysis.Report) ([]byte, error) {
	if f.format == "json" {
		b, err := utils.PrettyJSON(rep)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}
	return []byte(rep.Markdown()), nil
}

func parseDateFlag(name, v string) (*civil.Date, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %q (use YYYY-MM-DD)", name, v)
	}
	d := civil.DateOf(t)
	return &d, nil
}

var (
	anaFlags      analyzeFlags
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a sales CSV/TSV/XLSX and produce a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := anaFlags.validate(); err != nil {
			return err
		}
		rep, err := anaFlags.analyze(args[0])
		if err != nil {
			return err
		}
		out, err := anaFlags.render(rep)
		if err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
}

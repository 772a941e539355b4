package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/smartbiz-cli/internal/server"
	"github.com/spf13/cobra"
)

var srvAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		var none analyzeFlags
		nopt, err := none.normalizeOptions(c)
		if err != nil {
			return err
		}
		prof, err := none.profile(c)
		if err != nil {
			return fmt.Errorf("configured profile: %w", err)
		}
		addr := c.ServerAddr
		if srvAddr != "" {
			addr = srvAddr
		}

		s := server.New(server.Config{
			Addr:            addr,
			MaxUploadMB:     c.MaxUploadMB,
			RateLimitRPS:    c.RateLimitRPS,
			RateLimitBurst:  c.RateLimitBurst,
			TopN:            c.TopN,
			ParetoThreshold: c.ParetoThreshold,
			Normalize:       nopt,
			Profile:         prof,
		}, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s (Ctrl+C to stop)\n", addr)
		return s.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, e.g. :8080)")
}

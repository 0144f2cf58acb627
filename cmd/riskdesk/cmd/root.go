package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/config"
	"github.com/hedgeshield/riskdesk/internal/desk"
	"github.com/hedgeshield/riskdesk/internal/gateway"
	"github.com/hedgeshield/riskdesk/internal/logger"
	"github.com/hedgeshield/riskdesk/internal/scenario"
	"github.com/hedgeshield/riskdesk/internal/tenant"
	"github.com/hedgeshield/riskdesk/internal/view"
)

var rootCmd = &cobra.Command{
	Use:   "riskdesk",
	Short: "FX hedging risk desk",
	Long: `Riskdesk is the operator console of the FX hedging risk desk.

It keeps a company's forward contracts, hedge orders and per-pair portfolio
in sync with the API and projects total exposure and PnL under a market
shock scenario (-5%, -2%, 0%, +2%, +5%).

Examples:
  riskdesk desk --tenant acme --scenario +2
  riskdesk contract create --base USD --quote BRL --notional 250000 --due 2026-12-31
  riskdesk order place <contract-id> --side SELL --scenario -5
  riskdesk watch --tenant acme`,
	SilenceUsage: true,
}

var (
	cfgFile      string
	flagURL      string
	flagTenant   string
	flagScenario string
)

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "path to YAML config (optional)")
	pf.StringVar(&flagURL, "url", "", "API base URL (overrides client.base_url)")
	pf.StringVarP(&flagTenant, "tenant", "t", "", "company id (overrides client.tenant)")
	pf.StringVarP(&flagScenario, "scenario", "s", "", "shock scenario in percent: -5, -2, 0, +2, +5")
}

// session is one configured desk plus what the commands need around it.
type session struct {
	cfg      config.Config
	log      *zap.Logger
	desk     *desk.Desk
	renderer view.Renderer
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("url") {
		cfg.Client.BaseURL = flagURL
	}
	if cmd.Flags().Changed("tenant") {
		cfg.Client.Tenant = flagTenant
	}

	s := scenario.Scenario(cfg.Client.Scenario)
	if cmd.Flags().Changed("scenario") {
		if s, err = scenario.Parse(flagScenario); err != nil {
			return nil, err
		}
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tc := tenant.New(cfg.Client.Tenant)
	client := gateway.New(cfg.Client.BaseURL, tc,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
		gateway.WithLogger(log.Named("gateway")),
	)

	d := desk.New(ctx, client, tc, log)
	if err := d.SetScenario(s); err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		log:      log,
		desk:     d,
		renderer: view.TextRenderer{},
	}, nil
}

// show refreshes every collection and renders tab. Reload failures are
// reported but whatever did load is still shown.
func (s *session) show(ctx context.Context, w io.Writer, tab view.Tab) error {
	refreshErr := s.desk.Refresh(ctx)
	if err := s.renderer.Render(w, s.desk.View(), tab); err != nil {
		return err
	}
	return refreshErr
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hedgeshield/riskdesk/internal/live"
	"github.com/hedgeshield/riskdesk/internal/scenario"
	"github.com/hedgeshield/riskdesk/internal/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the desk live",
	Long: `Subscribe to the server's change feed and re-render a tab whenever the
company's data changes.

While watching, one command per line on stdin steers the desk:
  tenant <id>       switch company (reloads everything)
  scenario <pct>    switch shock scenario: -5, -2, 0, +2, +5
  tab <name>        switch tab: desk, orders, portfolio
  refresh           reload every collection
  quit              stop watching

Example:
  riskdesk watch --tenant acme --tab portfolio`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchTab      string
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchTab, "tab", string(view.TabDesk), "tab to render: desk, orders, portfolio")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "how often to check for changes")
}

func runWatch(cmd *cobra.Command, args []string) error {
	tab := view.Tab(watchTab)
	if !validTab(tab) {
		return fmt.Errorf("unknown tab %q", watchTab)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	sub, err := live.New(s.cfg.Client.BaseURL, s.desk.TenantContext(), s.desk.Store(),
		live.WithLogger(s.log.Named("live")))
	if err != nil {
		return err
	}
	go func() {
		if err := sub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("live feed stopped", zap.Error(err))
		}
	}()

	if err := s.desk.Refresh(ctx); err != nil {
		s.log.Warn("initial load incomplete", zap.Error(err))
	}

	lines := make(chan string)
	go readLines(ctx, cmd.InOrStdin(), lines)

	out := cmd.OutOrStdout()
	var last string
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		var b strings.Builder
		if err := s.renderer.Render(&b, s.desk.View(), tab); err != nil {
			return err
		}
		if frame := b.String(); frame != last {
			fmt.Fprintf(out, "\n%s  %s\n", time.Now().Format(time.TimeOnly), strings.Repeat("─", 40))
			fmt.Fprint(out, frame)
			last = frame
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case line := <-lines:
			quit, err := s.steer(ctx, line, &tab)
			if quit {
				return nil
			}
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}
	}
}

// steer applies one stdin command to the session.
func (s *session) steer(ctx context.Context, line string, tab *view.Tab) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "quit", "q":
		return true, nil
	case "tenant":
		if arg == "" {
			return false, errors.New("usage: tenant <id>")
		}
		s.desk.SetTenant(arg)
		// Foreground reload so the next frame already shows the new company.
		return false, s.desk.Refresh(ctx)
	case "scenario":
		sc, err := scenario.Parse(arg)
		if err != nil {
			return false, err
		}
		return false, s.desk.SetScenario(sc)
	case "tab":
		t := view.Tab(arg)
		if !validTab(t) {
			return false, fmt.Errorf("unknown tab %q", arg)
		}
		*tab = t
		return false, nil
	case "refresh":
		return false, s.desk.Refresh(ctx)
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

// readLines forwards r line by line until EOF or ctx ends. EOF leaves the
// watch running on the live feed alone.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func validTab(tab view.Tab) bool {
	for _, t := range view.Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hedgeshield/riskdesk/internal/view"
)

var deskCmd = &cobra.Command{
	Use:   "desk",
	Short: "Show contracts, exposure and projected PnL",
	Args:  cobra.NoArgs,
	RunE:  runTab(view.TabDesk),
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show the hedge order history",
	Args:  cobra.NoArgs,
	RunE:  runTab(view.TabOrders),
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show total notional per currency pair",
	Args:  cobra.NoArgs,
	RunE:  runTab(view.TabPortfolio),
}

func init() {
	rootCmd.AddCommand(deskCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func runTab(tab view.Tab) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.log.Sync()
		return s.show(cmd.Context(), cmd.OutOrStdout(), tab)
	}
}

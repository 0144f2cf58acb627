package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hedgeshield/riskdesk/internal/dispatch"
	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/view"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage hedge orders",
}

var orderPlaceCmd = &cobra.Command{
	Use:   "place <contract-id>",
	Short: "Place a hedge order priced at the selected scenario",
	Long: `Place a manual BUY or SELL hedge order against a contract. The order
records the selected scenario and its placeholder price (1 + pct/100).

Example:
  riskdesk order place 3f6c2a1e-... --side SELL --scenario +2`,
	Args: cobra.ExactArgs(1),
	RunE: runOrderPlace,
}

var orderSide string

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderPlaceCmd)

	orderPlaceCmd.Flags().StringVar(&orderSide, "side", "", "BUY or SELL")
	orderPlaceCmd.MarkFlagRequired("side")
}

func runOrderPlace(cmd *cobra.Command, args []string) error {
	side := model.Side(strings.ToUpper(strings.TrimSpace(orderSide)))
	if !side.Valid() {
		return dispatch.ErrInvalidSide
	}

	ctx := cmd.Context()
	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	sc := s.desk.Scenario()
	if err := s.desk.PlaceOrder(ctx, args[0], side); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s at %s (scenario %s)\n\n",
		side, args[0], dispatch.ExecutedPrice(sc).StringFixed(4), sc.Label())
	return s.show(ctx, cmd.OutOrStdout(), view.TabOrders)
}

package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hedgeshield/riskdesk/internal/model"
	"github.com/hedgeshield/riskdesk/internal/pair"
	"github.com/hedgeshield/riskdesk/internal/view"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage forward contracts",
}

var contractCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a forward contract",
	Long: `Open a forward contract for the current company.

Example:
  riskdesk contract create --base USD --quote BRL --notional 250000 --due 2026-12-31`,
	Args: cobra.NoArgs,
	RunE: runContractCreate,
}

var (
	contractBase     string
	contractQuote    string
	contractNotional string
	contractDue      string
)

func init() {
	rootCmd.AddCommand(contractCmd)
	contractCmd.AddCommand(contractCreateCmd)

	f := contractCreateCmd.Flags()
	f.StringVar(&contractBase, "base", "USD", "base currency")
	f.StringVar(&contractQuote, "quote", "BRL", "quote currency")
	f.StringVar(&contractNotional, "notional", "", "notional amount (> 0)")
	f.StringVar(&contractDue, "due", "", "due date, YYYY-MM-DD")
	contractCreateCmd.MarkFlagRequired("notional")
	contractCreateCmd.MarkFlagRequired("due")
}

func runContractCreate(cmd *cobra.Command, args []string) error {
	p, err := pair.New(contractBase, contractQuote)
	if err != nil {
		return err
	}
	notional, err := decimal.NewFromString(contractNotional)
	if err != nil || !notional.IsPositive() {
		return fmt.Errorf("notional must be a positive number, got %q", contractNotional)
	}
	due, err := pair.ParseDueDate(contractDue)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	err = s.desk.CreateContract(ctx, model.ContractRequest{
		Base:     p.Base,
		Quote:    p.Quote,
		Notional: model.Num(notional),
		DueDate:  due.Format(pair.DateLayout),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s %s due %s for %s\n\n",
		p, notional.StringFixed(2), due.Format(pair.DateLayout), s.desk.Tenant())
	return s.show(ctx, cmd.OutOrStdout(), view.TabDesk)
}

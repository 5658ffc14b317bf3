package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/worker"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <user-id>...",
		Args:  cobra.MinimumNArgs(1),
		Short: "Provision accounts and starter categories for the given users",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := worker.NewProvisioningWorker(a.provisioner, a.cfg.Categories())
			res, err := w.SeedUsers(cmd.Context(), args)
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d existing=%d failed=%d\n", res.Created, res.Existing, res.Failed)
			return err
		},
	}
}

func newTagCmd(a *app) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "tag <name>...",
		Args:  cobra.MinimumNArgs(1),
		Short: "Register tags for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.provisioner.CreateTags(cmd.Context(), userID, args...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tag(s) registered for %s\n", len(args), userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User owning the tags.")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newAppendCmd(a *app) *cobra.Command {
	var (
		userID   string
		amount   string
		kind     string
		category string
		tags     []string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "append",
		Args:  cobra.NoArgs,
		Short: "Record a transaction and update balance and monthly totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			money, err := core.ParseAmount(amount)
			if err != nil {
				return err
			}
			k, err := core.ParseKind(kind)
			if err != nil {
				return err
			}
			d := core.DateOf(time.Now())
			if date != "" {
				if d, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			id, err := a.ledger.AppendTransaction(cmd.Context(), core.TransactionInput{
				UserID:       userID,
				Amount:       money,
				Kind:         k,
				CategoryName: category,
				TagNames:     tags,
				Date:         d,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User recording the transaction.")
	cmd.Flags().StringVar(&amount, "amount", "", "Positive amount, e.g. 12.50.")
	cmd.Flags().StringVar(&kind, "kind", "", "INCOME or EXPENSE.")
	cmd.Flags().StringVar(&category, "category", "", "Category name; its kind must match --kind.")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag name, repeatable.")
	cmd.Flags().StringVar(&date, "date", "", "Transaction date as YYYY-MM-DD (default today).")
	for _, name := range []string{"user", "amount", "kind", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the current balance of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := a.ledger.GetBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "summary <user-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Print monthly income and expense totals",
		Long: `Print monthly income and expense totals.

With --from and --to every month of the inclusive range is listed, months
without activity included. Without them every recorded month is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				summaries []core.MonthSummary
				err       error
			)
			switch {
			case from == "" && to == "":
				summaries, err = a.summaries.GetAllSummaries(cmd.Context(), args[0])
			case from == "" || to == "":
				return fmt.Errorf("--from and --to must be given together")
			default:
				start, perr := parseYearMonth(from)
				if perr != nil {
					return perr
				}
				end, perr := parseYearMonth(to)
				if perr != nil {
					return perr
				}
				summaries, err = a.summaries.GetSummaryRange(cmd.Context(), args[0], start.Year, start.Month, end.Year, end.Month)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range summaries {
				fmt.Fprintf(out, "%s income=%s expense=%s net=%s\n", s.Period, s.Income, s.Expense, s.Net())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First month, YYYY-MM.")
	cmd.Flags().StringVar(&to, "to", "", "Last month, YYYY-MM.")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Args:  cobra.ExactArgs(1),
		Short: "List recorded transactions in date order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var start, end core.Date
			var err error
			if from != "" {
				if start, err = core.ParseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if end, err = core.ParseDate(to); err != nil {
					return err
				}
			}

			txs, err := a.ledger.ListTransactions(cmd.Context(), args[0], start, end)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tx := range txs {
				fmt.Fprintf(out, "%s %s %-7s %10s %s", tx.Date, tx.ID, tx.Kind, tx.Amount, tx.CategoryName)
				if len(tx.TagNames) > 0 {
					fmt.Fprintf(out, " [%s]", strings.Join(tx.TagNames, ","))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Earliest date, YYYY-MM-DD.")
	cmd.Flags().StringVar(&to, "to", "", "Latest date, YYYY-MM-DD.")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <user-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Compare stored balance and monthly totals with the transaction log",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.ledger.CheckConsistency(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "transactions=%d balance=%s expected=%s\n",
				report.Transactions, report.StoredBalance, report.ExpectedBalance)
			for _, m := range report.MismatchedPeriods {
				fmt.Fprintf(out, "%s stored income=%s expense=%s, expected income=%s expense=%s\n",
					m.Period, m.Stored.Income, m.Stored.Expense, m.Expected.Income, m.Expected.Expense)
			}
			if !report.Consistent() {
				return fmt.Errorf("ledger of %s has drifted", args[0])
			}
			fmt.Fprintln(out, "consistent")
			return nil
		},
	}
}

func parseYearMonth(s string) (core.YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return core.YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return core.YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

func newAnnounceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "announce <user-id>...",
		Args:  cobra.MinimumNArgs(1),
		Short: "Publish user created events for finanze-worker to provision",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is not configured")
			}
			client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			for _, userID := range args {
				if err := client.PublishUserCreated(cmd.Context(), userID); err != nil {
					return fmt.Errorf("announce %s: %w", userID, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), userID)
			}
			return nil
		},
	}
}

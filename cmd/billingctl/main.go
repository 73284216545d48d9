// Command billingctl runs back-office billing jobs against the database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cheerclub/billing-api/internal/accounts"
	"github.com/cheerclub/billing-api/internal/app"
	"github.com/cheerclub/billing-api/internal/auth"
	"github.com/cheerclub/billing-api/internal/config"
	"github.com/cheerclub/billing-api/internal/gateway"
	"github.com/cheerclub/billing-api/internal/logging"
	"github.com/cheerclub/billing-api/internal/reports"
	"github.com/cheerclub/billing-api/internal/utils"
	"github.com/cheerclub/billing-api/internal/utils/db"
	"github.com/cheerclub/billing-api/internal/webpay"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "billingctl",
		Short:        "Club billing operations",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(overdueCmd())
	rootCmd.AddCommand(accountsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// open connects to the configured database and wires the services. The
// command line never signs tokens or takes confirm locks.
func open(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	a := app.New(app.Deps{
		DB:      database,
		Log:     logger,
		Gateway: gateway.NewWebpay(cfg.Gateway),
		Locker:  webpay.NewMemoryLocker(),
		Webpay:  webpay.Options{FrontendURL: cfg.Frontend},
	})
	return a, logger, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every billing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Migrate(a.DB()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var from, to, category, method, status, xlsx string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the financial report as JSON or write it as XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := reports.Filter{Category: category, Method: method, Status: status}
			var err error
			if f.From, err = utils.ParseDate("from", from); err != nil {
				return err
			}
			if f.To, err = utils.ParseDate("to", to); err != nil {
				return err
			}
			a, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := a.Reports.Build(cmd.Context(), f)
			if err != nil {
				return err
			}
			if xlsx == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			out, err := os.Create(xlsx)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := reports.WriteXLSX(out, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s (%d entries)\n", xlsx, len(rep.Ledger))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "all", "report category")
	cmd.Flags().StringVar(&method, "method", "all", "payment method")
	cmd.Flags().StringVar(&status, "status", "paid", "obligation status, or all")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "write an XLSX workbook to this path")
	return cmd
}

func generateCmd() *cobra.Command {
	var chargeID uint
	var force bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create the obligations of an online charge for every active athlete",
		RunE: func(cmd *cobra.Command, args []string) error {
			if chargeID == 0 {
				return fmt.Errorf("--charge is required")
			}
			a, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Generator.Generate(cmd.Context(), chargeID, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "charge %d: %d created, %d existing, %d settled by autopay\n",
				res.ChargeID, res.Created, res.Existing, res.AutoSettled)
			return nil
		},
	}
	cmd.Flags().UintVar(&chargeID, "charge", 0, "online charge id")
	cmd.Flags().BoolVar(&force, "force", false, "skip the pre-check and let the unique index filter existing rows")
	return cmd
}

func overdueCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Flag pending dues and expired online obligations as overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := utils.ParseDate("as-of", asOf)
			if err != nil {
				return err
			}
			if when.IsZero() {
				now := time.Now().UTC()
				when = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			}
			a, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			dueCount, err := a.Dues.MarkOverdue(cmd.Context(), when)
			if err != nil {
				return err
			}
			onlineCount, err := a.Charges.MarkOverdue(cmd.Context(), when)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d dues and %d online obligations marked overdue\n", dueCount, onlineCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference day (YYYY-MM-DD), defaults to today")
	return cmd
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage login accounts",
	}

	var email, name, role, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account, printing a temporary password when none is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			acc, tmp, err := a.Accounts.Create(cmd.Context(), accounts.CreateInput{
				Email:    email,
				Name:     name,
				Role:     auth.Role(role),
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %d created for %s\n", acc.ID, acc.Email)
			if tmp != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "temporary password: %s\n", tmp)
			}
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(auth.RoleGuardian), "public, guardian, coach or admin")
	create.Flags().StringVar(&password, "password", "", "initial password")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

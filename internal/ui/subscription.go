package ui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/subscription"
)

func (a *App) subscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Manage plans and subscription approvals",
	}
	cmd.AddCommand(a.subRegisterCmd())
	cmd.AddCommand(a.subStatusCmd())
	cmd.AddCommand(a.subRequestCmd())
	cmd.AddCommand(a.subPendingCmd())
	cmd.AddCommand(a.subDecideCmd("approve", "Approve a user's pending upgrade", true))
	cmd.AddCommand(a.subDecideCmd("deny", "Deny a user's pending upgrade", false))
	cmd.AddCommand(a.subAccountCmd("block", "Block a user's account", subscription.AccountDenied))
	cmd.AddCommand(a.subAccountCmd("unblock", "Unblock a user's account", subscription.AccountActive))
	cmd.AddCommand(a.subSweepCmd())
	cmd.AddCommand(a.subMonitorCmd())
	return cmd
}

func (a *App) subRegisterCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a free profile for the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			p, err := a.subs.Register(context.Background(), userID, name, email)
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (default: the part of the email before @)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func (a *App) subStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [user]",
		Short: "Show a user's plan and subscription status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.targetUser(args)
			if err != nil {
				return err
			}
			p, err := a.subs.Get(context.Background(), userID)
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	}
}

func (a *App) subRequestCmd() *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "request <plan>",
		Short: "Request an upgrade to a paid plan",
		Long: `Request an upgrade to the ai or pro plan. The payment reference is
checked by an administrator before the plan is approved.

Example:
  shcadule subscription request pro --reference FT2503051234`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			plan, err := subscription.ParsePlan(args[0])
			if err != nil {
				return err
			}
			if err := a.subs.RequestUpgrade(context.Background(), userID, plan, reference); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested the %s plan; waiting for approval.\n", plan)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Payment reference (required)")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}

func (a *App) subPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List upgrade requests awaiting a decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			profiles, err := a.subs.Pending(context.Background())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(w, "No pending requests.")
				return nil
			}
			for _, p := range profiles {
				fmt.Fprintf(w, "%-24s %-6s %s  %s\n", p.UserID, p.PendingPlan, p.LastPaymentRef, formatMuted(p.Email))
			}
			return nil
		},
	}
}

func (a *App) subDecideCmd(use, short string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx := context.Background()
			if err := a.subs.Decide(ctx, args[0], approve); err != nil {
				return err
			}
			p, err := a.subs.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	}
}

func (a *App) subAccountCmd(use, short string, status subscription.AccountStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.subs.SetAccountStatus(context.Background(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s is now %s\n", args[0], status)
			return nil
		},
	}
}

func (a *App) subSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Downgrade subscriptions past their expiry date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			n, err := a.subs.Sweep(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downgraded %d expired subscriptions\n", n)
			return nil
		},
	}
}

func (a *App) subMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Sweep expired subscriptions periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Sweeping every %s; press Ctrl+C to stop.\n", a.cfg.SweepInterval())
			return subscription.NewMonitor(a.subs, a.cfg.SweepInterval()).Run(ctx)
		},
	}
}

// targetUser returns the user named in args, or the configured user.
func (a *App) targetUser(args []string) (string, error) {
	if len(args) > 0 {
		if err := a.open(); err != nil {
			return "", err
		}
		return args[0], nil
	}
	return a.user()
}

func printProfile(cmd *cobra.Command, p subscription.Profile) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  %s\n", formatHeader(p.UserID))
	if p.Name != "" || p.Email != "" {
		fmt.Fprintf(w, "  %s %s\n", p.Name, formatMuted(p.Email))
	}
	fmt.Fprintf(w, "  Plan:         %s\n", formatStats(string(p.Plan)))
	if p.SubscriptionStatus != "" {
		fmt.Fprintf(w, "  Subscription: %s\n", p.SubscriptionStatus)
	}
	if p.PendingPlan != "" {
		fmt.Fprintf(w, "  Pending:      %s (ref %s)\n", p.PendingPlan, p.LastPaymentRef)
	}
	if p.ExpiryDate != nil {
		fmt.Fprintf(w, "  Expires:      %s\n", p.ExpiryDate.Local().Format("2006-01-02 15:04"))
	}
	if p.Status == subscription.AccountDenied {
		fmt.Fprintf(w, "  %s\n", formatWarn("Account blocked"))
	}
}

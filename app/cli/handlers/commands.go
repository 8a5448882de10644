package handlers

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"membership-dashboard/app/server/profiles"
	"strings"
)

func (a *App) promoteCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant the admin role to the profile with the given email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := a.profiles.PromoteByEmail(cmd.Context(), profiles.ActorCLI, email)
			if err != nil {
				return a.explain(email, err)
			}
			a.l.Info("profile promoted", zap.String("email", profile.Email), zap.Stringer("id", profile.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", profile.Email, profile.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the profile")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) banCommand() *cobra.Command {
	var email, reason string
	cmd := &cobra.Command{
		Use:   "ban",
		Short: "Ban the profile with the given email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.setBan(cmd, email, true, strings.TrimSpace(reason))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the profile")
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the member")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func (a *App) unbanCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "unban",
		Short: "Lift the ban of the profile with the given email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.setBan(cmd, email, false, "")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the profile")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) setBan(cmd *cobra.Command, email string, banned bool, reason string) error {
	profile, err := a.profiles.GetByEmail(cmd.Context(), email)
	if err != nil {
		return a.explain(email, err)
	}

	profile, err = a.profiles.SetBan(cmd.Context(), profiles.ActorCLI, profile.ID, banned, reason)
	if err != nil {
		return a.explain(email, err)
	}

	a.l.Info("profile ban updated", zap.String("email", profile.Email), zap.Bool("banned", profile.IsBanned))
	if profile.IsBanned {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is banned: %s\n", profile.Email, profile.BanReason)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not banned\n", profile.Email)
	}
	return nil
}

func (a *App) explain(email string, err error) error {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		return fmt.Errorf("no profile with email %q", email)
	case errors.Is(err, profiles.ErrBanReasonRequired):
		return fmt.Errorf("a ban needs a reason")
	default:
		a.l.Error("command failed", zap.String("email", email), zap.Error(err))
		return err
	}
}

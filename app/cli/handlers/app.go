package handlers

import (
	"context"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"membership-dashboard/app/server/models"
)

// ProfileAdmin is the administrative part of the profile store.
type ProfileAdmin interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	PromoteByEmail(ctx context.Context, actor string, email string) (*models.Profile, error)
	SetBan(ctx context.Context, actor string, id uuid.UUID, banned bool, reason string) (*models.Profile, error)
}

type App struct {
	l        *zap.Logger
	profiles ProfileAdmin
}

func NewApp(l *zap.Logger, profiles ProfileAdmin) *App {
	if l == nil {
		l = zap.NewNop()
	}
	return &App{
		l:        l,
		profiles: profiles,
	}
}

// Command builds the command tree; the caller executes it.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard-cli",
		Short:         "Operator commands for the membership dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.promoteCommand(), a.banCommand(), a.unbanCommand())
	return root
}

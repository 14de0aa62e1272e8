package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/internal/config"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context
}

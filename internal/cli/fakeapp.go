package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/handlers"
	"github.com/taskflow-qa/taskflow-e2e/internal/models"
	"github.com/taskflow-qa/taskflow-e2e/internal/repository"
	"github.com/taskflow-qa/taskflow-e2e/internal/services"
)

// BuildFakeApp wires the stand-in task application on an in-memory store,
// seeded with the suite's fixture accounts
func BuildFakeApp(cfg config.ServerConfig, templateDir string) (http.Handler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	store := repository.NewMemoryStore()
	auth := services.NewAuthService(store)
	if err := services.SeedUsers(auth, models.SeedAccounts()); err != nil {
		return nil, fmt.Errorf("failed to seed accounts: %w", err)
	}

	return handlers.NewRouter(handlers.RouterDeps{
		TemplateDir: templateDir,
		Auth:        auth,
		Tasks:       services.NewTaskService(store, store),
		Location:    loc,
	})
}

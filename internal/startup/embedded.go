package startup

import (
	"fmt"
	"os"
	"path/filepath"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/bizchat/internal/logger"
)

const (
	embeddedUser     = "bizchat"
	embeddedPassword = "bizchat_secret"
	embeddedDatabase = "bizchat"
)

// StartEmbeddedPostgres runs a local PostgreSQL on port with data under dataDir and
// returns it together with its connection URL. Used by -dev and by tests.
func StartEmbeddedPostgres(port uint32, dataDir string) (*embeddedpostgres.EmbeddedPostgres, string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create pgdata dir: %w", err)
	}
	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(embeddedUser).
			Password(embeddedPassword).
			Database(embeddedDatabase).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), fmt.Sprintf("bizchat-pg-runtime-%d", port))),
	)
	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, "", fmt.Errorf("start embedded postgres: %w", err)
	}
	url := fmt.Sprintf("postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		embeddedUser, embeddedPassword, port, embeddedDatabase)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, url, nil
}

// Package db opens the sqlite file backing the row store. All game state
// lives in one database under the workspace's .vigilnet directory, which
// the CLI and the server share.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	workspaceDir = ".vigilnet"
	databaseFile = "vigilnet.db"
)

type Config struct {
	Workspace string
}

// EnsureWorkspace creates the .vigilnet directory under the workspace
// root if it is missing and returns its path.
func EnsureWorkspace(workspace string) (string, error) {
	if workspace == "" {
		workspace = "."
	}
	dir := filepath.Join(workspace, workspaceDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Path returns the database location for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, workspaceDir, databaseFile)
}

// Open ensures the workspace exists and opens its database. The busy
// timeout keeps a CLI invocation from failing outright while the server
// holds a write.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", Path(cfg.Workspace))
	return sql.Open("sqlite", dsn)
}

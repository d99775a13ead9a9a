// Package migrate builds the row store's tab tables. Each embedded SQL
// file under sql/ is one schema version; Migrate applies the versions
// newer than what the database already carries, in a single transaction,
// and records the result in schema_version. Tab data itself is seeded
// elsewhere; this package only shapes the tables.
package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var schemaFS embed.FS

type schemaFile struct {
	version int
	name    string
	ddl     string
}

// readSchemaFiles loads the embedded sql/ directory. File names are
// "NNN_description.sql"; the numeric prefix is the version.
func readSchemaFiles() ([]schemaFile, error) {
	entries, err := fs.ReadDir(schemaFS, "sql")
	if err != nil {
		return nil, err
	}
	files := make([]schemaFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("schema file %s has no version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("schema file %s: %w", name, err)
		}
		ddl, err := schemaFS.ReadFile("sql/" + name)
		if err != nil {
			return nil, err
		}
		files = append(files, schemaFile{version: version, name: name, ddl: string(ddl)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// currentVersion reads the applied schema version, initializing the
// tracking table on a fresh database.
func currentVersion(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL)`); err != nil {
		return 0, err
	}
	var v int
	err := tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&v)
	if err == sql.ErrNoRows {
		_, err = tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`)
		return 0, err
	}
	return v, err
}

// Migrate brings the tab tables up to the newest embedded schema
// version. Safe to call on every start; an up-to-date database is a
// no-op.
func Migrate(db *sql.DB) error {
	files, err := readSchemaFiles()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	version, err := currentVersion(tx)
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	applied := false
	for _, f := range files {
		if f.version <= version {
			continue
		}
		if _, err := tx.Exec(f.ddl); err != nil {
			return fmt.Errorf("apply %s: %w", f.name, err)
		}
		version = f.version
		applied = true
	}
	if applied {
		if _, err := tx.Exec(`UPDATE schema_version SET version=?`, version); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return tx.Commit()
}

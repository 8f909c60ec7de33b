package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the code supports for the ledger component.
	// This constant is used by the CLI to pass to UpgradeDB.
	TargetSchemaVersion int64 = 2
	// LedgerDBComponent is the name for the days/entries database component.
	LedgerDBComponent = "ledgerdb"
)

// migrations maps a schema version to the SQL that upgrades the previous version to it.
var migrations = map[int64]string{
	2: migrateV1ToV2,
}

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(db *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM learnlog_versions WHERE component = ?;`
	row := db.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "learnlog_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// detectUnversionedSchema inspects a store that has no version row. Stores
// written before versioning existed carry the days/entries tables already;
// the presence of the tags column tells the two historical layouts apart.
func detectUnversionedSchema(db *sql.DB) (int64, error) {
	rows, err := db.Query(`PRAGMA table_info(entries)`)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect entries table: %w", err)
	}
	defer rows.Close()

	found := false
	hasTags := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return 0, fmt.Errorf("failed to scan entries column: %w", err)
		}
		found = true
		if name == "tags" {
			hasTags = true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	switch {
	case !found:
		return 0, nil
	case hasTags:
		return 2, nil
	default:
		return 1, nil
	}
}

func setComponentVersion(tx *sql.Tx, version int64) error {
	insertVersionSQL := `
INSERT INTO learnlog_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := tx.Exec(insertVersionSQL, LedgerDBComponent, version); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", LedgerDBComponent, version, err)
	}
	return nil
}

// InitializeSchema creates the database schema (all tables for the ledger)
// and sets the specified schema version for the ledger component.
func InitializeSchema(db *sql.DB, schemaVersionToSet int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaV2); err != nil {
		return fmt.Errorf("failed to execute schema v2 SQL: %w", err)
	}
	if err := setComponentVersion(tx, schemaVersionToSet); err != nil {
		return err
	}
	return tx.Commit()
}

// applyMigrations runs every migration after from up to and including to, in one transaction.
func applyMigrations(db *sql.DB, from, to int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := from + 1; v <= to; v++ {
		stmt, ok := migrations[v]
		if !ok {
			return fmt.Errorf("no migration registered from schema version %d to %d", v-1, v)
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate schema from version %d to %d: %w", v-1, v, err)
		}
	}
	if err := setComponentVersion(tx, to); err != nil {
		return err
	}
	return tx.Commit()
}

// UpgradeDB applies necessary migrations to bring the database, represented by the *sql.DB connection,
// for the LedgerDBComponent to the appTargetSchemaVersion.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64, logger zerolog.Logger) error {
	log := logger.With().Str("component", LedgerDBComponent).Str("db", dbIdentifierForLog).Logger()

	currentDBVersion, err := GetComponentSchemaVersion(db, LedgerDBComponent)
	if err != nil {
		return err
	}

	unversioned := currentDBVersion == 0
	if unversioned {
		currentDBVersion, err = detectUnversionedSchema(db)
		if err != nil {
			return err
		}
		if currentDBVersion == 0 {
			log.Info().Int64("target", appTargetSchemaVersion).Msg("initializing new database")
			if err := InitializeSchema(db, appTargetSchemaVersion); err != nil {
				return fmt.Errorf("failed to initialize component %s in database '%s': %w", LedgerDBComponent, dbIdentifierForLog, err)
			}
			return nil
		}
		log.Info().Int64("detected", currentDBVersion).Msg("found unversioned store written by an earlier release")
	}

	switch {
	case currentDBVersion == appTargetSchemaVersion:
		if !unversioned {
			log.Debug().Int64("version", currentDBVersion).Msg("database is up to date")
			return nil
		}
		// An unversioned store that already matches only needs its stamp.
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.Exec(SchemaV2); err != nil {
			return fmt.Errorf("failed to execute schema v2 SQL: %w", err)
		}
		if err := setComponentVersion(tx, currentDBVersion); err != nil {
			return err
		}
		return tx.Commit()
	case currentDBVersion < appTargetSchemaVersion:
		log.Info().Int64("from", currentDBVersion).Int64("to", appTargetSchemaVersion).Msg("migrating database schema")
		if err := applyMigrations(db, currentDBVersion, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d: %w", LedgerDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion, err)
		}
		return nil
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", LedgerDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}

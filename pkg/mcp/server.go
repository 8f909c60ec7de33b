package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	learnlog "github.com/unowned-ai/learnlog/pkg"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
	"github.com/unowned-ai/learnlog/pkg/utils"
)

// Clock returns the current time. Handlers take it so tests can pin "today".
type Clock func() time.Time

// Options configures NewLearnlogMCPServer.
type Options struct {
	DBPath    string // empty means the platform default
	WAL       bool
	Sync      string
	BackupDir string // empty means <db dir>/backups
	Logger    zerolog.Logger
	Clock     Clock
}

type LearnlogMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	DbPath    string
	opts      Options
}

// NewLearnlogMCPServer opens (and if needed creates or upgrades) the journal
// database and wraps it in an MCP server. Tools are added by RegisterAllTools.
func NewLearnlogMCPServer(opts Options) (*LearnlogMCPServer, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	dbPath, err := utils.ResolveAndEnsureDBPath(opts.DBPath)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"Learnlog MCP Server",
		learnlog.Version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	dbConn, err := pkgdb.OpenDBConnection(dbPath, opts.WAL, opts.Sync)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Automatically initialize or migrate the database schema.
	if err := pkgdb.UpgradeDB(dbConn, dbPath, pkgdb.TargetSchemaVersion, opts.Logger); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", dbPath, err)
	}

	inserted, err := journal.EnsureContinuity(context.Background(), dbConn, opts.Clock())
	if err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to extend day ledger: %w", err)
	}
	if inserted > 0 {
		opts.Logger.Debug().Int("days", inserted).Msg("ledger backfilled")
	}

	opts.DBPath = dbPath
	return &LearnlogMCPServer{
		mcpServer: s,
		db:        dbConn,
		DbPath:    dbPath,
		opts:      opts,
	}, nil
}

// RegisterAllTools adds every learnlog tool to the server and returns their names.
func (s *LearnlogMCPServer) RegisterAllTools() []string {
	raw, db, clock := s.mcpServer, s.db, s.opts.Clock

	RegisterPingTool(raw)
	RegisterLogEntryTool(raw, db, clock)
	RegisterListEntriesTool(raw, db, clock)
	RegisterUpdateEntryTool(raw, db)
	RegisterDeleteEntryTool(raw, db)
	RegisterListTagsTool(raw, db)
	RegisterMonthStatsTool(raw, db, clock)
	RegisterDailyCountsTool(raw, db, clock)
	RegisterMissedDaysTool(raw, db, clock)
	RegisterSetMissReasonTool(raw, db, clock)
	RegisterClearMissReasonTool(raw, db)
	RegisterBackupTool(raw, db, s.DbPath, s.opts.BackupDir, s.opts.WAL, clock)

	return ToolNames
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *LearnlogMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// DB returns the underlying *sql.DB.
func (s *LearnlogMCPServer) DB() *sql.DB {
	return s.db
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *LearnlogMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *LearnlogMCPServer) Close() error {
	if s.db != nil {
		if s.opts.WAL {
			if err := pkgdb.Checkpoint(s.db); err != nil {
				s.opts.Logger.Warn().Err(err).Msg("WAL checkpoint failed during close")
			}
		}
		return s.db.Close()
	}
	return nil
}

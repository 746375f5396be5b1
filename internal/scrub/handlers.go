package scrub

import (
	"context"

	"github.com/mattjoyce/sitescrub/internal/files"
	"github.com/mattjoyce/sitescrub/internal/storage"
	"github.com/mattjoyce/sitescrub/internal/variables"
)

// TemporaryFileBatch bounds how many temporary files one run removes.
const TemporaryFileBatch = 1000

// scrubbedVariables carry per-environment state that must not survive a copy.
var scrubbedVariables = []string{
	"node.min_max_update_time",
	"system.cron_last",
	"system.private_key",
}

// truncatedTables are emptied when present.
var truncatedTables = []string{
	"node_counter",
	"batch",
	"queue",
	"semaphore",
	"sessions",
	"themebuilder_session",
}

const (
	searchDataset = "search_dataset"
	searchIndex   = "search_index"
	searchTotal   = "search_total"
	themeNotices  = "acsf_theme_notifications"
)

// VariableDeleter is satisfied by variables.Store.
type VariableDeleter interface {
	Delete(ctx context.Context, name string) (int64, error)
}

// FileStore is satisfied by files.Store.
type FileStore interface {
	Temporary(ctx context.Context, limit int) ([]files.File, error)
	Delete(ctx context.Context, f files.File) error
}

// TableStore is satisfied by storage.Conn.
type TableStore interface {
	TableExists(ctx context.Context, table string) (bool, error)
	Truncate(ctx context.Context, table string) error
}

// DefaultHandlers returns the scrub steps in execution order.
func DefaultHandlers(conn *storage.Conn, wrappers files.Wrappers) []Handler {
	return []Handler{
		&ConfigurationScrub{Variables: variables.NewStore(conn)},
		&TemporaryFilesScrub{Files: files.NewStore(conn, wrappers)},
		&TruncateTablesScrub{Tables: conn},
		&ThemeNotificationsScrub{Tables: conn},
	}
}

// ConfigurationScrub deletes per-environment variables.
type ConfigurationScrub struct {
	Variables VariableDeleter
}

func (h *ConfigurationScrub) Name() string { return "ConfigurationScrub" }

func (h *ConfigurationScrub) Handle(ctx context.Context) error {
	for _, name := range scrubbedVariables {
		if _, err := h.Variables.Delete(ctx, name); err != nil {
			return &HandlerError{Handler: h.Name(), Table: variables.Table, Err: err}
		}
	}
	return nil
}

// TemporaryFilesScrub removes one batch of non-permanent managed files.
type TemporaryFilesScrub struct {
	Files FileStore
	Limit int
}

func (h *TemporaryFilesScrub) Name() string { return "TemporaryFilesScrub" }

func (h *TemporaryFilesScrub) Handle(ctx context.Context) error {
	limit := h.Limit
	if limit <= 0 {
		limit = TemporaryFileBatch
	}
	batch, err := h.Files.Temporary(ctx, limit)
	if err != nil {
		return &HandlerError{Handler: h.Name(), Table: files.Table, Err: err}
	}
	for _, f := range batch {
		if err := h.Files.Delete(ctx, f); err != nil {
			return &HandlerError{Handler: h.Name(), Table: files.Table, Err: err}
		}
	}
	return nil
}

// TruncateTablesScrub clears the search index when search is installed and
// empties transient tables that exist.
type TruncateTablesScrub struct {
	Tables TableStore
}

func (h *TruncateTablesScrub) Name() string { return "TruncateTablesScrub" }

func (h *TruncateTablesScrub) Handle(ctx context.Context) error {
	tables := truncatedTables

	searchInstalled, err := h.Tables.TableExists(ctx, searchDataset)
	if err != nil {
		return &HandlerError{Handler: h.Name(), Table: searchDataset, Err: err}
	}
	if searchInstalled {
		for _, t := range []string{searchDataset, searchIndex} {
			if err := h.truncateIfExists(ctx, t); err != nil {
				return err
			}
		}
		tables = append([]string{searchTotal}, truncatedTables...)
	}

	for _, t := range tables {
		if err := h.truncateIfExists(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (h *TruncateTablesScrub) truncateIfExists(ctx context.Context, table string) error {
	ok, err := h.Tables.TableExists(ctx, table)
	if err != nil {
		return &HandlerError{Handler: h.Name(), Table: table, Err: err}
	}
	if !ok {
		return nil
	}
	if err := h.Tables.Truncate(ctx, table); err != nil {
		return &HandlerError{Handler: h.Name(), Table: table, Err: err}
	}
	return nil
}

// ThemeNotificationsScrub empties the pending theme notification queue. The
// table is owned by the companion extension and always present.
type ThemeNotificationsScrub struct {
	Tables TableStore
}

func (h *ThemeNotificationsScrub) Name() string { return "ThemeNotificationsScrub" }

func (h *ThemeNotificationsScrub) Handle(ctx context.Context) error {
	if err := h.Tables.Truncate(ctx, themeNotices); err != nil {
		return &HandlerError{Handler: h.Name(), Table: themeNotices, Err: err}
	}
	return nil
}

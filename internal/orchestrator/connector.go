package orchestrator

import (
	"context"
	"fmt"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/site"
	"github.com/mattjoyce/sitescrub/internal/storage"
	"github.com/mattjoyce/sitescrub/internal/variables"
)

// SQLConnector opens the target's database using the configured driver and
// DSN template.
type SQLConnector struct {
	Config *config.Config
}

var _ Connector = (*SQLConnector)(nil)

type sqlSession struct {
	*variables.Store
	conn *storage.Conn
}

func (s *sqlSession) Close() error { return s.conn.Close() }

func (c *SQLConnector) Connect(ctx context.Context, target site.Target) (Session, error) {
	dsn, err := c.Config.DSNFor(config.VarsFor(target))
	if err != nil {
		return nil, err
	}
	conn, err := storage.Open(ctx, c.Config.Database.Driver, dsn, c.Config.Database.Prefix)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", target, err)
	}
	return &sqlSession{Store: variables.NewStore(conn), conn: conn}, nil
}

// Package store owns the Neo4j connection pool. Every other component
// reaches the graph through a *Client; nothing else in the repository
// opens sessions or holds driver state.
package store

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"citegraph/pkg/errors"
	"citegraph/pkg/logger"

	"go.uber.org/zap"
)

// Config contains the connection parameters for the graph store.
// Capturing them is separated from Connect so settings can be
// validated before any I/O happens.
type Config struct {
	URI      string
	Username string
	Password string
	// Database is the Neo4j database name; empty uses the server default.
	Database string

	// MaxPoolSize limits the number of connections in the pool.
	MaxPoolSize int
	// AcquisitionTimeout is the maximum wait for a pooled connection.
	AcquisitionTimeout time.Duration
	// MaxTransactionRetryTime bounds the driver's own managed-transaction retries.
	MaxTransactionRetryTime time.Duration
}

// Validate checks the configuration before any connection attempt.
func (c Config) Validate() error {
	if c.URI == "" {
		return errors.NewConfigIncomplete("URI")
	}
	if c.Username == "" {
		return errors.NewConfigIncomplete("Username")
	}
	if c.Password == "" {
		return errors.NewConfigIncomplete("Password")
	}
	return nil
}

// DefaultConfig returns a Config with sensible local-development defaults.
func DefaultConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		MaxPoolSize:             50,
		AcquisitionTimeout:      60 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Client is the single owner of the Neo4j connection pool. Construct
// it with New, then Connect before first use; it is safe for
// concurrent use once connected.
type Client struct {
	cfg    Config
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// New captures connection parameters without performing any I/O.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		logger: logger.Named("store"),
	}, nil
}

// Connect establishes the bounded connection pool and verifies the
// store is reachable. Failures are typed so operators can tell "store
// is down" from "credentials are wrong".
func (c *Client) Connect(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(
		c.cfg.URI,
		neo4j.BasicAuth(c.cfg.Username, c.cfg.Password, ""),
		func(conf *neo4j.Config) {
			if c.cfg.MaxPoolSize > 0 {
				conf.MaxConnectionPoolSize = c.cfg.MaxPoolSize
			}
			if c.cfg.AcquisitionTimeout > 0 {
				conf.ConnectionAcquisitionTimeout = c.cfg.AcquisitionTimeout
			}
			if c.cfg.MaxTransactionRetryTime > 0 {
				conf.MaxTransactionRetryTime = c.cfg.MaxTransactionRetryTime
			}
		},
	)
	if err != nil {
		return errors.NewServiceUnreachable(c.cfg.URI, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		if isAuthError(err) {
			return errors.NewAuthRejected(c.cfg.Username, err)
		}
		return errors.NewServiceUnreachable(c.cfg.URI, err)
	}

	c.driver = driver
	c.logger.Info("Connected to graph store",
		zap.String("uri", c.cfg.URI),
		zap.Int("max_pool_size", c.cfg.MaxPoolSize),
	)
	return nil
}

// Close releases the connection pool.
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

// Connected reports whether Connect has succeeded. Dependents consult
// it once at startup instead of scattering nil checks.
func (c *Client) Connected() bool {
	return c.driver != nil
}

// SessionOption adjusts per-call session settings.
type SessionOption func(*neo4j.SessionConfig)

// WithDatabase overrides the configured database for one session.
func WithDatabase(name string) SessionOption {
	return func(sc *neo4j.SessionConfig) {
		sc.DatabaseName = name
	}
}

// ReadSession opens a read-mode session. The caller must Close it on
// every exit path.
func (c *Client) ReadSession(ctx context.Context, opts ...SessionOption) (neo4j.SessionWithContext, error) {
	return c.session(ctx, neo4j.AccessModeRead, opts...)
}

// WriteSession opens a write-mode session. The caller must Close it on
// every exit path.
func (c *Client) WriteSession(ctx context.Context, opts ...SessionOption) (neo4j.SessionWithContext, error) {
	return c.session(ctx, neo4j.AccessModeWrite, opts...)
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode, opts ...SessionOption) (neo4j.SessionWithContext, error) {
	if c.driver == nil {
		return nil, errors.ErrNotConnected
	}
	sc := neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.cfg.Database,
	}
	for _, opt := range opts {
		opt(&sc)
	}
	return c.driver.NewSession(ctx, sc), nil
}

func isAuthError(err error) bool {
	var neoErr *neo4j.Neo4jError
	if stderrors.As(err, &neoErr) {
		return strings.Contains(neoErr.Code, "Security.Unauthorized") ||
			strings.Contains(neoErr.Code, "Security.CredentialsExpired")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication")
}

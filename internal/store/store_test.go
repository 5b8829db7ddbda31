package store

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citegraph/pkg/errors"
)

func validConfig() Config {
	return Config{
		URI:      "bolt://localhost:7687",
		Username: "neo4j",
		Password: "password",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing uri", func(c *Config) { c.URI = "" }, true},
		{"missing username", func(c *Config) { c.Username = "" }, true},
		{"missing password", func(c *Config) { c.Password = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.MaxPoolSize)
	assert.Equal(t, 60*time.Second, cfg.AcquisitionTimeout)
	assert.Equal(t, 30*time.Second, cfg.MaxTransactionRetryTime)
}

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	_, err := New(Config{URI: "bolt://localhost:7687"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
}

func TestClient_OperationsBeforeConnect(t *testing.T) {
	client, err := New(validConfig())
	require.NoError(t, err)
	assert.False(t, client.Connected())

	ctx := context.Background()

	_, err = client.ReadSession(ctx)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.WriteSession(ctx)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.ExecuteQuery(ctx, "MATCH (n) RETURN n", nil)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.ExecuteWrite(ctx, "MATCH (n) DETACH DELETE n", nil)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	_, err = client.ExecuteQueryWithGraph(ctx, "MATCH (n) RETURN n.paperId AS paperId", nil)
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	// Close before Connect is a no-op.
	assert.NoError(t, client.Close(ctx))
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthorized code", &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "bad credentials"}, true},
		{"expired credentials", &neo4j.Neo4jError{Code: "Neo.ClientError.Security.CredentialsExpired", Msg: "expired"}, true},
		{"other neo4j error", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad query"}, false},
		{"plain unauthorized message", stderrors.New("server responded: unauthorized"), true},
		{"connection refused", stderrors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAuthError(tt.err))
		})
	}
}

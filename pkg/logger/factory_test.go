package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "tenantguard")),
	)

	log.Info("resolver ready")

	entry := logLine(t, &buf)
	assert.Equal(t, "resolver ready", entry["msg"])
	assert.Equal(t, "tenantguard", entry["service"])
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
		logger.WithLevel(slog.LevelWarn),
	)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNew_ContextExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithFormat(logger.FormatJSON),
		logger.WithOutput(&buf),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)

	ctx := tenant.WithContext(context.Background(), &tenant.Context{TenantID: "tenant-42"})
	log.InfoContext(ctx, "order created")

	entry := logLine(t, &buf)
	assert.Equal(t, "tenant-42", entry["tenant_id"])

	// Without the value in context the attribute is simply absent.
	buf.Reset()
	log.InfoContext(context.Background(), "no tenant")
	entry = logLine(t, &buf)
	assert.NotContains(t, entry, "tenant_id")
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tenant_id", logger.TenantID("tenant-42").Key)
	assert.Equal(t, "violation", logger.Violation("rate_limit").Key)

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

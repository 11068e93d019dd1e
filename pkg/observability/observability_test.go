package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.Equal(t, "skillcheck", config.ServiceName)
	require.Equal(t, "localhost:4317", config.OTLPEndpoint)
	require.False(t, config.Insecure)
	require.False(t, config.Enabled, "telemetry is opt-in")
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderNilConfigIsDisabled(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, p.tracerProvider)
}

func TestTrackOperationDisabled(t *testing.T) {
	p, err := New(context.Background(), nil)
	require.NoError(t, err)

	ctx, done := p.TrackOperation(context.Background(), "validate.skill", attribute.String("skill", "s1"))
	require.NotNil(t, ctx)
	done(nil)

	_, done = p.TrackOperation(context.Background(), "validate.skill")
	done(errors.New("boom"))

	p.RecordFindings(context.Background(), findings.List{findings.Error(findings.CheckPolicyMissing, "x")})
}

func TestNilProviderIsUsable(t *testing.T) {
	var p *Provider
	ctx, done := p.TrackOperation(context.Background(), "validate.solution")
	require.NotNil(t, ctx)
	done(nil)
	p.RecordFindings(context.Background(), nil)
	require.NotNil(t, p.Tracer())
}

func TestNewProviderEnabled(t *testing.T) {
	// Exporters dial lazily, so nothing needs to listen on the endpoint.
	p, err := New(context.Background(), &Config{
		ServiceName:  "skillcheck-test",
		OTLPEndpoint: "127.0.0.1:1",
		Enabled:      true,
		Insecure:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, p.tracerProvider)
	require.NotNil(t, p.meterProvider)

	_, done := p.TrackOperation(context.Background(), "validate.connectors")
	done(nil)
	p.RecordFindings(context.Background(), findings.List{findings.Warning(findings.CheckConnectorPathMismatch, "x")})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}

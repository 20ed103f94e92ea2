package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestMetricsServerExposesCollectors(t *testing.T) {
	port := freePort(t)
	srv := StartMetricsServer(context.Background(), port, zap.NewNop())
	defer srv.Shutdown(context.Background())

	AnalysesTotal.WithLabelValues("success").Inc()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `safewatch_analyses_total{outcome="success"}`)
}

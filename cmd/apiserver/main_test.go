package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/EcoExpand-AI/internal/config"
	"github.com/turtacn/EcoExpand-AI/internal/testutil"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

const indicatorCSV = `Country,Political_Stability,Economic_Stability,Export_Incentives,Duty_Drawback,Trade_Agreements,Cost_Saving
India,0.8,0.7,0.5,0.3,0.6,10000
Germany,0.9,0.85,0.4,0.2,0.9,15000
Brazil,0.5,0.45,0.6,0.4,0.5,8000
Nigeria,0.3,0.35,0.7,0.5,0.3,6000
Vietnam,0.6,0.65,0.8,0.6,0.7,12000
Kenya,0.4,0.3,0.55,0.35,0.4,7000
Japan,0.95,0.8,0.3,0.1,0.85,14000
Mexico,0.55,0.5,0.65,0.45,0.75,11000
Egypt,0.35,0.4,0.6,0.5,0.35,6500
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(indicatorCSV), 0o600))

	cfg := config.NewDefaultConfig()
	cfg.Dataset.Path = path
	cfg.Metrics.Namespace = "apiservertest"
	cfg.Graph.SeedSample = true
	cfg.Server.Mode = "test"
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) (string, *testutil.RecordingLogger) {
	t.Helper()
	logger := testutil.NewRecordingLogger()
	app, err := newApplication(cfg, logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- app.server.Serve(ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, app.server.Stop(ctx))
		assert.NoError(t, <-done)
		app.close()
	})
	return "http://" + ln.Addr().String(), logger
}

func getJSON(t *testing.T, url string, dst interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
	return resp.StatusCode
}

func TestApplication_ServesWiredStack(t *testing.T) {
	base, logger := startApp(t, testConfig(t))

	var countries struct {
		Countries []string `json:"countries"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, base+"/api/v1/countries", &countries))
	assert.Len(t, countries.Countries, 9)

	resp, err := http.Post(base+"/api/v1/analyze", "application/json", strings.NewReader(`{"country":"India"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var analysis struct {
		RiskCluster          string `json:"risk_cluster"`
		PredictedCostSavings string `json:"predicted_cost_savings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analysis))
	assert.Regexp(t, `^Cluster [0-2] \((Low|Medium|High) Risk\)$`, analysis.RiskCluster)
	assert.Regexp(t, `^\$\d{1,3}(,\d{3})*\.\d{2}$`, analysis.PredictedCostSavings)

	var graph struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, base+"/api/v1/graph", &graph))
	assert.NotEmpty(t, graph.Nodes, "sample graph is seeded")
	assert.NotEmpty(t, graph.Edges)

	var ready struct {
		Status     string                     `json:"status"`
		Components map[string]json.RawMessage `json:"components"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, base+"/readyz", &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Contains(t, ready.Components, "graph")

	metricsResp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "apiservertest_")

	_, ok := logger.Find("info", "dataset loaded")
	assert.True(t, ok)
}

func TestApplication_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	base, _ := startApp(t, cfg)

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewApplication_DatasetFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "missing file",
			mutate: func(c *config.Config) { c.Dataset.Path = filepath.Join(os.TempDir(), "no-such-dataset.csv") },
			want:   "dataset",
		},
		{
			name:   "minio source without minio",
			mutate: func(c *config.Config) { c.Dataset.Source = "minio" },
			want:   "requires minio.enabled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := newApplication(cfg, testutil.NewRecordingLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDataset_MissingFileIsIngestionError(t *testing.T) {
	cfg := config.DatasetConfig{Source: "file", Path: filepath.Join(t.TempDir(), "absent.csv")}
	_, err := loadDataset(context.Background(), cfg, nil, testutil.NewRecordingLogger())
	require.Error(t, err)
	assert.True(t, errors.IsIngestion(err))
}

func TestPipelineOptions(t *testing.T) {
	opts := pipelineOptions(config.DatasetConfig{
		Clusters:       4,
		Seed:           7,
		MaxIterations:  50,
		Trees:          20,
		TestRatio:      0.25,
		MaxDepth:       6,
		MinSamplesLeaf: 2,
		MaxFeatures:    3,
	})
	assert.Equal(t, 4, opts.Clusters)
	assert.Equal(t, int64(7), opts.Seed)
	assert.Equal(t, 50, opts.MaxIterations)
	assert.Equal(t, 20, opts.Forest.NumTrees)
	assert.InDelta(t, 0.25, opts.Forest.TestRatio, 1e-12)
	assert.Equal(t, 6, opts.Forest.MaxDepth)
	assert.Equal(t, 2, opts.Forest.MinSamplesLeaf)
	assert.Equal(t, 3, opts.Forest.MaxFeatures)
	assert.Equal(t, int64(7), opts.Forest.Seed)
}

func TestLoadConfig(t *testing.T) {
	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv("ECOEXPAND_SERVER_PORT", "9100")
		cfg, fromFile, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.False(t, fromFile)
		assert.Equal(t, 9100, cfg.Server.Port)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := fmt.Sprintf("server:\n  port: %d\ngraph:\n  backend: memory\n", 9200)
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

		cfg, fromFile, err := loadConfig(path)
		require.NoError(t, err)
		assert.True(t, fromFile)
		assert.Equal(t, 9200, cfg.Server.Port)
	})
}

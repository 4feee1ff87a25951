package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: test-app
database:
  redis:
    address: cache:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, ":8080", cfg.Server.WorkerAddr())
	assert.Equal(t, 3000, cfg.Web.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Web.APIBaseURL)
	assert.Equal(t, "career-analysis", cfg.Camunda.ProcessID)
	assert.Equal(t, "cache:6379", cfg.Database.Redis.Address)
	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, "jobs", cfg.Database.Elasticsearch.JobsIndex)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, "llama3", cfg.LLM.Ollama.Model)
	assert.Equal(t, 5, cfg.Security.MaxUploadMB)
	assert.Equal(t, 50000, cfg.Security.MaxResumeChars)
	assert.Equal(t, "nexus-talent-api", cfg.Observability.ServiceName)
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret-key")
	path := writeConfig(t, `
llm:
  gemini:
    api_key: ${TEST_GEMINI_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.LLM.Gemini.APIKey)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	path := writeConfig(t, `
workers:
  score-ats:
    enabled: true
  analyze-skill-gaps:
    enabled: false
    timeout: 90000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	ats := GetWorkerConfig(cfg, "score-ats")
	assert.True(t, ats.Enabled)
	assert.Equal(t, 5, ats.MaxJobsActive)
	assert.Equal(t, 30000, ats.Timeout)
	assert.Equal(t, 3, ats.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "analyze-skill-gaps"))
	assert.Equal(t, 90*time.Second, GetDuration(cfg.Workers["analyze-skill-gaps"].Timeout))

	// unknown workers fall back to enabled defaults
	assert.True(t, IsWorkerEnabled(cfg, "build-learning-path"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "build-learning-path").MaxJobsActive)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "camunda enabled without broker",
			body: `
camunda:
  enabled: true
`,
			wantErr: "camunda.broker_address",
		},
		{
			name: "s3 enabled without bucket",
			body: `
integrations:
  aws:
    s3:
      enabled: true
`,
			wantErr: "integrations.aws.s3.bucket",
		},
		{
			name: "rabbitmq enabled without url",
			body: `
integrations:
  rabbitmq:
    enabled: true
`,
			wantErr: "integrations.rabbitmq.url",
		},
		{
			name: "postgres host without database",
			body: `
database:
  postgres:
    host: db
`,
			wantErr: "database.postgres.database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RABBITMQ_URL", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "career", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=career sslmode=disable", p.GetDSN())
	assert.True(t, p.Enabled())
}

func TestLoadFromFile_ShippedConfig(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.False(t, cfg.Camunda.Enabled)
	assert.Equal(t, "configs/registry.json", cfg.Registry.Path)
	for _, taskType := range []string{"parse-resume", "source-jobs", "score-ats", "analyze-skill-gaps", "build-learning-path"} {
		assert.True(t, IsWorkerEnabled(cfg, taskType), taskType)
	}
}

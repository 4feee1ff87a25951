package sourcejobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-talent/internal/common/cache"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
)

// ==========================
// Test Doubles
// ==========================

type fakeIndex struct {
	jobs      []models.Job
	err       error
	searched  int
	indexed   []models.Job
	gotSkills []string
}

func (f *fakeIndex) Search(ctx context.Context, title, location string, skills []string, limit int) ([]models.Job, error) {
	f.searched++
	f.gotSkills = skills
	return f.jobs, f.err
}

func (f *fakeIndex) IndexJobs(ctx context.Context, jobs []models.Job) error {
	f.indexed = append(f.indexed, jobs...)
	return nil
}

type fakeBoard struct {
	jobs  []models.Job
	err   error
	calls int
}

func (f *fakeBoard) Search(ctx context.Context, title, location string) ([]models.Job, error) {
	f.calls++
	return f.jobs, f.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func createTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, nil, logger.NewTestLogger(t)), mr
}

func jobsOf(n int, source models.JobSource) []models.Job {
	out := make([]models.Job, n)
	for i := range out {
		out[i] = models.Job{Title: "Go Engineer", Company: "Co", JD: "Go Kubernetes", Source: source}
	}
	return out
}

func testInput() *Input {
	return &Input{JobTitle: "Go Engineer", Location: "Remote", Skills: []string{"Go", "Kubernetes"}}
}

// ==========================
// Sourcing Levels
// ==========================

func TestHandler_Execute_CacheHit(t *testing.T) {
	c, _ := createTestCache(t)
	input := testInput()
	require.NoError(t, c.SetJSON(context.Background(), CacheKey(input.JobTitle, input.Location, input.Skills), jobsOf(2, models.JobSourceExternalAPI), time.Minute))

	index := &fakeIndex{}
	h := NewHandler(createTestConfig(), Dependencies{Cache: c, Index: index}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.JobSourceCache, out.DataSource)
	assert.Len(t, out.Jobs, 2)
	assert.Equal(t, models.JobSourceCache, out.Jobs[0].Source)
	assert.Zero(t, index.searched)
}

func TestHandler_Execute_IndexAccepted(t *testing.T) {
	index := &fakeIndex{jobs: jobsOf(3, models.JobSourceIndex)}
	board := &fakeBoard{}
	h := NewHandler(createTestConfig(), Dependencies{Index: index, Board: board}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, models.JobSourceIndex, out.DataSource)
	assert.Len(t, out.Jobs, 3)
	assert.Equal(t, []string{"Go", "Kubernetes"}, index.gotSkills)
	assert.Zero(t, board.calls)
}

func TestHandler_Execute_FallsBackToBoard(t *testing.T) {
	c, mr := createTestCache(t)
	index := &fakeIndex{jobs: jobsOf(2, models.JobSourceIndex)}
	board := &fakeBoard{jobs: jobsOf(4, models.JobSourceExternalAPI)}
	h := NewHandler(createTestConfig(), Dependencies{Cache: c, Index: index, Board: board}, logger.NewTestLogger(t))

	input := testInput()
	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, models.JobSourceExternalAPI, out.DataSource)
	assert.Len(t, out.Jobs, 4)
	assert.Empty(t, out.Error)
	assert.Len(t, index.indexed, 4)

	key := CacheKey(input.JobTitle, input.Location, input.Skills)
	assert.True(t, mr.Exists(key))
	assert.InDelta(t, cache.TTLJobs.Seconds(), mr.TTL(key).Seconds(), 1)
}

func TestHandler_Execute_IndexErrorFallsBackToBoard(t *testing.T) {
	index := &fakeIndex{err: errors.New("cluster red")}
	board := &fakeBoard{jobs: jobsOf(1, models.JobSourceExternalAPI)}
	h := NewHandler(createTestConfig(), Dependencies{Index: index, Board: board}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 1, board.calls)
	assert.Len(t, out.Jobs, 1)
}

// ==========================
// Degraded Paths
// ==========================

func TestHandler_Execute_AllLevelsFail(t *testing.T) {
	tests := []struct {
		name string
		deps Dependencies
	}{
		{"board error", Dependencies{Board: &fakeBoard{err: errors.New("dial tcp: refused")}}},
		{"no board", Dependencies{Index: &fakeIndex{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), tt.deps, logger.NewTestLogger(t))
			out, err := h.Execute(context.Background(), testInput())
			require.NoError(t, err)
			assert.Equal(t, "Could not retrieve jobs at this time.", out.Error)
			assert.NotNil(t, out.Jobs)
			assert.Empty(t, out.Jobs)
		})
	}
}

func TestHandler_Execute_RequestJobDescriptionFirst(t *testing.T) {
	board := &fakeBoard{jobs: jobsOf(2, models.JobSourceExternalAPI)}
	h := NewHandler(createTestConfig(), Dependencies{Board: board}, logger.NewTestLogger(t))

	input := testInput()
	input.JobDescription = "  We need Go and Terraform.  "
	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, out.Jobs, 3)
	assert.Equal(t, models.JobSourceRequest, out.Jobs[0].Source)
	assert.Equal(t, "We need Go and Terraform.", out.Jobs[0].JD)
	assert.Equal(t, "Go Engineer", out.Jobs[0].Title)
}

// ==========================
// Cache Key
// ==========================

func TestCacheKey(t *testing.T) {
	withSkills := CacheKey("Go Engineer", "Remote", []string{"Go", "Kubernetes"})
	assert.True(t, strings.HasPrefix(withSkills, cache.NamespaceJobs+":"))
	assert.Equal(t, cache.GenerateKey(cache.NamespaceJobs, "Go Engineer", "Remote", "Go, Kubernetes"), withSkills)

	noSkills := CacheKey("Go Engineer", "Remote", nil)
	assert.Equal(t, cache.GenerateKey(cache.NamespaceJobs, "Go Engineer", "Remote", "Go Engineer"), noSkills)

	long := []string{strings.Repeat("x", 80)}
	assert.Equal(t, cache.GenerateKey(cache.NamespaceJobs, "t", "l", strings.Repeat("x", 50)), CacheKey("t", "l", long))
}

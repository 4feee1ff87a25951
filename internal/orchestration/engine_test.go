package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nexus-talent/internal/common/errors"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/messaging"
	"nexus-talent/internal/models"
	"nexus-talent/internal/resume"
	analyzeskillgaps "nexus-talent/internal/workers/career/analyze-skill-gaps"
	buildlearningpath "nexus-talent/internal/workers/career/build-learning-path"
	parseresume "nexus-talent/internal/workers/career/parse-resume"
	scoreats "nexus-talent/internal/workers/career/score-ats"
	sourcejobs "nexus-talent/internal/workers/career/source-jobs"
	"nexus-talent/internal/youtube"
)

// ==========================
// Test Doubles
// ==========================

type fakeParse struct {
	out *parseresume.Output
	err error
}

func (f *fakeParse) Execute(ctx context.Context, input *parseresume.Input) (*parseresume.Output, error) {
	return f.out, f.err
}

type fakeSource struct {
	out   *sourcejobs.Output
	input *sourcejobs.Input
}

func (f *fakeSource) Execute(ctx context.Context, input *sourcejobs.Input) (*sourcejobs.Output, error) {
	f.input = input
	return f.out, nil
}

type fakeScore struct {
	out *scoreats.Output
}

func (f *fakeScore) Execute(ctx context.Context, input *scoreats.Input) (*scoreats.Output, error) {
	return f.out, nil
}

type fakeGap struct {
	out    *analyzeskillgaps.Output
	called bool
	input  *analyzeskillgaps.Input
}

func (f *fakeGap) Execute(ctx context.Context, input *analyzeskillgaps.Input) (*analyzeskillgaps.Output, error) {
	f.called = true
	f.input = input
	return f.out, nil
}

type fakePath struct {
	skills []string
	err    error
}

func (f *fakePath) Execute(ctx context.Context, input *buildlearningpath.Input) (*buildlearningpath.Output, error) {
	f.skills = input.Skills
	if f.err != nil {
		return nil, f.err
	}
	steps := make([]models.LearningStep, 0, len(input.Skills))
	for _, s := range input.Skills {
		steps = append(steps, models.LearningStep{Skill: s, Title: s + " course", EstimatedTime: "12-15 hours"})
	}
	return &buildlearningpath.Output{LearningPath: steps}, nil
}

type fakeStore struct {
	saved    *models.CareerAnalysisResponse
	jobTitle string
	err      error
}

func (f *fakeStore) Save(ctx context.Context, jobTitle, location string, analysis *models.CareerAnalysisResponse) error {
	f.saved = analysis
	f.jobTitle = jobTitle
	return f.err
}

type fakePublisher struct {
	keys   []string
	events []interface{}
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	f.keys = append(f.keys, routingKey)
	f.events = append(f.events, payload)
	return nil
}

type fakeArchiver struct {
	calls int
}

func (f *fakeArchiver) ArchiveResume(ctx context.Context, id, filename, contentType string, data []byte) (string, error) {
	f.calls++
	return "resumes/" + id + "/" + filename, nil
}

type fakeMailer struct {
	to   []string
	body string
}

func (f *fakeMailer) SendReport(ctx context.Context, to, subject, body string) (string, error) {
	f.to = append(f.to, to)
	f.body = body
	return "msg-1", nil
}

type fakeBoard struct {
	jobs []models.Job
}

func (f *fakeBoard) Search(ctx context.Context, title, location string) ([]models.Job, error) {
	return f.jobs, nil
}

type fakeVideos struct{}

func (fakeVideos) SearchVideo(ctx context.Context, query string) (youtube.Video, error) {
	return youtube.Video{ID: "abc123", Title: query}, nil
}

// ==========================
// Test Helper Functions
// ==========================

func parsed() *fakeParse {
	return &fakeParse{out: &parseresume.Output{
		ResumeData:  models.ResumeData{Name: "Jane Doe", Headline: "Backend Engineer", Skills: []string{"Go", "Docker"}},
		ResumeText:  "Jane Doe Backend Engineer Go Docker",
		ParseSource: models.ParseSourceHeuristic,
	}}
}

func scoredAt(score int) *fakeScore {
	best := &models.Job{Title: "Go Developer", Company: "B", JD: "Go Kubernetes Terraform"}
	return &fakeScore{out: &scoreats.Output{
		Score:   score,
		TopJobs: []models.JobMatch{{Title: "Go Developer", Company: "B", Score: score}},
		BestJob: best,
	}}
}

func gapsFound() *fakeGap {
	return &fakeGap{out: &analyzeskillgaps.Output{
		MissingSkills:        &models.SkillGaps{HardSkills: []string{"Kubernetes", "Terraform"}, PriorityFocus: "Kubernetes"},
		RecommendationStatus: models.StatusGapsIdentified,
		PrioritySkill:        "Kubernetes",
		PathSkills:           []string{"Kubernetes", "Terraform"},
	}}
}

func createTestEngine(t *testing.T, nodes Nodes, effects SideEffects) *Engine {
	t.Helper()
	return NewEngine(&Config{Timeout: 5 * time.Second, EffectsTimeout: time.Second}, nodes, effects, nil, logger.NewTestLogger(t))
}

// ==========================
// Routing Tests
// ==========================

func TestShouldAnalyzeGaps(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{0, true},
		{84, true},
		{85, false},
		{100, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldAnalyzeGaps(tt.score), "score %d", tt.score)
	}
}

func TestEngine_Run_LowScoreGoesThroughGap(t *testing.T) {
	gap := gapsFound()
	path := &fakePath{}
	source := &fakeSource{out: &sourcejobs.Output{Jobs: []models.Job{{Title: "Go Developer"}}, DataSource: models.JobSourceExternalAPI}}

	e := createTestEngine(t, Nodes{Parse: parsed(), Source: source, Score: scoredAt(60), Gap: gap, Path: path}, SideEffects{})

	state, err := e.Run(context.Background(), Request{Resume: "text", JobDescription: "ignored when a job was scored"})
	require.NoError(t, err)

	assert.True(t, gap.called)
	assert.Equal(t, "Go Kubernetes Terraform", gap.input.JobDescription)
	assert.Equal(t, 60, gap.input.Score)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, path.skills)

	resp := state.Response()
	assert.Equal(t, 60, resp.Score)
	assert.Equal(t, models.StatusGapsIdentified, resp.RecommendationStatus)
	assert.Equal(t, "Kubernetes", resp.PrioritySkill)
	assert.Len(t, resp.LearningPath, 2)
	assert.Empty(t, resp.Error)
	assert.Contains(t, resp.Insights, "Focus on Kubernetes first")
}

func TestEngine_Run_HighScoreSkipsGap(t *testing.T) {
	gap := gapsFound()
	path := &fakePath{}
	e := createTestEngine(t, Nodes{
		Parse:  parsed(),
		Source: &fakeSource{out: &sourcejobs.Output{Jobs: []models.Job{}}},
		Score:  scoredAt(87),
		Gap:    gap,
		Path:   path,
	}, SideEffects{})

	state, err := e.Run(context.Background(), Request{Resume: "text"})
	require.NoError(t, err)

	assert.False(t, gap.called)
	assert.Empty(t, path.skills)

	resp := state.Response()
	assert.Nil(t, resp.MissingSkills)
	assert.Empty(t, resp.RecommendationStatus)
	assert.NotNil(t, resp.LearningPath)
	assert.Empty(t, resp.LearningPath)
	assert.Contains(t, resp.Insights, "strong match")
}

// ==========================
// Defaults and Error Tests
// ==========================

func TestEngine_Run_Defaults(t *testing.T) {
	source := &fakeSource{out: &sourcejobs.Output{Jobs: []models.Job{}}}
	e := createTestEngine(t, Nodes{Parse: parsed(), Source: source, Score: scoredAt(90), Path: &fakePath{}}, SideEffects{})

	state, err := e.Run(context.Background(), Request{Resume: "text", Location: "  "})
	require.NoError(t, err)

	assert.Equal(t, DefaultLocation, source.input.Location)
	assert.Equal(t, "Backend Engineer", source.input.JobTitle)
	assert.Equal(t, []string{"Go", "Docker"}, source.input.Skills)
	assert.NotEmpty(t, state.ID)
}

func TestEngine_Run_ParseFailureAborts(t *testing.T) {
	store := &fakeStore{}
	e := createTestEngine(t, Nodes{
		Parse: &fakeParse{err: apperrors.NewResumeParseFailedError("no readable text in resume")},
		Path:  &fakePath{},
	}, SideEffects{Store: store})

	state, err := e.Run(context.Background(), Request{Resume: "   "})
	require.Error(t, err)
	assert.Nil(t, state)
	assert.Equal(t, apperrors.ErrCodeResumeParseFailed, apperrors.AsStandardError(err).Code)
	assert.Nil(t, store.saved)
}

func TestEngine_Run_NodeErrorsAreJoined(t *testing.T) {
	e := createTestEngine(t, Nodes{
		Parse:  parsed(),
		Source: &fakeSource{out: &sourcejobs.Output{Jobs: []models.Job{}, Error: apperrors.MsgJobSourcingFailed}},
		Score:  &fakeScore{out: &scoreats.Output{Score: 0, TopJobs: []models.JobMatch{}, Error: apperrors.MsgATSScoringFailed}},
		Gap:    &fakeGap{out: &analyzeskillgaps.Output{MissingSkills: &models.SkillGaps{}, PathSkills: []string{}, Error: apperrors.MsgGapAnalysisFailed}},
		Path:   &fakePath{err: errors.New("quota exceeded")},
	}, SideEffects{})

	state, err := e.Run(context.Background(), Request{Resume: "text"})
	require.NoError(t, err)

	resp := state.Response()
	assert.Equal(t, strings.Join([]string{
		apperrors.MsgJobSourcingFailed,
		apperrors.MsgATSScoringFailed,
		apperrors.MsgGapAnalysisFailed,
		"Learning path could not be built",
	}, " "), resp.Error)
	require.NotNil(t, resp.MissingSkills)
	assert.Empty(t, resp.MissingSkills.All())
}

func TestEngine_Run_MissingOptionalNodes(t *testing.T) {
	e := createTestEngine(t, Nodes{Parse: parsed()}, SideEffects{})

	state, err := e.Run(context.Background(), Request{Resume: "text"})
	require.NoError(t, err)

	resp := state.Response()
	assert.Equal(t, 0, resp.Score)
	assert.NotNil(t, resp.TopJobs)
	assert.NotNil(t, resp.LearningPath)
}

// ==========================
// Side Effect Tests
// ==========================

func TestEngine_Run_SideEffects(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	archiver := &fakeArchiver{}
	mailer := &fakeMailer{}

	e := createTestEngine(t, Nodes{Parse: parsed(), Score: scoredAt(70), Gap: gapsFound(), Path: &fakePath{}},
		SideEffects{Store: store, Publisher: pub, Archiver: archiver, Mailer: mailer})

	state, err := e.Run(context.Background(), Request{
		File:        []byte("%PDF"),
		FileName:    "cv.pdf",
		MimeType:    "application/pdf",
		JobTitle:    "Platform Engineer",
		NotifyEmail: "jane@example.com",
	})
	require.NoError(t, err)

	require.NotNil(t, store.saved)
	assert.Equal(t, state.ID, store.saved.ID)
	assert.Equal(t, "Platform Engineer", store.jobTitle)

	require.Len(t, pub.keys, 1)
	assert.Equal(t, messaging.RoutingKeyAnalysisCompleted, pub.keys[0])
	event, ok := pub.events[0].(AnalysisCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, 70, event.Score)
	assert.Equal(t, "heuristic", event.ParseSource)

	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, []string{"jane@example.com"}, mailer.to)
	assert.Contains(t, mailer.body, "ATS shortlist probability: 70%")
	assert.Contains(t, mailer.body, "Kubernetes, Terraform")
}

func TestEngine_Run_SideEffectFailuresAreIgnored(t *testing.T) {
	mailer := &fakeMailer{}
	archiver := &fakeArchiver{}
	e := createTestEngine(t, Nodes{Parse: parsed(), Path: &fakePath{}},
		SideEffects{Store: &fakeStore{err: errors.New("db down")}, Archiver: archiver, Mailer: mailer})

	state, err := e.Run(context.Background(), Request{Resume: "text", NotifyEmail: "not-an-email"})
	require.NoError(t, err)
	assert.NotNil(t, state)
	assert.Empty(t, mailer.to)
	assert.Zero(t, archiver.calls)
}

// ==========================
// Integration With Career Workers
// ==========================

func TestEngine_Run_WithCareerWorkers(t *testing.T) {
	log := logger.NewTestLogger(t)
	board := &fakeBoard{jobs: []models.Job{
		{Title: "Cloud Engineer", Company: "Acme", JD: "Go Kubernetes Terraform AWS", Link: "https://jobs.example.com/1", Source: models.JobSourceExternalAPI},
	}}

	nodes := Nodes{
		Parse:  parseresume.NewHandler(parseresume.LoadConfig(), resume.NewParser(nil, log), log),
		Source: sourcejobs.NewHandler(sourcejobs.LoadConfig(), sourcejobs.Dependencies{Board: board}, log),
		Score:  scoreats.NewHandler(scoreats.LoadConfig(), scoreats.Dependencies{}, log),
		Gap:    analyzeskillgaps.NewHandler(analyzeskillgaps.LoadConfig(), nil, log),
		Path:   buildlearningpath.NewHandler(buildlearningpath.LoadConfig(), buildlearningpath.Dependencies{Videos: fakeVideos{}}, log),
	}
	e := createTestEngine(t, nodes, SideEffects{})

	state, err := e.Run(context.Background(), Request{
		Resume:   "Jane Doe\nSenior Go Developer\nGo, Kubernetes and Docker. 5 years experience.",
		JobTitle: "Cloud Engineer",
	})
	require.NoError(t, err)

	resp := state.Response()
	assert.Equal(t, models.JobSourceExternalAPI, state.DataSource)
	assert.Equal(t, 50, resp.Score)
	require.Len(t, resp.TopJobs, 1)
	assert.Equal(t, "Acme", resp.TopJobs[0].Company)

	assert.Equal(t, []string{"AWS", "Terraform"}, state.PathSkills)
	require.Len(t, resp.LearningPath, 2)
	require.NotNil(t, resp.LearningPath[0].ResourceURL)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", *resp.LearningPath[0].ResourceURL)
	assert.Equal(t, apperrors.MsgGapAnalysisFailed, resp.Error)
}

// ==========================
// Insights and Report Tests
// ==========================

func TestResolveJobTitle(t *testing.T) {
	assert.Equal(t, "SRE", ResolveJobTitle(" SRE ", models.ResumeData{Headline: "Dev"}))
	assert.Equal(t, "Dev", ResolveJobTitle("", models.ResumeData{Headline: "Dev", Skills: []string{"Go"}}))
	assert.Equal(t, "Go", ResolveJobTitle("", models.ResumeData{Skills: []string{"Go"}}))
	assert.Equal(t, DefaultJobTitle, ResolveJobTitle("", models.ResumeData{}))
}

func TestBuildInsights(t *testing.T) {
	perfect := &models.CareerAnalysisResponse{Score: 95, RecommendationStatus: models.StatusPerfectMatch}
	assert.Equal(t, "Your profile is a near perfect match for SRE roles (ATS score 95%).", BuildInsights("SRE", perfect))

	plain := &models.CareerAnalysisResponse{
		Score:        40,
		TopJobs:      []models.JobMatch{{Title: "SRE", Company: "Acme"}},
		LearningPath: []models.LearningStep{{Skill: "Go"}},
	}
	assert.Equal(t, "Your profile matches SRE roles at 40%. Best opening: SRE at Acme. 1 learning resource(s) suggested.",
		BuildInsights("SRE", plain))
}

func TestEngine_AnalyzeProfile(t *testing.T) {
	e := createTestEngine(t, Nodes{Parse: parsed(), Score: scoredAt(88), Path: &fakePath{}}, SideEffects{})

	out, err := e.AnalyzeProfile(context.Background(), "Go developer")
	require.NoError(t, err)

	assert.Equal(t, float64(88), out["score"])
	assert.Nil(t, out["missing_skills"])
	assert.Equal(t, []any{}, out["learning_path"])
	assert.NotEmpty(t, out["id"])
}

// internal/orchestration/state.go
package orchestration

import (
	"fmt"
	"strings"
	"time"

	"nexus-talent/internal/models"
)

// State is the data flowing through one run of the graph.
type State struct {
	ID        string
	Request   Request
	JobTitle  string
	CreatedAt time.Time

	ResumeData  models.ResumeData
	ResumeText  string
	ParseSource models.ParseSource

	Jobs       []models.Job
	DataSource models.JobSource

	Score   int
	TopJobs []models.JobMatch
	BestJob *models.Job

	MissingSkills        *models.SkillGaps
	RecommendationStatus string
	PrioritySkill        string
	PathSkills           []string

	LearningPath []models.LearningStep
	Errors       []string
}

func (s *State) addError(msg string) {
	for _, existing := range s.Errors {
		if existing == msg {
			return
		}
	}
	s.Errors = append(s.Errors, msg)
}

// targetDescription is the job description gap analysis compares against:
// the best scored job, else the request description.
func (s *State) targetDescription() string {
	if s.BestJob != nil && strings.TrimSpace(s.BestJob.JD) != "" {
		return s.BestJob.JD
	}
	return s.Request.JobDescription
}

// Response builds the API view of the state.
func (s *State) Response() *models.CareerAnalysisResponse {
	resp := &models.CareerAnalysisResponse{
		ID:                   s.ID,
		Score:                s.Score,
		TopJobs:              s.TopJobs,
		MissingSkills:        s.MissingSkills,
		LearningPath:         s.LearningPath,
		RecommendationStatus: s.RecommendationStatus,
		PrioritySkill:        s.PrioritySkill,
		Error:                strings.Join(s.Errors, " "),
		CreatedAt:            s.CreatedAt,
	}
	if resp.TopJobs == nil {
		resp.TopJobs = []models.JobMatch{}
	}
	if resp.LearningPath == nil {
		resp.LearningPath = []models.LearningStep{}
	}
	resp.Insights = BuildInsights(s.JobTitle, resp)
	return resp
}

// ResolveJobTitle returns the requested title, else the parsed headline, else
// the first parsed skill, else DefaultJobTitle.
func ResolveJobTitle(requested string, resume models.ResumeData) string {
	return resume.TargetTitle(requested)
}

// BuildInsights summarises a response in one or two sentences.
func BuildInsights(jobTitle string, resp *models.CareerAnalysisResponse) string {
	var b strings.Builder
	switch {
	case resp.RecommendationStatus == models.StatusPerfectMatch:
		fmt.Fprintf(&b, "Your profile is a near perfect match for %s roles (ATS score %d%%).", jobTitle, resp.Score)
	case !ShouldAnalyzeGaps(resp.Score):
		fmt.Fprintf(&b, "Your profile is a strong match for %s roles (ATS score %d%%).", jobTitle, resp.Score)
	case resp.PrioritySkill != "":
		fmt.Fprintf(&b, "Your profile matches %s roles at %d%%. Focus on %s first.", jobTitle, resp.Score, resp.PrioritySkill)
	default:
		fmt.Fprintf(&b, "Your profile matches %s roles at %d%%.", jobTitle, resp.Score)
	}

	if len(resp.TopJobs) > 0 {
		best := resp.TopJobs[0]
		if best.Company != "" {
			fmt.Fprintf(&b, " Best opening: %s at %s.", best.Title, best.Company)
		} else {
			fmt.Fprintf(&b, " Best opening: %s.", best.Title)
		}
	}
	if n := len(resp.LearningPath); n > 0 {
		fmt.Fprintf(&b, " %d learning resource(s) suggested.", n)
	}
	return b.String()
}

// BuildReport renders the plain text report e-mailed to the candidate.
func BuildReport(resp *models.CareerAnalysisResponse, jobTitle string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Career analysis %s\n", resp.ID)
	fmt.Fprintf(&b, "Target role: %s\n", jobTitle)
	fmt.Fprintf(&b, "ATS shortlist probability: %d%%\n\n", resp.Score)

	if resp.Insights != "" {
		b.WriteString(resp.Insights)
		b.WriteString("\n\n")
	}

	if len(resp.TopJobs) > 0 {
		b.WriteString("Top jobs:\n")
		for _, j := range resp.TopJobs {
			fmt.Fprintf(&b, "- %s", j.Title)
			if j.Company != "" {
				fmt.Fprintf(&b, " (%s)", j.Company)
			}
			fmt.Fprintf(&b, ": %d%%", j.Score)
			if j.Link != "" {
				fmt.Fprintf(&b, " %s", j.Link)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if skills := resp.MissingSkills.All(); len(skills) > 0 {
		fmt.Fprintf(&b, "Skills to develop: %s\n\n", strings.Join(skills, ", "))
	}

	if len(resp.LearningPath) > 0 {
		b.WriteString("Learning path:\n")
		for _, step := range resp.LearningPath {
			fmt.Fprintf(&b, "- %s: %s", step.Skill, step.Title)
			if step.ResourceURL != nil {
				fmt.Fprintf(&b, " %s", *step.ResourceURL)
			}
			fmt.Fprintf(&b, " (%s)\n", step.EstimatedTime)
		}
	}
	return b.String()
}

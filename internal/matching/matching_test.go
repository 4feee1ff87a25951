package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Keyword extraction
// ==========================

func TestExtractKeywords(t *testing.T) {
	kw := ExtractKeywords("Senior Go developer with C++, C#, Node.js and CI/CD. We use the cloud.")

	for _, want := range []string{"go", "c++", "c#", "node.js", "ci/cd", "senior", "developer", "cloud"} {
		assert.True(t, kw[want], "expected keyword %q", want)
	}
	for _, unwanted := range []string{"with", "and", "the", "use", "we"} {
		assert.False(t, kw[unwanted], "unexpected keyword %q", unwanted)
	}
}

func TestExtractKeywords_DottedSkills(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     []string
		unwanted []string
	}{
		{".NET keeps its dot", "Senior .NET developer, C# and ASP.NET", []string{".net", "c#", "asp.net"}, []string{"net"}},
		{".NET at sentence end", "We build on .NET.", []string{".net"}, []string{"net", ".net."}},
		{"leading dot dropped for plain words", "Ship .fast", []string{"fast"}, []string{".fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw := ExtractKeywords(tt.text)
			for _, w := range tt.want {
				assert.True(t, kw[w], "expected keyword %q in %v", w, kw)
			}
			for _, w := range tt.unwanted {
				assert.False(t, kw[w], "unexpected keyword %q", w)
			}
		})
	}
}

func TestExtractKeywords_JobAdFiller(t *testing.T) {
	kw := ExtractKeywords("We need someone looking to grow. Requirements: Go skills preferred.")
	for _, w := range []string{"need", "looking", "requirements", "skills", "preferred"} {
		assert.False(t, kw[w], "unexpected keyword %q", w)
	}
	assert.True(t, kw["go"])
}

func TestExtractKeywords_TrailingDots(t *testing.T) {
	kw := ExtractKeywords("Experience with Kubernetes.")
	assert.True(t, kw["kubernetes"])
	assert.False(t, kw["kubernetes."])
}

// ==========================
// Scoring
// ==========================

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		jd     string
		want   int
	}{
		{"empty jd", "Go developer", "", 0},
		{"full coverage", "golang kubernetes backend", "Golang Kubernetes backend", 100},
		{"no coverage", "painter sculptor", "Golang Kubernetes", 0},
		// jd: golang(2) kubernetes(2) backend(1) => 5; resume covers golang + backend => 3/5
		{"weighted partial", "golang backend", "Golang Kubernetes backend", 60},
		{".NET skill", "C# and .NET engineer", "We need .NET", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(ExtractKeywords(tt.resume), tt.jd)
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

func TestScore_MatchingAndMissingSorted(t *testing.T) {
	res := Score(ExtractKeywords("python docker"), "Docker, Python, Terraform, AWS")
	assert.Equal(t, []string{"docker", "python"}, res.Matching)
	assert.Equal(t, []string{"aws", "terraform"}, res.Missing)
}

func TestMissingSkills(t *testing.T) {
	hard, soft := MissingSkills(
		ExtractKeywords("python developer"),
		"Python, Kubernetes and k8s operators, Terraform, leadership, fast-paced",
	)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, hard)
	assert.Equal(t, []string{"Leadership"}, soft)
}

// ==========================
// Skill dictionary
// ==========================

func TestFindSkills_DotNet(t *testing.T) {
	assert.Equal(t, []string{".NET", "C#"}, FindSkills("Senior .NET developer with C#"))
}

func TestFindSkills(t *testing.T) {
	got := FindSkills("Built ML pipelines in Python and Golang; Machine   Learning on AWS. Strong communication.")
	assert.Equal(t, []string{"AWS", "Communication", "Go", "Machine Learning", "Python"}, got)
}

func TestIsSoftSkill(t *testing.T) {
	assert.True(t, IsSoftSkill("Leadership"))
	assert.False(t, IsSoftSkill("Go"))
}

package matching

import (
	"sort"
	"strings"
)

// skillDictionary maps a lower-case keyword to the skill's display name.
// Multi-word skills are matched as phrases by FindSkills.
var skillDictionary = map[string]string{
	// languages
	"go": "Go", "golang": "Go", "python": "Python", "java": "Java", "kotlin": "Kotlin",
	"scala": "Scala", "rust": "Rust", "c++": "C++", "c#": "C#", "ruby": "Ruby",
	"php": "PHP", "swift": "Swift", "typescript": "TypeScript", "javascript": "JavaScript",
	"sql": "SQL", "bash": "Bash", "r": "R", "dart": "Dart", "elixir": "Elixir",

	// frameworks and runtimes
	"react": "React", "angular": "Angular", "vue": "Vue", "next.js": "Next.js",
	"node.js": "Node.js", "nodejs": "Node.js", "django": "Django", "flask": "Flask",
	"fastapi": "FastAPI", "spring": "Spring", "rails": "Rails", ".net": ".NET",
	"pytorch": "PyTorch", "tensorflow": "TensorFlow", "pandas": "Pandas",
	"numpy": "NumPy", "scikit-learn": "scikit-learn", "langchain": "LangChain",
	"graphql": "GraphQL", "grpc": "gRPC", "flutter": "Flutter",

	// data and infrastructure
	"postgresql": "PostgreSQL", "postgres": "PostgreSQL", "mysql": "MySQL",
	"mongodb": "MongoDB", "redis": "Redis", "elasticsearch": "Elasticsearch",
	"kafka": "Kafka", "rabbitmq": "RabbitMQ", "spark": "Spark", "airflow": "Airflow",
	"snowflake": "Snowflake", "dbt": "dbt", "docker": "Docker", "kubernetes": "Kubernetes",
	"k8s": "Kubernetes", "terraform": "Terraform", "ansible": "Ansible", "helm": "Helm",
	"aws": "AWS", "gcp": "GCP", "azure": "Azure", "linux": "Linux", "git": "Git",
	"jenkins": "Jenkins", "prometheus": "Prometheus", "grafana": "Grafana",
	"microservices": "Microservices", "ci/cd": "CI/CD", "serverless": "Serverless",

	// practices
	"machine learning": "Machine Learning", "deep learning": "Deep Learning",
	"nlp": "NLP", "llm": "LLM", "rag": "RAG", "mlops": "MLOps", "devops": "DevOps",
	"data engineering": "Data Engineering", "system design": "System Design",
	"distributed systems": "Distributed Systems", "rest": "REST", "tdd": "TDD",
	"agile": "Agile", "scrum": "Scrum",

	// soft skills
	"leadership": "Leadership", "communication": "Communication", "mentoring": "Mentoring",
	"collaboration": "Collaboration", "stakeholder management": "Stakeholder Management",
	"problem solving": "Problem Solving",
}

var softSkills = map[string]bool{
	"Leadership": true, "Communication": true, "Mentoring": true, "Collaboration": true,
	"Stakeholder Management": true, "Problem Solving": true, "Agile": true, "Scrum": true,
}

// IsSkill reports whether a lower-case keyword is a known skill.
func IsSkill(keyword string) bool {
	_, ok := skillDictionary[keyword]
	return ok
}

// SkillName returns the display name of a known skill keyword.
func SkillName(keyword string) (string, bool) {
	name, ok := skillDictionary[keyword]
	return name, ok
}

// IsSoftSkill reports whether a display name is a soft skill.
func IsSoftSkill(name string) bool {
	return softSkills[name]
}

// FindSkills returns the display names of the dictionary skills mentioned in
// text, sorted and de-duplicated.
func FindSkills(text string) []string {
	seen := map[string]bool{}
	for kw := range ExtractKeywords(text) {
		if name, ok := skillDictionary[kw]; ok {
			seen[name] = true
		}
	}

	lower := " " + strings.Join(strings.Fields(strings.ToLower(text)), " ") + " "
	for kw, name := range skillDictionary {
		if strings.Contains(kw, " ") && strings.Contains(lower, " "+kw+" ") {
			seen[name] = true
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

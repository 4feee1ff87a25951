package matching

import (
	"math"
	"sort"
)

const skillWeight = 2

// Result is the outcome of scoring a resume against one job description.
type Result struct {
	Score    int      `json:"score"`
	Matching []string `json:"matching"`
	Missing  []string `json:"missing"`
}

// Score computes the weighted coverage (0-100) of the job description's
// keywords by the resume's keywords. Dictionary skills weigh twice as much as
// other words. An empty job description scores 0.
func Score(resumeKW map[string]bool, jobDescription string) Result {
	jobKW := ExtractKeywords(jobDescription)
	if len(jobKW) == 0 {
		return Result{}
	}

	var total, covered int
	var matching, missing []string
	for kw := range jobKW {
		w := 1
		if IsSkill(kw) {
			w = skillWeight
		}
		total += w
		if resumeKW[kw] {
			covered += w
			matching = append(matching, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	sort.Strings(matching)
	sort.Strings(missing)
	return Result{
		Score:    int(math.Round(float64(covered) * 100 / float64(total))),
		Matching: matching,
		Missing:  missing,
	}
}

// MissingSkills returns the display names of dictionary skills the job asks
// for that the resume lacks, hard skills first.
func MissingSkills(resumeKW map[string]bool, jobDescription string) (hard, soft []string) {
	seen := map[string]bool{}
	for _, kw := range Score(resumeKW, jobDescription).Missing {
		name, ok := SkillName(kw)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		if IsSoftSkill(name) {
			soft = append(soft, name)
		} else {
			hard = append(hard, name)
		}
	}
	return hard, soft
}

package matching

import (
	"strings"
	"unicode"
)

// stopWords filters common English and job-ad words that add noise to keyword matching.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"years": true, "year": true, "experience": true, "strong": true, "must": true,
	"plus": true, "etc": true, "including": true, "across": true, "within": true,
	"need": true, "needs": true, "looking": true, "seeking": true, "hiring": true,
	"requirements": true, "requirement": true, "required": true, "require": true,
	"responsibilities": true, "preferred": true, "ideal": true, "candidate": true,
	"candidates": true, "opportunity": true, "ability": true, "knowledge": true,
	"skills": true, "skill": true, "working": true, "based": true, "like": true,

	// entity remnants of HTML-escaped input
	"amp": true, "quot": true, "#39": true, "#34": true,
}

// ExtractKeywords tokenizes text into lower-case keywords. Words shorter than
// three runes are kept only when they are known skills ("go", "c#", "r").
// The characters + # . / are word characters so "c++", "node.js" and "ci/cd"
// survive; trailing dots are dropped, and leading ones too unless the word is
// a known skill such as ".net".
func ExtractKeywords(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), "./")
		if !IsSkill(w) {
			w = strings.TrimLeft(w, "./")
		}
		word.Reset()
		if w == "" || stopWords[w] {
			return
		}
		if len([]rune(w)) >= 3 || IsSkill(w) {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '/' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// Package visasteps assembles visa checklists from static rule tables. Every
// function is pure and side-effect free: unknown statuses and countries
// degrade to empty results, malformed durations to a one-week default,
// nothing ever errors.
package visasteps

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Step kinds, in the order stages add them to a checklist.
const (
	KindStatus   = "status"
	KindLanguage = "language"
	KindCommon   = "common"
	KindExtra    = "extra"
)

// Step is one entry of an assembled checklist. IDs are 1-based positions in
// the final list.
type Step struct {
	ID                int      `json:"id"`
	Kind              string   `json:"kind"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Tasks             []string `json:"tasks,omitempty"`
	Documents         []string `json:"documents,omitempty"`
	Required          bool     `json:"required"`
	EstimatedDuration string   `json:"estimated_duration"`
}

// GenerateStepsForUser assembles the ordered checklist for a legal status and
// a destination country. Base steps come from the status table; a language
// test is added when both the status and the country require one; the three
// common filing steps are added unless the country is visa-exempt; country
// extras (medical exam, then biometrics) are inserted before the first common
// step, or appended when there are none.
func GenerateStepsForUser(status, countryCode string) []Step {
	countryCode = normalizeCode(countryCode)

	steps := cloneSteps(statusSteps[status])

	if languageTestApplies(status, countryCode) {
		steps = append(steps, cloneStep(langTest.Step))
	}
	if visaRequired(countryCode) {
		steps = append(steps, cloneSteps(commonSteps)...)
	}

	req := countryReqs[countryCode]
	if req.MedicalExam {
		steps = insertBeforeCommon(steps, cloneStep(extras.MedicalExam))
	}
	if req.Biometrics {
		steps = insertBeforeCommon(steps, cloneStep(extras.Biometrics))
	}

	for i := range steps {
		steps[i].ID = i + 1
	}
	return steps
}

// Tips returns advice for a status and country: the status tips followed by
// the country tips. Unknown keys contribute nothing. Never nil.
func Tips(status, countryCode string) []string {
	countryCode = normalizeCode(countryCode)

	out := make([]string, 0, len(tips.Status[status])+len(tips.Country[countryCode]))
	out = append(out, tips.Status[status]...)
	out = append(out, tips.Country[countryCode]...)
	return out
}

// RequiredDocuments returns the deduplicated union of every document across
// the assembled checklist, in first-appearance order.
func RequiredDocuments(status, countryCode string) []string {
	seen := make(map[string]bool)
	docs := []string{}
	for _, step := range GenerateStepsForUser(status, countryCode) {
		for _, d := range step.Documents {
			if !seen[d] {
				seen[d] = true
				docs = append(docs, d)
			}
		}
	}
	return docs
}

// IsStepCritical reports whether a step id is flagged critical for the
// status. Purely a display hint.
func IsStepCritical(stepID int, status string) bool {
	for _, id := range criticalIDs[status] {
		if id == stepID {
			return true
		}
	}
	return false
}

// durationPattern matches the French duration strings carried by the rule
// tables: "2 semaines", "2-4 semaines", "1 mois".
var durationPattern = regexp.MustCompile(`(\d+)(?:-(\d+))?\s*(semaines?|mois)`)

// CalculateTotalDuration sums the steps' estimated durations and renders the
// total. Ranges average out, months count as four weeks, totals under four
// weeks render as weeks and anything longer as months (rounded up). A
// malformed duration counts as one week.
func CalculateTotalDuration(steps []Step) string {
	var weeks float64
	for _, step := range steps {
		weeks += durationWeeks(step.EstimatedDuration)
	}

	total := int(math.Ceil(weeks))
	if total < 1 {
		total = 1
	}
	if total < 4 {
		if total == 1 {
			return "1 semaine"
		}
		return fmt.Sprintf("%d semaines", total)
	}
	months := (total + 3) / 4
	return fmt.Sprintf("%d mois", months)
}

func durationWeeks(s string) float64 {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	lo, _ := strconv.Atoi(m[1])
	hi := lo
	if m[2] != "" {
		hi, _ = strconv.Atoi(m[2])
	}
	avg := float64(lo+hi) / 2
	if m[3] == "mois" {
		avg *= 4
	}
	return avg
}

func languageTestApplies(status, countryCode string) bool {
	return contains(langTest.RequiredForStatus, status) &&
		contains(langTest.RequiredForCountries, countryCode)
}

func visaRequired(countryCode string) bool {
	return !visaExempt[countryCode]
}

func insertBeforeCommon(steps []Step, step Step) []Step {
	for i := range steps {
		if steps[i].Kind == KindCommon {
			out := make([]Step, 0, len(steps)+1)
			out = append(out, steps[:i]...)
			out = append(out, step)
			out = append(out, steps[i:]...)
			return out
		}
	}
	return append(steps, step)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// cloneSteps copies the table entries so callers can never mutate the
// embedded rules through a returned slice.
func cloneSteps(src []Step) []Step {
	out := make([]Step, len(src))
	for i, s := range src {
		out[i] = cloneStep(s)
	}
	return out
}

func cloneStep(s Step) Step {
	s.Tasks = append([]string(nil), s.Tasks...)
	s.Documents = append([]string(nil), s.Documents...)
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

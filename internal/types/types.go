// Package types holds the domain value types shared by the API client,
// the session store and the assessment controller. Everything here is a
// read-only snapshot of backend state; nothing is mutated locally.
package types

import (
	"strings"
	"time"
)

// User is the authenticated parent account as returned by /auth/me.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	IsParent bool   `json:"is_parent"`
	IsActive bool   `json:"is_active"`
}

// Child is a child profile owned by the backend.
type Child struct {
	ID                 int       `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name,omitempty"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	Gender             string    `json:"gender,omitempty"`
	InitialInterests   []string  `json:"initial_interests,omitempty"`
	FavoriteActivities []string  `json:"favorite_activities,omitempty"`
	CurrentLevel       string    `json:"current_level,omitempty"`
	Age                int       `json:"age,omitempty"`
}

// DisplayName joins first and last name, tolerating a missing last name.
func (c Child) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// AgeYears derives the age from the date of birth when the backend did not
// populate the Age field.
func (c Child) AgeYears(now time.Time) int {
	if c.Age > 0 {
		return c.Age
	}
	if c.DateOfBirth.IsZero() {
		return 0
	}
	return int(now.Sub(c.DateOfBirth).Hours() / (24 * 365.25))
}

// QuestionType discriminates how a question is answered.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	Rating         QuestionType = "rating"
)

// RatingScale is the inclusive 1..N range for rating questions.
const RatingScale = 5

// Question is one assessment question. Immutable once fetched for a run.
type Question struct {
	ID           int          `json:"id"`
	Text         string       `json:"question_text"`
	Type         QuestionType `json:"question_type"`
	Category     string       `json:"category,omitempty"`
	TalentDomain string       `json:"talent_domain,omitempty"`
	Options      []string     `json:"options,omitempty"`
}

// QuestionSet is the ordered question list served for one assessment.
type QuestionSet struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Category          string     `json:"category,omitempty"`
	Questions         []Question `json:"questions"`
	EstimatedDuration int        `json:"estimated_duration,omitempty"`
}

// PassionDomain is a server-scored passion category for a child.
type PassionDomain struct {
	ID              int      `json:"id"`
	ChildID         int      `json:"child_id"`
	Domain          string   `json:"domain"`
	ConfidenceScore float64  `json:"confidence_score"`
	StrengthLevel   string   `json:"strength_level,omitempty"`
	Trend           string   `json:"trend,omitempty"`
	Recommended     []string `json:"recommended_activities,omitempty"`
}

// PassionInsight is a narrative observation derived from a child's data.
type PassionInsight struct {
	ID              int      `json:"id"`
	ChildID         int      `json:"child_id"`
	InsightType     string   `json:"insight_type"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RelatedDomains  []string `json:"related_domains,omitempty"`
	ImportanceScore float64  `json:"importance_score,omitempty"`
	Highlighted     bool     `json:"is_highlighted,omitempty"`
}

// NormalizeAnswer trims an answer string before submission. The backend
// stores answers verbatim; the only client-side normalization is trimming
// accidental whitespace from typed input.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(s)
}

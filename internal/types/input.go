package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Child age bounds enforced by the backend; checked locally before any
// network call so the user gets an immediate, actionable message.
const (
	MinChildAge = 3
	MaxChildAge = 12
)

// MinPasswordLen mirrors the backend password rule.
const MinPasswordLen = 8

// RegisterInput is the validated payload for /auth/register.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	IsParent bool   `json:"is_parent"`
}

// Validate rejects malformed registration input before it reaches the wire.
func (in RegisterInput) Validate() error {
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("invalid email address %q", in.Email)
	}
	if len(in.Password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

// ChildInput is the validated payload for creating or updating a child
// profile. Raw form fields are mapped into this type first; only a valid
// ChildInput is ever serialized onto the wire.
type ChildInput struct {
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name,omitempty"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	Gender             string    `json:"gender,omitempty"`
	InitialInterests   []string  `json:"initial_interests,omitempty"`
	FavoriteActivities []string  `json:"favorite_activities,omitempty"`
}

// Validate checks the child profile against the backend's acceptance rules.
func (in ChildInput) Validate(now time.Time) error {
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if in.DateOfBirth.IsZero() {
		return fmt.Errorf("date of birth is required")
	}
	age := now.Sub(in.DateOfBirth).Hours() / (24 * 365.25)
	if age < MinChildAge || age > MaxChildAge {
		return fmt.Errorf("child must be between %d and %d years old", MinChildAge, MaxChildAge)
	}
	return nil
}

// RatingAnswer encodes a 1..5 rating as the text the analysis step expects.
func RatingAnswer(rating int) (string, error) {
	if rating < 1 || rating > RatingScale {
		return "", fmt.Errorf("rating %d out of range 1..%d", rating, RatingScale)
	}
	return strconv.Itoa(rating), nil
}

// AnswerFor validates an answer against the question it responds to and
// returns the exact string to submit. Multiple-choice answers must be one
// of the question's options, verbatim; rating answers must parse to 1..5.
func AnswerFor(q Question, answer string) (string, error) {
	answer = NormalizeAnswer(answer)
	switch q.Type {
	case MultipleChoice:
		for _, opt := range q.Options {
			if opt == answer {
				return answer, nil
			}
		}
		return "", fmt.Errorf("answer %q is not an option for question %d", answer, q.ID)
	case Rating:
		n, err := strconv.Atoi(answer)
		if err != nil {
			return "", fmt.Errorf("rating answer %q is not a number", answer)
		}
		return RatingAnswer(n)
	default:
		return "", fmt.Errorf("unknown question type %q", q.Type)
	}
}

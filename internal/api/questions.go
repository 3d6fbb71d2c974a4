package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sebakara/early-passion-detection/internal/types"
)

// FetchAssessment returns the ordered question set for a child.
func (c *Client) FetchAssessment(ctx context.Context, childID int) (*types.QuestionSet, error) {
	var qs types.QuestionSet
	if err := c.getJSON(ctx, fmt.Sprintf("/questions/assessment/%d", childID), &qs); err != nil {
		return nil, err
	}
	return &qs, nil
}

// responsePayload is the exact wire shape the analysis step expects:
// answer is the option text for multiple choice, or the rating digit as
// text.
type responsePayload struct {
	ChildID    int    `json:"child_id"`
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitResponse records one answer for a question.
func (c *Client) SubmitResponse(ctx context.Context, childID, questionID int, answer string) error {
	payload := responsePayload{ChildID: childID, QuestionID: questionID, Answer: answer}
	return c.sendJSON(ctx, http.MethodPost, "/questions/response", payload, nil, true)
}

// AnalysisResult is the server-side scoring produced at the end of an
// assessment.
type AnalysisResult struct {
	ChildID          int                `json:"child_id"`
	TalentDomains    map[string]float64 `json:"talent_domains"`
	PrimaryTalent    string             `json:"primary_talent,omitempty"`
	SecondaryTalents []string           `json:"secondary_talents,omitempty"`
	ConfidenceScore  float64            `json:"confidence_score,omitempty"`
	Recommended      []string           `json:"recommended_activities,omitempty"`
}

// Analyze triggers server-side scoring of a completed assessment and
// returns the resulting talent breakdown.
func (c *Client) Analyze(ctx context.Context, childID int) (*AnalysisResult, error) {
	var res AnalysisResult
	path := fmt.Sprintf("/questions/assessment/%d/analyze", childID)
	if err := c.sendJSON(ctx, http.MethodPost, path, nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

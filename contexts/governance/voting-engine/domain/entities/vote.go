package entities

import (
	"sort"
	"time"
)

type Choice string

const (
	ChoiceFor     Choice = "FOR"
	ChoiceAgainst Choice = "AGAINST"
)

// Vote is one owner's counted choice on one question. At most one vote
// exists per owner/question pair; resubmission before sheet closure
// supersedes the earlier vote.
type Vote struct {
	SheetID    string
	OwnerID    string
	QuestionID string
	Choice     Choice
	CastAt     time.Time
}

// QuestionResult is the tallied decision for one question.
type QuestionResult struct {
	SheetID           string
	QuestionID        string
	OrderNumber       int
	RequiresTwoThirds bool
	ForCount          int
	AgainstCount      int
	Passed            bool
	FinalizedAt       time.Time
}

// Decide applies the majority rule to counted votes. Abstentions are not
// modeled; silence is absence from the denominator. A question with zero
// cast votes fails.
func Decide(forCount, againstCount int, requiresTwoThirds bool) bool {
	total := forCount + againstCount
	if total == 0 {
		return false
	}
	if requiresTwoThirds {
		// Integer cross-multiplication keeps the 2/3 boundary exact.
		return forCount*3 >= total*2
	}
	return forCount*2 > total
}

// TallyVotes aggregates the vote set at the moment of computation into
// per-question results, ordered by ballot order. It is idempotent and
// side-effect free.
func TallyVotes(questions []Question, votes []Vote) []QuestionResult {
	type counts struct {
		forCount     int
		againstCount int
	}
	byQuestion := make(map[string]counts, len(questions))
	for _, vote := range votes {
		c := byQuestion[vote.QuestionID]
		switch vote.Choice {
		case ChoiceFor:
			c.forCount++
		case ChoiceAgainst:
			c.againstCount++
		}
		byQuestion[vote.QuestionID] = c
	}

	results := make([]QuestionResult, 0, len(questions))
	for _, question := range questions {
		c := byQuestion[question.QuestionID]
		results = append(results, QuestionResult{
			QuestionID:        question.QuestionID,
			OrderNumber:       question.OrderNumber,
			RequiresTwoThirds: question.RequiresTwoThirds,
			ForCount:          c.forCount,
			AgainstCount:      c.againstCount,
			Passed:            Decide(c.forCount, c.againstCount, question.RequiresTwoThirds),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].OrderNumber < results[j].OrderNumber
	})
	return results
}

package entities

import "testing"

func TestDecideSimpleMajority(t *testing.T) {
	cases := []struct {
		name         string
		forCount     int
		againstCount int
		passed       bool
	}{
		{"tie fails", 5, 5, false},
		{"strict majority passes", 6, 4, true},
		{"minority fails", 4, 6, false},
		{"single for passes", 1, 0, true},
		{"zero votes fails", 0, 0, false},
	}
	for _, tc := range cases {
		if got := Decide(tc.forCount, tc.againstCount, false); got != tc.passed {
			t.Fatalf("%s: Decide(%d, %d, false) = %v, want %v",
				tc.name, tc.forCount, tc.againstCount, got, tc.passed)
		}
	}
}

func TestDecideTwoThirdsMajority(t *testing.T) {
	cases := []struct {
		name         string
		forCount     int
		againstCount int
		passed       bool
	}{
		{"exact two thirds passes", 2, 1, true},
		{"one third fails", 1, 2, false},
		{"just below boundary fails", 665, 335, false},
		{"just above boundary passes", 667, 333, true},
		{"all for passes", 3, 0, true},
		{"zero votes fails", 0, 0, false},
	}
	for _, tc := range cases {
		if got := Decide(tc.forCount, tc.againstCount, true); got != tc.passed {
			t.Fatalf("%s: Decide(%d, %d, true) = %v, want %v",
				tc.name, tc.forCount, tc.againstCount, got, tc.passed)
		}
	}
}

func TestTallyVotesAggregatesPerQuestion(t *testing.T) {
	questions := []Question{
		{QuestionID: "q2", OrderNumber: 2, RequiresTwoThirds: true},
		{QuestionID: "q1", OrderNumber: 1},
		{QuestionID: "q3", OrderNumber: 3},
	}
	votes := []Vote{
		{OwnerID: "o1", QuestionID: "q1", Choice: ChoiceFor},
		{OwnerID: "o2", QuestionID: "q1", Choice: ChoiceFor},
		{OwnerID: "o3", QuestionID: "q1", Choice: ChoiceAgainst},
		{OwnerID: "o1", QuestionID: "q2", Choice: ChoiceFor},
		{OwnerID: "o2", QuestionID: "q2", Choice: ChoiceFor},
		{OwnerID: "o3", QuestionID: "q2", Choice: ChoiceAgainst},
	}

	results := TallyVotes(questions, votes)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].QuestionID != "q1" || results[1].QuestionID != "q2" || results[2].QuestionID != "q3" {
		t.Fatalf("expected ballot order, got %+v", results)
	}

	// q1: 2 of 3 under simple majority.
	if !results[0].Passed || results[0].ForCount != 2 || results[0].AgainstCount != 1 {
		t.Fatalf("unexpected q1 result: %+v", results[0])
	}
	// q2: exactly two thirds.
	if !results[1].Passed {
		t.Fatalf("expected q2 to pass at the two-thirds boundary: %+v", results[1])
	}
	// q3: no votes cast.
	if results[2].Passed || results[2].ForCount != 0 {
		t.Fatalf("expected q3 to fail with empty electorate: %+v", results[2])
	}
}

func TestTallyVotesIsIdempotent(t *testing.T) {
	questions := []Question{{QuestionID: "q1", OrderNumber: 1}}
	votes := []Vote{{OwnerID: "o1", QuestionID: "q1", Choice: ChoiceFor}}
	first := TallyVotes(questions, votes)
	second := TallyVotes(questions, votes)
	if first[0] != second[0] {
		t.Fatalf("expected identical results on recomputation: %+v vs %+v", first[0], second[0])
	}
}

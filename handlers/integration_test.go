// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/testutil"
)

// TestFullElectionWorkflow tests the complete end-to-end workflow:
// 1. Create election
// 2. Add and deactivate candidates
// 3. Authorize weighted voters
// 4. Vote, withdraw and revote
// 5. Pause and resume
// 6. End election
// 7. Verify results and audit trail
func TestFullElectionWorkflow(t *testing.T) {
	env := testutil.NewTestEnv(t)
	electionHandler := NewElectionHandler(env.Registry, env.Config)
	candidateHandler := NewCandidateHandler(env.Registry, env.Config)
	votingHandler := NewVotingHandler(env.Registry, env.Config)
	resultsHandler := NewResultsHandler(env.Registry, env.Log, env.Config)
	now := env.Clock.Now()

	// Step 1: Create an election
	createReq := models.CreateElectionRequest{
		Title:                 "Integration Test Election",
		StartTime:             now.Add(time.Hour),
		EndTime:               now.Add(24 * time.Hour),
		CandidateNames:        []string{"Pizza", "Sushi"},
		CandidateDescriptions: []string{"cheesy", "fresh"},
	}
	w := call(env, electionHandler.CreateElection, "POST", "/elections", "organizer", createReq, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create election failed: %d - %s", w.Code, w.Body.String())
	}
	var createResp models.CreateElectionResponse
	testutil.AssertJSON(t, w, &createResp)
	if createResp.ElectionID != 1 {
		t.Fatalf("Step 1 - Expected election id 1, got %d", createResp.ElectionID)
	}
	params := map[string]string{"id": "1"}
	t.Logf("Step 1 - Created election: %s", createResp.Handle)

	// Step 2: Add a third candidate, add and drop a fourth
	for _, name := range []string{"Tacos", "Broccoli"} {
		w = call(env, candidateHandler.AddCandidate, "POST", "/elections/1/candidates", "organizer",
			models.CandidateRequest{Name: name}, params)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Add candidate %q failed: %d - %s", name, w.Code, w.Body.String())
		}
	}
	w = call(env, candidateHandler.DeactivateCandidate, "DELETE", "/elections/1/candidates/4", "organizer", nil,
		map[string]string{"id": "1", "cid": "4"})
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Deactivate failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 3: Authorize voters
	voters := map[string]uint64{"alice": 1, "bob": 2, "carol": 5}
	for voter, wgt := range voters {
		w = call(env, votingHandler.AuthorizeVoter, "PUT", "/elections/1/voters/"+voter, "organizer",
			models.AuthorizeVoterRequest{Weight: weight(wgt)}, map[string]string{"id": "1", "identity": voter})
		if w.Code != http.StatusOK {
			t.Fatalf("Step 3 - Authorize %s failed: %d - %s", voter, w.Code, w.Body.String())
		}
	}

	// Step 4: Voting opens
	env.Clock.Advance(2 * time.Hour)

	ballots := map[string]uint64{"alice": 1, "bob": 3, "carol": 3}
	for voter, cid := range ballots {
		w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", voter,
			models.CastVoteRequest{CandidateID: cid}, params)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Vote by %s failed: %d - %s", voter, w.Code, w.Body.String())
		}
	}

	// Deactivated candidates can't receive votes
	w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", "organizer",
		models.CastVoteRequest{CandidateID: 4}, params)
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	// Alice changes her mind
	w = call(env, votingHandler.InvalidateVote, "POST", "/elections/1/votes/invalidate", "alice", nil, params)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", "alice",
		models.CastVoteRequest{CandidateID: 2}, params)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Step 5: Pause blocks voting, resume allows it
	call(env, electionHandler.TogglePause, "POST", "/elections/1/pause", "organizer", nil, params)
	w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", "organizer",
		models.CastVoteRequest{CandidateID: 1}, params)
	testutil.AssertStatus(t, w, http.StatusConflict)
	call(env, electionHandler.TogglePause, "POST", "/elections/1/pause", "organizer", nil, params)
	w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", "organizer",
		models.CastVoteRequest{CandidateID: 1}, params)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Step 6: End after the window closes
	env.Clock.Advance(24 * time.Hour)
	w = call(env, electionHandler.EndElection, "POST", "/elections/1/end", "organizer", nil, params)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - End election failed: %d - %s", w.Code, w.Body.String())
	}
	var endResp models.EndElectionResponse
	testutil.AssertJSON(t, w, &endResp)

	// Step 7: Results
	want := []uint64{1, 1, 2, 0}
	if len(endResp.Results.VoteCounts) != len(want) {
		t.Fatalf("Step 7 - Expected %d counts, got %v", len(want), endResp.Results.VoteCounts)
	}
	for i := range want {
		if endResp.Results.VoteCounts[i] != want[i] {
			t.Errorf("Step 7 - Expected counts %v, got %v", want, endResp.Results.VoteCounts)
			break
		}
	}
	if endResp.Results.TotalVotes != 4 {
		t.Errorf("Step 7 - Expected 4 valid votes, got %d", endResp.Results.TotalVotes)
	}

	w = call(env, resultsHandler.GetResults, "GET", "/elections/1/results?weighted=true", "", nil, params)
	var weighted models.Results
	testutil.AssertJSON(t, w, &weighted)
	// organizer 1 + alice 1 + bob 2 + carol 5
	if weighted.VoteCounts[0] != 1 || weighted.VoteCounts[1] != 1 || weighted.VoteCounts[2] != 7 {
		t.Errorf("Step 7 - Unexpected weighted counts %v", weighted.VoteCounts)
	}

	w = call(env, resultsHandler.GetActive, "GET", "/elections/1/active", "", nil, params)
	var active models.ActiveResponse
	testutil.AssertJSON(t, w, &active)
	if active.Active || active.State != models.StateEnded {
		t.Errorf("Step 7 - Expected ended election, got %+v", active)
	}

	w = call(env, resultsHandler.GetEvents, "GET", "/elections/1/events", "", nil, params)
	var history EventHistoryResponse
	testutil.AssertJSON(t, w, &history)
	if !history.Verified {
		t.Fatalf("Step 7 - Audit trail failed verification: %s", history.VerifyError)
	}
	last := history.Events[len(history.Events)-1]
	if last.Type != audit.ElectionEnded {
		t.Errorf("Step 7 - Expected last event %s, got %s", audit.ElectionEnded, last.Type)
	}
	if last.Hash.String() != endResp.Results.HeadHash {
		t.Error("Step 7 - Final results head hash does not match the audit trail")
	}

	// Nothing changes after the end
	w = call(env, votingHandler.CastVote, "POST", "/elections/1/votes", "dave",
		models.CastVoteRequest{CandidateID: 1}, params)
	testutil.AssertStatus(t, w, http.StatusConflict)
	w = call(env, candidateHandler.AddCandidate, "POST", "/elections/1/candidates", "organizer",
		models.CandidateRequest{Name: "Late"}, params)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

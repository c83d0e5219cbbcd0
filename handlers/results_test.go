// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/models"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/testutil"
)

// historyFunc adapts a function to the History interface
type historyFunc func(ctx context.Context, electionID uint64) ([]audit.Event, error)

func (f historyFunc) ElectionEvents(ctx context.Context, electionID uint64) ([]audit.Event, error) {
	return f(ctx, electionID)
}

func castVotes(t *testing.T, env *testutil.Env, votes map[string]uint64) {
	t.Helper()
	handler := NewVotingHandler(env.Registry, env.Config)
	for voter, cid := range votes {
		w := call(env, handler.CastVote, "POST", "/elections/1/votes", voter,
			models.CastVoteRequest{CandidateID: cid}, map[string]string{"id": "1"})
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
}

func TestGetResults(t *testing.T) {
	env := testutil.NewTestEnv(t)
	handler := NewResultsHandler(env.Registry, env.Log, env.Config)
	openElection(t, env)
	castVotes(t, env, map[string]uint64{"v1": 1, "v2": 2, "v3": 2})

	w := call(env, handler.GetResults, "GET", "/elections/1/results", "", nil, map[string]string{"id": "1"})
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.Results
	testutil.AssertJSON(t, w, &results)
	if results.TotalVotes != 3 {
		t.Errorf("Expected 3 total votes, got %d", results.TotalVotes)
	}
	if len(results.CandidateIDs) != 2 || results.CandidateIDs[0] != 1 || results.CandidateIDs[1] != 2 {
		t.Errorf("Expected candidate ids [1 2], got %v", results.CandidateIDs)
	}
	if results.VoteCounts[0] != 1 || results.VoteCounts[1] != 2 {
		t.Errorf("Expected counts [1 2], got %v", results.VoteCounts)
	}
	if results.HeadHash == "" {
		t.Error("Expected head hash in results")
	}

	w = call(env, handler.GetResults, "GET", "/elections/2/results", "", nil, map[string]string{"id": "2"})
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetStandings(t *testing.T) {
	env := testutil.NewTestEnv(t)
	handler := NewResultsHandler(env.Registry, env.Log, env.Config)
	testutil.CreateTestElection(t, env.Registry, env.Clock, "owner", "Alice", "Bob", "Carol")
	env.Clock.Advance(2 * time.Hour)
	castVotes(t, env, map[string]uint64{"v1": 3, "v2": 3, "v3": 1})

	w := call(env, handler.GetStandings, "GET", "/elections/1/standings", "", nil, map[string]string{"id": "1"})
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.StandingsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Standings) != 3 {
		t.Fatalf("Expected 3 standings, got %d", len(resp.Standings))
	}

	wantOrder := []string{"Carol", "Alice", "Bob"}
	for i, s := range resp.Standings {
		if s.Name != wantOrder[i] {
			t.Errorf("Rank %d: expected %s, got %s", i+1, wantOrder[i], s.Name)
		}
		if s.Rank != i+1 {
			t.Errorf("Expected rank %d, got %d", i+1, s.Rank)
		}
	}
	if share := resp.Standings[0].Share; share < 0.66 || share > 0.67 {
		t.Errorf("Expected leader share ~0.667, got %f", share)
	}
}

func TestGetActive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	handler := NewResultsHandler(env.Registry, env.Log, env.Config)
	testutil.CreateTestElection(t, env.Registry, env.Clock, "owner")
	params := map[string]string{"id": "1"}

	steps := []struct {
		name    string
		advance time.Duration
		active  bool
		state   models.ElectionState
	}{
		{"before start", 0, false, models.StateScheduled},
		{"inside window", 2 * time.Hour, true, models.StateActive},
		{"after end", 30 * time.Hour, false, models.StateExpired},
	}

	for _, step := range steps {
		env.Clock.Advance(step.advance)
		w := call(env, handler.GetActive, "GET", "/elections/1/active", "", nil, params)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ActiveResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Active != step.active || resp.State != step.state {
			t.Errorf("%s: expected active=%v state=%s, got %+v", step.name, step.active, step.state, resp)
		}
	}
}

func TestGetEvents(t *testing.T) {
	env := testutil.NewTestEnv(t)
	handler := NewResultsHandler(env.Registry, env.Log, env.Config)
	openElection(t, env)
	castVotes(t, env, map[string]uint64{"v1": 1})

	w := call(env, handler.GetEvents, "GET", "/elections/1/events", "", nil, map[string]string{"id": "1"})
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp EventHistoryResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Verified {
		t.Fatalf("Expected verified history, got error %q", resp.VerifyError)
	}
	if len(resp.Events) != 2 || resp.Sequence != 2 {
		t.Fatalf("Expected 2 events, got %d (sequence %d)", len(resp.Events), resp.Sequence)
	}
	if resp.Events[0].Type != audit.ElectionCreated || resp.Events[1].Type != audit.VoteCast {
		t.Errorf("Unexpected event types: %s, %s", resp.Events[0].Type, resp.Events[1].Type)
	}
	if resp.Events[1].Hash.String() != resp.HeadHash {
		t.Error("Expected last event hash to equal the head hash")
	}
}

func TestGetEvents_Tampered(t *testing.T) {
	env := testutil.NewTestEnv(t)
	openElection(t, env)
	castVotes(t, env, map[string]uint64{"v1": 1})

	tests := []struct {
		name    string
		history History
	}{
		{
			name: "rewritten payload",
			history: historyFunc(func(ctx context.Context, id uint64) ([]audit.Event, error) {
				events, err := env.Log.ElectionEvents(ctx, id)
				if err != nil {
					return nil, err
				}
				events[1].Payload.CandidateID = 2
				return events, nil
			}),
		},
		{
			name: "truncated history",
			history: historyFunc(func(ctx context.Context, id uint64) ([]audit.Event, error) {
				events, err := env.Log.ElectionEvents(ctx, id)
				if err != nil {
					return nil, err
				}
				return events[:1], nil
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewResultsHandler(env.Registry, tt.history, env.Config)
			w := call(env, handler.GetEvents, "GET", "/elections/1/events", "", nil, map[string]string{"id": "1"})
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp EventHistoryResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Verified || resp.VerifyError == "" {
				t.Errorf("Expected verification failure, got %+v", resp)
			}
		})
	}
}

func TestGetEvents_HistoryError(t *testing.T) {
	env := testutil.NewTestEnv(t)
	openElection(t, env)
	failing := historyFunc(func(context.Context, uint64) ([]audit.Event, error) {
		return nil, errors.New("database is gone")
	})
	handler := NewResultsHandler(env.Registry, failing, env.Config)

	w := call(env, handler.GetEvents, "GET", "/elections/1/events", "", nil, map[string]string{"id": "1"})
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

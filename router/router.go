// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/handlers"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

func NewRouter(reg *registry.Registry, history handlers.History, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(reg, cfg)
	candidateHandler := handlers.NewCandidateHandler(reg, cfg)
	votingHandler := handlers.NewVotingHandler(reg, cfg)
	resultsHandler := handlers.NewResultsHandler(reg, history, cfg)

	// Every API route logs and resolves the caller identity
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithIdentity(cfg.IdentitySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election registry
	mux.HandleFunc("POST /elections", wrap(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", wrap(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/count", wrap(electionHandler.GetElectionCount))
	mux.HandleFunc("GET /elections/{id}", wrap(electionHandler.GetElection))
	mux.HandleFunc("DELETE /elections/{id}", wrap(electionHandler.DeleteElection))
	mux.HandleFunc("GET /elections/{id}/stats", wrap(electionHandler.GetStats))

	// Lifecycle (controller only)
	mux.HandleFunc("POST /elections/{id}/pause", wrap(electionHandler.TogglePause))
	mux.HandleFunc("POST /elections/{id}/end", wrap(electionHandler.EndElection))

	// Candidates
	mux.HandleFunc("POST /elections/{id}/candidates", wrap(candidateHandler.AddCandidate))
	mux.HandleFunc("GET /elections/{id}/candidates", wrap(candidateHandler.ListCandidates))
	mux.HandleFunc("GET /elections/{id}/candidates/{cid}", wrap(candidateHandler.GetCandidate))
	mux.HandleFunc("PUT /elections/{id}/candidates/{cid}", wrap(candidateHandler.UpdateCandidate))
	mux.HandleFunc("POST /elections/{id}/candidates/{cid}/deactivate", wrap(candidateHandler.DeactivateCandidate))
	mux.HandleFunc("DELETE /elections/{id}/candidates/{cid}", wrap(candidateHandler.DeactivateCandidate))

	// Voter authorization and voting
	mux.HandleFunc("PUT /elections/{id}/voters/{identity}", wrap(votingHandler.AuthorizeVoter))
	mux.HandleFunc("DELETE /elections/{id}/voters/{identity}", wrap(votingHandler.DeauthorizeVoter))
	mux.HandleFunc("GET /elections/{id}/voters/{identity}", wrap(votingHandler.GetVoterStatus))
	mux.HandleFunc("POST /elections/{id}/votes", wrap(votingHandler.CastVote))
	mux.HandleFunc("POST /elections/{id}/votes/invalidate", wrap(votingHandler.InvalidateVote))

	// Results and audit trail (public)
	mux.HandleFunc("GET /elections/{id}/results", wrap(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{id}/standings", wrap(resultsHandler.GetStandings))
	mux.HandleFunc("GET /elections/{id}/active", wrap(resultsHandler.GetActive))
	mux.HandleFunc("GET /elections/{id}/events", wrap(resultsHandler.GetEvents))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("election registry API v1"))
	})

	return mux
}

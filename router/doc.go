// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the election API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(reg, store, cfg)

Every API route is wrapped in request logging and caller identity
verification. Mutating routes need X-Identity and X-Identity-Signature.

# Endpoints

Health:

	GET /health

Registry:

	POST   /elections            - Create election (caller becomes controller)
	GET    /elections            - List ids, ?creator= to filter
	GET    /elections/count      - Number of elections
	GET    /elections/{id}       - Metadata
	GET    /elections/{id}/stats - Aggregate stats
	DELETE /elections/{id}       - Always refused (405)

Lifecycle (controller):

	POST /elections/{id}/pause - Toggle pause
	POST /elections/{id}/end   - End after the window closes

Candidates:

	POST   /elections/{id}/candidates                 - Add (controller)
	GET    /elections/{id}/candidates                 - List ids
	GET    /elections/{id}/candidates/{cid}           - Get
	PUT    /elections/{id}/candidates/{cid}           - Update (controller)
	POST   /elections/{id}/candidates/{cid}/deactivate - Deactivate (controller)
	DELETE /elections/{id}/candidates/{cid}           - Same as deactivate

Voters and votes:

	PUT    /elections/{id}/voters/{identity} - Authorize with weight (controller)
	DELETE /elections/{id}/voters/{identity} - Deauthorize (controller)
	GET    /elections/{id}/voters/{identity} - Has voted + authorization record
	POST   /elections/{id}/votes             - Cast vote
	POST   /elections/{id}/votes/invalidate  - Invalidate own vote (or any, as controller)

Results (public):

	GET /elections/{id}/results   - Tally and head hash, ?weighted=true
	GET /elections/{id}/standings - Ranked candidates
	GET /elections/{id}/active    - Whether votes are accepted now
	GET /elections/{id}/events    - Audit trail and verification status
*/
package router

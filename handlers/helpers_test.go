// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/testutil"
)

// call runs h behind the identity middleware, as the router does.
// An empty identity sends an anonymous request.
func call(env *testutil.Env, h http.HandlerFunc, method, path, identity string, body interface{}, params map[string]string) *httptest.ResponseRecorder {
	var headers map[string]string
	if identity != "" {
		headers = testutil.IdentityHeaders(env.Config, identity)
	}
	req := testutil.MakeRequest(method, path, body, headers)
	for k, v := range params {
		req.SetPathValue(k, v)
	}
	return serve(env, h, req)
}

func serve(env *testutil.Env, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithIdentity(env.Config.IdentitySalt, h)(w, req)
	return w
}

// openElection creates an election owned by "owner" with candidates A and B
// and moves the clock into its voting window.
func openElection(t *testing.T, env *testutil.Env) uint64 {
	t.Helper()
	id := testutil.CreateTestElection(t, env.Registry, env.Clock, "owner")
	env.Clock.Advance(2 * time.Hour)
	return id
}

// Package api exposes the orchestrator to the admin console over HTTP.
//
// Routes:
//
//	POST /api/runScript           {"action": "start"|"stop", "command": "..."}
//	GET  /api/runScript/status    all tools, or one with ?kind=llm-bot
//	GET  /api/runScript/output    captured stdout, ?kind= required
//	GET  /healthz                 liveness
//
// Every response body is JSON. Control requests answer with exactly one of
// "message", "output" or "error"; the status code follows the outcome
// (200 success, 400 caller mistake or conflicting state, 405 wrong method,
// 500 spawn or signal failure).
package api

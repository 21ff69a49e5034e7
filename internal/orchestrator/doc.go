// Package orchestrator is the request-facing façade over tool lifecycle
// management.
//
// A caller hands Service.Handle an action ("start" or "stop") and the shell
// command line the admin console built. The service recovers the tool kind
// from the command (tool.Classify), delegates to the lifecycle controller and
// turns every outcome, expected or not, into a Result. Nothing in this
// package panics or returns a raw error to the transport layer.
//
// Starting a tool and the tool finishing are separate events: Handle returns
// as soon as the process is spawned, and completion is observed later via
// Status or Output.
package orchestrator

// Package api defines the outward contract of sessionctl: one request and one
// response record per lifecycle operation, and the error taxonomy shared by
// the orchestrator, the control-plane adapters and the HTTP gateway.
//
// # Operations
//
//   - DeployRequest -> DeployResult (optional DeployResponse)
//   - SubmitRequest -> SubmitResponse
//   - CancelRequest -> CancelResponse
//   - TriggerSavepointRequest -> SavepointResponse
//   - ShutDownRequest -> ShutDownResponse
//
// Requests are plain values validated at entry with Validate. Responses are
// freshly constructed for every call and owned by the caller.
//
// # Errors
//
//   - NotFoundError: expected; selects fallback branches, never fatal by itself
//   - SecurityPreconditionError: required credentials are missing
//   - ControlPlaneError: transport, authentication or state failure
//   - ValidationError: malformed request
//
// Use the IsX helpers, which unwrap, rather than type assertions.
package api

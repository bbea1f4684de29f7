// Package server exposes the session lifecycle operations over HTTP.
//
// # Endpoints
//
//   - POST   /v1/sessions                                   deploy or reattach
//   - GET    /v1/sessions[?namespace=ns]                    list session clusters
//   - DELETE /v1/sessions/{clusterID}                       shut a cluster down
//   - POST   /v1/sessions/{clusterID}/jobs                  submit a job
//   - POST   /v1/sessions/{clusterID}/jobs/{jobID}/cancel     cancel a job
//   - POST   /v1/sessions/{clusterID}/jobs/{jobID}/savepoints trigger a savepoint
//   - GET    /metrics                                       prometheus metrics
//   - GET    /healthz                                       liveness
//
// Deploy answers 201 when a cluster was created, 200 when an existing
// cluster was reattached and 202 when the outcome is indeterminate.
//
// Errors are returned as {"error": "...", "type": "..."} with status 400 for
// invalid requests, 412 for missing credentials, 404 for unknown clusters
// or jobs and 502 for control plane failures.
package server

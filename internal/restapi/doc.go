// Package restapi is a client for the REST endpoint a session cluster's job
// manager exposes.
//
// It covers the calls the lifecycle operations need:
//
//   - POST /jars/upload and POST /jars/{jar}/run to submit a job
//   - PATCH /jobs/{job}?mode=cancel to cancel a job
//   - POST /jobs/{job}/savepoints, then GET /jobs/{job}/savepoints/{trigger}
//     until the savepoint completes
//   - DELETE /cluster to shut the cluster down
//
// Non-2xx answers become api.ControlPlaneError values carrying the status
// code and the endpoint's "errors" list. A 404 on a job endpoint becomes an
// api.NotFoundError for that job. The client never retries.
package restapi

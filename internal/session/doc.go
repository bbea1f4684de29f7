// Package session orchestrates the lifecycle of shared session clusters.
//
// A Service deploys (or reattaches to) a session cluster, submits jobs to it,
// cancels jobs, triggers savepoints and shuts the cluster down. Every
// operation follows the same shape:
//
//  1. validate the request and assemble its configuration
//  2. check security preconditions
//  3. Acquire a Handle from the controlplane.ClientFactory
//  4. discover or retrieve the cluster and act on its client
//  5. Release the handle, whatever happened in step 4
//
// Discover turns the control plane's application report into a Status
// (NotFound, Running or Terminated) so callers branch on a value rather than
// on an error.
//
// Deploy has three outcomes. A new reachable cluster is DeployCreated, a
// running reachable cluster named in the request is DeployReattached, and a
// cluster that was deployed but exposes no reachable endpoint is
// DeployIndeterminate. The last one is not an error; callers decide whether
// to retry.
//
// The Service keeps no state between calls.
package session

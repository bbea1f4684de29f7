// Package controlplane declares the contracts between the session lifecycle
// core and the systems it drives.
//
// A ClientFactory turns a configuration into a cluster identity and a
// Descriptor. The Descriptor creates, retrieves and reports on session
// clusters within a resource-manager namespace. A ClusterClient is bound to
// one cluster and submits, cancels and checkpoints jobs on it.
//
// The Kubernetes implementation lives in internal/kubernetes and the
// cluster REST client in internal/restapi.
package controlplane

// Package kubernetes implements the control plane on a Kubernetes cluster.
//
// A session cluster is a Deployment running one job manager plus a Service
// exposing its REST port. Both objects are named after the application
// identity (application_<unix>_<suffix> with underscores turned into
// dashes) and carry the app.kubernetes.io/managed-by=sessionctl label. The
// identity itself and the final status live in annotations:
//
//	sessionctl.io/application-id: application_1718000000_1a2b3c4d
//	sessionctl.io/final-status:   UNDEFINED
//
// A final status other than UNDEFINED means the cluster has finished; it is
// reported with state FINISHED and is never reattached to. Shutting a
// cluster down records SUCCEEDED and scales the Deployment to zero so the
// record survives.
//
// Job operations go to the cluster REST endpoint through package restapi.
package kubernetes

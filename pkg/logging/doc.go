// Package logging provides the subsystem-tagged logger used across sessionctl.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem"
// attribute naming the component that produced it, plus an optional error:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Deploy", "Reattaching to session cluster %s", id)
//	logging.Warn("Guard", "Closing cluster client failed")
//	logging.Error("Cancel", err, "cancel fail (mode %s)", mode)
//
// # Subsystems
//
//   - **Deploy**, **Submit**, **Cancel**, **Savepoint**, **Shutdown**: lifecycle operations
//   - **Discovery**: application report classification
//   - **Guard**: cluster handle acquisition and release
//   - **Kubernetes**: the Kubernetes-backed control plane
//   - **REST**: the session cluster REST client
//   - **Server**: the HTTP gateway
//   - **Config**: settings loading
//
// # Controller-Runtime Integration
//
// Init also installs the same handler as the controller-runtime logger, so
// Kubernetes client internals log through the configured output.
package logging

// Package pkg provides shared utilities for the nibblemouse bridge.
//
// This package contains common functionality used by the USB host side, the
// legacy port engine and the simulator, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with a component attribute:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentBridge, "mouse mounted", "address", 1)
//
// Nothing on the strobe edge path logs. Logging allocates and may block,
// which the edge handler must never do.
//
// # Errors
//
// Errors are sentinel values, wrapped with context at package boundaries:
//
//	if errors.Is(err, pkg.ErrNoMouse) {
//	    // device is not a boot mouse
//	}
package pkg

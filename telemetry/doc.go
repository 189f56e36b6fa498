// SPDX-License-Identifier: EPL-2.0

// Package telemetry provides session event sinks: structured logs,
// Prometheus metrics and a Redis now-playing publisher. None of them block
// the audio path.
package telemetry

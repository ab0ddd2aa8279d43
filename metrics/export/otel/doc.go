// Package otel provides OpenTelemetry metric exporter bindings for the
// engine's counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine counter
// plus one for dropped audit events. A single callback reads
// [pulseauth.Engine.MetricsSnapshot] on each collection cycle, so exporting
// adds no cost to the authentication paths themselves.
//
// Callers own the OTel MeterProvider; this package only consumes a Meter.
package otel

// Package influxdb provides optional feature-value telemetry for dacbroker.
//
// Every successful value write is recorded as a point in the feature_values
// measurement, tagged by feature name. Writes are batched and asynchronous;
// a telemetry outage never blocks or fails a hardware operation.
//
// Telemetry is disabled by default (influxdb.enabled in config.yaml).
package influxdb

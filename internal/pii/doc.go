// Package pii scans recognized text regions for personally identifiable
// information. A fixed set of high-confidence detectors always runs; lower
// confidence detectors (URLs, dates) and person-name recognition are opt-in
// because of their false-positive rates.
package pii

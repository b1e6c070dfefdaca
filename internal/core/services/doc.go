// Package services contains the pipeline orchestration: document
// intake with dedupe and quarantine, and per-minidoc parsing. Services
// depend only on ports and the chunking engine; adapters are injected
// at wiring time.
package services

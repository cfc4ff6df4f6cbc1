// Package domain contains the value types shared by the classification
// pipeline, the scan orchestrator and the notification layer: normalized
// domains, verdicts, scan targets, results and batches. They carry no
// infrastructure concerns and are immutable once produced.
package domain

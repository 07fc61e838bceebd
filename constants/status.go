package constants

// IntakeState is the classification state of a single intake call.
type IntakeState string

// Stable values (written into results and logs).
const (
	StateUnclassified       IntakeState = "UNCLASSIFIED"
	StateStructuredDetected IntakeState = "STRUCTURED_DETECTED"
	StateScanDetected       IntakeState = "SCAN_DETECTED"
	StateResolved           IntakeState = "RESOLVED"
)

// IntakeSource records which path produced the fields of a result.
type IntakeSource string

const (
	SourceStructured IntakeSource = "structured"
	SourceScan       IntakeSource = "scan"
)

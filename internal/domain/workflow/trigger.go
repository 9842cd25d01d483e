package workflow

// Trigger represents an event that moves a submission forward
type Trigger string

const (
	TriggerStart           Trigger = "START"
	TriggerDocumentFilled  Trigger = "DOCUMENT_FILLED"
	TriggerPackageCreated  Trigger = "PACKAGE_CREATED"
	TriggerSigningURLReady Trigger = "SIGNING_URL_READY"
	TriggerFail            Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

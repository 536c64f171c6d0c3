package model

// OccurrenceCode is a carrier-assigned code identifying a tracking-event
// reason. The table is immutable reference data seeded at startup.
type OccurrenceCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Process     string `json:"process"`
}

// OccurrenceCodeMaxLen caps the code column; longer inbound codes are
// truncated before persistence.
const OccurrenceCodeMaxLen = 10

// FinalizationProcesses are the process classifications that close a
// shipment: an event carrying a code with one of these processes marks the
// shipment delivered. The alternate type-based rule ({entrega, baixa}) that
// circulated in the legacy test suite is intentionally not used.
var FinalizationProcesses = []string{"entrega", "finalizadora"}

// TruncateOccurrenceCode enforces the schema cap on a caller-supplied code.
func TruncateOccurrenceCode(code *string) *string {
	if code == nil {
		return nil
	}
	c := *code
	if len(c) > OccurrenceCodeMaxLen {
		c = c[:OccurrenceCodeMaxLen]
	}
	return &c
}

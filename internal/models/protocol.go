package models

// Event is the wire format for domain events published on JetStream.
type Event struct {
	V        int               `msgpack:"v"`
	TS       int64             `msgpack:"ts"`
	Kind     string            `msgpack:"kind"`
	ClinicID string            `msgpack:"clinic_id"`
	ActorID  string            `msgpack:"actor_id,omitempty"`
	Subject  string            `msgpack:"subject,omitempty"`
	Attrs    map[string]string `msgpack:"attrs"`
}

// Event kinds.
const (
	EventPrintOrderCreated   = "print_order.created"
	EventPrintOrderStatus    = "print_order.status"
	EventMonthlyDataImported = "monthly_data.imported"
	EventMonthlyDataMissing  = "monthly_data.missing"
	EventReportReady         = "report.ready"
)

// Attr returns the named attribute or "".
func (e *Event) Attr(key string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[key]
}

// ReportJob asks the report worker to render one report.
type ReportJob struct {
	V         int    `msgpack:"v"`
	ReportID  string `msgpack:"report_id"`
	ClinicID  string `msgpack:"clinic_id"`
	RequestID string `msgpack:"request_id"`
}

package proto

import (
	"bytes"
	"strconv"
)

// EventToStringBuf renders the event header for log lines. The payload is left out since it may
// carry network credentials.
func EventToStringBuf(e *Event) string {
	if e == nil {
		return ""
	}

	var buffer bytes.Buffer

	buffer.WriteString(`{"aggregate_id" : "`)
	buffer.WriteString(e.AggregateId)
	buffer.WriteString(`",`)

	buffer.WriteString(`"aggregate_type" : "`)
	buffer.WriteString(e.AggregateType)
	buffer.WriteString(`",`)

	buffer.WriteString(`"event_id" : "`)
	buffer.WriteString(e.EventId)
	buffer.WriteString(`",`)

	buffer.WriteString(`"event_type" : "`)
	buffer.WriteString(e.EventType)
	buffer.WriteString(`",`)

	buffer.WriteString(`"time" : "`)
	buffer.WriteString(strconv.FormatInt(e.Time, 10))
	buffer.WriteString(`"}`)

	return buffer.String()
}

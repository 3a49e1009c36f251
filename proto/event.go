// Package proto holds the wire messages described in event.proto.
package proto

import (
	gproto "github.com/golang/protobuf/proto"
)

// Event announces a parameters document that has just been persisted.
type Event struct {
	AggregateId   string `protobuf:"bytes,1,opt,name=aggregate_id,json=aggregateId,proto3" json:"aggregate_id,omitempty"`     // nolint
	AggregateType string `protobuf:"bytes,2,opt,name=aggregate_type,json=aggregateType,proto3" json:"aggregate_type,omitempty"`
	EventId       string `protobuf:"bytes,3,opt,name=event_id,json=eventId,proto3" json:"event_id,omitempty"` // nolint
	EventType     string `protobuf:"bytes,4,opt,name=event_type,json=eventType,proto3" json:"event_type,omitempty"`
	EventData     string `protobuf:"bytes,5,opt,name=event_data,json=eventData,proto3" json:"event_data,omitempty"`
	Time          int64  `protobuf:"varint,6,opt,name=time,proto3" json:"time,omitempty"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return gproto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

// Package observability holds the in-process counters surfaced by the health
// endpoint and the periodic stats reporter.
package observability

import "sync/atomic"

type Metrics struct {
	messagesRouted   atomic.Int64
	messagesParked   atomic.Int64
	triggersAccepted atomic.Int64
	triggersRejected atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) MessageRouted()   { m.messagesRouted.Add(1) }
func (m *Metrics) MessageParked()   { m.messagesParked.Add(1) }
func (m *Metrics) TriggerAccepted() { m.triggersAccepted.Add(1) }
func (m *Metrics) TriggerRejected() { m.triggersRejected.Add(1) }

// Snapshot is a point-in-time copy of the counters, safe to marshal.
type Snapshot struct {
	MessagesRouted   int64 `json:"messagesRouted"`
	MessagesParked   int64 `json:"messagesParked"`
	TriggersAccepted int64 `json:"triggersAccepted"`
	TriggersRejected int64 `json:"triggersRejected"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		MessagesRouted:   m.messagesRouted.Load(),
		MessagesParked:   m.messagesParked.Load(),
		TriggersAccepted: m.triggersAccepted.Load(),
		TriggersRejected: m.triggersRejected.Load(),
	}
}

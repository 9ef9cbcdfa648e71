package models

// EventSink receives events as terraform output is classified.
// Emit is called from the supervisor's wait loop, so a slow sink slows
// down draining of the child's output.
type EventSink interface {
	Emit(event TerraformEvent)
}

// SinkFunc adapts a plain function to the EventSink interface.
type SinkFunc func(event TerraformEvent)

// Emit calls f(event).
func (f SinkFunc) Emit(event TerraformEvent) {
	f(event)
}

// ChannelSink forwards events onto a channel. Sends block until the
// consumer receives, so the consumer must keep reading.
type ChannelSink chan<- TerraformEvent

// Emit sends the event on the channel.
func (c ChannelSink) Emit(event TerraformEvent) {
	c <- event
}

// MultiSink fans out to several sinks in order.
type MultiSink struct {
	sinks []EventSink
}

// NewMultiSink creates a sink that emits to every non-nil sink given.
func NewMultiSink(sinks ...EventSink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Emit sends the event to every sink.
func (m *MultiSink) Emit(event TerraformEvent) {
	for _, s := range m.sinks {
		s.Emit(event)
	}
}

// Ensure the sinks implement EventSink
var (
	_ EventSink = SinkFunc(nil)
	_ EventSink = ChannelSink(nil)
	_ EventSink = (*MultiSink)(nil)
)

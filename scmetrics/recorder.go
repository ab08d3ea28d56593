// File: scmetrics/recorder.go
// Package scmetrics instruments the connection engine with Prometheus
// metrics. Recorder is the hook scconn.Context calls into; a nil Context
// field defaults to NoopRecorder so unit tests never need a real registry.
package scmetrics

// Recorder receives connection-engine events. All methods must be safe to
// call concurrently and must not block.
type Recorder interface {
	SetConnectionCount(role, state string, delta int)
	HeartbeatSent()
	HeartbeatTimeout()
	CodecError(code string)
	HandshakeRejected(reason string)
}

// NoopRecorder discards every event. It is the default Recorder so the
// engine has no hard dependency on a running Prometheus registry.
type NoopRecorder struct{}

func (NoopRecorder) SetConnectionCount(string, string, int) {}
func (NoopRecorder) HeartbeatSent()                         {}
func (NoopRecorder) HeartbeatTimeout()                      {}
func (NoopRecorder) CodecError(string)                      {}
func (NoopRecorder) HandshakeRejected(string)                {}

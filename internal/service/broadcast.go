package service

// Broadcaster pushes shot results, turn changes, and game-over events to
// connected clients. The WebSocket hub implements it.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// NoopBroadcaster discards events. It stands in when no hub is wired,
// as in the arena and most tests.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}

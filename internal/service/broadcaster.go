package service

// Broadcaster pushes change notifications to connected clients (avoids import cycle)
type Broadcaster interface {
	Publish(game string, msgType string, payload interface{})
}

// Notification types
const (
	MsgSessionUpdated = "session_updated"
	MsgTurnsUpdated   = "turns_updated"
	MsgReset          = "reset"
)

package events

// Event names carried on the wire to live observers.
const (
	MeetingCreated = "meeting-created"
	MeetingUpdated = "meeting-updated"
	MeetingDeleted = "meeting-deleted"
)

// Broadcaster is an abstraction over any fanout transport. Delivery is
// best-effort and at-most-once, Publish never reports failure.
type Broadcaster interface {
	Publish(event string, payload any)
}

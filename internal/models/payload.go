package models

// EventTypeEnd marks a Frigate event that has finished and is ready
// for review. Other types ("new", "update") are in-progress updates.
const EventTypeEnd = "end"

// FrigatePayload is the relevant subset of the message Frigate
// publishes on frigate/events. Before/after carry the same shape; the
// reviewer only needs the final state.
type FrigatePayload struct {
	Type  string       `json:"type"`
	After FrigateState `json:"after"`
}

// FrigateState is the event state nested inside a Frigate payload.
type FrigateState struct {
	ID          string   `json:"id"`
	Camera      string   `json:"camera"`
	Labels      []string `json:"labels"`
	HasSnapshot bool     `json:"has_snapshot"`
}

// Event converts the payload state into the reviewer's event record.
func (s FrigateState) Event() Event {
	return Event{
		ID:          s.ID,
		Camera:      s.Camera,
		Labels:      s.Labels,
		HasSnapshot: s.HasSnapshot,
	}
}

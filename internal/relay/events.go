package relay

import (
	"bytes"
	"encoding/json"
	"log"
)

// Relay event names. These and the room-key derivation rules below are
// the wire contract; unmodified peers depend on them verbatim.
const (
	EventJoinStoryboard     = "join-storyboard"
	EventCanvasUpdate       = "canvas-update"
	EventPageUpdate         = "page-update"
	EventCursorMove         = "cursor-move"
	EventJoinScript         = "join-script"
	EventScriptUpdate       = "script-update"
	EventJoinProject        = "join-project"
	EventNewComment         = "new-comment"
	EventJoinBreakdown      = "join-breakdown"
	EventBreakdownUpdate    = "breakdown-update"
	EventJoinShotSequence   = "join-shotsequence"
	EventShotSequenceUpdate = "shotsequence-update"
	EventJoinDashboard      = "join-dashboard"
	EventProjectCreated     = "project-created"
	EventProjectUpdated     = "project-updated"
	EventProjectDeleted     = "project-deleted"
)

// BreakdownRoom derives the room key for a project's scene breakdown
func BreakdownRoom(projectID string) string {
	return "breakdown-" + projectID
}

// ShotSequenceRoom derives the room key for a shot-sequence timeline
func ShotSequenceRoom(sequenceID string) string {
	return "shotsequence-" + sequenceID
}

// DashboardRoom derives the room key for a user's project dashboard
func DashboardRoom(userID string) string {
	return "dashboard-" + userID
}

// ID is an entity identifier inside a relay envelope. Clients send ids
// either as JSON strings or numbers; both map to the same room key.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Envelope is the JSON frame exchanged on the relay socket. The event
// name selects which fields are meaningful; payload fields themselves
// (canvas scenes, page arrays, comments) are carried opaquely and are
// never validated or rewritten by the relay.
type Envelope struct {
	Event        string          `json:"event"`
	StoryboardID ID              `json:"storyboardId,omitempty"`
	ScriptID     ID              `json:"scriptId,omitempty"`
	ProjectID    ID              `json:"projectId,omitempty"`
	SequenceID   ID              `json:"sequenceId,omitempty"`
	UserID       ID              `json:"userId,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Pages        json.RawMessage `json:"pages,omitempty"`
	PageColor    json.RawMessage `json:"pageColor,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
	Position     json.RawMessage `json:"position,omitempty"`
	Comment      json.RawMessage `json:"comment,omitempty"`
	Breakdown    json.RawMessage `json:"breakdown,omitempty"`
	Project      json.RawMessage `json:"project,omitempty"`
}

// Dispatch routes one inbound frame. Malformed frames, unknown events
// and envelopes missing their room id are inert: logged and dropped,
// never answered with an error frame.
func Dispatch(h *Hub, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("[Relay] Dropping malformed frame from %s: %v", c.ID, err)
		return
	}

	switch env.Event {
	// Storyboard events
	case EventJoinStoryboard:
		h.Join(c, env.StoryboardID.String())
	case EventCanvasUpdate:
		if room := env.StoryboardID.String(); room != "" {
			h.Relay(c, room, marshal(Envelope{Event: env.Event, Data: env.Data}))
		}
	case EventPageUpdate:
		if room := env.StoryboardID.String(); room != "" {
			h.Relay(c, room, marshal(Envelope{Event: env.Event, Pages: env.Pages}))
		}
	case EventCursorMove:
		if room := env.StoryboardID.String(); room != "" {
			h.Relay(c, room, marshal(Envelope{Event: env.Event, User: env.User, Position: env.Position}))
		}

	// Script events
	case EventJoinScript:
		h.Join(c, env.ScriptID.String())
	case EventScriptUpdate:
		if room := env.ScriptID.String(); room != "" {
			h.Relay(c, room, marshal(Envelope{Event: env.Event, Pages: env.Pages, PageColor: env.PageColor}))
		}

	// Project events (comments and collaboration)
	case EventJoinProject:
		h.Join(c, env.ProjectID.String())
	case EventNewComment:
		if room := env.ProjectID.String(); room != "" {
			h.Relay(c, room, marshal(Envelope{Event: env.Event, Comment: env.Comment}))
		}

	// Scene breakdown events
	case EventJoinBreakdown:
		if id := env.ProjectID.String(); id != "" {
			h.Join(c, BreakdownRoom(id))
		}
	case EventBreakdownUpdate:
		if id := env.ProjectID.String(); id != "" {
			h.Relay(c, BreakdownRoom(id), marshal(Envelope{Event: env.Event, Breakdown: env.Breakdown}))
		}

	// Shot sequence events
	case EventJoinShotSequence:
		if id := env.SequenceID.String(); id != "" {
			h.Join(c, ShotSequenceRoom(id))
		}
	case EventShotSequenceUpdate:
		if id := env.SequenceID.String(); id != "" {
			h.Relay(c, ShotSequenceRoom(id), marshal(Envelope{Event: env.Event, Data: env.Data}))
		}

	// Dashboard events (project list updates)
	case EventJoinDashboard:
		if id := env.UserID.String(); id != "" {
			h.Join(c, DashboardRoom(id))
		}
	case EventProjectCreated:
		// every dashboard session for this user, the emitter included
		if id := env.UserID.String(); id != "" {
			h.RelayToRoom(DashboardRoom(id), marshal(Envelope{Event: env.Event, Project: env.Project}))
		}
	case EventProjectDeleted:
		if id := env.UserID.String(); id != "" {
			h.RelayToRoom(DashboardRoom(id), marshal(Envelope{Event: env.Event, ProjectID: env.ProjectID}))
		}
	case EventProjectUpdated:
		// deliberate global fan-out to every connected session
		h.BroadcastAll(marshal(Envelope{Event: env.Event, ProjectID: env.ProjectID, Project: env.Project}))

	default:
		log.Printf("[Relay] Ignoring unknown event %q from %s", env.Event, c.ID)
	}
}

func marshal(env Envelope) []byte {
	data, err := json.Marshal(env)
	if err != nil {
		// RawMessage fields marshal verbatim; this cannot fail for valid input
		log.Printf("[Relay] Failed to marshal envelope for %s: %v", env.Event, err)
		return nil
	}
	return data
}

package models

// EventKind identifies a server push event. The set is closed: anything the
// parser does not recognize maps to KindUnknown and falls through to the
// dispatcher's default handler.
type EventKind string

const (
	KindNewMeeting      EventKind = "new-meeting"
	KindUserAccepted    EventKind = "user-accepted-meeting"
	KindUserRefused     EventKind = "user-refused-meeting"
	KindUserCanceled    EventKind = "user-canceled-meeting"
	KindUserArrived     EventKind = "user-arrived-to-meeting"
	KindInProgress      EventKind = "meeting-in-progress"
	KindFinishedMeeting EventKind = "finished-meeting"
	KindCanceledMeeting EventKind = "canceled-meeting"
	KindUnknown         EventKind = "unknown"
)

var knownKinds = map[EventKind]bool{
	KindNewMeeting:      true,
	KindUserAccepted:    true,
	KindUserRefused:     true,
	KindUserCanceled:    true,
	KindUserArrived:     true,
	KindInProgress:      true,
	KindFinishedMeeting: true,
	KindCanceledMeeting: true,
}

// ParseEventKind maps a raw push "type" tag to its EventKind
func ParseEventKind(raw string) EventKind {
	if kind := EventKind(raw); knownKinds[kind] {
		return kind
	}
	return KindUnknown
}

// NotificationData is the machine-readable part of a push payload
type NotificationData struct {
	Type        string `json:"type"`
	Meeting     int    `json:"meeting,omitempty"`
	Participant int    `json:"participant,omitempty"`
}

// Notification is a server push as delivered by the push channel
type Notification struct {
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	AdditionalData NotificationData `json:"additionalData"`
}

// Kind returns the parsed event kind of the notification
func (n *Notification) Kind() EventKind {
	return ParseEventKind(n.AdditionalData.Type)
}

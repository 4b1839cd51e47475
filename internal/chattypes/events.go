package chattypes

// Inbound event names sent by clients over the websocket.
const (
	JoinEvent           = "join"
	TextEvent           = "message"
	EmojiEvent          = "emoji"
	AttachmentEvent     = "attachment"
	VoiceEvent          = "voice"
	HistoryRequestEvent = "history_request"
)

// Outbound event names pushed to clients.
const (
	LoadHistoryEvent   = "load_history"
	UserJoinedEvent    = "user_joined"
	UserLeftEvent      = "user_left"
	NewMessageEvent    = "new_message"
	NewEmojiEvent      = "new_emoji"
	NewAttachmentEvent = "new_attachment"
	NewVoiceEvent      = "new_voice"
	NicknameErrorEvent = "nickname_error"
	ErrorEvent         = "error"
)

// InboundEvent is the envelope for every client-to-server websocket message.
// Only the fields relevant to Event are populated.
type InboundEvent struct {
	Event    string `json:"event"`
	Nickname string `json:"nickname,omitempty"`
	Color    string `json:"color,omitempty"`
	Text     string `json:"text,omitempty"`
	Emoji    string `json:"emoji,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	RecordID string `json:"id,omitempty"`
}

// PresenceUpdate is broadcast on every join and leave transition.
type PresenceUpdate struct {
	Event       string   `json:"event"`
	Nickname    string   `json:"nickname"`
	Color       string   `json:"color,omitempty"`
	ActiveUsers []string `json:"activeUsers"`
}

// MessageEvent carries a live or replayed chat message to clients. Timestamp
// is always the record's creation time so a replayed copy is indistinguishable
// from the live delivery of the same record.
type MessageEvent struct {
	Event     string `json:"event"`
	Nickname  string `json:"nickname"`
	Color     string `json:"color,omitempty"`
	Text      string `json:"text,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
	Filename  string `json:"filename,omitempty"`
	FileURL   string `json:"fileUrl,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryList announces the stored record ids, oldest first, to a newly
// connected client.
type HistoryList struct {
	Event string   `json:"event"`
	IDs   []string `json:"ids"`
}

// ErrorNotice reports a per-connection failure (duplicate nickname, storage
// fault) to one client.
type ErrorNotice struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

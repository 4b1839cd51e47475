package chattypes

// MessageType defines the type of a stored chat event.
type MessageType string

const (
	TextMessageType       MessageType = "text"
	EmojiMessageType      MessageType = "emoji"
	AttachmentMessageType MessageType = "attachment"
	VoiceMessageType      MessageType = "voice"
)

// MessageRecord is one persisted chat event. The JSON field names are the
// on-disk layout of a record file and must not change: content carries the
// text or emoji body, fileData carries the content-store reference for
// attachment and voice records, ts is unix milliseconds.
type MessageRecord struct {
	ID             string      `json:"-"`
	Sender         string      `json:"nick"`
	Type           MessageType `json:"type"`
	Body           string      `json:"content"`
	AttachmentName string      `json:"filename"`
	AttachmentRef  string      `json:"fileData"`
	CreatedAt      int64       `json:"ts"`
}

package relay

import (
	"errors"

	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/history"
)

// HandleConnect streams the stored history to a newly established
// connection, oldest record first. Records evicted between enumeration and
// read are skipped silently; no other connection is involved or affected.
func (r *router) HandleConnect(s Session) {
	ids, err := r.store.ListIdentifiers()
	if err != nil {
		zap.S().Errorw("failed to enumerate history", "connId", s.SessionID(), "error", err)
		return
	}
	r.sender.SendToOne(s.SessionID(), chattypes.HistoryList{
		Event: chattypes.LoadHistoryEvent,
		IDs:   ids,
	})
	for _, id := range ids {
		r.replayOne(s.SessionID(), id)
	}
}

// replayOne reads a single record and re-delivers it to one connection in
// its original outbound shape.
func (r *router) replayOne(connID, id string) {
	rec, err := r.store.Read(id)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			zap.S().Errorw("failed to read record for replay", "recordId", id, "error", err)
		}
		return
	}
	r.sender.SendToOne(connID, outboundForRecord(rec))
}

// outboundForRecord translates a stored record back into the outbound event
// shape broadcast when the record was created. The sender's color is not
// persisted, so replayed events carry none.
func outboundForRecord(rec *chattypes.MessageRecord) chattypes.MessageEvent {
	evt := chattypes.MessageEvent{
		Nickname:  rec.Sender,
		Timestamp: rec.CreatedAt,
	}
	switch rec.Type {
	case chattypes.EmojiMessageType:
		evt.Event = chattypes.NewEmojiEvent
		evt.Emoji = rec.Body
	case chattypes.AttachmentMessageType:
		evt.Event = chattypes.NewAttachmentEvent
		evt.Filename = rec.AttachmentName
		evt.FileURL = rec.AttachmentRef
	case chattypes.VoiceMessageType:
		evt.Event = chattypes.NewVoiceEvent
		evt.Filename = rec.AttachmentName
		evt.FileURL = rec.AttachmentRef
	default:
		evt.Event = chattypes.NewMessageEvent
		evt.Text = rec.Body
	}
	return evt
}

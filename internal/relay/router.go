package relay

import (
	"errors"

	"go.uber.org/zap"

	"relay-go/internal/chattypes"
	"relay-go/internal/history"
	"relay-go/internal/presence"
)

// Sender is the outbound side of the transport layer: fan-out to every
// connected participant or delivery to a single connection.
type Sender interface {
	SendToAll(event any)
	SendToOne(connID string, event any)
}

// Session is the router's view of one connection.
type Session interface {
	SessionID() string
	SetIdentity(nickname, color string)
	Identity() (nickname, color string, joined bool)
}

// Router is the single entry point translating inbound events into record
// store writes and outbound fan-out.
type Router interface {
	// HandleConnect replays stored history to a newly established connection.
	HandleConnect(s Session)
	// HandleEvent processes one inbound event from a connection.
	HandleEvent(s Session, evt chattypes.InboundEvent)
	// HandleDisconnect removes the participant and announces the departure.
	HandleDisconnect(s Session)
}

// router is the Router implementation.
type router struct {
	store    *history.Store
	registry *presence.Registry
	sender   Sender
}

// NewRouter creates a new Router instance.
func NewRouter(store *history.Store, registry *presence.Registry, sender Sender) Router {
	return &router{
		store:    store,
		registry: registry,
		sender:   sender,
	}
}

func (r *router) HandleEvent(s Session, evt chattypes.InboundEvent) {
	if evt.Event == chattypes.JoinEvent {
		r.handleJoin(s, evt)
		return
	}
	if evt.Event == chattypes.HistoryRequestEvent {
		r.replayOne(s.SessionID(), evt.RecordID)
		return
	}

	nickname, color, joined := s.Identity()
	if !joined {
		r.sender.SendToOne(s.SessionID(), chattypes.ErrorNotice{
			Event:   chattypes.ErrorEvent,
			Message: "join required before sending messages",
		})
		return
	}

	switch evt.Event {
	case chattypes.TextEvent:
		r.persistAndFanOut(s, chattypes.TextMessageType, evt.Text, "", "", func(ts int64) any {
			return chattypes.MessageEvent{
				Event:     chattypes.NewMessageEvent,
				Nickname:  nickname,
				Color:     color,
				Text:      evt.Text,
				Timestamp: ts,
			}
		})
	case chattypes.EmojiEvent:
		r.persistAndFanOut(s, chattypes.EmojiMessageType, evt.Emoji, "", "", func(ts int64) any {
			return chattypes.MessageEvent{
				Event:     chattypes.NewEmojiEvent,
				Nickname:  nickname,
				Color:     color,
				Emoji:     evt.Emoji,
				Timestamp: ts,
			}
		})
	case chattypes.AttachmentEvent:
		r.persistAndFanOut(s, chattypes.AttachmentMessageType, "", evt.Filename, evt.FileURL, func(ts int64) any {
			return chattypes.MessageEvent{
				Event:     chattypes.NewAttachmentEvent,
				Nickname:  nickname,
				Color:     color,
				Filename:  evt.Filename,
				FileURL:   evt.FileURL,
				Timestamp: ts,
			}
		})
	case chattypes.VoiceEvent:
		r.persistAndFanOut(s, chattypes.VoiceMessageType, "", evt.Filename, evt.FileURL, func(ts int64) any {
			return chattypes.MessageEvent{
				Event:     chattypes.NewVoiceEvent,
				Nickname:  nickname,
				Color:     color,
				Filename:  evt.Filename,
				FileURL:   evt.FileURL,
				Timestamp: ts,
			}
		})
	default:
		zap.S().Debugw("ignoring unknown inbound event", "connId", s.SessionID(), "event", evt.Event)
	}
}

// handleJoin admits the nickname and announces the new participant. A
// duplicate nickname is reported to the requester only and leaves no state
// behind.
func (r *router) handleJoin(s Session, evt chattypes.InboundEvent) {
	if err := r.registry.Admit(evt.Nickname); err != nil {
		if errors.Is(err, presence.ErrNicknameTaken) {
			r.sender.SendToOne(s.SessionID(), chattypes.ErrorNotice{
				Event:   chattypes.NicknameErrorEvent,
				Message: "Nickname already in use",
			})
			return
		}
		zap.S().Errorw("failed to admit participant", "nickname", evt.Nickname, "error", err)
		return
	}
	s.SetIdentity(evt.Nickname, evt.Color)
	r.sender.SendToAll(chattypes.PresenceUpdate{
		Event:       chattypes.UserJoinedEvent,
		Nickname:    evt.Nickname,
		Color:       evt.Color,
		ActiveUsers: r.registry.Snapshot(),
	})
	zap.S().Infow("participant joined", "nickname", evt.Nickname)
}

// persistAndFanOut appends a durable record and, only when the write
// succeeded, broadcasts the outbound event built from the record's creation
// timestamp. A storage fault is surfaced to the sender alone.
func (r *router) persistAndFanOut(s Session, mtype chattypes.MessageType, body, attachmentName, attachmentRef string, build func(ts int64) any) {
	nickname, _, _ := s.Identity()
	rec, err := r.store.Append(nickname, mtype, body, attachmentName, attachmentRef)
	if err != nil {
		zap.S().Errorw("failed to persist message", "nickname", nickname, "type", mtype, "error", err)
		r.sender.SendToOne(s.SessionID(), chattypes.ErrorNotice{
			Event:   chattypes.ErrorEvent,
			Message: "message could not be stored",
		})
		return
	}
	r.sender.SendToAll(build(rec.CreatedAt))
}

func (r *router) HandleDisconnect(s Session) {
	nickname, _, joined := s.Identity()
	if !joined {
		return
	}
	if !r.registry.Remove(nickname) {
		return
	}
	r.sender.SendToAll(chattypes.PresenceUpdate{
		Event:       chattypes.UserLeftEvent,
		Nickname:    nickname,
		ActiveUsers: r.registry.Snapshot(),
	})
	zap.S().Infow("participant left", "nickname", nickname)
}

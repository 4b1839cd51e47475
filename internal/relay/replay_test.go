package relay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"relay-go/internal/chattypes"
)

func TestHandleConnectReplaysInOrder(t *testing.T) {
	req := require.New(t)
	r, store, _, sender, _ := newTestRouter(t)

	text, err := store.Append("alice", chattypes.TextMessageType, "hello", "", "")
	req.NoError(err)
	emoji, err := store.Append("bob", chattypes.EmojiMessageType, "👍", "", "")
	req.NoError(err)
	att, err := store.Append("carol", chattypes.AttachmentMessageType, "", "cat.png", "/static/uploads/x.png")
	req.NoError(err)
	voice, err := store.Append("dave", chattypes.VoiceMessageType, "", "note.webm", "/static/uploads/v.webm")
	req.NoError(err)

	r.HandleConnect(&fakeSession{id: "c1"})

	events := sender.directs["c1"]
	req.Len(events, 5, "id list plus one replay per record")
	req.Empty(sender.broadcasts, "replay goes to the requesting connection only")

	list, ok := events[0].(chattypes.HistoryList)
	req.True(ok)
	req.Equal(chattypes.LoadHistoryEvent, list.Event)
	req.Equal([]string{text.ID, emoji.ID, att.ID, voice.ID}, list.IDs)

	m1 := events[1].(chattypes.MessageEvent)
	req.Equal(chattypes.NewMessageEvent, m1.Event)
	req.Equal("alice", m1.Nickname)
	req.Equal("hello", m1.Text)
	req.Equal(text.CreatedAt, m1.Timestamp)

	m2 := events[2].(chattypes.MessageEvent)
	req.Equal(chattypes.NewEmojiEvent, m2.Event)
	req.Equal("👍", m2.Emoji)
	req.Equal(emoji.CreatedAt, m2.Timestamp)

	m3 := events[3].(chattypes.MessageEvent)
	req.Equal(chattypes.NewAttachmentEvent, m3.Event)
	req.Equal("cat.png", m3.Filename)
	req.Equal("/static/uploads/x.png", m3.FileURL)
	req.Equal(att.CreatedAt, m3.Timestamp)

	m4 := events[4].(chattypes.MessageEvent)
	req.Equal(chattypes.NewVoiceEvent, m4.Event)
	req.Equal("note.webm", m4.Filename)
	req.Equal("/static/uploads/v.webm", m4.FileURL)
	req.Equal(voice.CreatedAt, m4.Timestamp)
}

func TestReplayMatchesLiveShape(t *testing.T) {
	req := require.New(t)
	r, _, _, sender, _ := newTestRouter(t)

	s := &fakeSession{id: "c1"}
	join(t, r, s, "alice", "red")
	r.HandleEvent(s, chattypes.InboundEvent{Event: chattypes.TextEvent, Text: "hi"})
	live := sender.broadcasts[1].(chattypes.MessageEvent)

	r.HandleConnect(&fakeSession{id: "c2"})
	replayed := sender.directs["c2"][1].(chattypes.MessageEvent)

	// The replayed copy is the live event minus the unpersisted color.
	live.Color = ""
	req.Equal(live, replayed)
}

func TestHandleConnectEmptyStore(t *testing.T) {
	req := require.New(t)
	r, _, _, sender, _ := newTestRouter(t)

	r.HandleConnect(&fakeSession{id: "c1"})

	req.Len(sender.directs["c1"], 1)
	list := sender.directs["c1"][0].(chattypes.HistoryList)
	req.Empty(list.IDs)
}

func TestReplaySkipsEvictedRecords(t *testing.T) {
	req := require.New(t)
	r, store, _, sender, dir := newTestRouter(t)

	first, err := store.Append("alice", chattypes.TextMessageType, "first", "", "")
	req.NoError(err)
	gone, err := store.Append("bob", chattypes.TextMessageType, "gone", "", "")
	req.NoError(err)
	last, err := store.Append("carol", chattypes.TextMessageType, "last", "", "")
	req.NoError(err)

	// Simulate eviction between enumeration and read.
	req.NoError(os.Remove(filepath.Join(dir, gone.ID+".msg")))

	r.HandleConnect(&fakeSession{id: "c1"})

	events := sender.directs["c1"]
	req.Len(events, 3, "list plus the two surviving records")

	req.Equal(first.CreatedAt, events[1].(chattypes.MessageEvent).Timestamp)
	req.Equal(last.CreatedAt, events[2].(chattypes.MessageEvent).Timestamp)
	req.Equal("first", events[1].(chattypes.MessageEvent).Text)
	req.Equal("last", events[2].(chattypes.MessageEvent).Text)
}

func TestHistoryRequestReplaysToRequesterOnly(t *testing.T) {
	req := require.New(t)
	r, store, _, sender, _ := newTestRouter(t)

	rec, err := store.Append("alice", chattypes.TextMessageType, "hi again", "", "")
	req.NoError(err)

	r.HandleEvent(&fakeSession{id: "c9"}, chattypes.InboundEvent{Event: chattypes.HistoryRequestEvent, RecordID: rec.ID})

	req.Empty(sender.broadcasts)
	req.Len(sender.directs["c9"], 1)
	msg := sender.directs["c9"][0].(chattypes.MessageEvent)
	req.Equal(chattypes.NewMessageEvent, msg.Event)
	req.Equal("hi again", msg.Text)
	req.Equal(rec.CreatedAt, msg.Timestamp)
}

func TestHistoryRequestUnknownIDIsSilent(t *testing.T) {
	req := require.New(t)
	r, _, _, sender, _ := newTestRouter(t)

	r.HandleEvent(&fakeSession{id: "c9"}, chattypes.InboundEvent{Event: chattypes.HistoryRequestEvent, RecordID: "0000000000000_000001_deadbeef"})

	req.Empty(sender.broadcasts)
	req.Empty(sender.directs["c9"])
}

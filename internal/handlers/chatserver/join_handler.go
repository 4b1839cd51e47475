package chatserver

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Palette is the fixed set of display colors a participant may pick.
var Palette = []string{
	"red", "green", "blue", "yellow", "orange", "purple", "pink", "cyan", "magenta", "lime",
	"teal", "navy", "maroon", "olive", "silver", "gray", "black", "white", "brown", "coral",
}

var paletteSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Palette))
	for _, c := range Palette {
		set[c] = struct{}{}
	}
	return set
}()

// joinRequest carries the validated join parameters. Nickname length is
// checked once here; message events trust the admitted identity afterwards.
type joinRequest struct {
	Nickname string `json:"nickname" validate:"required,max=20"`
	Color    string `json:"color" validate:"required"`
}

// JoinHandler validates join parameters before any state change.
type JoinHandler struct {
	validate *validator.Validate
}

// NewJoinHandler creates a new JoinHandler instance.
func NewJoinHandler() *JoinHandler {
	return &JoinHandler{validate: validator.New()}
}

// JoinRoomHandler handles GET /join?nickname=...&color=... . It rejects bad
// input with a 400 before the client opens a websocket; duplicate-nickname
// enforcement happens later, at the websocket join event.
func (h *JoinHandler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	req := joinRequest{
		Nickname: strings.TrimSpace(r.URL.Query().Get("nickname")),
		Color:    strings.TrimSpace(r.URL.Query().Get("color")),
	}

	if err := h.validate.Struct(req); err != nil {
		if req.Nickname == "" {
			writeJSONError(w, "Nickname is required", http.StatusBadRequest)
			return
		}
		if len(req.Nickname) > 20 {
			writeJSONError(w, "Nickname too long (max 20 chars)", http.StatusBadRequest)
			return
		}
		writeJSONError(w, "Invalid join request", http.StatusBadRequest)
		return
	}
	if _, ok := paletteSet[req.Color]; !ok {
		writeJSONError(w, "Invalid color selection", http.StatusBadRequest)
		return
	}

	writeJSONResponse(w, http.StatusOK, req)
}

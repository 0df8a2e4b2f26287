package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/san-kum/mindwave/internal/chat"
	"github.com/san-kum/mindwave/internal/dashboard"
	"github.com/san-kum/mindwave/internal/games"
	"github.com/san-kum/mindwave/internal/storage"
)

var errBadRequest = errors.New("bad request")

type Handler struct {
	Chat   *chat.Service
	Games  *games.Service
	Hub    *Hub
	Logger *log.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, games.ErrInvalidMood),
		errors.Is(err, games.ErrInvalidGame),
		errors.Is(err, games.ErrInvalidDuration),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrSessionEnded):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	tr, err := h.Chat.Open(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if tr.Resumed {
		status = http.StatusOK
	}
	writeJSON(w, status, tr)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, reply, err := h.Chat.Post(r.Context(), userID(r), sessionID, req.Content)
	if user.ID != "" {
		h.publish(r, user)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(r, reply)
	writeJSON(w, http.StatusCreated, map[string]storage.Message{"message": user, "reply": reply})
}

func (h *Handler) publish(r *http.Request, m storage.Message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	h.Hub.Broadcast(r.Context(), m.SessionID, data)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Chat.Messages(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []storage.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Chat.End(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveGameSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameType        string `json:"game_type"`
		DurationSeconds int    `json:"duration_seconds"`
		PreGameMood     *int   `json:"pre_game_mood"`
		PostGameMood    *int   `json:"post_game_mood"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	game, err := games.ParseGameType(req.GameType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	g, err := h.Games.SaveGameSession(r.Context(), userID(r), game, req.DurationSeconds, req.PreGameMood, req.PostGameMood)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) ListGameSessions(w http.ResponseWriter, r *http.Request) {
	out, err := h.Games.UserGameSessions(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []storage.GameSession{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SaveMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MoodScore int    `json:"mood_score"`
		Notes     string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.Games.SaveMoodEntry(r.Context(), userID(r), req.MoodScore, req.Notes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(w, r, errors.Join(errBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		limit = n
	}
	out, err := h.Games.UserMoodEntries(r.Context(), userID(r), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if out == nil {
		out = []storage.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := dashboard.Load(r.Context(), h.Games, userID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS streams new messages of ?session_id= to the client. The session
// must belong to the caller.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		h.fail(w, r, errors.Join(errBadRequest, errors.New("session_id is required")))
		return
	}
	if _, err := h.Chat.Session(r.Context(), userID(r), sessionID); err != nil {
		h.fail(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := h.Hub.Register(sessionID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Hub.Unregister(client)
	conn.Close()
	<-done
}

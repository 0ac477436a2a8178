package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/stats-api/internal/app"
	"github.com/openmohaa/stats-api/internal/game"
)

func writeJSON(w http.ResponseWriter, v interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// mapSummary is one entry of GET /api/v1/maps.
type mapSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListMaps handles GET/HEAD /api/v1/maps.
//
// @Summary List maps
// @Description Returns every loaded map's id and name
// @Tags Maps
// @Produce json
// @Success 200 {array} mapSummary
// @Router /api/v1/maps [get]
func (h *Handler) ListMaps(w http.ResponseWriter, r *http.Request) {
	maps := h.app.Maps()
	out := make([]mapSummary, 0, len(maps))
	for _, m := range maps {
		out = append(out, mapSummary{ID: m.ID, Name: m.Name})
	}
	h.jsonResponse(w, http.StatusOK, out)
}

type roadJSON struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

type officeJSON struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type lootTypeJSON struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type mapDetail struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Roads     []roadJSON     `json:"roads"`
	Offices   []officeJSON   `json:"offices"`
	LootTypes []lootTypeJSON `json:"lootTypes"`
}

// GetMap handles GET/HEAD /api/v1/maps/{id}.
//
// @Summary Get one map
// @Tags Maps
// @Produce json
// @Param id path string true "Map id"
// @Success 200 {object} mapDetail
// @Failure 404 {object} map[string]string
// @Router /api/v1/maps/{id} [get]
func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := h.app.Map(id)
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "mapNotFound", "no such map")
		return
	}

	detail := mapDetail{ID: m.ID, Name: m.Name}
	for _, rd := range m.Roads {
		detail.Roads = append(detail.Roads, roadJSON{X0: rd.Start.X, Y0: rd.Start.Y, X1: rd.End.X, Y1: rd.End.Y})
	}
	for _, o := range m.Offices {
		detail.Offices = append(detail.Offices, officeJSON{ID: o.ID, X: o.Position.X, Y: o.Position.Y})
	}
	for _, lt := range m.LootTypes {
		detail.LootTypes = append(detail.LootTypes, lootTypeJSON{Name: lt.Name, Value: lt.Value})
	}
	h.jsonResponse(w, http.StatusOK, detail)
}

type joinRequest struct {
	UserName string `json:"userName" validate:"required"`
	MapID    string `json:"mapId" validate:"required"`
}

type joinResponse struct {
	AuthToken string `json:"authToken"`
	PlayerID  uint64 `json:"playerId"`
}

// JoinGame handles POST /api/v1/game/join.
//
// @Summary Join a map
// @Tags Game
// @Accept json
// @Produce json
// @Param body body joinRequest true "Join request"
// @Success 200 {object} joinResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/game/join [post]
func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token, dogID, err := h.app.JoinGame(r.Context(), req.MapID, req.UserName)
	if err != nil {
		if errors.Is(err, game.ErrMapNotFound) {
			h.errorResponse(w, http.StatusNotFound, "mapNotFound", "no such map")
			return
		}
		h.logger.Errorw("join failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "internal", "join failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, joinResponse{AuthToken: token, PlayerID: dogID})
}

type playerSummary struct {
	Name string `json:"name"`
}

// ListPlayers handles GET/HEAD /api/v1/game/players.
//
// @Summary List players in the caller's session
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]playerSummary
// @Failure 401 {object} map[string]string
// @Router /api/v1/game/players [get]
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	players, ok, err := h.app.PlayersVisibleTo(r.Context(), token)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, "internal", "lookup failed")
		return
	}
	if !ok {
		h.errorResponse(w, http.StatusUnauthorized, "unknownToken", "token not found")
		return
	}

	out := make(map[string]playerSummary, len(players))
	for _, p := range players {
		out[strconv.FormatUint(p.Dog.ID, 10)] = playerSummary{Name: p.Dog.Name}
	}
	h.jsonResponse(w, http.StatusOK, out)
}

type lootInBag struct {
	ID   uint64 `json:"id"`
	Type uint   `json:"type"`
}

type playerState struct {
	Pos   [2]float64  `json:"pos"`
	Speed [2]float64  `json:"speed"`
	Dir   string      `json:"dir"`
	Bag   []lootInBag `json:"bag"`
	Score uint64      `json:"score"`
}

type lostObject struct {
	Type uint       `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

type gameState struct {
	Players     map[string]playerState `json:"players"`
	LostObjects map[string]lostObject  `json:"lostObjects"`
}

// GameState handles GET/HEAD /api/v1/game/state.
//
// @Summary Get the caller's session state
// @Tags Game
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gameState
// @Failure 401 {object} map[string]string
// @Router /api/v1/game/state [get]
func (h *Handler) GameState(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	player, ok, err := h.app.FindPlayerByToken(r.Context(), token)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, "internal", "lookup failed")
		return
	}
	if !ok {
		h.errorResponse(w, http.StatusUnauthorized, "unknownToken", "token not found")
		return
	}

	players, _, err := h.app.PlayersVisibleTo(r.Context(), token)
	if err != nil {
		h.errorResponse(w, http.StatusInternalServerError, "internal", "lookup failed")
		return
	}

	state := gameState{
		Players:     make(map[string]playerState, len(players)),
		LostObjects: make(map[string]lostObject),
	}
	for _, p := range players {
		bag := make([]lootInBag, 0, len(p.Dog.Bag))
		for _, id := range p.Dog.Bag {
			item, ok := player.Session.LootStore().Get(id)
			if !ok {
				continue
			}
			bag = append(bag, lootInBag{ID: id, Type: item.Type})
		}
		state.Players[strconv.FormatUint(p.Dog.ID, 10)] = playerState{
			Pos:   [2]float64{p.Dog.Position.X, p.Dog.Position.Y},
			Speed: [2]float64{p.Dog.Speed.X, p.Dog.Speed.Y},
			Dir:   string(p.Dog.Direction),
			Bag:   bag,
			Score: p.Dog.Score,
		}
	}
	for _, id := range player.Session.LootStore().VisibleIDs() {
		item, ok := player.Session.LootStore().Get(id)
		if !ok {
			continue
		}
		state.LostObjects[strconv.FormatUint(id, 10)] = lostObject{
			Type: item.Type,
			Pos:  [2]float64{item.Position.X, item.Position.Y},
		}
	}

	h.jsonResponse(w, http.StatusOK, state)
}

type actionRequest struct {
	Move string `json:"move" validate:"omitempty,oneof=U D L R"`
}

// PlayerAction handles POST /api/v1/game/player/action.
//
// @Summary Move the caller's dog
// @Tags Game
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body actionRequest true "Move command"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/game/player/action [post]
func (h *Handler) PlayerAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	token := tokenFromContext(r.Context())
	ok, err := h.app.Move(r.Context(), token, app.Direction(req.Move))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "badRequest", err.Error())
		return
	}
	if !ok {
		h.errorResponse(w, http.StatusUnauthorized, "unknownToken", "token not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{})
}

type tickRequest struct {
	TimeDelta int64 `json:"timeDelta" validate:"gte=0"`
}

// Tick handles POST /api/v1/game/tick.
//
// @Summary Manually advance every session
// @Tags Game
// @Accept json
// @Produce json
// @Param body body tickRequest true "Tick request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/game/tick [post]
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.app.Tick(r.Context(), uint64(req.TimeDelta)); err != nil {
		if errors.Is(err, app.ErrAutoTicking) {
			h.errorResponse(w, http.StatusBadRequest, "badRequest", err.Error())
			return
		}
		h.logger.Errorw("manual tick failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "internal", "tick failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{})
}

type recordRow struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	PlayTimeMs int    `json:"playTime"`
}

// Records handles GET /api/v1/game/records.
//
// @Summary Leaderboard
// @Tags Game
// @Produce json
// @Param start query int false "Offset"
// @Param maxItems query int false "Limit" default(100)
// @Success 200 {array} recordRow
// @Failure 400 {object} map[string]string
// @Router /api/v1/game/records [get]
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	start := parseIntQuery(r, "start", 0)
	maxItems := parseIntQuery(r, "maxItems", 100)
	if maxItems > 100 {
		h.errorResponse(w, http.StatusBadRequest, "badRequest", "maxItems must not exceed 100")
		return
	}

	rows, err := h.app.Leaderboard(r.Context(), start, maxItems)
	if err != nil {
		h.logger.Errorw("leaderboard query failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "internal", "leaderboard unavailable")
		return
	}

	out := make([]recordRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordRow{Name: row.Name, Score: row.Score, PlayTimeMs: row.PlayTimeMs})
	}
	h.jsonResponse(w, http.StatusOK, out)
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// decodeAndValidate decodes a JSON body into dst and runs struct-tag
// validation, writing a 400 badRequest response and returning false on
// any failure (including an empty/non-JSON body).
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		h.errorResponse(w, http.StatusBadRequest, "badRequest", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "badRequest", "malformed request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "badRequest", err.Error())
		return false
	}
	return true
}

type contextKey string

const tokenContextKey contextKey = "bearerToken"

func tokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenContextKey).(string)
	return tok
}

// requireToken extracts and validates the bearer token's shape (32
// lowercase hex characters); unknown tokens are rejected downstream by
// the handler itself, once it has resolved which session (if any) the
// token belongs to.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			h.errorResponse(w, http.StatusUnauthorized, "invalidToken", "missing bearer token")
			return
		}
		token := strings.TrimPrefix(header, prefix)
		if !isHex32(token) {
			h.errorResponse(w, http.StatusUnauthorized, "invalidToken", "malformed bearer token")
			return
		}
		ctx := context.WithValue(r.Context(), tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isHex32(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

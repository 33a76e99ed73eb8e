package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

func (ctl *ChatWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsChatConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	if err := ctl.Orch.Join(ctx, sid, domain.RoomName(p.Room)); err != nil {
		ctl.sendError(conn, joinErrorReason(err))
	}
}

func joinErrorReason(err error) string {
	if errors.Is(err, domain.ErrMissingRoom) {
		return "missing_room"
	}
	return "join_failed"
}

func (ctl *ChatWSController) handleSend(
	ctx context.Context,
	sid core.SessionID,
	conn *WsChatConn,
	data []byte,
) {
	type sendPayload struct {
		Type    string `json:"type"`
		Room    string `json:"room"`
		Message string `json:"message"`
	}
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	if err := ctl.Orch.Send(ctx, sid, domain.RoomName(p.Room), p.Message); err != nil {
		ctl.sendError(conn, sendErrorReason(err))
	}
}

func sendErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyBody):
		return "empty_message"
	case errors.Is(err, domain.ErrMissingRoom):
		return "missing_room"
	default:
		return "not_delivered"
	}
}

func (ctl *ChatWSController) handleTyping(
	sid core.SessionID,
	conn *WsChatConn,
	data []byte,
) {
	type typingPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	// Throttled; an over-limit typing signal is silently dropped, it
	// is best-effort anyway.
	if !ctl.Typing.Allow(sid) {
		return
	}
	if err := ctl.Orch.Typing(sid, domain.RoomName(p.Room)); err != nil {
		switch {
		case errors.Is(err, app.ErrNotInRoom):
			ctl.sendError(conn, "not_in_room")
		case errors.Is(err, domain.ErrMissingRoom):
			ctl.sendError(conn, "missing_room")
		default:
			ctl.sendError(conn, "typing_failed")
		}
	}
}

// handleLeave releases one room's membership; the connection stays up.
func (ctl *ChatWSController) handleLeave(
	sid core.SessionID,
	conn *WsChatConn,
	data []byte,
) {
	type leavePayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("leave")
	ctl.Orch.Leave(sid, domain.RoomName(p.Room))
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
		"room": p.Room,
	})
}

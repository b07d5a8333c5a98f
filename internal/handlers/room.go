package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/valleteclab/portaldcp-sub004/internal/engine"
	"github.com/valleteclab/portaldcp-sub004/internal/ws"
)

type RoomHandler struct {
	store      *engine.Store
	bufferSize int
}

func NewRoomHandler(store *engine.Store, bufferSize int) *RoomHandler {
	return &RoomHandler{store: store, bufferSize: bufferSize}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type submitBidRequest struct {
	ItemID string          `json:"item_id"`
	Value  decimal.Decimal `json:"value"`
}

type cancelBidRequest struct {
	BidID  string `json:"bid_id"`
	Reason string `json:"reason"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type itemRequest struct {
	ItemID string `json:"item_id"`
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

// HandleRoomWebSocket godoc
// @Summary      Join a tender's live dispute room
// @Description  Connecting subscribes the participant to the room: the first frame is a full snapshot, followed by deltas. Inbound frames carry bids, chat and auctioneer control actions.
// @Tags         dispute
// @Param        tenderId path string true "Tender ID"
// @Param        token query string true "Room token"
// @Router       /ws/rooms/{tenderId} [get]
func (h *RoomHandler) HandleRoomWebSocket(c *gin.Context) {
	p := participantFrom(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "room token required"})
		return
	}

	tenderID := c.Param("tenderId")
	sess, err := h.store.GetOrCreate(tenderID)
	if err != nil {
		c.JSON(statusForKind(engine.KindOf(err)), ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, h.bufferSize)
	go client.WritePump()

	if err := sess.Join(*p, client); err != nil {
		client.Send(ws.WSMessage{Type: engine.EventError, Data: engine.BidError{
			Kind: string(engine.KindOf(err)), Message: err.Error(),
		}})
		client.Close()
		return
	}
	defer sess.Leave(p.ID, client)

	clientIP := c.ClientIP()
	for {
		var ev inboundEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		h.dispatch(sess, *p, client, clientIP, ev)
	}
}

func (h *RoomHandler) dispatch(sess *engine.Session, p engine.ParticipantInfo, client *ws.Client, clientIP string, ev inboundEvent) {
	switch ev.Type {
	case "submit_bid":
		var req submitBidRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventBidError, engine.KindValidation, "malformed bid payload")
			return
		}
		view, err := sess.SubmitBid(p, req.ItemID, req.Value, clientIP)
		if err != nil {
			sendError(client, engine.EventBidError, engine.KindOf(err), err.Error())
			return
		}
		client.Send(ws.WSMessage{Type: "bid_accepted", Data: view})

	case "chat_message":
		var req chatRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventError, engine.KindValidation, "malformed chat payload")
			return
		}
		if err := sess.Chat(p, req.Text); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "cancel_bid":
		var req cancelBidRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventError, engine.KindValidation, "malformed cancel payload")
			return
		}
		if err := sess.CancelBid(p, req.BidID, req.Reason); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "select_item":
		var req itemRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventError, engine.KindValidation, "malformed item payload")
			return
		}
		if err := sess.SelectItem(p, req.ItemID); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "close_item":
		var req itemRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventError, engine.KindValidation, "malformed item payload")
			return
		}
		if err := sess.CloseItem(p, req.ItemID); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "start_session":
		if err := sess.Start(p); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "suspend_session":
		var req suspendRequest
		if err := json.Unmarshal(ev.Data, &req); err != nil {
			sendError(client, engine.EventError, engine.KindValidation, "malformed suspend payload")
			return
		}
		if err := sess.Suspend(p, req.Reason); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	case "resume_session":
		if err := sess.Resume(p); err != nil {
			sendError(client, engine.EventError, engine.KindOf(err), err.Error())
		}

	default:
		sendError(client, engine.EventError, engine.KindValidation, "unknown event type: "+ev.Type)
	}
}

func sendError(client *ws.Client, eventType string, kind engine.Kind, message string) {
	client.Send(ws.WSMessage{Type: eventType, Data: engine.BidError{
		Kind:    string(kind),
		Message: message,
	}})
}

func statusForKind(kind engine.Kind) int {
	switch kind {
	case engine.KindValidation, engine.KindRanking:
		return http.StatusBadRequest
	case engine.KindAuthorization:
		return http.StatusForbidden
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindConflict, engine.KindPhase:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/gamesvc/service"
	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth     *jwtauth.JWTAuth
	RoomService   *service.RoomService
	PlayerService *service.PlayerService
	Metrics       *monitor.Metrics
	Port          string
}

func NewHandler(roomService *service.RoomService, playerService *service.PlayerService, metrics *monitor.Metrics) *Handler {
	return &Handler{
		RoomService:   roomService,
		PlayerService: playerService,
		Metrics:       metrics,
	}
}

type Response struct {
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Data    interface{}    `json:"data"`
	Error   *onecard.Error `json:"error,omitempty"`
}

var errorStatus = map[string]int{
	onecard.ErrRoomNotFound.Code:       http.StatusNotFound,
	onecard.ErrRoomFull.Code:           http.StatusBadRequest,
	onecard.ErrNotEnoughPlayers.Code:   http.StatusBadRequest,
	onecard.ErrRoomAlreadyPlaying.Code: http.StatusConflict,
	onecard.ErrPlayerNotFound.Code:     http.StatusNotFound,
	onecard.ErrPlayerIDDuplicated.Code: http.StatusConflict,
	onecard.ErrBadRequest.Code:         http.StatusBadRequest,
}

// StatusOf maps a coded error to its HTTP status. Uncoded errors are 500.
func StatusOf(e *onecard.Error) int {
	if status, ok := errorStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, op string, start time.Time, err error) {
	e := onecard.Classify(err)
	if e == onecard.ErrInternal {
		log.Errorf("Error [%s %s] %s", r.Method, r.URL.Path, err)
	}
	h.Metrics.ObserveRequest(op, e.Code, time.Since(start))
	h.CreateResponse(w, Response{
		Message: e.Message,
		Code:    StatusOf(e),
		Error:   e,
	})
}

func (h *Handler) okResponse(w http.ResponseWriter, op string, start time.Time, code int, data interface{}) {
	h.Metrics.ObserveRequest(op, "", time.Since(start))
	h.CreateResponse(w, Response{
		Message: "ok",
		Code:    code,
		Data:    data,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return onecard.ErrBadRequest
	}
	return nil
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := comm.CreateRoomRequest{}
	if err := decodeBody(r, &req); err != nil {
		h.errorResponse(w, r, comm.TypeCreateRoom, start, err)
		return
	}
	if req.AdminID == "" {
		h.errorResponse(w, r, comm.TypeCreateRoom, start, onecard.ErrBadRequest)
		return
	}

	room, err := h.RoomService.CreateRoom(r.Context(), req.Name, req.AdminID)
	if err != nil {
		h.errorResponse(w, r, comm.TypeCreateRoom, start, err)
		return
	}
	h.okResponse(w, comm.TypeCreateRoom, start, http.StatusCreated, comm.NewRoomResponse(room))
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	room, err := h.RoomService.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, r, comm.TypeGetRoom, start, err)
		return
	}
	h.okResponse(w, comm.TypeGetRoom, start, http.StatusOK, comm.NewRoomInfo(room))
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	room, err := h.RoomService.DeleteRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, r, comm.TypeDeleteRoom, start, err)
		return
	}
	h.okResponse(w, comm.TypeDeleteRoom, start, http.StatusOK, comm.NewRoomResponse(room))
}

func (h *Handler) ResetGame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	room, err := h.RoomService.ResetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, r, comm.TypeResetGame, start, err)
		return
	}
	h.okResponse(w, comm.TypeResetGame, start, http.StatusOK, comm.NewRoomResponse(room))
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := comm.CreatePlayerRequest{}
	if err := decodeBody(r, &req); err != nil {
		h.errorResponse(w, r, comm.TypeCreatePlayer, start, err)
		return
	}
	if req.ID == "" {
		h.errorResponse(w, r, comm.TypeCreatePlayer, start, onecard.ErrBadRequest)
		return
	}

	p, err := h.PlayerService.CreatePlayer(r.Context(), req.ID)
	if err != nil {
		h.errorResponse(w, r, comm.TypeCreatePlayer, start, err)
		return
	}
	h.okResponse(w, comm.TypeCreatePlayer, start, http.StatusCreated, comm.PlayerResponse{ID: p.ID})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + h.Port,
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

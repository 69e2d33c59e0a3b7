package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/onecard-services/internal/gamesvc/service"
	"github.com/avvvet/onecard-services/internal/gamesvc/store"
	"github.com/avvvet/onecard-services/internal/monitor"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *onecard.Error  `json:"error"`
}

func newServer(t *testing.T) (*Handler, *service.RoomService, http.Handler) {
	t.Helper()
	rooms := service.NewRoomService(store.NewMemoryRoomStore())
	players := service.NewPlayerService(store.NewMemoryPlayerStore())
	h := NewHandler(rooms, players, monitor.NewMetrics("test"))
	h.Port = "8080"
	h.InitAuth("secret")

	r := chi.NewRouter()
	h.SetRoutes(r)
	return h, rooms, r
}

func do(t *testing.T, srv http.Handler, method, path, body string) (int, testResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var rsp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp), rec.Body.String())
	return rec.Code, rsp
}

func TestCreateAndGetRoom(t *testing.T) {
	_, _, srv := newServer(t)

	status, rsp := do(t, srv, http.MethodPost, "/v1/one-card/rooms", `{"name":"table","adminId":"alice"}`)
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &created))
	assert.Equal(t, "table", created.Name)
	require.NotEmpty(t, created.ID)

	status, rsp = do(t, srv, http.MethodGet, "/v1/one-card/rooms/"+created.ID, "")
	require.Equal(t, http.StatusOK, status)
	var info struct {
		PlayerIDs []string `json:"playerIds"`
	}
	require.NoError(t, json.Unmarshal(rsp.Data, &info))
	assert.Equal(t, []string{"alice"}, info.PlayerIDs)
}

func TestErrorStatuses(t *testing.T) {
	_, _, srv := newServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing room", http.MethodGet, "/v1/one-card/rooms/nope", "", http.StatusNotFound, "R001"},
		{"delete missing room", http.MethodDelete, "/v1/one-card/rooms/nope", "", http.StatusNotFound, "R001"},
		{"reset missing room", http.MethodPost, "/v1/one-card/rooms/nope/reset", "", http.StatusNotFound, "R001"},
		{"malformed body", http.MethodPost, "/v1/one-card/rooms", `{`, http.StatusBadRequest, "C001"},
		{"missing admin", http.MethodPost, "/v1/one-card/rooms", `{"name":"x"}`, http.StatusBadRequest, "C001"},
		{"missing player id", http.MethodPost, "/v1/players", `{}`, http.StatusBadRequest, "C001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, rsp := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			require.NotNil(t, rsp.Error)
			assert.Equal(t, tc.code, rsp.Error.Code)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(onecard.ErrRoomNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusOf(onecard.ErrRoomFull))
	assert.Equal(t, http.StatusBadRequest, StatusOf(onecard.ErrNotEnoughPlayers))
	assert.Equal(t, http.StatusConflict, StatusOf(onecard.ErrRoomAlreadyPlaying))
	assert.Equal(t, http.StatusNotFound, StatusOf(onecard.ErrPlayerNotFound))
	assert.Equal(t, http.StatusConflict, StatusOf(onecard.ErrPlayerIDDuplicated))
	assert.Equal(t, http.StatusBadRequest, StatusOf(onecard.ErrBadRequest))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(onecard.ErrInternal))
}

func TestResetAndDeleteRoom(t *testing.T) {
	_, rooms, srv := newServer(t)
	ctx := context.Background()

	room, err := rooms.CreateRoom(ctx, "table", "alice")
	require.NoError(t, err)
	_, err = rooms.JoinRoom(ctx, room.ID, "bob")
	require.NoError(t, err)
	_, _, err = rooms.StartGame(ctx, room.ID)
	require.NoError(t, err)

	status, _ := do(t, srv, http.MethodPost, "/v1/one-card/rooms/"+room.ID+"/reset", "")
	require.Equal(t, http.StatusOK, status)
	got, err := rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.Playing)

	status, _ = do(t, srv, http.MethodDelete, "/v1/one-card/rooms/"+room.ID, "")
	require.Equal(t, http.StatusOK, status)
	_, err = rooms.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, onecard.ErrRoomNotFound)
}

func TestCreatePlayer(t *testing.T) {
	_, _, srv := newServer(t)

	status, _ := do(t, srv, http.MethodPost, "/v1/players", `{"id":"alice"}`)
	assert.Equal(t, http.StatusCreated, status)

	status, rsp := do(t, srv, http.MethodPost, "/v1/players", `{"id":"alice"}`)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, rsp.Error)
	assert.Equal(t, "P002", rsp.Error.Code)
}

func TestHealthRequiresToken(t *testing.T) {
	h, _, srv := newServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, token, err := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": "test",
		"exp":        time.Now().Add(time.Minute).Unix(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "8080")
}

func TestMetricsRoute(t *testing.T) {
	_, _, srv := newServer(t)
	do(t, srv, http.MethodGet, "/v1/one-card/rooms/nope", "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `onecard_requests_total{code="R001",service="test",type="get-room"} 1`)
}

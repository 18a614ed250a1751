package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/foundermafstat/mafstat-server/realtime"
	"github.com/foundermafstat/mafstat-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true // Для разработки разрешаем все
	},
}

type WebSocketHandler struct {
	hub           *realtime.Hub
	ratingService services.RatingService
	logger        *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, rs services.RatingService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		ratingService: rs,
		logger:        logger,
	}
}

// ServeWs подключает клиента к комнате рейтинга.
// Клиент подключается к /ws/ratings/{ratingID} и получает
// RATING_RESULTS_UPDATED после каждого закоммиченного пересчёта.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	ratingIDStr := chi.URLParam(r, "ratingID")
	ratingID, err := strconv.Atoi(ratingIDStr)
	if err != nil || ratingID <= 0 {
		http.Error(w, "Invalid ratingID", http.StatusBadRequest)
		return
	}

	// Проверяем, что рейтинг существует, прежде чем открывать комнату.
	if _, err := h.ratingService.GetRatingDetails(r.Context(), ratingID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.Int("rating_id", ratingID), slog.Any("error", err))
		return
	}

	h.hub.NewClient(conn, realtime.RatingRoom(ratingID))
}

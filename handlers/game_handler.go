package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
	"github.com/foundermafstat/mafstat-server/services"
)

type GameHandler struct {
	gameService services.GameService
}

func NewGameHandler(gs services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gs,
	}
}

// CreateHandler godoc
// @Summary Создать игру с рассадкой
// @Tags games
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{} "Игра создана"
// @Failure 400 {object} map[string]string "Ошибка валидации рассадки"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /games [post]
func (h *GameHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to create game")
		return
	}

	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary Игра с участниками
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{} "Игра"
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Router /games/{gameID} [get]
func (h *GameHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGameByID(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler godoc
// @Summary Список игр
// @Tags games
// @Produce json
// @Param club_id query int false "Фильтр по клубу"
// @Param federation_id query int false "Фильтр по федерации"
// @Param finished query bool false "Только завершённые / только идущие"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{} "Список игр"
// @Router /games [get]
func (h *GameHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListGamesFilter
	query := r.URL.Query()

	if clubIDStr := query.Get("club_id"); clubIDStr != "" {
		if id, err := strconv.Atoi(clubIDStr); err == nil && id > 0 {
			filter.ClubID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid club_id query parameter"))
			return
		}
	}
	if fedIDStr := query.Get("federation_id"); fedIDStr != "" {
		if id, err := strconv.Atoi(fedIDStr); err == nil && id > 0 {
			filter.FederationID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid federation_id query parameter"))
			return
		}
	}
	if finishedStr := query.Get("finished"); finishedStr != "" {
		finished, err := strconv.ParseBool(finishedStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid finished query parameter"))
			return
		}
		filter.Finished = &finished
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	} else {
		filter.Limit = 20
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	games, err := h.gameService.ListGames(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type setResultRequest struct {
	Outcome *models.GameOutcome `json:"outcome"`
}

// SetResultHandler godoc
// @Summary Выставить или сбросить исход игры
// @Tags games
// @Description null в outcome возвращает игру в состояние "идёт". Все рейтинги, куда входит игра, пересчитываются.
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{} "Обновлённая игра"
// @Failure 400 {object} map[string]string "Некорректный исход"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Security BearerAuth
// @Router /games/{gameID}/result [patch]
func (h *GameHandler) SetResultHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var req setResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.SetResult(r.Context(), gameID, req.Outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler godoc
// @Summary Удалить игру
// @Tags games
// @Description Игра пропадает из всех рейтингов, затронутые рейтинги пересчитываются.
// @Param gameID path int true "Game ID"
// @Success 204 "Игра удалена"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Security BearerAuth
// @Router /games/{gameID} [delete]
func (h *GameHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.gameService.DeleteGame(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

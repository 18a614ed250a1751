package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/repositories"
	"github.com/foundermafstat/mafstat-server/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(rs services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: rs,
	}
}

// CreateHandler godoc
// @Summary Создать рейтинг
// @Tags ratings
// @Description Текущий пользователь становится владельцем рейтинга.
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{} "Рейтинг создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 409 {object} map[string]string "Имя рейтинга уже занято"
// @Security BearerAuth
// @Router /ratings [post]
func (h *RatingHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create rating")
		return
	}

	var input services.CreateRatingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rating, err := h.ratingService.CreateRating(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rating": rating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary Рейтинг с играми и результатами
// @Tags ratings
// @Description Возвращает рейтинг, его игры и текущий снимок результатов (points DESC). Чтение не запускает пересчёт.
// @Produce json
// @Param ratingID path int true "Rating ID"
// @Success 200 {object} map[string]interface{} "Рейтинг, игры, результаты"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Рейтинг не найден"
// @Router /ratings/{ratingID} [get]
func (h *RatingHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.ratingService.GetRatingDetails(r.Context(), ratingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"rating":  details.Rating,
		"games":   details.Games,
		"results": details.Results,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler godoc
// @Summary Список рейтингов
// @Tags ratings
// @Produce json
// @Param owner_id query int false "Фильтр по владельцу"
// @Param club_id query int false "Фильтр по клубу"
// @Param is_active query bool false "Только активные/неактивные"
// @Param limit query int false "Лимит (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{} "Список рейтингов"
// @Router /ratings [get]
func (h *RatingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListRatingsFilter
	query := r.URL.Query()

	if ownerIDStr := query.Get("owner_id"); ownerIDStr != "" {
		if id, err := strconv.Atoi(ownerIDStr); err == nil && id > 0 {
			filter.OwnerID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid owner_id query parameter"))
			return
		}
	}
	if clubIDStr := query.Get("club_id"); clubIDStr != "" {
		if id, err := strconv.Atoi(clubIDStr); err == nil && id > 0 {
			filter.ClubID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid club_id query parameter"))
			return
		}
	}
	if activeStr := query.Get("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid is_active query parameter"))
			return
		}
		filter.IsActive = &active
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	} else {
		filter.Limit = 20 // Значение по умолчанию
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	ratings, err := h.ratingService.ListRatings(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ratings": ratings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler godoc
// @Summary Обновить рейтинг
// @Tags ratings
// @Accept json
// @Produce json
// @Param ratingID path int true "Rating ID"
// @Success 200 {object} map[string]interface{} "Обновлённый рейтинг"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 403 {object} map[string]string "Не владелец рейтинга"
// @Failure 404 {object} map[string]string "Рейтинг не найден"
// @Security BearerAuth
// @Router /ratings/{ratingID} [put]
func (h *RatingHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.UpdateRatingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rating, err := h.ratingService.UpdateRating(r.Context(), ratingID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating": rating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler godoc
// @Summary Удалить рейтинг
// @Tags ratings
// @Param ratingID path int true "Rating ID"
// @Success 204 "Рейтинг удалён"
// @Failure 403 {object} map[string]string "Не владелец рейтинга"
// @Failure 404 {object} map[string]string "Рейтинг не найден"
// @Security BearerAuth
// @Router /ratings/{ratingID} [delete]
func (h *RatingHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.ratingService.DeleteRating(r.Context(), ratingID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addGamesRequest struct {
	GameID  *int  `json:"game_id"`
	GameIDs []int `json:"game_ids"`
}

// ids собирает итоговый список: одиночный game_id идёт первым,
// затем game_ids в порядке запроса.
func (req addGamesRequest) ids() []int {
	if req.GameID == nil {
		return req.GameIDs
	}
	return append([]int{*req.GameID}, req.GameIDs...)
}

// AddGamesHandler godoc
// @Summary Добавить игры в рейтинг
// @Tags ratings
// @Description Батч с частичным успехом: валидные игры добавляются, остальные попадают в skipped с причиной. После хотя бы одного добавления запускается пересчёт.
// @Accept json
// @Produce json
// @Param ratingID path int true "Rating ID"
// @Success 201 {object} map[string]interface{} "added и skipped"
// @Failure 400 {object} map[string]string "Некорректное тело запроса"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не владелец рейтинга"
// @Failure 404 {object} map[string]string "Рейтинг не найден"
// @Security BearerAuth
// @Router /ratings/{ratingID}/games [post]
func (h *RatingHandler) AddGamesHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var req addGamesRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameIDs := req.ids()
	if gameIDs == nil {
		badRequestResponse(w, r, errors.New("game_id or game_ids is required"))
		return
	}

	result, err := h.ratingService.AddGames(r.Context(), ratingID, gameIDs, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"added":   result.Added,
		"skipped": result.Skipped,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveGameHandler godoc
// @Summary Убрать игру из рейтинга
// @Tags ratings
// @Description Идемпотентно: удаление не состоящей в рейтинге игры тоже отвечает 200. Пересчёт запускается в любом случае.
// @Produce json
// @Param ratingID path int true "Rating ID"
// @Param game_id query int true "Game ID"
// @Success 200 {object} map[string]string "Игра убрана"
// @Failure 400 {object} map[string]string "Некорректный game_id"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Не владелец рейтинга"
// @Failure 404 {object} map[string]string "Рейтинг не найден"
// @Security BearerAuth
// @Router /ratings/{ratingID}/games [delete]
func (h *RatingHandler) RemoveGameHandler(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	gameIDStr := r.URL.Query().Get("game_id")
	if gameIDStr == "" {
		badRequestResponse(w, r, errors.New("game_id query parameter is required"))
		return
	}
	gameID, err := strconv.Atoi(gameIDStr)
	if err != nil || gameID <= 0 {
		badRequestResponse(w, r, errors.New("game_id must be a positive integer"))
		return
	}

	if err := h.ratingService.RemoveGame(r.Context(), ratingID, gameID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "game removed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{
		clubService: cs,
	}
}

func (h *ClubHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create club")
		return
	}

	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.CreateClub(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetClubByID(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	query := r.URL.Query()

	if limitStr := query.Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
			offset = v
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	clubs, err := h.clubService.ListClubs(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.UpdateClub(r.Context(), clubID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.clubService.DeleteClub(r.Context(), clubID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadLogoHandler godoc
// @Summary Загрузить логотип клуба
// @Tags clubs
// @Accept multipart/form-data
// @Produce json
// @Param clubID path int true "Club ID"
// @Param logo formData file true "Файл логотипа (png/jpeg/webp)"
// @Success 200 {object} map[string]interface{} "Клуб с обновлённым логотипом"
// @Failure 400 {object} map[string]string "Неподдерживаемый тип файла"
// @Failure 403 {object} map[string]string "Не владелец клуба"
// @Security BearerAuth
// @Router /clubs/{clubID}/logo [post]
func (h *ClubHandler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo") // "logo" - имя поля в форме
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	club, err := h.clubService.UploadLogo(r.Context(), clubID, currentUserID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"net/http"

	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/services"
)

type FederationHandler struct {
	federationService services.FederationService
}

func NewFederationHandler(fs services.FederationService) *FederationHandler {
	return &FederationHandler{
		federationService: fs,
	}
}

func (h *FederationHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to create federation")
		return
	}

	var input services.FederationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	federation, err := h.federationService.CreateFederation(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"federation": federation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FederationHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	federationID, err := getIDFromURL(r, "federationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	federation, err := h.federationService.GetFederationByID(r.Context(), federationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"federation": federation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FederationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	federations, err := h.federationService.ListFederations(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"federations": federations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FederationHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	federationID, err := getIDFromURL(r, "federationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.FederationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	federation, err := h.federationService.UpdateFederation(r.Context(), federationID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"federation": federation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FederationHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	federationID, err := getIDFromURL(r, "federationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.federationService.DeleteFederation(r.Context(), federationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundermafstat/mafstat-server/middleware"
	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
	"github.com/foundermafstat/mafstat-server/services"
)

// stubRatingService подменяет сервис на уровне интерфейса: каждый тест
// задаёт только нужные ему функции.
type stubRatingService struct {
	addGamesFn   func(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error)
	removeGameFn func(ctx context.Context, ratingID, gameID, currentUserID int) error
	detailsFn    func(ctx context.Context, ratingID int) (*services.RatingDetails, error)
}

func (s *stubRatingService) CreateRating(ctx context.Context, input services.CreateRatingInput, currentUserID int) (*models.Rating, error) {
	return nil, nil
}

func (s *stubRatingService) GetRatingDetails(ctx context.Context, ratingID int) (*services.RatingDetails, error) {
	return s.detailsFn(ctx, ratingID)
}

func (s *stubRatingService) ListRatings(ctx context.Context, filter repositories.ListRatingsFilter) ([]models.Rating, error) {
	return nil, nil
}

func (s *stubRatingService) UpdateRating(ctx context.Context, ratingID int, input services.UpdateRatingInput, currentUserID int) (*models.Rating, error) {
	return nil, nil
}

func (s *stubRatingService) DeleteRating(ctx context.Context, ratingID, currentUserID int) error {
	return nil
}

func (s *stubRatingService) AddGames(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error) {
	return s.addGamesFn(ctx, ratingID, gameIDs, currentUserID)
}

func (s *stubRatingService) RemoveGame(ctx context.Context, ratingID, gameID, currentUserID int) error {
	return s.removeGameFn(ctx, ratingID, gameID, currentUserID)
}

func (s *stubRatingService) Recompute(ctx context.Context, ratingID int) error {
	return nil
}

func newRatingRouter(svc services.RatingService) *chi.Mux {
	h := NewRatingHandler(svc)
	r := chi.NewRouter()
	r.Get("/ratings/{ratingID}", h.GetByIDHandler)
	r.Post("/ratings/{ratingID}/games", h.AddGamesHandler)
	r.Delete("/ratings/{ratingID}/games", h.RemoveGameHandler)
	return r
}

func authed(req *http.Request, userID int) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func TestAddGamesHandler(t *testing.T) {
	t.Run("201 with added and skipped", func(t *testing.T) {
		svc := &stubRatingService{
			addGamesFn: func(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error) {
				assert.Equal(t, 5, ratingID)
				assert.Equal(t, []int{1, 2, 0}, gameIDs)
				assert.Equal(t, 10, currentUserID)
				return &services.AddGamesResult{
					Added:   []int{1, 2},
					Skipped: []services.SkippedGame{{GameID: 0, Reason: services.SkipReasonInvalidID}},
				}, nil
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{"game_ids":[1,2,0]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		require.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			Added   []int `json:"added"`
			Skipped []struct {
				ID     int    `json:"id"`
				Reason string `json:"reason"`
			} `json:"skipped"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []int{1, 2}, body.Added)
		require.Len(t, body.Skipped, 1)
		assert.Equal(t, "invalid_id", body.Skipped[0].Reason)
	})

	t.Run("201 with single game_id", func(t *testing.T) {
		svc := &stubRatingService{
			addGamesFn: func(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error) {
				assert.Equal(t, []int{42}, gameIDs)
				return &services.AddGamesResult{Added: []int{42}, Skipped: []services.SkippedGame{}}, nil
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{"game_id":42}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("400 on malformed body", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{"game_ids":`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("400 on missing game_ids", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("401 without token", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{"game_ids":[1]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("403 for non-owner", func(t *testing.T) {
		svc := &stubRatingService{
			addGamesFn: func(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error) {
				return nil, services.ErrForbiddenOperation
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/ratings/5/games", strings.NewReader(`{"game_ids":[1]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 99))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("404 for unknown rating", func(t *testing.T) {
		svc := &stubRatingService{
			addGamesFn: func(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*services.AddGamesResult, error) {
				return nil, services.ErrRatingNotFound
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/ratings/404/games", strings.NewReader(`{"game_ids":[1]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRemoveGameHandler(t *testing.T) {
	t.Run("200 on success", func(t *testing.T) {
		called := false
		svc := &stubRatingService{
			removeGameFn: func(ctx context.Context, ratingID, gameID, currentUserID int) error {
				called = true
				assert.Equal(t, 5, ratingID)
				assert.Equal(t, 42, gameID)
				return nil
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/ratings/5/games?game_id=42", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("400 without game_id", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodDelete, "/ratings/5/games", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("400 on non-numeric game_id", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodDelete, "/ratings/5/games?game_id=abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 10))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("403 for non-owner", func(t *testing.T) {
		svc := &stubRatingService{
			removeGameFn: func(ctx context.Context, ratingID, gameID, currentUserID int) error {
				return services.ErrForbiddenOperation
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/ratings/5/games?game_id=1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(req, 99))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetRatingHandler(t *testing.T) {
	t.Run("200 with rating games and results", func(t *testing.T) {
		svc := &stubRatingService{
			detailsFn: func(ctx context.Context, ratingID int) (*services.RatingDetails, error) {
				return &services.RatingDetails{
					Rating:  &models.Rating{ID: ratingID, Name: "season"},
					Games:   []models.Game{{ID: 1}},
					Results: []*models.RatingResult{{RatingID: ratingID, PlayerID: 7}},
				}, nil
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/ratings/5", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"season"`)
		assert.Contains(t, rec.Body.String(), `"results"`)
	})

	t.Run("404 for unknown rating", func(t *testing.T) {
		svc := &stubRatingService{
			detailsFn: func(ctx context.Context, ratingID int) (*services.RatingDetails, error) {
				return nil, services.ErrRatingNotFound
			},
		}
		router := newRatingRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/ratings/404", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("400 on bad id", func(t *testing.T) {
		router := newRatingRouter(&stubRatingService{})

		req := httptest.NewRequest(http.MethodGet, "/ratings/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

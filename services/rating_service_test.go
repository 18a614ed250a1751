package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
)

// --- Фейковые репозитории поверх памяти ---

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[int]models.Rating
}

func newFakeRatingRepo(ratings ...models.Rating) *fakeRatingRepo {
	r := &fakeRatingRepo{ratings: make(map[int]models.Rating)}
	for _, rating := range ratings {
		r.ratings[rating.ID] = rating
	}
	return r
}

func (r *fakeRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating.ID = len(r.ratings) + 1
	r.ratings[rating.ID] = *rating
	return nil
}

func (r *fakeRatingRepo) GetByID(ctx context.Context, id int) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.ratings[id]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	return &rating, nil
}

func (r *fakeRatingRepo) List(ctx context.Context, filter repositories.ListRatingsFilter) ([]models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Rating, 0, len(r.ratings))
	for _, rating := range r.ratings {
		out = append(out, rating)
	}
	return out, nil
}

func (r *fakeRatingRepo) Update(ctx context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[rating.ID]; !ok {
		return repositories.ErrRatingNotFound
	}
	r.ratings[rating.ID] = *rating
	return nil
}

func (r *fakeRatingRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ratings[id]; !ok {
		return repositories.ErrRatingNotFound
	}
	delete(r.ratings, id)
	return nil
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[int][]int // ratingID -> gameIDs в порядке добавления
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[int][]int)}
}

func (r *fakeMemberRepo) Add(ctx context.Context, member *models.RatingMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[member.RatingID] {
		if id == member.GameID {
			return repositories.ErrRatingMemberExists
		}
	}
	r.members[member.RatingID] = append(r.members[member.RatingID], member.GameID)
	return nil
}

func (r *fakeMemberRepo) Exists(ctx context.Context, ratingID, gameID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.members[ratingID] {
		if id == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMemberRepo) Remove(ctx context.Context, ratingID, gameID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.members[ratingID]
	for i, id := range ids {
		if id == gameID {
			r.members[ratingID] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMemberRepo) ListGameIDs(ctx context.Context, ratingID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.members[ratingID]))
	copy(out, r.members[ratingID])
	return out, nil
}

func (r *fakeMemberRepo) ListRatingIDsByGame(ctx context.Context, gameID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for ratingID, ids := range r.members {
		for _, id := range ids {
			if id == gameID {
				out = append(out, ratingID)
				break
			}
		}
	}
	sort.Ints(out)
	return out, nil
}

type fakeResultRepo struct {
	mu        sync.Mutex
	snapshots map[int][]*models.RatingResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{snapshots: make(map[int][]*models.RatingResult)}
}

func (r *fakeResultRepo) DeleteByRatingID(ctx context.Context, exec repositories.SQLExecutor, ratingID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, ratingID)
	return nil
}

func (r *fakeResultRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, results []*models.RatingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		cp := *res
		r.snapshots[res.RatingID] = append(r.snapshots[res.RatingID], &cp)
	}
	return nil
}

func (r *fakeResultRepo) ListByRating(ctx context.Context, ratingID int) ([]*models.RatingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.RatingResult, 0, len(r.snapshots[ratingID]))
	for _, res := range r.snapshots[ratingID] {
		cp := *res
		out = append(out, &cp)
	}
	// Тот же порядок, что и в SQL: points DESC, player_id ASC.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Points.Equal(out[j].Points) {
			return out[i].Points.GreaterThan(out[j].Points)
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[int]models.Game
}

func newFakeGameRepo(games ...models.Game) *fakeGameRepo {
	r := &fakeGameRepo{games: make(map[int]models.Game)}
	for _, g := range games {
		r.games[g.ID] = g
	}
	return r
}

func (r *fakeGameRepo) Create(ctx context.Context, exec repositories.SQLExecutor, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game.ID = len(r.games) + 1
	r.games[game.ID] = *game
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return &g, nil
}

func (r *fakeGameRepo) List(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error) {
	return nil, nil
}

func (r *fakeGameRepo) ListByIDs(ctx context.Context, ids []int) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := r.games[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) UpdateOutcome(ctx context.Context, id int, outcome *models.GameOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.Outcome = outcome
	r.games[id] = g
	return nil
}

func (r *fakeGameRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

type fakeParticipationRepo struct {
	mu     sync.Mutex
	byGame map[int][]models.Participation
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{byGame: make(map[int][]models.Participation)}
}

func (r *fakeParticipationRepo) add(p models.Participation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byGame[p.GameID] = append(r.byGame[p.GameID], p)
}

func (r *fakeParticipationRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, participations []*models.Participation) error {
	for _, p := range participations {
		r.add(*p)
	}
	return nil
}

func (r *fakeParticipationRepo) ListByGame(ctx context.Context, gameID int) ([]models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Participation(nil), r.byGame[gameID]...), nil
}

func (r *fakeParticipationRepo) ListByGameIDs(ctx context.Context, gameIDs []int) ([]models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Participation
	for _, id := range gameIDs {
		out = append(out, r.byGame[id]...)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int]models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}
func (r *fakeUserRepo) List(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) ListByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	return nil
}
func (r *fakeUserRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeNotifier struct {
	mu    sync.Mutex
	calls []int
}

func (n *fakeNotifier) RatingResultsUpdated(ratingID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, ratingID)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// --- Сборка сервиса для тестов ---

type ratingFixture struct {
	svc      RatingService
	ratings  *fakeRatingRepo
	members  *fakeMemberRepo
	results  *fakeResultRepo
	games    *fakeGameRepo
	parts    *fakeParticipationRepo
	notifier *fakeNotifier
}

// newRatingFixture собирает сервис на фейковых репозиториях. Транзакция
// пересчёта проходит через sqlmock: Begin/Commit без выражений, сами
// запросы делают фейки.
func newRatingFixture(t *testing.T, ratings ...models.Rating) *ratingFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	f := &ratingFixture{
		ratings:  newFakeRatingRepo(ratings...),
		members:  newFakeMemberRepo(),
		results:  newFakeResultRepo(),
		games:    newFakeGameRepo(),
		parts:    newFakeParticipationRepo(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewRatingService(
		db,
		f.ratings,
		f.members,
		f.results,
		f.games,
		f.parts,
		&fakeUserRepo{users: map[int]models.User{}},
		f.notifier,
		slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})),
	)
	return f
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func strPtr(s string) *string { return &s }

func outcomePtr(o models.GameOutcome) *models.GameOutcome { return &o }

func (f *ratingFixture) addGame(g models.Game, seats ...models.Participation) {
	f.games.mu.Lock()
	f.games.games[g.ID] = g
	f.games.mu.Unlock()
	for _, s := range seats {
		s.GameID = g.ID
		f.parts.add(s)
	}
}

// --- Тесты ---

func TestAddGames(t *testing.T) {
	ctx := context.Background()
	owner := 10

	t.Run("partial success with skip reasons", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeCiviliansWin)})
		f.addGame(models.Game{ID: 101, Type: models.GameTypeClassic})

		// 100 уже член рейтинга
		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner)
		require.NoError(t, err)

		result, err := f.svc.AddGames(ctx, 1, []int{0, 101, 101, 999, 100}, owner)
		require.NoError(t, err)

		assert.Equal(t, []int{101}, result.Added)
		assert.Equal(t, []SkippedGame{
			{GameID: 0, Reason: SkipReasonInvalidID},
			{GameID: 101, Reason: SkipReasonDuplicate},
			{GameID: 999, Reason: SkipReasonGameNotFound},
			{GameID: 100, Reason: SkipReasonAlreadyMember},
		}, result.Skipped)
	})

	t.Run("recompute runs once per batch", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(models.Game{ID: 100, Type: models.GameTypeClassic})
		f.addGame(models.Game{ID: 101, Type: models.GameTypeClassic})

		result, err := f.svc.AddGames(ctx, 1, []int{100, 101}, owner)
		require.NoError(t, err)
		assert.Equal(t, []int{100, 101}, result.Added)
		assert.Equal(t, 1, f.notifier.count())
	})

	t.Run("no recompute when nothing added", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})

		result, err := f.svc.AddGames(ctx, 1, []int{-5, 999}, owner)
		require.NoError(t, err)
		assert.Empty(t, result.Added)
		assert.Len(t, result.Skipped, 2)
		assert.Equal(t, 0, f.notifier.count())
	})

	t.Run("unknown rating", func(t *testing.T) {
		f := newRatingFixture(t)
		_, err := f.svc.AddGames(ctx, 42, []int{1}, owner)
		assert.ErrorIs(t, err, ErrRatingNotFound)
	})

	t.Run("non-owner is rejected and nothing changes", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(models.Game{ID: 100, Type: models.GameTypeClassic})

		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner+1)
		assert.ErrorIs(t, err, ErrForbiddenOperation)

		ids, _ := f.members.ListGameIDs(ctx, 1)
		assert.Empty(t, ids)
		assert.Equal(t, 0, f.notifier.count())
	})
}

func TestRemoveGame(t *testing.T) {
	ctx := context.Background()
	owner := 10

	t.Run("removes membership and recomputes", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeCiviliansWin)},
			models.Participation{PlayerID: 1, Role: models.RoleCivilian, SlotNumber: 1},
		)
		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner)
		require.NoError(t, err)

		results, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)

		require.NoError(t, f.svc.RemoveGame(ctx, 1, 100, owner))

		results, err = f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, results, "empty membership must clear all results")
	})

	t.Run("removing a non-member game is an idempotent success", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})

		require.NoError(t, f.svc.RemoveGame(ctx, 1, 777, owner))
		// Пересчёт всё равно запускается.
		assert.Equal(t, 1, f.notifier.count())
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		err := f.svc.RemoveGame(ctx, 1, 100, owner+1)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	owner := 10

	t.Run("full scenario with wins bonuses and roles", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeCiviliansWin)},
			models.Participation{PlayerID: 1, Role: models.RoleCivilian, SlotNumber: 1, BonusRaw: strPtr("1.0")},
			models.Participation{PlayerID: 2, Role: models.RoleMafia, SlotNumber: 2, BonusRaw: strPtr("0")},
			models.Participation{PlayerID: 3, Role: models.RoleSheriff, SlotNumber: 3, BonusRaw: strPtr("0,5")},
			models.Participation{PlayerID: 4, Role: models.RoleDon, SlotNumber: 4},
		)
		f.addGame(
			models.Game{ID: 101, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeMafiaWin)},
			models.Participation{PlayerID: 1, Role: models.RoleDon, SlotNumber: 1, BonusRaw: strPtr("00.500.900.202.00")},
			models.Participation{PlayerID: 2, Role: models.RoleCivilian, SlotNumber: 2, BonusRaw: strPtr("abc")},
		)

		_, err := f.svc.AddGames(ctx, 1, []int{100, 101}, owner)
		require.NoError(t, err)

		results, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, results, 4)

		byPlayer := make(map[int]*models.RatingResult)
		for _, res := range results {
			byPlayer[res.PlayerID] = res
		}

		// Игрок 1: победа мирным (+1 + 1.0 бонус), победа доном (+1 + 0.5 из битого бонуса)
		p1 := byPlayer[1]
		assert.True(t, decimal.RequireFromString("3.5").Equal(p1.Points), "got %s", p1.Points)
		assert.Equal(t, 2, p1.GamesPlayed)
		assert.Equal(t, 2, p1.Wins)
		assert.Equal(t, 1, p1.CivilianWins)
		assert.Equal(t, 1, p1.MafiaWins)
		assert.Equal(t, 1, p1.DonGames)
		assert.Equal(t, 0, p1.FirstOuts)

		// Игрок 2: проигрыш мафией, проигрыш мирным, битый бонус → 0
		p2 := byPlayer[2]
		assert.True(t, decimal.Zero.Equal(p2.Points), "got %s", p2.Points)
		assert.Equal(t, 2, p2.GamesPlayed)
		assert.Equal(t, 0, p2.Wins)

		// Игрок 3: победа шерифом, бонус с запятой
		p3 := byPlayer[3]
		assert.True(t, decimal.RequireFromString("1.5").Equal(p3.Points), "got %s", p3.Points)
		assert.Equal(t, 1, p3.SheriffGames)
		assert.Equal(t, 1, p3.CivilianWins)

		// Игрок 4: дон проиграл, бонуса нет
		p4 := byPlayer[4]
		assert.True(t, decimal.Zero.Equal(p4.Points))
		assert.Equal(t, 1, p4.DonGames)

		// Сортировка: points DESC, player_id ASC.
		assert.Equal(t, 1, results[0].PlayerID)
		assert.Equal(t, 3, results[1].PlayerID)
		assert.Equal(t, 2, results[2].PlayerID)
		assert.Equal(t, 4, results[3].PlayerID)
	})

	t.Run("draw and unfinished games count as played without wins", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeDraw)},
			models.Participation{PlayerID: 1, Role: models.RoleCivilian, SlotNumber: 1, BonusRaw: strPtr("0.3")},
		)
		f.addGame(
			models.Game{ID: 101, Type: models.GameTypeClassic}, // идёт, исхода нет
			models.Participation{PlayerID: 1, Role: models.RoleMafia, SlotNumber: 1},
		)

		_, err := f.svc.AddGames(ctx, 1, []int{100, 101}, owner)
		require.NoError(t, err)

		results, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].GamesPlayed)
		assert.Equal(t, 0, results[0].Wins)
		assert.True(t, decimal.RequireFromString("0.3").Equal(results[0].Points))
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeMafiaWin)},
			models.Participation{PlayerID: 1, Role: models.RoleMafia, SlotNumber: 1, BonusRaw: strPtr("0.7")},
		)
		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner)
		require.NoError(t, err)

		first, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)

		require.NoError(t, f.svc.Recompute(ctx, 1))
		require.NoError(t, f.svc.Recompute(ctx, 1))

		again, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for i := range first {
			assert.Equal(t, first[i].PlayerID, again[i].PlayerID)
			assert.True(t, first[i].Points.Equal(again[i].Points))
			assert.Equal(t, first[i].GamesPlayed, again[i].GamesPlayed)
		}
	})

	t.Run("concurrent recomputes of one rating serialize", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeCiviliansWin)},
			models.Participation{PlayerID: 1, Role: models.RoleSheriff, SlotNumber: 1, BonusRaw: strPtr("0.25")},
		)
		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, f.svc.Recompute(ctx, 1))
			}()
		}
		wg.Wait()

		// После любого числа гонок снимок ровно один и корректный.
		results, err := f.results.ListByRating(ctx, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, decimal.RequireFromString("1.25").Equal(results[0].Points))
	})
}

func TestGetRatingDetails(t *testing.T) {
	ctx := context.Background()
	owner := 10

	t.Run("read does not trigger recompute", func(t *testing.T) {
		f := newRatingFixture(t, models.Rating{ID: 1, Name: "season", OwnerID: owner})
		f.addGame(
			models.Game{ID: 100, Type: models.GameTypeClassic, Outcome: outcomePtr(models.OutcomeCiviliansWin)},
			models.Participation{PlayerID: 1, Role: models.RoleCivilian, SlotNumber: 1},
		)
		_, err := f.svc.AddGames(ctx, 1, []int{100}, owner)
		require.NoError(t, err)
		require.Equal(t, 1, f.notifier.count())

		details, err := f.svc.GetRatingDetails(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, details.Games, 1)
		assert.Len(t, details.Results, 1)
		assert.Equal(t, 1, f.notifier.count(), "read must not trigger recompute")
	})

	t.Run("unknown rating", func(t *testing.T) {
		f := newRatingFixture(t)
		_, err := f.svc.GetRatingDetails(ctx, 42)
		assert.ErrorIs(t, err, ErrRatingNotFound)
	})
}

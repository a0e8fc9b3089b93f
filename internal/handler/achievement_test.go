package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/database"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
)

type achievementTestEnv struct {
	handler      *AchievementHandler
	achievements *store.AchievementStore
	parent       auth.Principal
	childID      int64
}

func setupAchievementHandler(t *testing.T) *achievementTestEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	achievements := store.NewAchievementStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	parent, err := users.Create("mika@example.com", "Mika", "parent", "sato-family", "hash")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := users.Create("taro@example.com", "Taro", "child", "sato-family", "hash")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	return &achievementTestEnv{
		handler:      NewAchievementHandler(achievements, users, logger),
		achievements: achievements,
		parent:       auth.Principal{UserID: parent.ID, FamilyID: "sato-family", Role: "parent"},
		childID:      child.ID,
	}
}

func (env *achievementTestEnv) get(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/achievements/"+strconv.FormatInt(env.childID, 10)+query, nil)
	req.SetPathValue("child_id", strconv.FormatInt(env.childID, 10))
	req = req.WithContext(auth.WithPrincipal(req.Context(), env.parent))
	rec := httptest.NewRecorder()
	env.handler.Get(rec, req)
	return rec
}

func TestAchievementGetRangeRequiresBothBounds(t *testing.T) {
	env := setupAchievementHandler(t)

	rec := env.get(t, "?start=2026-08-01")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("start without end: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = env.get(t, "?end=2026-08-31")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("end without start: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAchievementGetRangeRejectsMalformedDates(t *testing.T) {
	env := setupAchievementHandler(t)

	rec := env.get(t, "?start=not-a-date&end=2026-08-31")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad start: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = env.get(t, "?start=2026-09-01&end=2026-08-01")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAchievementGetRange(t *testing.T) {
	env := setupAchievementHandler(t)

	for _, d := range []string{"2026-08-05", "2026-08-20", "2026-09-02"} {
		if err := env.achievements.Increment(env.childID, d); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	rec := env.get(t, "?start=2026-08-01&end=2026-08-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got []model.Achievement
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
}

func TestAchievementGetSingleDayDefaultsToZero(t *testing.T) {
	env := setupAchievementHandler(t)

	rec := env.get(t, "?date=2026-08-30")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got model.Achievement
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.CompletedCount != 0 {
		t.Errorf("completed count = %d, want 0", got.CompletedCount)
	}
	if got.Date != "2026-08-30" {
		t.Errorf("date = %q, want %q", got.Date, "2026-08-30")
	}
}

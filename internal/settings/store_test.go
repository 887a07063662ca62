package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/tests/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultsOnFirstLaunch(t *testing.T) {
	db := testutil.NewTestStore(t)
	s := New(db, testLogger())

	got := s.Get()
	want := model.DefaultSettings()
	if got != want {
		t.Errorf("settings = %+v; want defaults %+v", got, want)
	}
}

func TestUpdatePersistsAcrossInstances(t *testing.T) {
	db := testutil.NewTestStore(t)
	s := New(db, testLogger())

	theme := model.ThemeDark
	notify := false
	s.Update(Patch{Theme: &theme, NotificationsEnabled: &notify})

	// A fresh store on the same database rehydrates the saved values.
	s2 := New(db, testLogger())
	got := s2.Get()

	if got.Theme != model.ThemeDark {
		t.Errorf("theme = %s; want dark", got.Theme)
	}
	if got.NotificationsEnabled {
		t.Error("notificationsEnabled = true; want false")
	}
	// Untouched fields keep their defaults.
	if got.EmailTone != model.ToneProfessional {
		t.Errorf("emailTone = %s; want professional", got.EmailTone)
	}
	if got.CheckIntervalSeconds != 60 {
		t.Errorf("checkIntervalSeconds = %d; want 60", got.CheckIntervalSeconds)
	}
}

func TestUpdateClampsCheckInterval(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, model.MinCheckIntervalSec},
		{30, 30},
		{120, 120},
		{300, 300},
		{9999, model.MaxCheckIntervalSec},
	}

	for _, tt := range tests {
		db := testutil.NewTestStore(t)
		s := New(db, testLogger())

		got := s.Update(Patch{CheckIntervalSeconds: &tt.in})
		if got.CheckIntervalSeconds != tt.want {
			t.Errorf("Update(interval=%d) = %d; want %d",
				tt.in, got.CheckIntervalSeconds, tt.want)
		}
	}
}

func TestRehydrateClampsPersistedInterval(t *testing.T) {
	db := testutil.NewTestStore(t)

	// A blob written by an older build may carry an out-of-range value.
	blob := `{"checkIntervalSeconds":5,"theme":"dark"}`
	if err := db.SetState(context.Background(), "user_settings", blob); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	s := New(db, testLogger())
	got := s.Get()

	if got.CheckIntervalSeconds != model.MinCheckIntervalSec {
		t.Errorf("checkIntervalSeconds = %d; want clamped to %d",
			got.CheckIntervalSeconds, model.MinCheckIntervalSec)
	}
	if got.Theme != model.ThemeDark {
		t.Errorf("theme = %s; want dark", got.Theme)
	}
}

func TestMalformedBlobFallsBackToDefaults(t *testing.T) {
	db := testutil.NewTestStore(t)

	if err := db.SetState(context.Background(), "user_settings", "{not json"); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	s := New(db, testLogger())
	got := s.Get()
	want := model.DefaultSettings()

	if got != want {
		t.Errorf("settings = %+v; want defaults %+v", got, want)
	}
}

func TestPartialBlobKeepsDefaultsForMissingFields(t *testing.T) {
	db := testutil.NewTestStore(t)

	if err := db.SetState(context.Background(), "user_settings",
		`{"emailTone":"casual"}`); err != nil {
		t.Fatalf("seeding state: %v", err)
	}

	s := New(db, testLogger())
	got := s.Get()

	if got.EmailTone != model.ToneCasual {
		t.Errorf("emailTone = %s; want casual", got.EmailTone)
	}
	if !got.NotificationsEnabled {
		t.Error("notificationsEnabled should keep its default true")
	}
	if got.CheckIntervalSeconds != 60 {
		t.Errorf("checkIntervalSeconds = %d; want default 60", got.CheckIntervalSeconds)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	db := testutil.NewTestStore(t)
	s := New(db, testLogger())

	theme := model.ThemeDark
	interval := 120
	s.Update(Patch{Theme: &theme, CheckIntervalSeconds: &interval})

	got := s.Reset()
	want := model.DefaultSettings()
	if got != want {
		t.Errorf("after Reset = %+v; want defaults %+v", got, want)
	}

	// Reset drops the stored blob; rehydration starts from defaults.
	if _, ok, err := db.GetState(context.Background(), "user_settings"); err != nil {
		t.Fatalf("GetState: %v", err)
	} else if ok {
		t.Error("expected the persisted settings blob removed by Reset")
	}

	s2 := New(db, testLogger())
	if s2.Get() != want {
		t.Error("reset settings did not survive rehydration")
	}
}

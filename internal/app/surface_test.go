package app

import (
	"testing"

	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/session"
)

func TestActiveSurface(t *testing.T) {
	notification := &model.EmailNotification{
		Email: model.Email{ID: "e1", Subject: "Hello"},
	}
	activeEmail := &model.Email{ID: "e2", Subject: "World"}

	tests := []struct {
		name    string
		current *model.EmailNotification
		snap    session.Snapshot
		want    Surface
	}{
		{
			name: "nothing pending, no session",
			snap: session.Snapshot{Mode: session.ModeNone},
			want: SurfaceNone,
		},
		{
			name:    "notification pending, no session",
			current: notification,
			snap:    session.Snapshot{Mode: session.ModeNone},
			want:    SurfacePopup,
		},
		{
			name: "viewing with active email",
			snap: session.Snapshot{Mode: session.ModeViewing, Email: activeEmail},
			want: SurfaceViewer,
		},
		{
			name: "editing with active email",
			snap: session.Snapshot{Mode: session.ModeEditing, Email: activeEmail},
			want: SurfaceEditor,
		},
		{
			name:    "reply workflow suppresses the popup",
			current: notification,
			snap:    session.Snapshot{Mode: session.ModeViewing, Email: activeEmail},
			want:    SurfaceViewer,
		},
		{
			name:    "editing suppresses the popup too",
			current: notification,
			snap:    session.Snapshot{Mode: session.ModeEditing, Email: activeEmail},
			want:    SurfaceEditor,
		},
		{
			name: "viewing without an email shows nothing",
			snap: session.Snapshot{Mode: session.ModeViewing},
			want: SurfaceNone,
		},
		{
			name: "editing without an email shows nothing",
			snap: session.Snapshot{Mode: session.ModeEditing},
			want: SurfaceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveSurface(tt.current, tt.snap); got != tt.want {
				t.Errorf("ActiveSurface() = %v; want %v", got, tt.want)
			}
		})
	}
}

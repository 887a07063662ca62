package app

import (
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/session"
)

// Surface identifies which overlay, if any, sits on top of the main
// view.
type Surface int

const (
	SurfaceNone Surface = iota
	SurfacePopup
	SurfaceViewer
	SurfaceEditor
)

// ActiveSurface decides the visible overlay from the notification and
// session state. The popup only shows while no reply workflow is
// running, so starting a reply implicitly suppresses it; the viewer and
// editor require an active email.
func ActiveSurface(current *model.EmailNotification, snap session.Snapshot) Surface {
	switch {
	case snap.Mode == session.ModeViewing && snap.Email != nil:
		return SurfaceViewer
	case snap.Mode == session.ModeEditing && snap.Email != nil:
		return SurfaceEditor
	case current != nil && snap.Mode == session.ModeNone:
		return SurfacePopup
	default:
		return SurfaceNone
	}
}

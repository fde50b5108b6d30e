package api

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/ember/internal/domain"
	"github.com/hilthontt/ember/internal/infrastructure/json"
	"github.com/hilthontt/ember/internal/infrastructure/logging"
	"github.com/hilthontt/ember/internal/infrastructure/metrics"
	"github.com/hilthontt/ember/internal/presentation/utils"
)

// gatekeeper guards the room page. Returning participants carry the auth
// cookie and pass straight through without a store round-trip; holders are
// never evicted, so no capacity re-check happens on the fast path. Everyone
// else runs the admission protocol at the edge and gets bounced to the
// landing page with an error tag on failure.
func (app *Application) gatekeeper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")
		if roomID == "" {
			http.Redirect(w, r, "/?error=room-not-found", http.StatusSeeOther)
			return
		}

		if utils.GetTokenFromCookie(r) != "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := app.roomRepository.Admit(r.Context(), roomID, "")
		if err != nil {
			tag := json.Tag(err)
			metrics.ObserveAdmission(tag)

			if !errors.Is(err, domain.ErrRoomNotFound) &&
				!errors.Is(err, domain.ErrRoomBusy) &&
				!errors.Is(err, domain.ErrRoomFull) {
				app.logger.Error(logging.Internal, logging.Admission, "edge admission failed", map[logging.ExtraKey]any{
					logging.RoomID:       roomID,
					logging.ErrorMessage: err.Error(),
				})
			}

			http.Redirect(w, r, "/?error="+tag, http.StatusSeeOther)
			return
		}

		metrics.ObserveAdmission("admitted")
		utils.SetTokenCookie(w, token, app.config.IsProduction())

		next.ServeHTTP(w, r)
	})
}

// roomPage is the minimal shell the gatekeeper hands to admitted visitors.
// The serving client reads the room identifier off the body tag; no assets
// ship from this binary.
var roomPage = template.Must(template.New("room").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>ember</title></head>
<body data-room-id="{{.RoomID}}"></body>
</html>
`))

func (app *Application) roomPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	_ = roomPage.Execute(w, struct{ RoomID string }{RoomID: chi.URLParam(r, "roomId")})
}

package web

import (
	"net/http"

	"grindset/internal/adapters/http/middleware"
	"grindset/internal/application/publishing"
)

type generateRequest struct {
	Goal string `json:"goal"`
}

type announcementRequest struct {
	Message string `json:"message"`
}

func publisherFor(r *http.Request) *publishing.Publisher {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return publishers.For(sess.Token)
}

// handleAdminDraft handles GET /api/admin/draft
func handleAdminDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, publisherFor(r).Status())
}

// handleAdminGenerate handles POST /api/admin/generate
func handleAdminGenerate(w http.ResponseWriter, r *http.Request) {
	var in generateRequest
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p := publisherFor(r)
	if _, err := p.Generate(r.Context(), in.Goal); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Status())
}

// handleAdminPublish handles POST /api/admin/publish
func handleAdminPublish(w http.ResponseWriter, r *http.Request) {
	rec, err := publisherFor(r).Publish(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":      rec.Date,
		"title":     rec.Title,
		"exercises": rec.Exercises,
	})
}

// handleAdminAnnouncement handles POST /api/admin/announcement
func handleAdminAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in announcementRequest
	if err := strictDecode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := publisherFor(r).PostAnnouncement(r.Context(), in.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":        res.Record.Date,
		"title":       res.Record.Title,
		"message":     res.Record.Message,
		"emails_sent": res.EmailsSent,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/hookstudio/internal/domain"
	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hookstudio/internal/share"
)

var errNoShareParam = errors.New(`query parameter "share" is required`)

type shareResponse struct {
	URL  string `json:"url"`
	Long bool   `json:"long"` // past what most chat platforms accept
}

type openShareResponse struct {
	Message  domain.Message `json:"message"`
	CleanURL string         `json:"cleanUrl"`
}

// CreateShare builds a share link for the body, or for the draft when the
// body is empty. Messages with attachments cannot be shared.
func CreateShare(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := messageOrCurrent(r, d.Workspace)
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		link, err := share.BuildURL(d.PublicURL, msg)
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, shareResponse{URL: link, Long: share.IsLong(link)})
	}
}

// OpenShare decodes ?share= against the public URL. It does not change the
// draft; clients PUT the returned message when the user accepts it.
func OpenShare(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := url.Parse(d.PublicURL)
		if err != nil {
			fail(w, err, http.StatusInternalServerError)
			return
		}
		base.RawQuery = r.URL.RawQuery

		msg, clean, ok, err := share.FromURL(base.String())
		if err != nil {
			fail(w, err, http.StatusBadRequest)
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, errNoShareParam)
			return
		}
		writeJSON(w, http.StatusOK, openShareResponse{Message: msg, CleanURL: clean})
	}
}

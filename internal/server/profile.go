package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-jyoti/internal/config"
)

const fieldImage = "image"

// handleProfileGet returns the stored picture, or redirects to the logo
// when none was uploaded.
func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	data, ok, err := s.profiles.Get(config.ProfileImageKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		http.Redirect(w, r, config.LogoURL, http.StatusFound)
		return
	}

	w.Header().Set(config.HeaderContentType, http.DetectContentType(data))
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.MaxImageSize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(data) == 0 {
		s.writeCode(w, r, http.StatusBadRequest, config.CodeMissingInput, fieldImage)
		return
	}
	if err := s.profiles.Set(config.ProfileImageKey, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfileDelete(w http.ResponseWriter, r *http.Request) {
	s.profiles.Delete(config.ProfileImageKey)
	w.WriteHeader(http.StatusNoContent)
}

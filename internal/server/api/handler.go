package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
)

// Views served from the cache, keyed like the dashboard pages they back.
const (
	tutorialProgressPath = common.DashboardPath
	taskStatsPath        = common.DashboardTasksPath
	preferencesPath      = common.DashboardSettingsPath
)

const maxBodyBytes = 1 << 20

// revalidate reports whether a mutating request should evict cached views.
// Only an explicit ?revalidate=false suppresses it.
func revalidate(r *http.Request) bool {
	return r.URL.Query().Get("revalidate") != "false"
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", common.ErrorValidation, err)
	}
	return nil
}

type viewFunc func(r *http.Request, userID string) (any, error)

// cached serves view from the cache when present and stores successful
// responses otherwise.
func (s *Server) cached(view string, fn viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := UserIDFromContext(r.Context())

		var gen uint64
		if s.views != nil {
			if body, ok := s.views.Get(userID, view); ok {
				writeRaw(w, "HIT", body)
				return
			}
			gen = s.views.Generation(userID, view)
		}

		data, err := fn(r, userID)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		body, err := json.Marshal(envelope{Success: true, Data: data})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if s.views != nil {
			s.views.Put(userID, view, gen, body)
		}
		writeRaw(w, "MISS", body)
	}
}

func writeRaw(w http.ResponseWriter, cache string, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) bootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	if err := s.services.Profiles.EnsureProfileAndTutorialTasks(ctx, userID, emailFromContext(ctx), revalidate(r)); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (s *Server) tutorialProgress(r *http.Request, userID string) (any, error) {
	return s.services.Tutorial.Progress(r.Context(), userID)
}

func (s *Server) restartTutorial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	if err := s.services.Tutorial.Restart(ctx, userID, revalidate(r)); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(ctx, "Tutorial restarted", "user_id", userID)
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	var in models.TaskInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	task, err := s.services.Tasks.AddTaskDirect(ctx, userID, in, revalidate(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: task})
}

func (s *Server) taskStats(r *http.Request, userID string) (any, error) {
	return s.services.Tasks.Stats(r.Context(), userID)
}

func (s *Server) getPreferences(r *http.Request, userID string) (any, error) {
	return s.services.Preferences.Get(r.Context(), userID)
}

// updatePreferences applies the request body over the current preferences,
// so clients may send only the fields they change.
func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	current, err := s.services.Preferences.Get(ctx, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	prefs := *current
	if err := decodeBody(r, &prefs); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.services.Preferences.Update(ctx, userID, prefs, revalidate(r)); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: prefs})
}

type avatarUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type avatarDownloadResponse struct {
	URL string `json:"url"`
}

func (s *Server) avatarUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, url, err := s.services.Avatars.UploadURL(ctx, UserIDFromContext(ctx))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: avatarUploadResponse{Key: key, URL: url}})
}

func (s *Server) avatarDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, err := s.services.Avatars.DownloadURL(ctx, UserIDFromContext(ctx))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: avatarDownloadResponse{URL: url}})
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/simpledraw/internal/prefs"
)

const maxRequestBodySize = 64 << 10 // 64KB

// SettingsDeps holds dependencies for the settings HTTP handler.
type SettingsDeps struct {
	Store *prefs.Store
	Token string
}

// SetSettingRequest is the body of PUT /settings/{key}. Value may be a JSON
// string in the setting's text form or a bare JSON bool/number.
type SetSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

func NewSettingsHandler(deps SettingsDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/settings", handleListSettings(deps))
		r.Get("/settings/{key}", handleGetSetting(deps))
		r.Put("/settings/{key}", handlePutSetting(deps))
		r.Delete("/settings/{key}", handleResetSetting(deps))
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleListSettings(deps SettingsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Store.Snapshot())
	}
}

func handleGetSetting(deps SettingsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := deps.Store.Describe(chi.URLParam(r, "key"))
		if err != nil {
			settingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func handlePutSetting(deps SettingsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req SetSettingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		raw, err := valueText(req.Value)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err := deps.Store.SetText(key, raw); err != nil {
			settingError(w, err)
			return
		}

		e, err := deps.Store.Describe(key)
		if err != nil {
			settingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func handleResetSetting(deps SettingsDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if err := deps.Store.ResetText(key); err != nil {
			settingError(w, err)
			return
		}
		e, err := deps.Store.Describe(key)
		if err != nil {
			settingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// valueText turns a JSON value into the text form accepted by Store.SetText.
func valueText(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", fmt.Errorf("value is required")
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("invalid value: %w", err)
		}
		return s, nil
	}
	if v[0] == '{' || v[0] == '[' {
		return "", fmt.Errorf("value must be a string, number or bool")
	}
	return string(v), nil
}

func settingError(w http.ResponseWriter, err error) {
	if errors.Is(err, prefs.ErrUnknownKey) {
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
		return
	}
	httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

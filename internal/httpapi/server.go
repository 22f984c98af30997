package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serbod/internal/supervisor"
	"serbod/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Create(id, version string) (string, error)
	Start(id string, port int) (int, error)
	Stop(id string) error
	Delete(id string) error
	ChangeVersion(id, version string) error
	Send(id, msg string) error
	Console(id string, offset int) ([]string, error)
	Versions() []types.Version
	Status() types.StatusResponse
	Ready() bool
}

// Control endpoints answer with plain-text codes: "1" for success, "-1" for
// failure, and /start answers the bound port ("0" when already online). The
// HTTP status stays 200 for these bodies; panel clients switch on the body.
const (
	codeOK   = "1"
	codeFail = "-1"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/create", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		start := time.Now()
		id, err := svc.Create(f.Get("target_id"), f.Get("version"))
		logOp(r, "create", f.Get("target_id"), start, err)
		if err != nil {
			writeCode(w, codeFail)
			return
		}
		writeCode(w, id)
	})

	r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		port := 0
		if v := f.Get("port"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil || p < 0 {
				writeCode(w, codeFail)
				return
			}
			port = p
		}
		start := time.Now()
		bound, err := svc.Start(f.Get("target_id"), port)
		logOp(r, "start", f.Get("target_id"), start, err)
		if err != nil {
			if supervisor.IsAlreadyOnline(err) {
				writeCode(w, "0")
				return
			}
			writeCode(w, codeFail)
			return
		}
		writeCode(w, strconv.Itoa(bound))
	})

	r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		start := time.Now()
		err := svc.Stop(f.Get("target_id"))
		logOp(r, "stop", f.Get("target_id"), start, err)
		writeResult(w, err)
	})

	r.Post("/delete", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		start := time.Now()
		err := svc.Delete(f.Get("target_id"))
		logOp(r, "delete", f.Get("target_id"), start, err)
		writeResult(w, err)
	})

	r.Post("/version", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		start := time.Now()
		err := svc.ChangeVersion(f.Get("target_id"), f.Get("target_version"))
		logOp(r, "version", f.Get("target_id"), start, err)
		writeResult(w, err)
	})

	r.Post("/writeConsole", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		msg := f.Get("msg")
		if strings.TrimSpace(msg) == "" {
			writeCode(w, codeFail)
			return
		}
		writeResult(w, svc.Send(f.Get("target_id"), msg))
	})

	r.Post("/getConsole", func(w http.ResponseWriter, r *http.Request) {
		f, ok := parseForm(w, r)
		if !ok {
			return
		}
		from := 0
		if v := f.Get("start_line"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeCode(w, codeFail)
				return
			}
			from = n
		}
		lines, err := svc.Console(f.Get("target_id"), from)
		if err != nil {
			writeCode(w, codeFail)
			return
		}
		if lines == nil {
			lines = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lines); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/servers", func(w http.ResponseWriter, r *http.Request) {
		st := svc.Status()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"servers": st.Servers}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/versions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.VersionsResponse{Versions: svc.Versions()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// parseForm enforces the body limit and parses url-encoded form data. On
// failure it writes the failure code and reports false.
func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeCode(w, codeFail)
		return nil, false
	}
	return r.PostForm, true
}

func writeCode(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func writeResult(w http.ResponseWriter, err error) {
	if err != nil {
		writeCode(w, codeFail)
		return
	}
	writeCode(w, codeOK)
}

// Package httpapi は HR コアの REST ゲートウェイです。
//
// gRPC と同じユースケースを呼び出し、レスポンスは hrapi のメッセージ型をそのまま JSON で返します。
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// ActorHeader は操作者の社員 ID を運ぶヘッダです。
const ActorHeader = "X-Actor-ID"

// NewRouter はルーティングとミドルウェアを設定した http.Handler を返します。
func NewRouter(h *Handler, allowedOrigins []string, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", ActorHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", h.SubmitLeaveRequest)
			r.Get("/{id}", h.GetLeaveRequest)
			r.Post("/{id}/decision", h.DecideLeaveRequest)
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/leave-requests", h.ListLeaveRequests)
			r.Get("/balances", h.GetLeaveBalances)
			r.Post("/balances/{category}/corrections", h.CorrectLeaveBalance)
			r.Get("/attendance", h.ListAttendance)
			r.Put("/attendance/{date}", h.UpsertAttendance)
		})

		r.Get("/managers/{id}/team-attendance", h.ListTeamAttendance)
		r.Get("/payroll/{year}/{month}", h.ComputePayroll)
	})

	return r
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)

			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"request_id": middleware.GetReqID(r.Context()),
				"latency_ms": time.Since(started).Milliseconds(),
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Error("http request failed")
				return
			}
			entry.Info("http request completed")
		})
	}
}

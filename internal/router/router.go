package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"lectura-dashboard/internal/handlers"
	"lectura-dashboard/internal/middleware"
	"lectura-dashboard/internal/websocket"
)

func New(
	lectureHandler *handlers.LectureHandler,
	chatHandler *handlers.ChatHandler,
	playbackHandler *handlers.PlaybackHandler,
	importHandler *handlers.ImportHandler,
	libraryHandler *handlers.LibraryHandler,
	quizHandler *handlers.QuizHandler,
	dashboardHandler *handlers.DashboardHandler,
	settingsHandler *handlers.SettingsHandler,
	wsHub *websocket.Hub,
	aiLimiter *middleware.RateLimiter,
	mediaDir string,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded recordings
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Lecture Routes ────
		r.Route("/lectures", func(r chi.Router) {
			r.Get("/", lectureHandler.List)
			r.Get("/facets", lectureHandler.Facets)

			r.Group(func(r chi.Router) {
				r.Use(aiLimiter.Middleware)
				r.Post("/upload", importHandler.Upload)
				r.Post("/import/youtube", importHandler.ImportYouTube)
				r.Post("/import/transcript", importHandler.ImportTranscript)
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", lectureHandler.Get)
				r.Post("/view", lectureHandler.View)
				r.Post("/quiz", quizHandler.Open)

				r.Post("/playback/tick", playbackHandler.Tick)
				r.Post("/playback/seek", playbackHandler.Seek)
				r.Post("/playback/error", playbackHandler.VideoError)

				r.Group(func(r chi.Router) {
					r.Use(aiLimiter.Middleware)
					r.Post("/summary", lectureHandler.Summarize)
					r.Post("/chat", chatHandler.AskQuestion)
				})
			})
		})

		// ──── Library Routes ────
		r.Route("/library", func(r chi.Router) {
			r.Use(aiLimiter.Middleware)
			r.Post("/search", libraryHandler.Search)
		})

		// ──── Quiz Routes ────
		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", quizHandler.Get)
			r.With(aiLimiter.Middleware).Post("/commands", quizHandler.Command)
		})

		// ──── Dashboard Routes ────
		r.Get("/dashboard", dashboardHandler.Dashboard)
		r.Get("/stats", dashboardHandler.Stats)

		// ──── Settings Routes ────
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.Get)
			r.Put("/theme", settingsHandler.SetTheme)
			r.Post("/theme/toggle", settingsHandler.ToggleTheme)
			r.Put("/quiz", settingsHandler.SetQuizDefaults)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

package httpserver

import (
	"net/http"
	"time"

	"family-drive-go/internal/config"
	"family-drive-go/internal/transport/httpserver/handler"
	authmw "family-drive-go/internal/transport/httpserver/middleware"
	"family-drive-go/pkg/logger"
	"family-drive-go/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter mounts the API. metrics may be nil, in which case neither the
// instrumentation nor /metrics is installed.
func NewRouter(cfg config.Config, handlers *handler.Handlers, resolver authmw.UserResolver, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler)
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		auth := authmw.NewAuth(cfg, resolver, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)

			r.Get("/families/me", handlers.Common.GetFamilyMe)
			r.Post("/families", handlers.Common.CreateFamily)
			r.Post("/families/join", handlers.Common.JoinFamily)
			r.Post("/families/leave", handlers.Common.LeaveFamily)
			r.Patch("/families/me", handlers.Common.UpdateFamily)
			r.Get("/families/me/members", handlers.Common.ListFamilyMembers)
			r.Delete("/families/me/members/{user_id}", handlers.Common.RemoveFamilyMember)

			r.Get("/folders", handlers.Drive.ListMyFolders)
			r.Get("/folders/shared", handlers.Drive.ListSharedFolders)
			r.Get("/folders/picker", handlers.Drive.FolderPicker)
			r.Get("/folders/{id}/path", handlers.Drive.FolderPath)
			r.Post("/folders", handlers.Drive.CreateFolder)
			r.Patch("/folders/{id}", handlers.Drive.RenameFolder)
			r.Post("/folders/{id}/move", handlers.Drive.MoveFolder)
			r.Put("/folders/{id}/assignment", handlers.Drive.UpdateFolderAssignment)
			r.Put("/folders/{id}/sharing", handlers.Drive.UpdateFolderSharing)
			r.Delete("/folders/{id}", handlers.Drive.DeleteFolder)

			r.Get("/files", handlers.Drive.ListMyFiles)
			r.Get("/files/shared", handlers.Drive.ListSharedFiles)
			r.Get("/files/search", handlers.Drive.SearchFiles)
			r.Post("/files", handlers.Drive.CreateFile)
			r.Patch("/files/{id}", handlers.Drive.RenameFile)
			r.Post("/files/{id}/move", handlers.Drive.MoveFile)
			r.Put("/files/{id}/assignment", handlers.Drive.UpdateFileAssignment)
			r.Put("/files/{id}/sharing", handlers.Drive.UpdateFileSharing)
			r.Put("/files/{id}/tags", handlers.Drive.UpdateFileTags)
			r.Delete("/files/{id}", handlers.Drive.DeleteFile)

			r.Route("/bulk", func(r chi.Router) {
				r.Post("/files/delete", handlers.Drive.BulkDeleteFiles)
				r.Post("/files/move", handlers.Drive.BulkMoveFiles)
				r.Post("/files/assign", handlers.Drive.BulkAssignFiles)
				r.Post("/folders/delete", handlers.Drive.BulkDeleteFolders)
				r.Post("/folders/move", handlers.Drive.BulkMoveFolders)
				r.Post("/folders/assign", handlers.Drive.BulkAssignFolders)
			})
		})
	})

	return r
}

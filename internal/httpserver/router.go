package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"prephub/internal/config"
	"prephub/internal/domain"
	"prephub/internal/security"
	"prephub/internal/service"

	_ "prephub/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Repos bundles the repository set for one database driver. Both the
// postgres and sqlite stores satisfy it.
type Repos struct {
	Users           domain.UserRepository
	Presence        domain.PresenceRepository
	Conversations   domain.ConversationRepository
	ChatMessages    domain.ChatMessageRepository
	Whispers        domain.WhisperRepository
	Recommendations domain.RecommendationRepository
	Chapters        domain.ChaptersConfigRepository
	Sheets          domain.SheetRepository
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	repos Repos,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Moderator-Password"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	presenceSvc := service.NewPresenceService(repos.Presence, repos.Users, cfg.PresenceTimeout)
	authSvc := service.NewAuthService(repos.Users, repos.Presence, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(repos.Users, repos.Sheets, presenceSvc)
	convSvc := service.NewConversationService(repos.Conversations, repos.Whispers, repos.Users, encryptor)
	chatSvc := service.NewChatService(repos.ChatMessages, repos.Users, cfg.ChatHistoryLimit, cfg.MaxMessageRunes)
	whisperSvc := service.NewWhisperService(repos.Whispers, repos.Conversations, repos.Users, encryptor, cfg.ChatHistoryLimit, cfg.MaxMessageRunes)
	recSvc := service.NewRecommendationService(repos.Recommendations, repos.Users, repos.Chapters)
	sheetSvc := service.NewSheetService(repos.Sheets, repos.Chapters)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"docs":    "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, repos.Users))

			r.Post("/auth/logout", handleLogout(authSvc))
			r.Get("/auth/me", handleMe())
			r.Put("/auth/profile", handleUpdateProfile(authSvc))
			r.Put("/auth/password", handleChangePassword(authSvc))

			// Presence
			r.Post("/presence/heartbeat", handleHeartbeat(presenceSvc))
			r.Get("/presence/online", handleOnlineUsers(presenceSvc))

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/", handleDirectory(userSvc))
				r.Get("/{userID}", handleGetUser(userSvc))
			})

			// Global chat
			r.Route("/chat", func(r chi.Router) {
				r.Get("/messages", handleChatHistory(chatSvc))
				r.Post("/messages", handlePostChatMessage(chatSvc))
				r.Put("/messages/{messageID}", handleEditChatMessage(chatSvc))
				r.Delete("/messages/{messageID}", handleDeleteChatMessage(chatSvc))
				r.Post("/messages/{messageID}/reactions", handleAddChatReaction(chatSvc))
				r.Delete("/messages/{messageID}/reactions", handleRemoveChatReaction(chatSvc))
			})

			// Conversations and whispers
			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleCreateConversation(convSvc))
				r.Get("/", handleListConversations(convSvc))
				r.Get("/{conversationID}", handleGetConversation(convSvc))
				r.Get("/{conversationID}/messages", handleListWhispers(whisperSvc))
				r.Post("/{conversationID}/messages", handleSendWhisper(whisperSvc))
			})
			r.Route("/whispers", func(r chi.Router) {
				r.Put("/{messageID}", handleEditWhisper(whisperSvc))
				r.Delete("/{messageID}", handleDeleteWhisper(whisperSvc))
				r.Post("/{messageID}/reactions", handleAddWhisperReaction(whisperSvc))
				r.Delete("/{messageID}/reactions", handleRemoveWhisperReaction(whisperSvc))
			})

			// Chapter recommendations
			r.Route("/recommendations", func(r chi.Router) {
				r.Post("/", handleCreateRecommendation(recSvc))
				r.Get("/", handleListRecommendations(recSvc))
				r.Post("/{recommendationID}/vote", handleVote(recSvc))
			})

			// Practice sheets and chapters config
			r.Route("/sheets", func(r chi.Router) {
				r.Post("/", handleSubmitSheet(sheetSvc))
				r.Get("/", handleMySheets(sheetSvc))
				r.Get("/activity", handleActivity(sheetSvc, cfg.ChatHistoryLimit))
			})
			r.Get("/chapters", handleGetChapters(sheetSvc))
		})

		// Moderator console (shared-password gate, no user token required)
		r.Route("/moderator", func(r chi.Router) {
			r.Use(ModeratorMiddleware(cfg.ModeratorPassword))

			r.Post("/login", handleModeratorLogin())
			r.Get("/users", handleModeratorUsers(userSvc))
			r.Get("/messages", handleModeratorMessages(chatSvc, cfg.ModeratorHistoryLimit))
			r.Delete("/messages/{messageID}", handleModeratorDeleteMessage(chatSvc))
			r.Post("/users/{userID}/reset-password", handleModeratorResetPassword(authSvc))
			r.Put("/chapters", handleUpdateChapters(sheetSvc))
		})
	})

	return r
}

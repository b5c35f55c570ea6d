package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clubstack/league-system/handlers"
	"github.com/clubstack/league-system/middleware"
	"github.com/clubstack/league-system/services"
)

// Коды прав, на которые завязана авторизация маршрутов.
const (
	PermTenantManage = "tenant.manage"
	PermMemberManage = "member.manage"
	PermTeamManage   = "team.manage"
	PermEventManage  = "event.manage"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	membershipService services.MembershipService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	activityHandler *handlers.ActivityHandler,
	roleHandler *handlers.RoleHandler,
	tenantHandler *handlers.TenantHandler,
	teamHandler *handlers.TeamHandler,
	eventHandler *handlers.EventHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/me", userHandler.GetProfile)
		r.Put("/me", userHandler.UpdateProfile)
		r.Delete("/me", userHandler.DeleteAccount)
		r.Get("/me/memberships", userHandler.ListMyMemberships)
		r.Get("/{userID}", userHandler.GetByID)
	})

	router.Route("/activities", func(r chi.Router) {
		r.Get("/", activityHandler.List)
		r.Get("/{activityID}", activityHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", activityHandler.Create)
			r.Put("/{activityID}", activityHandler.Update)
			r.Delete("/{activityID}", activityHandler.Delete)
		})
	})

	router.Route("/roles", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/", roleHandler.List)
		r.Post("/", roleHandler.Create)
		r.Get("/{roleID}", roleHandler.GetByID)
		r.Delete("/{roleID}", roleHandler.Delete)
		r.Post("/{roleID}/permissions/{permissionID}", roleHandler.GrantPermission)
		r.Delete("/{roleID}/permissions/{permissionID}", roleHandler.RevokePermission)
	})

	router.Route("/permissions", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/", roleHandler.ListPermissions)
		r.Post("/", roleHandler.CreatePermission)
	})

	router.Route("/tenants", func(r chi.Router) {
		// Публичный каталог арендаторов.
		r.Get("/", tenantHandler.List)
		r.Get("/{tenantID}", tenantHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", tenantHandler.Create)
			r.Post("/{tenantID}/join", tenantHandler.Join)
			r.Get("/{tenantID}/permissions", tenantHandler.MyPermissions)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(membershipService, PermTenantManage))
				r.Put("/{tenantID}", tenantHandler.Update)
				r.Delete("/{tenantID}", tenantHandler.Delete)
				r.Post("/{tenantID}/logo", tenantHandler.UploadLogo)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(membershipService, PermMemberManage))
				r.Get("/{tenantID}/members", tenantHandler.ListMembers)
				r.Put("/{tenantID}/members/{userID}/role", tenantHandler.AssignRole)
				r.Put("/{tenantID}/members/{userID}/status", tenantHandler.SetMemberStatus)
			})

			// Команды арендатора.
			r.Get("/{tenantID}/teams", teamHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(membershipService, PermTeamManage))
				r.Post("/{tenantID}/teams", teamHandler.Create)
			})

			// События арендатора.
			r.Get("/{tenantID}/events", eventHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(membershipService, PermEventManage))
				r.Post("/{tenantID}/events", eventHandler.Create)
			})
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/{teamID}", teamHandler.GetByID)
		r.Put("/{teamID}", teamHandler.Update)
		r.Delete("/{teamID}", teamHandler.Delete)
		r.Post("/{teamID}/logo", teamHandler.UploadLogo)
		r.Get("/{teamID}/roster", teamHandler.Roster)
		r.Get("/{teamID}/roster/history", teamHandler.RosterHistory)
		r.Post("/{teamID}/members", teamHandler.AddMember)
		r.Delete("/{teamID}/members/{playerID}", teamHandler.RemoveMember)
	})

	router.Route("/events", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/{eventID}", eventHandler.GetByID)
		r.Put("/{eventID}", eventHandler.Update)
		r.Delete("/{eventID}", eventHandler.Delete)

		r.Get("/{eventID}/groups", eventHandler.ListGroups)
		r.Post("/{eventID}/groups", eventHandler.CreateGroup)
		r.Get("/{eventID}/participants", eventHandler.ResolveAllGroups)

		r.Get("/{eventID}/result", eventHandler.GetResult)
		r.Post("/{eventID}/result", eventHandler.RecordResult)
	})

	router.Route("/groups", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Delete("/{groupID}", eventHandler.DeleteGroup)
		r.Put("/{groupID}/team", eventHandler.AssignTeam)
		r.Delete("/{groupID}/team", eventHandler.ClearTeam)
		r.Post("/{groupID}/participants", eventHandler.AddParticipant)
		r.Delete("/{groupID}/participants/{playerID}", eventHandler.RemoveParticipant)
		r.Get("/{groupID}/resolve", eventHandler.ResolveGroup)
	})

	router.Get("/ws/tenants/{tenantID}", webSocketHandler.ServeWs)
}

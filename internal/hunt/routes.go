package hunt

import (
	"net/http"

	"github.com/SnapQuest/SQ-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.IdentityFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", CreateGroupHandler)
		r.Get("/", ListGroupsHandler)
		r.Post("/{id}/join", JoinGroupHandler)
		r.Post("/{id}/leave", LeaveGroupHandler)
		r.Get("/{id}/members", GroupMembersHandler)
		r.Get("/{id}/tasks", GroupTasksHandler)
		r.Get("/{id}/feed", FeedHandler)
		r.Get("/{id}/leaderboard", LeaderboardHandler)
		r.Get("/{id}/live", LiveFeedHandler)
	})

	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", SubmitHandler)
		r.Get("/", ListSubmissionsHandler)
		r.Get("/{id}/reactions", GetReactionsHandler)
		r.Post("/{id}/reactions", AddReactionHandler)
		r.Delete("/{id}/reactions", RemoveReactionHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware)
		r.Post("/tasks", CreateTaskHandler)
		r.Get("/tasks", AdminTasksHandler)
		r.Post("/tasks/{id}/groups/{groupId}", AssignTaskHandler)
		r.Delete("/groups/{id}/members/{userId}", RemoveMemberHandler)
		r.Get("/submissions/{id}/reaction-events", ReactionEventsHandler)
	})

	return r
}

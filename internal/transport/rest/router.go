package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"onsamuse/internal/service"
	"onsamuse/internal/transport/rest/handler"
	"onsamuse/internal/transport/rest/middleware"
	"onsamuse/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	ZoomService    *service.ZoomService
	TurnService    *service.TurnService
	HistoryService *service.HistoryService // nil when no archive is configured
	WSHub          *ws.Hub
	CORSOrigins    []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	dailyHandler := handler.NewDailyGameHandler(c.ZoomService)
	turnHandler := handler.NewTurnHandler(c.TurnService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.Logging)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService)
		r.HandleFunc("/ws/games/{game}", wsHandler.GameWS).Methods("GET")
	}

	// Game routes accept an optional player token
	games := r.NewRoute().Subrouter()
	games.Use(authMW.OptionalPlayer)

	games.HandleFunc("/daily-game/init", dailyHandler.Init).Methods("GET")
	games.HandleFunc("/daily-game/action", dailyHandler.Action).Methods("POST")

	games.HandleFunc("/game-turn", turnHandler.Get).Methods("GET")
	games.HandleFunc("/game-turn", turnHandler.Submit).Methods("POST")
	games.HandleFunc("/game-turn", turnHandler.Vote).Methods("PATCH")
	games.HandleFunc("/game-turn", turnHandler.Reset).Methods("DELETE")

	games.HandleFunc("/missions/zoom", dailyHandler.ListMissions).Methods("GET")
	games.HandleFunc("/missions/zoom", dailyHandler.AddMission).Methods("POST")
	games.HandleFunc("/missions/zoom", dailyHandler.RemoveMission).Methods("DELETE")

	if c.HistoryService != nil {
		historyHandler := handler.NewHistoryHandler(c.HistoryService)
		games.HandleFunc("/history", historyHandler.List).Methods("GET")
	}

	origins := c.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
}

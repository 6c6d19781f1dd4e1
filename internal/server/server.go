// Package server exposes the planner's HTTP API: task CRUD, the chat
// assistant endpoint and the caller's profile.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lilo-planner/internal/assistant"
	"lilo-planner/internal/repository"
	"lilo-planner/internal/service"
)

// Server wires the gin router to the planner services.
type Server struct {
	users  *repository.UserRepository
	tasks  *service.TaskService
	bridge *assistant.Bridge
	router *gin.Engine
}

func New(users *repository.UserRepository, tasks *service.TaskService, bridge *assistant.Bridge, jwtSecret []byte) *Server {
	router := gin.Default()

	s := &Server{
		users:  users,
		tasks:  tasks,
		bridge: bridge,
		router: router,
	}

	api := router.Group("/api", authRequired(jwtSecret))
	{
		api.GET("/auth/user", s.handleGetUser)
		api.PATCH("/auth/user", s.handleUpdateUser)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)

		api.POST("/chat", s.handleChat)
	}

	return s
}

// Handler returns the router for use with an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lilo-planner/internal/model"
	"lilo-planner/internal/service"
)

type createTaskRequest struct {
	Title             string `json:"title"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	Notes             string `json:"notes"`
	Repeat            string `json:"repeat"`
	Priority          string `json:"priority"`
	GenerateRecurring bool   `json:"generateRecurring"`
}

type updateTaskRequest struct {
	Title     *string `json:"title"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Notes     *string `json:"notes"`
	Repeat    *string `json:"repeat"`
	Priority  *string `json:"priority"`
	Completed *bool   `json:"completed"`
}

type updateUserRequest struct {
	College  *string `json:"college"`
	Timezone *string `json:"timezone"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleGetUser(c *gin.Context) {
	claims := currentClaims(c)

	// First contact creates the profile row from the token claims.
	user, err := s.users.Upsert(c.Request.Context(), &model.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	})
	if err != nil {
		log.Printf("fetch user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	input := &model.User{ID: currentUserID(c)}
	if req.College != nil {
		input.College = *req.College
	}
	if req.Timezone != nil {
		input.Timezone = *req.Timezone
	}

	user, err := s.users.Upsert(c.Request.Context(), input)
	if err != nil {
		log.Printf("update user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		log.Printf("list tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	tpl := service.TaskTemplate{
		Title:    req.Title,
		Date:     req.Date,
		Time:     req.Time,
		Notes:    req.Notes,
		Repeat:   req.Repeat,
		Priority: req.Priority,
	}

	created, expanded, err := s.tasks.Create(c.Request.Context(), currentUserID(c), tpl, req.GenerateRecurring)
	if err != nil {
		// A mid-batch failure leaves the already created prefix in
		// place; report how far the batch got.
		if len(created) > 0 {
			c.JSON(taskErrorStatus(err), gin.H{"message": err.Error(), "count": len(created)})
			return
		}
		writeTaskError(c, err)
		return
	}

	if expanded {
		c.JSON(http.StatusOK, gin.H{"tasks": created, "count": len(created)})
		return
	}
	c.JSON(http.StatusOK, created[0])
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	patch := service.TaskPatch{
		Title:     req.Title,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
		Repeat:    req.Repeat,
		Priority:  req.Priority,
		Completed: req.Completed,
	}

	task, err := s.tasks.Update(c.Request.Context(), currentUserID(c), c.Param("id"), patch)
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		log.Printf("delete task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required"})
		return
	}

	reply, err := s.bridge.HandleMessage(c.Request.Context(), currentUserID(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOracleUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "AI service is not configured. Please contact support."})
		case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			log.Printf("chat: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process chat message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply.Response, "taskCreated": reply.TaskCreated})
}

func writeTaskError(c *gin.Context, err error) {
	status := taskErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("task operation: %v", err)
		c.JSON(status, gin.H{"message": "Internal server error"})
		return
	}
	if status == http.StatusNotFound {
		c.JSON(status, gin.H{"message": "Task not found"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func taskErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

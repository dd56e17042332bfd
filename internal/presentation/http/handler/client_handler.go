package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely-api/internal/application/service"
	"github.com/sangkips/invoicely-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients, optionally filtered by ?search=
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.clientService.ListClients(c.Request.Context(), userID, paginationParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.CreateClientInput{
		UserID:      userID,
		ClientInput: req,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Get handles fetching a single client
func (h *ClientHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Update handles updating a client
func (h *ClientHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	var req service.ClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), &service.UpdateClientInput{
		UserID:      userID,
		ID:          id,
		ClientInput: req,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client. Invoices keep their snapshot.
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "client")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/pagination"
	"github.com/sangkips/invoicely-api/pkg/validation"
)

// ClientService handles client-related operations. Clients live apart from
// invoices: nothing here touches an invoice's client snapshot.
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// ClientInput holds the editable fields of a client
type ClientInput struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Address string  `json:"address" validate:"required"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	UserID uuid.UUID
	ClientInput
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	if err := validation.Struct(&input.ClientInput); err != nil {
		return nil, err
	}

	client := &entity.Client{UserID: input.UserID}
	applyClientInput(client, &input.ClientInput)

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return client, nil
}

// GetClient retrieves a client owned by userID
func (s *ClientService) GetClient(ctx context.Context, userID, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if client == nil || client.UserID != userID {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists the owner's clients, optionally filtered by name, email or company
func (s *ClientService) ListClients(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	clients, total, err := s.clientRepo.List(ctx, userID, params, search)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	UserID uuid.UUID
	ID     uuid.UUID
	ClientInput
}

// UpdateClient replaces a client's fields
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	if err := validation.Struct(&input.ClientInput); err != nil {
		return nil, err
	}

	client, err := s.GetClient(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	applyClientInput(client, &input.ClientInput)

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	return client, nil
}

// DeleteClient deletes a client. Invoices keep their snapshot.
func (s *ClientService) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, userID, id); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return apperror.NewPersistenceError(err)
	}
	return nil
}

func applyClientInput(client *entity.Client, input *ClientInput) {
	client.Name = strings.TrimSpace(input.Name)
	client.Email = strings.TrimSpace(input.Email)
	client.Address = strings.TrimSpace(input.Address)
	client.Company = trimmedOrNil(input.Company)
	client.Phone = trimmedOrNil(input.Phone)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

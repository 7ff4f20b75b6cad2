package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/avetra/support-bot-backend/internal/core/domain"
	"github.com/avetra/support-bot-backend/internal/core/ports"
)

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountActiveByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) ListActiveCreatedSince(ctx context.Context, since time.Time) ([]*domain.Ticket, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) LatestByOwner(ctx context.Context, ownerID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockBlacklistRepository is a mock implementation of ports.BlacklistRepository
type MockBlacklistRepository struct {
	mock.Mock
}

func NewMockBlacklistRepository() *MockBlacklistRepository {
	return &MockBlacklistRepository{}
}

func (m *MockBlacklistRepository) GetByUserID(ctx context.Context, userID string) (*domain.BlacklistEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlacklistEntry), args.Error(1)
}

func (m *MockBlacklistRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlacklistRepository) Add(ctx context.Context, entry *domain.BlacklistEntry) (*domain.BlacklistEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlacklistEntry), args.Error(1)
}

func (m *MockBlacklistRepository) Remove(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAdminRepository is a mock implementation of ports.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{}
}

func (m *MockAdminRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.Admin, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) Add(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	args := m.Called(ctx, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminRepository) Remove(ctx context.Context, telegramID string) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, actorID, text string) error {
	args := m.Called(ctx, actorID, text)
	return args.Error(0)
}

func (m *MockNotifier) SendMenu(ctx context.Context, actorID, text string) error {
	args := m.Called(ctx, actorID, text)
	return args.Error(0)
}

// MockCreationRecorder is a mock implementation of ports.CreationRecorder
type MockCreationRecorder struct {
	mock.Mock
}

func NewMockCreationRecorder() *MockCreationRecorder {
	return &MockCreationRecorder{}
}

func (m *MockCreationRecorder) RecordCreation() {
	m.Called()
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockBlacklistService is a mock implementation of ports.BlacklistService
type MockBlacklistService struct {
	mock.Mock
}

func NewMockBlacklistService() *MockBlacklistService {
	return &MockBlacklistService{}
}

func (m *MockBlacklistService) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistService) Block(ctx context.Context, userID, reason, blockingAdmin string) (*domain.BlacklistEntry, error) {
	args := m.Called(ctx, userID, reason, blockingAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlacklistEntry), args.Error(1)
}

func (m *MockBlacklistService) Unblock(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockBlacklistService) BlockedUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAdminService is a mock implementation of ports.AdminService
type MockAdminService struct {
	mock.Mock
}

func NewMockAdminService() *MockAdminService {
	return &MockAdminService{}
}

func (m *MockAdminService) Reconcile(ctx context.Context, configuredIDs []string) error {
	args := m.Called(ctx, configuredIDs)
	return args.Error(0)
}

func (m *MockAdminService) IsAdmin(ctx context.Context, actorID string) (bool, error) {
	args := m.Called(ctx, actorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminService) List(ctx context.Context) ([]*domain.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Admin), args.Error(1)
}

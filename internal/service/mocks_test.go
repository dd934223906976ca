package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBorrowRequestNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, start, end time.Time) error {
	args := m.Called(ctx, lender, borrowerName, itemTitle, start, end)
	return args.Error(0)
}

func (m *MockEmailService) SendRequestApprovedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string, fee decimal.Decimal) error {
	args := m.Called(ctx, borrower, lenderName, itemTitle, fee)
	return args.Error(0)
}

func (m *MockEmailService) SendRequestDeniedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string) error {
	args := m.Called(ctx, borrower, lenderName, itemTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendPaymentReceivedNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, fee decimal.Decimal, due time.Time) error {
	args := m.Called(ctx, lender, borrowerName, itemTitle, fee, due)
	return args.Error(0)
}

func (m *MockEmailService) SendReturnConfirmedNotification(ctx context.Context, borrower Recipient, itemTitle string) error {
	args := m.Called(ctx, borrower, itemTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, borrower Recipient, itemTitle string, daysOverdue int) error {
	args := m.Called(ctx, borrower, itemTitle, daysOverdue)
	return args.Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	args := m.Called(ctx, to, toName, subject, body)
	return args.Error(0)
}

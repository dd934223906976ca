package service

import (
	"context"
	"fmt"
	"time"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/lifecycle"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/rating"
	"lendlocal-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// lendingService runs every borrow transition inside one store transaction.
// Rows are always locked in the order transaction, request, item, user.
// Notifications go out only after commit and their failures are logged.
type lendingService struct {
	store    repository.Store
	emailSvc EmailService
	now      func() time.Time
}

func NewLendingService(store repository.Store, emailSvc EmailService, opts ...Option) LendingService {
	o := buildOptions(opts)
	return &lendingService{store: store, emailSvc: emailSvc, now: o.now}
}

// CreateRequest maps onto createBorrowRequest.
func (s *lendingService) CreateRequest(ctx context.Context, borrowerID, itemID string, start, end time.Time, message string) (*domain.BorrowRequest, error) {
	logger.EnterMethod("lendingService.CreateRequest", "borrowerID", borrowerID, "itemID", itemID)
	now := s.now()

	var req domain.BorrowRequest
	var item *domain.Item
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		item, err = tx.Items().GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		req, err = lifecycle.CreateRequest(*item, borrowerID, start, end, message, now)
		if err != nil {
			return err
		}
		return tx.Requests().Create(ctx, &req)
	})
	if err != nil {
		logger.ExitMethodWithError("lendingService.CreateRequest", err, "itemID", itemID)
		return nil, fmt.Errorf("create borrow request for item %s: %w", itemID, err)
	}
	logger.Transition("borrow_request", req.ID, "", req.Status, "itemID", itemID, "borrowerID", borrowerID)

	lender, borrower := s.parties(ctx, req.LenderUserID, req.BorrowerUserID)
	s.notify(ctx, "borrow_request", func() error {
		return s.emailSvc.SendBorrowRequestNotification(ctx, recipient(lender), displayName(borrower), item.Title, req.RequestedStartDate, req.RequestedEndDate)
	})

	logger.ExitMethod("lendingService.CreateRequest", "requestID", req.ID)
	return &req, nil
}

// ApproveRequest maps onto approveBorrowRequest. Other pending requests for
// the same item are left alone; the first one to pay wins.
func (s *lendingService) ApproveRequest(ctx context.Context, lenderID, requestID string) (*domain.BorrowRequest, error) {
	now := s.now()

	var req domain.BorrowRequest
	var item *domain.Item
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		item, err = tx.Items().GetByID(ctx, current.ItemID)
		if err != nil {
			return err
		}
		req, err = lifecycle.Approve(*current, *item, lenderID, now)
		if err != nil {
			return err
		}
		return tx.Requests().Update(ctx, &req)
	})
	if err != nil {
		return nil, fmt.Errorf("approve borrow request %s: %w", requestID, err)
	}
	logger.Transition("borrow_request", req.ID, domain.BorrowRequestStatusPending, req.Status, "quotedFee", req.QuotedFee.String())

	lender, borrower := s.parties(ctx, req.LenderUserID, req.BorrowerUserID)
	s.notify(ctx, "request_approved", func() error {
		return s.emailSvc.SendRequestApprovedNotification(ctx, recipient(borrower), displayName(lender), item.Title, req.QuotedFee)
	})
	return &req, nil
}

// DenyRequest maps onto denyBorrowRequest.
func (s *lendingService) DenyRequest(ctx context.Context, lenderID, requestID string) (*domain.BorrowRequest, error) {
	now := s.now()

	var req domain.BorrowRequest
	var item *domain.Item
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		req, err = lifecycle.Deny(*current, lenderID, now)
		if err != nil {
			return err
		}
		item, err = tx.Items().GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		return tx.Requests().Update(ctx, &req)
	})
	if err != nil {
		return nil, fmt.Errorf("deny borrow request %s: %w", requestID, err)
	}
	logger.Transition("borrow_request", req.ID, domain.BorrowRequestStatusPending, req.Status)

	lender, borrower := s.parties(ctx, req.LenderUserID, req.BorrowerUserID)
	s.notify(ctx, "request_denied", func() error {
		return s.emailSvc.SendRequestDeniedNotification(ctx, recipient(borrower), displayName(lender), item.Title)
	})
	return &req, nil
}

// PayRequest maps onto createTransaction. Availability is re-checked with the
// item row locked, so of two concurrent payments for one item exactly one
// commits and the other fails with domain.ErrUnavailable.
func (s *lendingService) PayRequest(ctx context.Context, borrowerID, requestID string, amount decimal.Decimal, paymentRef string) (*LoanView, error) {
	logger.EnterMethod("lendingService.PayRequest", "borrowerID", borrowerID, "requestID", requestID, "amount", amount.String())
	now := s.now()

	var res lifecycle.PayResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		item, err := tx.Items().GetByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		res, err = lifecycle.Pay(*req, *item, borrowerID, amount, paymentRef, now)
		if err != nil {
			return err
		}
		if err := tx.Transactions().Create(ctx, &res.Transaction); err != nil {
			return err
		}
		if err := tx.Requests().Update(ctx, &res.Request); err != nil {
			return err
		}
		return tx.Items().Update(ctx, &res.Item)
	})
	if err != nil {
		logger.ExitMethodWithError("lendingService.PayRequest", err, "requestID", requestID)
		return nil, fmt.Errorf("pay borrow request %s: %w", requestID, err)
	}
	logger.Transition("transaction", res.Transaction.ID, "", res.Transaction.Status, "requestID", requestID, "itemID", res.Item.ID, "feePaid", res.Transaction.FeePaid.String())

	lender, borrower := s.parties(ctx, res.Transaction.LenderUserID, res.Transaction.BorrowerUserID)
	s.notify(ctx, "payment_received", func() error {
		return s.emailSvc.SendPaymentReceivedNotification(ctx, recipient(lender), displayName(borrower), res.Item.Title, res.Transaction.FeePaid, res.Transaction.DueDate)
	})

	view := newLoanView(res.Transaction, now)
	logger.ExitMethod("lendingService.PayRequest", "transactionID", res.Transaction.ID)
	return &view, nil
}

// MarkReturned maps onto markItemReturned.
func (s *lendingService) MarkReturned(ctx context.Context, lenderID, transactionID string) (*LoanView, error) {
	now := s.now()

	var res lifecycle.ReturnResult
	var wasOverdue bool
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		loan, err := tx.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		req, err := tx.Requests().GetByID(ctx, loan.RequestID)
		if err != nil {
			return err
		}
		item, err := tx.Items().GetByID(ctx, loan.ItemID)
		if err != nil {
			return err
		}
		wasOverdue = loan.IsOverdue(now)
		res, err = lifecycle.MarkReturned(*loan, *item, *req, lenderID, now)
		if err != nil {
			return err
		}
		if err := tx.Transactions().Update(ctx, &res.Transaction); err != nil {
			return err
		}
		if err := tx.Requests().Update(ctx, &res.Request); err != nil {
			return err
		}
		return tx.Items().Update(ctx, &res.Item)
	})
	if err != nil {
		return nil, fmt.Errorf("mark transaction %s returned: %w", transactionID, err)
	}
	from := domain.TransactionStatusActive
	if wasOverdue {
		from = domain.TransactionStatusOverdue
	}
	logger.Transition("transaction", transactionID, from, res.Transaction.Status, "itemID", res.Item.ID)

	_, borrower := s.parties(ctx, "", res.Transaction.BorrowerUserID)
	s.notify(ctx, "return_confirmed", func() error {
		return s.emailSvc.SendReturnConfirmedNotification(ctx, recipient(borrower), res.Item.Title)
	})

	view := newLoanView(res.Transaction, now)
	return &view, nil
}

// SubmitReview stores a review of the counterparty and folds the score into
// the reviewee's rating in the same transaction.
func (s *lendingService) SubmitReview(ctx context.Context, reviewerID, transactionID string, score int, comment string) (*domain.Review, error) {
	now := s.now()

	var review domain.Review
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		loan, err := tx.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		existing, err := tx.Reviews().ListByTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		review, err = lifecycle.SubmitReview(*loan, reviewerID, score, comment, existing, now)
		if err != nil {
			return err
		}
		if err := tx.Reviews().Create(ctx, &review); err != nil {
			return err
		}
		reviewee, err := tx.Users().GetByID(ctx, review.RevieweeID)
		if err != nil {
			return err
		}
		if _, err := rating.ApplyReview(reviewee, review.Rating); err != nil {
			return err
		}
		reviewee.UpdatedOn = now
		return tx.Users().Update(ctx, reviewee)
	})
	if err != nil {
		return nil, fmt.Errorf("review transaction %s: %w", transactionID, err)
	}
	logger.Info("Review submitted", "transactionID", transactionID, "reviewerID", reviewerID, "revieweeID", review.RevieweeID, "rating", review.Rating)
	return &review, nil
}

func (s *lendingService) ListRequests(ctx context.Context, userID string, role Role) ([]domain.BorrowRequest, error) {
	switch role {
	case RoleBorrower:
		return s.store.Requests().ListByBorrower(ctx, userID)
	case RoleLender:
		return s.store.Requests().ListByLender(ctx, userID)
	}
	return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidState)
}

func (s *lendingService) ListTransactions(ctx context.Context, userID string, role Role) ([]LoanView, error) {
	var (
		txs []domain.Transaction
		err error
	)
	switch role {
	case RoleBorrower:
		txs, err = s.store.Transactions().ListByBorrower(ctx, userID)
	case RoleLender:
		txs, err = s.store.Transactions().ListByLender(ctx, userID)
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]LoanView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, newLoanView(tx, now))
	}
	return views, nil
}

// GetTransaction is visible to the two parties of the loan only.
func (s *lendingService) GetTransaction(ctx context.Context, userID, transactionID string) (*LoanView, error) {
	tx, err := s.store.Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Counterparty(userID) == "" {
		return nil, domain.ErrNotAuthorized
	}
	view := newLoanView(*tx, s.now())
	return &view, nil
}

// SendOverdueReminders e-mails the borrower of every overdue loan and returns
// how many reminders went out.
func (s *lendingService) SendOverdueReminders(ctx context.Context) (int, error) {
	now := s.now()
	active, err := s.store.Transactions().ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active transactions: %w", err)
	}

	sent := 0
	for _, tx := range active {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if !tx.IsOverdue(now) {
			continue
		}
		item, err := s.store.Items().GetByID(ctx, tx.ItemID)
		if err != nil {
			logger.Warn("Skipping overdue reminder, item lookup failed", "transactionID", tx.ID, "error", err)
			continue
		}
		borrower, err := s.store.Users().GetByID(ctx, tx.BorrowerUserID)
		if err != nil {
			logger.Warn("Skipping overdue reminder, borrower lookup failed", "transactionID", tx.ID, "error", err)
			continue
		}
		daysOverdue := -tx.Timing(now).DaysRemaining
		if err := s.emailSvc.SendOverdueReminder(ctx, recipient(borrower), item.Title, daysOverdue); err != nil {
			logger.Error("Failed to send overdue reminder", "transactionID", tx.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// parties loads both users for a notification. Missing users come back nil.
func (s *lendingService) parties(ctx context.Context, lenderID, borrowerID string) (*domain.User, *domain.User) {
	var lender, borrower *domain.User
	if lenderID != "" {
		lender, _ = s.store.Users().GetByID(ctx, lenderID)
	}
	if borrowerID != "" {
		borrower, _ = s.store.Users().GetByID(ctx, borrowerID)
	}
	return lender, borrower
}

func (s *lendingService) notify(ctx context.Context, kind string, send func() error) {
	if err := send(); err != nil {
		logger.ErrorContext(ctx, "Failed to send notification", "kind", kind, "error", err)
	}
}

func recipient(u *domain.User) Recipient {
	if u == nil {
		return Recipient{}
	}
	return Recipient{Name: u.DisplayName, Email: u.Email}
}

func displayName(u *domain.User) string {
	if u == nil || u.DisplayName == "" {
		return "A neighbour"
	}
	return u.DisplayName
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"
	"lendlocal-backend/internal/security"

	"github.com/google/uuid"
)

// userService signs users in by wallet. A session is only issued once the
// wallet has signed a server challenge.
type userService struct {
	store  repository.Store
	tokens security.TokenManager
	now    func() time.Time
}

func NewUserService(store repository.Store, tokens security.TokenManager, opts ...Option) UserService {
	o := buildOptions(opts)
	return &userService{store: store, tokens: tokens, now: o.now}
}

func (s *userService) Challenge(ctx context.Context, walletAddress string) (security.Challenge, error) {
	wallet, err := security.ChecksumAddress(walletAddress)
	if err != nil {
		return security.Challenge{}, err
	}
	ch, err := s.tokens.GenerateChallenge(wallet)
	if err != nil {
		return security.Challenge{}, fmt.Errorf("issue challenge: %w", err)
	}
	return ch, nil
}

func (s *userService) SignIn(ctx context.Context, creds SignInCredentials) (*domain.User, string, error) {
	userID := strings.TrimSpace(creds.UserID)
	displayName := strings.TrimSpace(creds.DisplayName)

	wallet, err := security.ChecksumAddress(creds.WalletAddress)
	if err != nil {
		return nil, "", err
	}
	if err := s.verifyOwnership(wallet, creds.Challenge, creds.Signature); err != nil {
		logger.Warn("Wallet sign-in refused", "wallet", wallet, "error", err)
		return nil, "", fmt.Errorf("sign in: %w", err)
	}

	var user *domain.User
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = s.resolve(ctx, tx, userID, displayName, wallet)
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("sign in: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.WalletAddress)
	if err != nil {
		return nil, "", fmt.Errorf("issue access token: %w", err)
	}
	logger.Info("User signed in", "userID", user.ID)
	return user, token, nil
}

// verifyOwnership redeems the challenge and checks that the signature over
// its message recovers to wallet.
func (s *userService) verifyOwnership(wallet, challenge, signature string) error {
	if challenge == "" || signature == "" {
		return security.ErrInvalidSignature
	}
	claims, err := s.tokens.RedeemChallenge(challenge)
	if err != nil {
		return err
	}
	if claims.WalletAddress != wallet || claims.IssuedAt == nil {
		return security.ErrInvalidSignature
	}
	signer, err := security.RecoverAddress(security.SignInMessage(wallet, claims.ID, claims.IssuedAt.Time), signature)
	if err != nil {
		return err
	}
	if signer != wallet {
		return security.ErrInvalidSignature
	}
	return nil
}

// resolve finds the user bound to wallet, creating it on first sign-in. A
// user id that names someone other than the wallet's owner is refused.
func (s *userService) resolve(ctx context.Context, tx repository.Store, userID, displayName, wallet string) (*domain.User, error) {
	u, err := tx.Users().GetByWallet(ctx, wallet)
	switch {
	case err == nil:
		if userID != "" && userID != u.ID {
			return nil, domain.ErrNotAuthorized
		}
		return u, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := tx.Users().GetByID(ctx, userID); err == nil {
		return nil, domain.ErrNotAuthorized
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if displayName == "" {
		displayName = "Neighbour"
	}
	now := s.now()
	u = &domain.User{
		ID:            userID,
		DisplayName:   displayName,
		WalletAddress: wallet,
		CreatedOn:     now,
		UpdatedOn:     now,
	}
	if err := tx.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("User created on first sign-in", "userID", u.ID)
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if update.DisplayName != nil {
			if name := strings.TrimSpace(*update.DisplayName); name != "" {
				user.DisplayName = name
			}
		}
		if update.Bio != nil {
			user.Bio = strings.TrimSpace(*update.Bio)
		}
		if update.ProfilePicURL != nil {
			user.ProfilePicURL = strings.TrimSpace(*update.ProfilePicURL)
		}
		if update.Email != nil {
			user.Email = strings.TrimSpace(*update.Email)
		}
		user.UpdatedOn = s.now()
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}
	return user, nil
}

// ListReviews returns the reviews a user has received, newest first.
func (s *userService) ListReviews(ctx context.Context, userID string) ([]domain.Review, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Reviews().ListByReviewee(ctx, userID)
}

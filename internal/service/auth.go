package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
	"github.com/bizchat/internal/sms"
	"github.com/bizchat/internal/storage"
	"github.com/bizchat/internal/token"
)

const codeLength = 6

// AuthService is the identity service: login codes, tokens and sessions.
type AuthService struct {
	tx        *repository.TxManager
	users     *repository.UserRepository
	directory *UserService
	sessions  *repository.SessionRepository
	codes     storage.CodeStore
	sender    sms.Sender
	tokens    *token.Issuer
	validator *validator.Validate
	codeTTL   time.Duration
}

func NewAuthService(
	tx *repository.TxManager,
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	codes storage.CodeStore,
	sender sms.Sender,
	tokens *token.Issuer,
	v *validator.Validate,
	codeTTL time.Duration,
) *AuthService {
	return &AuthService{
		tx: tx, users: users, directory: NewUserService(users), sessions: sessions, codes: codes,
		sender: sender, tokens: tokens, validator: v, codeTTL: codeTTL,
	}
}

// RequestCode stores a fresh code for the phone and hands it to the SMS sender.
// Without an SMS provider the code is returned in the result.
func (s *AuthService) RequestCode(ctx context.Context, req model.SendCodeRequest) (*model.SendCodeResult, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		return nil, NewValidationError("Phone is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	allowed, err := s.codes.CheckRateLimit(ctx, req.Phone)
	if err != nil {
		return nil, NewInternalError("auth.RequestCode", err)
	}
	if !allowed {
		return nil, NewRateLimitedError("Too many code requests, try again later")
	}
	code, err := generateCode(codeLength)
	if err != nil {
		return nil, NewInternalError("auth.RequestCode", err)
	}
	if err := s.codes.SetCode(ctx, req.Phone, code); err != nil {
		return nil, NewInternalError("auth.RequestCode", err)
	}
	if err := s.sender.SendCode(ctx, req.Phone, code); err != nil {
		logger.Errorf("send-code: delivery to %s failed: %v", req.Phone, err)
	}
	res := &model.SendCodeResult{Message: "SMS code sent", ExpiresIn: int(s.codeTTL / time.Second)}
	if s.sender.Dev() {
		res.Code = code
	}
	return res, nil
}

// VerifyCode consumes the code and logs the phone in, creating the user on first login.
func (s *AuthService) VerifyCode(ctx context.Context, req model.VerifyCodeRequest) (*model.AuthResult, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Code = strings.TrimSpace(req.Code)
	if req.Phone == "" || req.Code == "" {
		return nil, NewValidationError("Phone and code are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	stored, err := s.codes.GetCode(ctx, req.Phone)
	if err != nil {
		return nil, NewInternalError("auth.VerifyCode", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(req.Code)) != 1 {
		return nil, NewValidationError("Invalid or expired code")
	}
	if err := s.codes.DeleteCode(ctx, req.Phone); err != nil {
		return nil, NewInternalError("auth.VerifyCode", err)
	}

	var res model.AuthResult
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetOrCreateByPhone(ctx, req.Phone, model.DefaultFullName)
		if err != nil {
			return err
		}
		sess := &model.Session{
			ID:         uuid.New().String(),
			UserID:     user.ID,
			DeviceInfo: req.DeviceInfo,
		}
		sess.Token, sess.ExpiresAt, err = s.tokens.Issue(user.ID, sess.ID)
		if err != nil {
			return err
		}
		if err := s.sessions.Create(ctx, sess); err != nil {
			return err
		}
		if err := s.users.SetOnline(ctx, user.ID, true); err != nil {
			return err
		}
		user.IsOnline = true
		res = model.AuthResult{Token: sess.Token, User: user.ToPublic()}
		return nil
	})
	if err != nil {
		return nil, wrap("auth.VerifyCode", err)
	}
	return &res, nil
}

// VerifyToken checks the signature, a live session for the token and the user behind it.
func (s *AuthService) VerifyToken(ctx context.Context, raw string) (*model.UserResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, NewValidationError("Token is required")
	}
	userID, err := s.tokens.Verify(raw)
	if errors.Is(err, token.ErrExpired) {
		return nil, NewAuthenticationError("Token expired")
	}
	if err != nil {
		return nil, NewAuthenticationError("Invalid token")
	}
	if _, err := s.sessions.GetLiveByToken(ctx, raw); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewAuthenticationError("Invalid or expired token")
		}
		return nil, NewInternalError("auth.VerifyToken", err)
	}
	user, err := s.directory.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserResult{User: user.ToPublic()}, nil
}

func (s *AuthService) ListSessions(ctx context.Context, userID int64) (*model.SessionsResponse, error) {
	list, err := s.sessions.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("auth.ListSessions", err)
	}
	return &model.SessionsResponse{Sessions: list}, nil
}

func generateCode(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}

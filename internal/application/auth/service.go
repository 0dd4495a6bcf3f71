package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventure/identity-api/internal/domain"
	jwtinfra "github.com/eventure/identity-api/internal/infrastructure/jwt"
	"github.com/eventure/identity-api/internal/pkg/id"
	pkgotp "github.com/eventure/identity-api/internal/pkg/otp"
	"golang.org/x/crypto/bcrypt"
)

// Ephemeral store key layout. Both keys are per-email: at most one pending
// registration and one live OTP exist for an address at any instant.
func otpKey(email string) string     { return "otp:" + email }
func sessionKey(email string) string { return "user_session:" + email }

type RegisterRequest struct {
	Email            string              `json:"email" validate:"required,email"`
	Password         string              `json:"password" validate:"required,min=8,max=72"`
	Name             string              `json:"name" validate:"required"`
	Role             string              `json:"-"` // set from the route, not the body
	OrganizationName string              `json:"organization_name"`
	ContactInfo      *domain.ContactInfo `json:"contact_info"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what a successfully verified or logged-in client receives.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, subjectID string) (*domain.User, error)
}

// userDirectory is durable storage of verified identities.
type userDirectory interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, subjectID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

// ephemeralStore is a TTL key-value store; the store itself enforces expiry.
// Consume is the single-use primitive: it atomically reads and deletes a key,
// returning its remaining TTL so the record can be restored on failure.
type ephemeralStore interface {
	Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, out interface{}) error
	Delete(ctx context.Context, key string) error
	Consume(ctx context.Context, key string, out interface{}) (time.Duration, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type tokenIssuer interface {
	SignAccess(subjectID, role string) (string, error)
	SignRefresh(subjectID, role string) (string, error)
	VerifyRefresh(token string) (*jwtinfra.Claims, error)
}

type service struct {
	users           userDirectory
	sessions        ephemeralStore
	mailer          mailer
	smsSender       smsSender // optional, best-effort organizer SMS mirror
	tokens          tokenIssuer
	generateOTP     func() (string, error)
	otpTTL          time.Duration
	resendOTPTTL    time.Duration
	registrationTTL time.Duration
}

type ServiceDeps struct {
	Users           userDirectory
	Sessions        ephemeralStore
	Mailer          mailer
	SMSSender       smsSender
	Tokens          tokenIssuer
	GenerateOTP     func() (string, error) // nil = crypto/rand 6-digit code
	OTPTTL          time.Duration
	ResendOTPTTL    time.Duration
	RegistrationTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	gen := deps.GenerateOTP
	if gen == nil {
		gen = pkgotp.New
	}
	return &service{
		users:           deps.Users,
		sessions:        deps.Sessions,
		mailer:          deps.Mailer,
		smsSender:       deps.SMSSender,
		tokens:          deps.Tokens,
		generateOTP:     gen,
		otpTTL:          deps.OTPTTL,
		resendOTPTTL:    deps.ResendOTPTTL,
		registrationTTL: deps.RegistrationTTL,
	}
}

// Register starts the two-phase flow: it writes nothing durable. The hashed
// payload and a fresh OTP land in the ephemeral store, each under its own TTL,
// and the code goes out by email. A failed dispatch aborts the whole call so
// the client is never left waiting on a code that cannot arrive. Registering
// again for the same email overwrites both records.
func (s *service) Register(ctx context.Context, req RegisterRequest) error {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return fmt.Errorf("email %s: %w", req.Email, domain.ErrDuplicateEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	reg := domain.Registration{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if req.Role == domain.RoleOrganizer {
		reg.Organizer = &domain.OrganizerProfile{
			OrganizationName: req.OrganizationName,
			ContactInfo:      req.ContactInfo,
		}
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	code, err := s.generateOTP()
	if err != nil {
		return err
	}
	if err := s.dispatchOTP(ctx, reg, code); err != nil {
		return err
	}

	if err := s.sessions.Put(ctx, otpKey(req.Email), domain.PendingOTP{Code: code}, s.otpTTL); err != nil {
		return err
	}
	return s.sessions.Put(ctx, sessionKey(req.Email), reg, s.registrationTTL)
}

// VerifyOTP finishes the flow. The pending registration is consumed with an
// atomic read-and-delete, so of two concurrent verifies for the same email
// exactly one provisions a user; the loser sees ErrSessionExpired. If the
// durable write fails the consumed record is written back (with its remaining
// TTL) so the client can retry.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	var pending domain.PendingOTP
	if err := s.sessions.Get(ctx, otpKey(email), &pending); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrOTPExpired)
		}
		return nil, err
	}
	// Mismatch leaves the pending OTP in place: the user may retry until TTL expiry.
	if pending.Code != code {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrInvalidOTP)
	}

	var reg domain.Registration
	ttlLeft, err := s.sessions.Consume(ctx, sessionKey(email), &reg)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("registration for %s: %w", email, domain.ErrSessionExpired)
		}
		return nil, err
	}

	u, err := buildUser(reg)
	if err != nil {
		s.restoreRegistration(ctx, email, reg, ttlLeft)
		return nil, err
	}

	if err := s.users.Put(ctx, u); err != nil {
		s.restoreRegistration(ctx, email, reg, ttlLeft)
		return nil, fmt.Errorf("create user: %w", domain.ErrProvisioningFailed)
	}

	// Best-effort: the user exists, so a failed delete must not fail the
	// request. The registration record is already consumed, so a leftover OTP
	// key cannot re-provision.
	if err := s.sessions.Delete(ctx, otpKey(email)); err != nil {
		slog.Warn("failed to delete pending otp", "email", email, "err", err)
	}

	return s.issueTokens(u)
}

// ResendOTP replaces the live code for an in-flight registration. It does not
// touch the registration record or its TTL: the 10-minute registration window
// is a hard limit, and resending must not be a way to extend it. Once that
// window lapses, VerifyOTP fails even with a fresh code and the client
// restarts registration.
func (s *service) ResendOTP(ctx context.Context, email string) error {
	var reg domain.Registration
	if err := s.sessions.Get(ctx, sessionKey(email), &reg); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("registration for %s: %w", email, domain.ErrSessionExpired)
		}
		return err
	}

	code, err := s.generateOTP()
	if err != nil {
		return err
	}
	if err := s.dispatchOTP(ctx, reg, code); err != nil {
		return err
	}
	return s.sessions.Put(ctx, otpKey(email), domain.PendingOTP{Code: code}, s.resendOTPTTL)
}

// Login only ever touches durable, already-verified users; no ephemeral state
// is involved.
func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("password for %s: %w", email, domain.ErrInvalidCredentials)
	}
	return s.issueTokens(u)
}

// Refresh verifies the refresh token and re-fetches the user by subject id
// rather than trusting the claims, so deleted accounts stop refreshing. The
// refresh token itself is not rotated; it stays valid until its own expiry.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, *domain.User, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", nil, err
	}
	u, err := s.users.Get(ctx, claims.SubjectID)
	if err != nil {
		return "", nil, fmt.Errorf("subject %s: %w", claims.SubjectID, domain.ErrUserNotFound)
	}
	access, err := s.tokens.SignAccess(u.SubjectID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return access, u, nil
}

func (s *service) CurrentUser(ctx context.Context, subjectID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", subjectID, domain.ErrUserNotFound)
	}
	return u, nil
}

// dispatchOTP emails the code (fatal on failure) and, for organizers that
// supplied a contact phone, mirrors it over SMS best-effort.
func (s *service) dispatchOTP(ctx context.Context, reg domain.Registration, code string) error {
	body := fmt.Sprintf("Your verification code is %s. It expires in a few minutes.", code)
	if err := s.mailer.SendEmail(reg.Email, "Verify your email", body); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	if s.smsSender != nil && reg.Organizer != nil && reg.Organizer.ContactInfo != nil && reg.Organizer.ContactInfo.Phone != "" {
		if err := s.smsSender.SendSMS(ctx, reg.Organizer.ContactInfo.Phone, "Your verification code: "+code); err != nil {
			slog.Warn("failed to send otp sms", "email", reg.Email, "err", err)
		}
	}
	return nil
}

func (s *service) restoreRegistration(ctx context.Context, email string, reg domain.Registration, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.registrationTTL
	}
	if err := s.sessions.Put(ctx, sessionKey(email), reg, ttl); err != nil {
		slog.Warn("failed to restore pending registration", "email", email, "err", err)
	}
}

// buildUser constructs the durable record from a consumed payload. This is
// the only place a User is created, and it is always verified.
func buildUser(reg domain.Registration) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		SubjectID:    id.New(),
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		Name:         reg.Name,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch reg.Role {
	case domain.RoleUser:
		u.Role = domain.RoleUser
	case domain.RoleOrganizer:
		u.Role = domain.RoleOrganizer
		u.Organizer = reg.Organizer
	default:
		return nil, fmt.Errorf("invalid role %q in pending registration: %w", reg.Role, domain.ErrProvisioningFailed)
	}
	return u, nil
}

func (s *service) issueTokens(u *domain.User) (*AuthResult, error) {
	access, err := s.tokens.SignAccess(u.SubjectID, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(u.SubjectID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: u}, nil
}

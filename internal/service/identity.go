package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/farisali522/birojasaapp/internal/config"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/notify"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// ErrRegistrationRequired is returned when a verified email belongs to
// nobody yet and no profile data was submitted. The frontend shows the
// signup form and retries with name and phone filled in.
var ErrRegistrationRequired = errors.New("registration required")

// Actor is the identity resolved once per request: a customer, an employee
// with a role, or unknown. It is passed explicitly into every lifecycle
// action instead of being re-queried per check.
type Actor struct {
	Customer *domain.Customer
	Employee *domain.Employee
}

func (a Actor) IsCustomer() bool { return a.Customer != nil }
func (a Actor) IsEmployee() bool { return a.Employee != nil }
func (a Actor) Unknown() bool    { return a.Customer == nil && a.Employee == nil }

// Role returns the employee role, or empty for customers and unknowns.
func (a Actor) Role() domain.EmployeeRole {
	if a.Employee == nil {
		return ""
	}
	return a.Employee.Role
}

func (a Actor) hasRole(roles ...domain.EmployeeRole) bool {
	for _, r := range roles {
		if a.Role() == r {
			return true
		}
	}
	return false
}

// employeeID returns a pointer suitable for audit entries: nil for
// customer/system actions.
func (a Actor) employeeID() *int64 {
	if a.Employee == nil {
		return nil
	}
	id := a.Employee.ID
	return &id
}

type IdentityService struct {
	Config       config.Config
	Customers    ports.CustomerStore
	Employees    ports.EmployeeStore
	Notifier     ports.Notifier
	Logger       *slog.Logger
	FirebaseAuth *fbauth.Client
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Actor        Actor
	LandingRoute string
	ExpiresAt    time.Time
}

type FirebaseLoginInput struct {
	IDToken string
	Name    string
	Phone   string
	Address string
}

// ResolveIdentity maps a verified email onto the owning record. Employees
// win over customers, matching how the back office treats staff emails.
func (s IdentityService) ResolveIdentity(ctx context.Context, email string) (Actor, error) {
	emp, err := s.Employees.GetByEmail(ctx, email)
	if err == nil {
		return Actor{Employee: emp}, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return Actor{}, err
	}

	cust, err := s.Customers.GetByEmail(ctx, email)
	if err == nil {
		return Actor{Customer: cust}, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return Actor{}, err
	}
	return Actor{}, nil
}

// ActorByID rebuilds the actor from validated token claims. The record is
// re-read so role changes take effect on the next request, not at token
// expiry.
func (s IdentityService) ActorByID(ctx context.Context, kind string, id int64) (Actor, error) {
	switch kind {
	case "employee":
		emp, err := s.Employees.GetByID(ctx, id)
		if err != nil {
			return Actor{}, err
		}
		return Actor{Employee: emp}, nil
	case "customer":
		cust, err := s.Customers.GetByID(ctx, id)
		if err != nil {
			return Actor{}, err
		}
		return Actor{Customer: cust}, nil
	default:
		return Actor{}, ErrInvalidToken
	}
}

// LoginWithFirebase verifies the identity-provider token, resolves the
// actor and issues session tokens. First-time customers are created on the
// spot when profile data is present.
func (s IdentityService) LoginWithFirebase(ctx context.Context, in FirebaseLoginInput) (*AuthResult, error) {
	email, err := s.verifyIDToken(ctx, in.IDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	actor, err := s.ResolveIdentity(ctx, email)
	if err != nil {
		return nil, err
	}

	if actor.Unknown() {
		if in.Name == "" {
			return nil, ErrRegistrationRequired
		}
		cust, err := s.Customers.Create(ctx, ports.CreateCustomerInput{
			Code:    "PLG-" + strings.ToUpper(uuid.NewString()[:8]),
			Name:    in.Name,
			Email:   email,
			Phone:   in.Phone,
			Address: in.Address,
		})
		if err != nil {
			return nil, err
		}
		actor = Actor{Customer: cust}
		if s.Notifier != nil {
			s.Notifier.Notify(notify.WelcomeMessage(cust, s.Config.PublicBaseURL))
		}
	}

	return s.issueTokens(actor)
}

// LoginWithPassword is the staff fallback when the identity provider is
// unreachable. Customers have no local password.
func (s IdentityService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	emp, err := s.Employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if emp.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(Actor{Employee: emp})
}

func (s IdentityService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidToken
	}

	actor, err := s.ResolveIdentity(ctx, email)
	if err != nil {
		return nil, err
	}
	if actor.Unknown() {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(actor)
}

// LandingRoute mirrors the role-based redirect of the web frontend.
func LandingRoute(a Actor) string {
	switch a.Role() {
	case domain.RoleManager:
		return "/manager/dashboard"
	case domain.RoleFinance:
		return "/finance/dashboard"
	case domain.RoleField:
		return "/field/tasks"
	case domain.RoleAdmin:
		return "/staff/dashboard"
	default:
		return "/me/requests"
	}
}

func (s IdentityService) verifyIDToken(ctx context.Context, idToken string) (string, error) {
	switch {
	case s.FirebaseAuth != nil:
		tok, err := s.FirebaseAuth.VerifyIDToken(ctx, idToken)
		if err != nil {
			return "", fmt.Errorf("firebase token invalid: %w", err)
		}
		email, _ := tok.Claims["email"].(string)
		if email == "" {
			return "", errors.New("token carries no email claim")
		}
		return email, nil
	case s.Config.GoogleClientID != "":
		payload, err := idtoken.Validate(ctx, idToken, s.Config.GoogleClientID)
		if err != nil {
			return "", fmt.Errorf("google token invalid: %w", err)
		}
		email, _ := payload.Claims["email"].(string)
		if email == "" {
			return "", errors.New("token carries no email claim")
		}
		return email, nil
	default:
		return "", errors.New("no identity verifier configured")
	}
}

func (s IdentityService) issueTokens(actor Actor) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	var sub, email, kind, role string
	switch {
	case actor.IsEmployee():
		sub = strconv.FormatInt(actor.Employee.ID, 10)
		email = actor.Employee.Email
		kind = "employee"
		role = string(actor.Employee.Role)
	case actor.IsCustomer():
		sub = strconv.FormatInt(actor.Customer.ID, 10)
		email = actor.Customer.Email
		kind = "customer"
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        sub,
		"email":      email,
		"kind":       kind,
		"role":       role,
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        sub,
		"email":      email,
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Actor:        actor,
		LandingRoute: LandingRoute(actor),
		ExpiresAt:    accessExp,
	}, nil
}

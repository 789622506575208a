package casdoor

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/organizainador/organizer-service/internal/config"
	"github.com/organizainador/organizer-service/internal/models"
)

// ErrInvalidToken is returned when a bearer token cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// TokenParser verifies a Casdoor-issued JWT. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// IdentityProvider turns bearer tokens into organizer users.
type IdentityProvider struct {
	parser TokenParser
	now    func() time.Time
}

// NewIdentityProvider builds a provider backed by the Casdoor SDK client.
func NewIdentityProvider(cfg config.CasdoorConfig) *IdentityProvider {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return NewIdentityProviderWithParser(client)
}

func NewIdentityProviderWithParser(parser TokenParser) *IdentityProvider {
	return &IdentityProvider{parser: parser, now: time.Now}
}

// Authenticate verifies token and maps its claims to a user. The returned
// user carries no status; the local record decides that.
func (p *IdentityProvider) Authenticate(token string) (*models.User, error) {
	claims, err := p.parser.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims == nil {
		return nil, ErrInvalidToken
	}

	user := UserFromCasdoor(&claims.User)
	if user.ID == "" {
		user.ID = claims.Subject
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	seen := p.now().UTC()
	user.LastSeenAt = &seen
	return user, nil
}

// UserFromCasdoor converts a Casdoor account to the local user model.
func UserFromCasdoor(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	name := casdoorUser.DisplayName
	if name == "" {
		name = casdoorUser.Name
	}

	user := &models.User{
		ID:    casdoorUser.Id,
		Name:  name,
		Email: casdoorUser.Email,
		Role:  roleFromCasdoor(casdoorUser),
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}
	return user
}

// roleFromCasdoor collapses Casdoor roles onto the organizer's two roles.
// Admin wins over everything else.
func roleFromCasdoor(casdoorUser *casdoorsdk.User) models.UserRole {
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	var roles []models.UserRole
	for _, casdoorRole := range casdoorUser.Roles {
		if casdoorRole == nil {
			continue
		}
		roles = append(roles, mapSingleRole(casdoorRole.Name))
	}
	if mapSingleRole(casdoorUser.Type) == models.RoleAdmin {
		roles = append(roles, models.RoleAdmin)
	}

	if slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	return models.RoleStudent
}

func mapSingleRole(name string) models.UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}

package portal

import (
	"context"
	"net/http"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
)

func (c *Client) WhoAmI(ctx context.Context) (domain.WhoAmI, error) {
	var payload meResponse
	if err := c.do(ctx, "check session", http.MethodGet, "/api/me", nil, &payload); err != nil {
		return domain.WhoAmI{}, err
	}
	return domain.WhoAmI{Role: strings.TrimSpace(payload.Role), User: payload.User.toDomain()}, nil
}

func (c *Client) Login(ctx context.Context, role domain.Role, creds domain.Credentials) (domain.UserRecord, error) {
	var payload loginResponse
	req := loginRequest{Email: creds.Email, Password: creds.Password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/login/"+role.PathSegment(), req, &payload); err != nil {
		return domain.UserRecord{}, err
	}
	return payload.User.toDomain(), nil
}

func (c *Client) Register(ctx context.Context, role domain.Role, reg domain.Registration) (string, error) {
	var payload messageResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/register/"+role.PathSegment(), registrationBody(role, reg), &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}

// Logout ends the portal session. The local cookie is dropped even when the
// request fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, "logout", http.MethodPost, "/api/logout", nil, nil)
	if clearErr := c.jar.clear(ctx); clearErr != nil {
		c.logger.Warn().Err(clearErr).Msg("could not clear stored session")
	}
	return err
}

func registrationBody(role domain.Role, reg domain.Registration) map[string]any {
	body := map[string]any{
		"Name":     reg.Name,
		"Email":    reg.Email,
		"Password": reg.Password,
	}
	switch role {
	case domain.RolePatient:
		body["doctorID"] = strings.TrimSpace(reg.DoctorID)
		body["DOB"] = strings.TrimSpace(reg.DateOfBirth)
		if history := strings.TrimSpace(reg.PatientHistory); history != "" {
			body["PatientHistory"] = history
		} else {
			body["PatientHistory"] = nil
		}
	case domain.RoleDoctor:
		if specialisation := strings.TrimSpace(reg.Specialisation); specialisation != "" {
			body["Specialisation"] = specialisation
		}
	}
	return body
}

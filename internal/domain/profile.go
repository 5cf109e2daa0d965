package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Profile names a portal deployment and, optionally, the role usually used on it.
type Profile struct {
	Name    string
	BaseURL string
	Role    Role
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("validate profile: name is required")
	}
	if err := ValidateBaseURL(p.BaseURL); err != nil {
		return fmt.Errorf("validate profile %q: %w", p.Name, err)
	}
	if p.Role != "" && !p.Role.Valid() {
		return fmt.Errorf("validate profile %q: %w: %s", p.Name, ErrUnknownRole, p.Role)
	}
	return nil
}

func ValidateBaseURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base url must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("base url must include host")
	}
	return nil
}

package guard

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/campuskit/campuskit/pkg/role"
)

// Group maps a path prefix onto the roles allowed to enter it.
type Group struct {
	Prefix string   `yaml:"prefix"`
	Roles  []string `yaml:"roles"`
}

// Policy declares the routing rules the guard enforces.
type Policy struct {
	// LoginPath is where unauthenticated requests are sent.
	LoginPath string `yaml:"login_path"`

	// Landing maps each role to its default landing page, the target for
	// authenticated requests that hit a group outside their role.
	Landing map[string]string `yaml:"landing"`

	// Groups are the protected path groups.
	Groups []Group `yaml:"groups"`
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicy reads and parses a YAML policy file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(data)
}

// Validate checks the policy is complete: a login path, a landing page for
// every role, and well-formed groups naming only valid roles.
func (p Policy) Validate() error {
	if p.LoginPath == "" {
		return fmt.Errorf("%w: login_path is required", ErrInvalidPolicy)
	}
	for _, r := range role.All() {
		if p.Landing[r.String()] == "" {
			return fmt.Errorf("%w: no landing page for role %q", ErrInvalidPolicy, r)
		}
	}
	for _, g := range p.Groups {
		if !strings.HasPrefix(g.Prefix, "/") {
			return fmt.Errorf("%w: group prefix %q must start with /", ErrInvalidPolicy, g.Prefix)
		}
		if len(g.Roles) == 0 {
			return fmt.Errorf("%w: group %q allows no roles", ErrInvalidPolicy, g.Prefix)
		}
		for _, raw := range g.Roles {
			if _, ok := role.Parse(raw); !ok {
				return fmt.Errorf("%w: group %q names unknown role %q", ErrInvalidPolicy, g.Prefix, raw)
			}
		}
	}
	return nil
}

// LandingFor returns the landing page for a role, falling back to the
// login path when the policy has no entry.
func (p Policy) LandingFor(r role.Role) string {
	if path := p.Landing[r.String()]; path != "" {
		return path
	}
	return p.LoginPath
}

// allowedRoles converts a group's raw role names.
func (g Group) allowedRoles() []role.Role {
	out := make([]role.Role, 0, len(g.Roles))
	for _, raw := range g.Roles {
		if r, ok := role.Parse(raw); ok {
			out = append(out, r)
		}
	}
	return out
}

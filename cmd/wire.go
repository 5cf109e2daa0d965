package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bnema/care-cli/internal/adapters/portal"
	"github.com/bnema/care-cli/internal/adapters/render"
	tomlrepo "github.com/bnema/care-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/care-cli/internal/adapters/sessionstore/chain"
	filestore "github.com/bnema/care-cli/internal/adapters/sessionstore/file"
	passstore "github.com/bnema/care-cli/internal/adapters/sessionstore/pass"
	"github.com/bnema/care-cli/internal/application"
	"github.com/bnema/care-cli/internal/config"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
	"github.com/bnema/care-cli/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	profile string
	baseURL string
	verbose bool
}

type app struct {
	cfg          *config.Config
	opts         *rootOptions
	profiles     ports.ProfileRepository
	pageRenderer func(render.Page) (string, error)
	sessionStore func(*config.Config) (ports.SessionStore, error)
	httpClient   *http.Client
	clock        ports.Clock
}

// target is the portal a command talks to, and the role its profile prefers.
type target struct {
	profile string
	baseURL string
	role    domain.Role
}

// session bundles the per-invocation components built for one portal.
type session struct {
	target   target
	logger   zerolog.Logger
	client   *portal.Client
	resolver *application.Resolver
	gate     *application.Gate
	router   *application.Router
}

func wireApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := tomlrepo.NewRepository(cfg.Viper())
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	return &app{
		cfg:          cfg,
		opts:         opts,
		profiles:     repo,
		pageRenderer: render.Render,
		sessionStore: newSessionStore,
		httpClient:   http.DefaultClient,
		clock:        ports.SystemClock{},
	}, nil
}

func newSessionStore(cfg *config.Config) (ports.SessionStore, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendFile:
		return filestore.NewStore(cfg.Session.Dir), nil
	case config.SessionBackendPass:
		return passstore.NewStore(), nil
	default:
		store, err := chainstore.NewPassFirstWithFileFallback(cfg.Session.Dir)
		if err != nil {
			return nil, fmt.Errorf("wire session store chain: %w", err)
		}
		return store, nil
	}
}

// resolveTarget picks the portal: --base-url, then the named profile
// (--profile or CARE_PROFILE), then the active profile, then portal.base_url.
func (a *app) resolveTarget(ctx context.Context) (target, error) {
	if a.opts.baseURL != "" {
		return target{baseURL: a.opts.baseURL}, nil
	}

	name := a.opts.profile
	if name == "" {
		name = a.cfg.Profile
	}
	if name == "" {
		active, err := a.profiles.Active(ctx)
		if err != nil {
			return target{}, fmt.Errorf("load active profile: %w", err)
		}
		name = active
	}
	if name == "" {
		return target{baseURL: a.cfg.Portal.BaseURL}, nil
	}

	profile, err := a.profiles.GetByName(ctx, name)
	if err != nil {
		return target{}, err
	}
	return target{profile: profile.Name, baseURL: profile.BaseURL, role: profile.Role}, nil
}

func (a *app) connect(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()

	tgt, err := a.resolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	logger := a.cfg.NewLogger(cmd.ErrOrStderr(), a.opts.verbose)
	if tgt.profile != "" {
		logger = logger.With().Str("profile", tgt.profile).Logger()
	}

	store, err := a.sessionStore(a.cfg)
	if err != nil {
		return nil, err
	}

	client, err := portal.NewClient(ctx, portal.Config{
		BaseURL:        tgt.baseURL,
		HTTPClient:     a.httpClient,
		RequestTimeout: a.cfg.Portal.Timeout,
		Sessions:       store,
		Logger:         logger,
		UserAgent:      "care/" + version.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("wire portal client: %w", err)
	}

	resolver := application.NewResolver(client, logger)
	return &session{
		target:   tgt,
		logger:   logger,
		client:   client,
		resolver: resolver,
		gate:     application.NewGate(client),
		router:   application.NewRouter(resolver.Logout, application.DefaultWorkspaces(client, a.clock)),
	}, nil
}

func (s *session) close() {
	s.resolver.Close()
}

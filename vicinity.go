package vicinity

import (
	"log/slog"

	"github.com/vicinitylabs/vicinity/internal/logging"
	"github.com/vicinitylabs/vicinity/pkg/adapters/memory"
	"github.com/vicinitylabs/vicinity/pkg/directory"
	"github.com/vicinitylabs/vicinity/pkg/domain"
	"github.com/vicinitylabs/vicinity/pkg/ports"
	"github.com/vicinitylabs/vicinity/pkg/schema"
	"github.com/vicinitylabs/vicinity/pkg/session"
	"github.com/vicinitylabs/vicinity/pkg/wizard"
)

// App is the high-level entry point for the Vicinity library. It wires the
// step registry, the wizard engine, session management, and the directory
// services over pluggable stores. Zero-config use runs on memory backends.
type App struct {
	Registry     *schema.Registry
	Wizard       *wizard.Engine
	Sessions     *session.Manager
	Materializer *directory.Materializer
	Directory    *directory.Service
	Moderation   *directory.Moderation

	sessionStore ports.SessionStore
	listingStore ports.ListingStore
	locker       ports.DistributedLocker
	hooks        domain.TelemetryHooks
	logger       *slog.Logger
	registry     *schema.Registry
	slugAttempts int
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithSessionStore sets the session persistence backend.
func WithSessionStore(store ports.SessionStore) Option {
	return func(a *App) {
		a.sessionStore = store
	}
}

// WithListingStore sets the listing persistence backend.
func WithListingStore(store ports.ListingStore) Option {
	return func(a *App) {
		a.listingStore = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) {
		a.locker = locker
	}
}

// WithTelemetryHooks registers observability hooks on the wizard.
func WithTelemetryHooks(hooks domain.TelemetryHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRegistry replaces the default onboarding step registry.
func WithRegistry(registry *schema.Registry) Option {
	return func(a *App) {
		a.registry = registry
	}
}

// WithSlugAttempts overrides the slug collision retry cap.
func WithSlugAttempts(n int) Option {
	return func(a *App) {
		a.slugAttempts = n
	}
}

// New assembles the application.
func New(opts ...Option) *App {
	a := &App{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		a.registry = schema.Default()
	}
	if a.sessionStore == nil {
		a.sessionStore = memory.NewSessionStore()
	}
	if a.listingStore == nil {
		a.listingStore = memory.NewListingStore()
	}

	matOpts := []directory.MaterializerOption{
		directory.WithMaterializerLogger(a.logger),
	}
	if a.slugAttempts > 0 {
		matOpts = append(matOpts, directory.WithSlugAttempts(a.slugAttempts))
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}

	a.Registry = a.registry
	a.Materializer = directory.NewMaterializer(a.listingStore, matOpts...)
	a.Wizard = wizard.New(a.registry, a.Materializer,
		wizard.WithTelemetry(a.hooks),
		wizard.WithLogger(a.logger),
	)
	a.Sessions = session.NewManager(a.sessionStore, sessionOpts...)
	a.Directory = directory.NewService(a.listingStore, a.logger)
	a.Moderation = directory.NewModeration(a.listingStore, a.logger)

	return a
}

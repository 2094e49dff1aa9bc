// Package shared wires the dependencies common to the api and admin apps from the configuration.
package shared

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/SaramshGautam/collaBoard/apps"
	"github.com/SaramshGautam/collaBoard/core"
	"github.com/SaramshGautam/collaBoard/core/classroom"
	"github.com/SaramshGautam/collaBoard/core/project"
	"github.com/SaramshGautam/collaBoard/core/team"
	"github.com/SaramshGautam/collaBoard/core/user"
	"github.com/SaramshGautam/collaBoard/core/whiteboard"
	cachesvc "github.com/SaramshGautam/collaBoard/services/cache"
	emailsvc "github.com/SaramshGautam/collaBoard/services/email"
	identitysvc "github.com/SaramshGautam/collaBoard/services/identity"
	"github.com/SaramshGautam/collaBoard/storage/docrepos"
	"github.com/SaramshGautam/collaBoard/storage/docstore"
	"github.com/SaramshGautam/collaBoard/storage/docstore/fsstore"
	"github.com/SaramshGautam/collaBoard/storage/docstore/memstore"
	"github.com/SaramshGautam/collaBoard/storage/docstore/pgstore"
)

const (
	EngineMemory    = "memory"
	EngineFirestore = "firestore"
	EnginePostgres  = "postgres"
)

// Storage is the opened document store, plus the handle it was opened from.
type Storage struct {
	Store    docstore.Store
	Firebase *firebase.App // firestore engine only
	DB       *sqlx.DB      // postgres engine only
}

func (s *Storage) Close() error {
	return s.Store.Close()
}

// OpenStorage opens the document store of the configured engine.
// With migrate set, the postgres database is created if needed and migrated up.
func OpenStorage(ctx context.Context, conf *core.Config, migrate bool) (*Storage, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		return &Storage{Store: memstore.Open()}, nil

	case EngineFirestore:
		app, err := fsstore.NewApp(ctx, conf)
		if err != nil {
			return nil, err
		}
		store, err := fsstore.Open(ctx, app)
		if err != nil {
			return nil, err
		}
		return &Storage{Store: store, Firebase: app}, nil

	case EnginePostgres:
		if migrate {
			if err := pgstore.CreateIfNotExist(conf); err != nil {
				return nil, err
			}
		}
		db, err := pgstore.Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = pgstore.Migrate(db.DB, "up"); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Storage{Store: pgstore.New(db), DB: db}, nil

	default:
		return nil, apps.NewArgumentError(fmt.Sprintf("unknown database engine %q", conf.Database.Engine))
	}
}

// NewIdentityProvider returns the configured sign in token verifier.
// The firebase provider shares the app of the firestore engine when there is one.
func NewIdentityProvider(ctx context.Context, conf *core.Config, st *Storage) (user.IdentityProvider, error) {
	switch conf.Identity.Provider {
	case "firebase":
		app := st.Firebase
		if app == nil {
			var err error
			if app, err = fsstore.NewApp(ctx, conf); err != nil {
				return nil, err
			}
		}
		return identitysvc.NewFirebaseProvider(ctx, app)
	case "google":
		if conf.Identity.GoogleClientID == "" {
			return nil, apps.NewArgumentError("the google identity provider needs a client id")
		}
		return identitysvc.NewGoogleProvider(conf.Identity.GoogleClientID), nil
	case "static":
		// dev tokens never reach a deployed environment
		return identitysvc.NewStaticProvider(conf.Debug || conf.TestMode), nil
	default:
		return nil, apps.NewArgumentError(fmt.Sprintf("unknown identity provider %q", conf.Identity.Provider))
	}
}

// Overlay holds the ephemeral whiteboard state and the revoked session tokens.
type Overlay interface {
	whiteboard.OverlayStore
	core.TokenDenylist
}

// NewOverlay returns a redis backed overlay when an address is configured, an in-process one otherwise.
// The returned func releases it.
func NewOverlay(ctx context.Context, conf *core.Config) (Overlay, func() error, error) {
	if conf.Redis.Address == "" {
		return cachesvc.NewMemoryCache(conf.Overlay.TTL), func() error { return nil }, nil
	}
	client, err := cachesvc.NewRedisClient(ctx, conf)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to redis")
	}
	return cachesvc.NewRedisCache(client, conf.Overlay.TTL), client.Close, nil
}

// NewMailService prints emails in debug mode and sends them through sendgrid otherwise.
func NewMailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// NewValidator returns the validator of request payloads, with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	whiteboard.InitValidators(validate, translator)
	return validate, translator
}

type Services struct {
	User       user.Service
	Classroom  classroom.Service
	Project    project.Service
	Team       team.Service
	Whiteboard whiteboard.Service
}

// NewServices builds the core services on top of store.
func NewServices(
	conf *core.Config,
	logger core.Logger,
	store docstore.Store,
	identity user.IdentityProvider,
	overlay whiteboard.OverlayStore,
	mailSvc core.EmailService,
) Services {
	usrRepo := docrepos.NewUserRepository(store)
	classroomRepo := docrepos.NewClassroomRepository(store)
	projectRepo := docrepos.NewProjectRepository(store)

	classroomSvc := classroom.NewService(classroomRepo, usrRepo)
	projectSvc := project.NewService(projectRepo, classroomSvc, mailSvc, logger)
	return Services{
		User:       user.NewService(usrRepo, identity),
		Classroom:  classroomSvc,
		Project:    projectSvc,
		Team:       team.NewService(conf, classroomSvc, projectSvc, projectRepo, mailSvc, logger),
		Whiteboard: whiteboard.NewService(conf, classroomSvc, projectSvc, projectRepo, overlay),
	}
}

package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/controller"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/repository"
	"github.com/HarshaM0211/jira-software/pkg/repository/cached"
	"github.com/HarshaM0211/jira-software/pkg/repository/document"
	"github.com/HarshaM0211/jira-software/pkg/repository/instrumented"
	"github.com/HarshaM0211/jira-software/pkg/repository/memory"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	"github.com/HarshaM0211/jira-software/pkg/service"
	"github.com/HarshaM0211/jira-software/pkg/store"
)

// countersTable holds the DynamoDB key sequences.
const countersTable = "counters"

// Service is the project entity service.
type Service = service.Service[int64, Project, Bean, DTO]

// Deps are the connected infrastructure the project module runs on.
type Deps struct {
	Backend *store.Backend
	// Cache enables the read-through cache when set.
	Cache    cached.Cache
	CacheTTL time.Duration
	// MaxPageSize bounds service page sizes; zero leaves them unbounded.
	MaxPageSize int
	Logger      logger.Logger
	// Now stamps created_at and updated_at; nil uses the wall clock.
	Now func() time.Time
}

// NewPort builds the persistence port for the configured backend, wrapped
// with metrics and spans and, when a cache is given, the read-through cache.
func NewPort(deps Deps) (repository.Port[int64, Project], error) {
	backend := deps.Backend
	if backend == nil {
		return nil, errors.New("project: persistence backend is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	var (
		port repository.Port[int64, Project]
		name = backend.Type
	)
	switch {
	case backend.SQL != nil:
		dialect, err := repository.DialectFor(backend.SQL.Driver())
		if err != nil {
			return nil, err
		}
		name = dialect.Name()
		port = repository.NewSQLPort[int64, Project](backend.SQL, dialect, Table, "id", NewSQLMapper()).
			WithTransactions(backend.SQL)
	case backend.Mongo != nil:
		exec, err := document.NewMongoDBExecutor(backend.Mongo)
		if err != nil {
			return nil, err
		}
		port = document.NewMongoPort[int64, Project](exec, backend.Table(Table), DocumentMapper{},
			document.MongoSequence(exec, backend.Table(Table)))
	case backend.Dynamo != nil:
		exec, err := document.NewDynamoDBExecutor(backend.Dynamo)
		if err != nil {
			return nil, err
		}
		port = document.NewDynamoPort[int64, Project](exec, backend.Table(Table), DocumentMapper{}, Accessor,
			document.DynamoSequence(exec, backend.Table(countersTable), backend.Table(Table)))
	case backend.Type == "" || backend.Type == config.DatabaseTypeMemory:
		name = config.DatabaseTypeMemory
		port = memory.NewPort[int64, Project](DocumentMapper{}, Accessor, repository.SequenceKeys())
	default:
		return nil, fmt.Errorf("project: backend %q is not connected", backend.Type)
	}

	port = instrumented.NewPort[int64, Project](port, EntityName, name)
	if deps.Cache != nil {
		port = cached.NewPort[int64, Project](port, deps.Cache, EntityName, deps.CacheTTL, log)
	}
	return port, nil
}

// NewService wires the project service over NewPort.
//
// Cosa fa: sceglie il port in base al backend, applica metriche, tracing e cache.
// Cosa NON fa: non apre connessioni né applica migrazioni; il backend arriva già connesso.
// Esempio minimo: svc, err := project.NewService(project.Deps{Backend: backend, Logger: log})
func NewService(deps Deps) (*Service, error) {
	port, err := NewPort(deps)
	if err != nil {
		return nil, err
	}
	return service.New[int64, Project, Bean, DTO](port, NewMapper(deps.Now), deps.Logger,
		service.WithEntityName(EntityName),
		service.WithMaxPageSize(deps.MaxPageSize),
	), nil
}

// Mount registers the /projects routes on r.
func Mount(r router.Router, svc *Service, pagination config.PaginationConfig, log logger.Logger) {
	opts := []controller.ControllerOption{}
	if pagination.DefaultSize > 0 && pagination.MaxSize > 0 {
		opts = append(opts, controller.WithPageSizes(pagination.DefaultSize, pagination.MaxSize))
	}
	controller.NewEntityController[int64, Bean, DTO](Resource, svc, controller.Int64Keys(), NewFilter, log, opts...).
		Register(r)
}

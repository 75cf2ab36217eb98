package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	"github.com/HarshaM0211/jira-software/pkg/service"
)

// Service is what EntityController needs from an entity service.
// *service.Service satisfies it.
type Service[K comparable, B any, D any] interface {
	service.EntityService[K, D]
	Save(ctx context.Context, bean *B) (K, error)
	SaveBatch(ctx context.Context, beans []*B) (service.BatchReport[K], error)
	Update(ctx context.Context, id K, bean *B) error
	Purge(ctx context.Context, id K) error
}

// FilterFunc builds the domain filter for a search request.
type FilterFunc func(q query.SearchQuery) (query.Filter, error)

// CountResponse is the body of GET /{resource}/count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// EntityController exposes a Service under /{resource}.
//
// Cosa fa: registra le rotte CRUD e di ricerca, converte parametri e body in
// chiavi, filtri e bean, e mappa gli errori con MapError.
// Cosa NON fa: non conosce il dominio; filtri e validazione arrivano da
// FilterFunc e dai bean che implementano Validator.
// Esempio minimo: controller.NewEntityController("projects", svc, controller.Int64Keys(), project.NewFilter, log).Register(r)
type EntityController[K comparable, B any, D any] struct {
	resource        string
	svc             Service[K, B, D]
	keys            KeyParser[K]
	filter          FilterFunc
	logger          logger.Logger
	defaultPageSize int
	maxPageSize     int
}

// ControllerOption configures an EntityController.
type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	defaultPageSize int
	maxPageSize     int
}

// WithPageSizes sets the page size used when "size" is absent and the
// largest accepted size.
func WithPageSizes(defaultSize, maxSize int) ControllerOption {
	return func(o *controllerOptions) {
		o.defaultPageSize = defaultSize
		o.maxPageSize = maxSize
	}
}

// NewEntityController creates a controller for resource. A nil filter
// searches without criteria.
func NewEntityController[K comparable, B any, D any](
	resource string,
	svc Service[K, B, D],
	keys KeyParser[K],
	filter FilterFunc,
	log logger.Logger,
	opts ...ControllerOption,
) *EntityController[K, B, D] {
	o := controllerOptions{defaultPageSize: 20, maxPageSize: 100}
	for _, opt := range opts {
		opt(&o)
	}
	if filter == nil {
		filter = func(query.SearchQuery) (query.Filter, error) { return query.All(), nil }
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &EntityController[K, B, D]{
		resource:        strings.Trim(resource, "/"),
		svc:             svc,
		keys:            keys,
		filter:          filter,
		logger:          log.With("resource", strings.Trim(resource, "/")),
		defaultPageSize: o.defaultPageSize,
		maxPageSize:     o.maxPageSize,
	}
}

// Register mounts the routes on r. The count route is registered before
// the :id routes.
func (ec *EntityController[K, B, D]) Register(r router.Router) {
	base := "/" + ec.resource
	r.GET(base, ec.Search)
	r.GET(base+"/count", ec.Count)
	r.GET(base+"/:id", ec.Read)
	r.POST(base, ec.Create)
	r.PUT(base+"/:id", ec.Update)
	r.DELETE(base+"/:id", ec.Delete)
}

// Search handles GET /{resource}?page=&size=&<filter params>.
func (ec *EntityController[K, B, D]) Search(c router.Context) error {
	sq := query.NewSearchQuery(c.QueryParams())
	page, err := query.PageFromQuery(sq, ec.defaultPageSize, ec.maxPageSize)
	if err != nil {
		return ec.fail(c, err)
	}
	filter, err := ec.filter(sq)
	if err != nil {
		return ec.fail(c, err)
	}
	result, err := ec.svc.SearchPage(c.Request().Context(), filter, page.No, page.Size)
	if err != nil {
		return ec.fail(c, err)
	}
	return Success(c, result)
}

// Count handles GET /{resource}/count with the same filter parameters as Search.
func (ec *EntityController[K, B, D]) Count(c router.Context) error {
	filter, err := ec.filter(query.NewSearchQuery(c.QueryParams()))
	if err != nil {
		return ec.fail(c, err)
	}
	n, err := ec.svc.CountSearch(c.Request().Context(), filter)
	if err != nil {
		return ec.fail(c, err)
	}
	return Success(c, CountResponse{Count: n})
}

// Read handles GET /{resource}/:id.
func (ec *EntityController[K, B, D]) Read(c router.Context) error {
	id, err := ec.keys(c.Param("id"))
	if err != nil {
		return ec.fail(c, err)
	}
	dto, err := ec.svc.ReadRequired(c.Request().Context(), id)
	if err != nil {
		return ec.fail(c, err)
	}
	return Success(c, dto)
}

// Create handles POST /{resource}. A JSON object creates one entity and
// answers with its DTO; a JSON array is saved as a batch and answers with
// the BatchReport, null elements being skipped.
func (ec *EntityController[K, B, D]) Create(c router.Context) error {
	var raw json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return ec.fail(c, invalidBody(err))
	}
	ctx := c.Request().Context()

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var beans []*B
		if err := json.Unmarshal(trimmed, &beans); err != nil {
			return ec.fail(c, invalidBody(err))
		}
		for i, bean := range beans {
			if bean == nil {
				continue
			}
			if err := validateBean(bean); err != nil {
				return ec.fail(c, fmt.Errorf("bean %d: %w", i, err))
			}
		}
		report, err := ec.svc.SaveBatch(ctx, beans)
		if err != nil {
			return ec.fail(c, err)
		}
		return Created(c, report)
	}

	bean, err := decodeBean[B](raw)
	if err != nil {
		return ec.fail(c, err)
	}
	id, err := ec.svc.Save(ctx, bean)
	if err != nil {
		return ec.fail(c, err)
	}
	dto, err := ec.svc.ReadRequired(ctx, id)
	if err != nil {
		return ec.fail(c, err)
	}
	return Created(c, dto)
}

// Update handles PUT /{resource}/:id. Fields absent from the body keep
// their stored values.
func (ec *EntityController[K, B, D]) Update(c router.Context) error {
	id, err := ec.keys(c.Param("id"))
	if err != nil {
		return ec.fail(c, err)
	}
	var raw json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return ec.fail(c, invalidBody(err))
	}
	bean, err := decodeBean[B](raw)
	if err != nil {
		return ec.fail(c, err)
	}

	ctx := c.Request().Context()
	if err := ec.svc.Update(ctx, id, bean); err != nil {
		return ec.fail(c, err)
	}
	dto, err := ec.svc.ReadRequired(ctx, id)
	if err != nil {
		return ec.fail(c, err)
	}
	return Success(c, dto)
}

// Delete handles DELETE /{resource}/:id. Deleting an absent entity succeeds.
func (ec *EntityController[K, B, D]) Delete(c router.Context) error {
	id, err := ec.keys(c.Param("id"))
	if err != nil {
		return ec.fail(c, err)
	}
	if err := ec.svc.Purge(c.Request().Context(), id); err != nil {
		return ec.fail(c, err)
	}
	return NoContent(c)
}

func (ec *EntityController[K, B, D]) fail(c router.Context, err error) error {
	status, _ := MapError(c.Request().Context(), err)
	if status >= http.StatusInternalServerError {
		ec.logger.WithContext(c.Request().Context()).Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}
	return Error(c, err)
}

func decodeBean[B any](raw json.RawMessage) (*B, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, apperror.InvalidArgument("bean")
	}
	if trimmed[0] != '{' {
		return nil, apperror.Validation("request body must be a JSON object", nil)
	}
	var bean B
	if err := json.Unmarshal(trimmed, &bean); err != nil {
		return nil, invalidBody(err)
	}
	if err := validateBean(&bean); err != nil {
		return nil, err
	}
	return &bean, nil
}

func invalidBody(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.TooLarge(tooLarge.Limit, err)
	}
	return apperror.Validation("invalid request body", map[string]interface{}{"cause": err.Error()})
}

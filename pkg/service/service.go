package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// Mapper converts between the bean (write payload), the entity (storage
// shape) and the DTO (read projection).
type Mapper[E any, B any, D any] interface {
	// CreateFromBean builds a new entity without a key.
	CreateFromBean(bean *B) (*E, error)
	// CopyFromBean merges bean into a loaded entity. Fields the bean leaves
	// unset keep their current values.
	CopyFromBean(entity *E, bean *B) error
	ToDTO(entity *E) D
}

// BatchReport describes the outcome of SaveBatch.
type BatchReport[K comparable] struct {
	// Keys holds the assigned keys in the input order of the saved beans.
	Keys []K `json:"keys"`
	// Skipped holds the input indexes of nil beans.
	Skipped []int `json:"skipped,omitempty"`
}

// Service orchestrates an entity type over a persistence port.
//
// Cosa fa: converte bean in entità, delega al port e proietta le entità in DTO;
// traduce ErrNotFound e OptimisticLockError in AppError.
// Cosa NON fa: non valida i bean (lo fanno i servizi di dominio prima di
// delegare) e non gestisce transazioni oltre a quelle del port.
// Esempio minimo: svc := service.New[int64, Project, Bean, DTO](port, mapper, log, service.WithEntityName("project"))
type Service[K comparable, E any, B any, D any] struct {
	port        repository.Port[K, E]
	mapper      Mapper[E, B, D]
	logger      logger.Logger
	entity      string
	maxPageSize int
}

// Option configures a Service.
type Option func(*options)

type options struct {
	entity      string
	maxPageSize int
}

// WithEntityName sets the name used in errors and log lines. Defaults to "entity".
func WithEntityName(name string) Option {
	return func(o *options) { o.entity = name }
}

// WithMaxPageSize bounds page sizes. Zero disables the bound.
func WithMaxPageSize(size int) Option {
	return func(o *options) { o.maxPageSize = size }
}

// New creates a Service.
func New[K comparable, E any, B any, D any](port repository.Port[K, E], mapper Mapper[E, B, D], log logger.Logger, opts ...Option) *Service[K, E, B, D] {
	o := options{entity: "entity"}
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service[K, E, B, D]{
		port:        port,
		mapper:      mapper,
		logger:      log.With("entity", o.entity),
		entity:      o.entity,
		maxPageSize: o.maxPageSize,
	}
}

var _ EntityService[int64, struct{}] = (*Service[int64, struct{}, struct{}, struct{}])(nil)

// Read implements EntityService.
func (s *Service[K, E, B, D]) Read(ctx context.Context, id K) (Lookup[D], error) {
	entity, err := s.port.Read(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound[D](), nil
	}
	if err != nil {
		return NotFound[D](), fmt.Errorf("read %s %v: %w", s.entity, id, err)
	}
	return Found(s.mapper.ToDTO(entity)), nil
}

// ReadRequired implements EntityService.
func (s *Service[K, E, B, D]) ReadRequired(ctx context.Context, id K) (D, error) {
	lookup, err := s.Read(ctx, id)
	if err != nil {
		var zero D
		return zero, err
	}
	dto, ok := lookup.Get()
	if !ok {
		return dto, apperror.NotFound(s.entity, id)
	}
	return dto, nil
}

// ReadMany implements EntityService.
func (s *Service[K, E, B, D]) ReadMany(ctx context.Context, ids []K) (map[K]D, error) {
	ids = repository.UniqueKeys(ids)
	out := make(map[K]D, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	entities, err := s.port.ReadAll(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("read %d %s entities: %w", len(ids), s.entity, err)
	}
	for id, entity := range entities {
		out[id] = s.mapper.ToDTO(entity)
	}
	return out, nil
}

// Count implements EntityService.
func (s *Service[K, E, B, D]) Count(ctx context.Context) (int64, error) {
	return s.port.Count(ctx)
}

// ReadPage implements EntityService.
func (s *Service[K, E, B, D]) ReadPage(ctx context.Context, pageNo, pageSize int) ([]D, error) {
	return s.Search(ctx, query.All(), pageNo, pageSize)
}

// CountSearch implements EntityService.
func (s *Service[K, E, B, D]) CountSearch(ctx context.Context, filter query.Filter) (int64, error) {
	criteria, err := criteriaOf(filter)
	if err != nil {
		return 0, err
	}
	return s.port.CountMatching(ctx, criteria)
}

// Search implements EntityService.
func (s *Service[K, E, B, D]) Search(ctx context.Context, filter query.Filter, pageNo, pageSize int) ([]D, error) {
	page, err := s.page(pageNo, pageSize)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, filter, page)
}

// SearchPage implements EntityService.
func (s *Service[K, E, B, D]) SearchPage(ctx context.Context, filter query.Filter, pageNo, pageSize int) (PageResult[D], error) {
	page, err := s.page(pageNo, pageSize)
	if err != nil {
		return PageResult[D]{}, err
	}
	total, err := s.CountSearch(ctx, filter)
	if err != nil {
		return PageResult[D]{}, err
	}
	items, err := s.search(ctx, filter, page)
	if err != nil {
		return PageResult[D]{}, err
	}
	return newPageResult(items, total, page), nil
}

func (s *Service[K, E, B, D]) search(ctx context.Context, filter query.Filter, page query.Page) ([]D, error) {
	criteria, err := criteriaOf(filter)
	if err != nil {
		return nil, err
	}
	var order query.OrderBy
	if filter != nil {
		order = filter.OrderBy()
	}
	entities, err := s.port.Search(ctx, criteria, order, page)
	if err != nil {
		return nil, err
	}
	out := make([]D, 0, len(entities))
	for _, entity := range entities {
		out = append(out, s.mapper.ToDTO(entity))
	}
	return out, nil
}

func (s *Service[K, E, B, D]) page(pageNo, pageSize int) (query.Page, error) {
	page := query.Page{No: pageNo, Size: pageSize}
	if err := page.Validate(s.maxPageSize); err != nil {
		return query.Page{}, err
	}
	return page, nil
}

func criteriaOf(filter query.Filter) ([]query.Criteria, error) {
	if filter == nil {
		return nil, nil
	}
	criteria, err := filter.Criteria()
	if err != nil {
		return nil, err
	}
	if err := query.Validate(criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

// Save creates an entity from bean and returns its key.
func (s *Service[K, E, B, D]) Save(ctx context.Context, bean *B) (K, error) {
	var zero K
	if bean == nil {
		return zero, apperror.InvalidArgument("bean")
	}
	entity, err := s.mapper.CreateFromBean(bean)
	if err != nil {
		return zero, err
	}
	id, err := s.port.Save(ctx, entity)
	if err != nil {
		return zero, fmt.Errorf("save %s: %w", s.entity, err)
	}
	s.logger.WithContext(ctx).Debug("successfully saved entity", "entity_id", id)
	return id, nil
}

// SaveAll saves the non-nil beans with one batch call and returns their keys
// in input order. Nil beans are skipped; see SaveBatch for which ones.
func (s *Service[K, E, B, D]) SaveAll(ctx context.Context, beans []*B) ([]K, error) {
	report, err := s.SaveBatch(ctx, beans)
	if err != nil {
		return nil, err
	}
	return report.Keys, nil
}

// SaveBatch is SaveAll with a report of the skipped input positions. A bean
// that fails to convert aborts the batch before anything is persisted.
func (s *Service[K, E, B, D]) SaveBatch(ctx context.Context, beans []*B) (BatchReport[K], error) {
	report := BatchReport[K]{Keys: []K{}}
	entities := make([]*E, 0, len(beans))
	for i, bean := range beans {
		if bean == nil {
			report.Skipped = append(report.Skipped, i)
			continue
		}
		entity, err := s.mapper.CreateFromBean(bean)
		if err != nil {
			return BatchReport[K]{}, fmt.Errorf("bean %d: %w", i, err)
		}
		entities = append(entities, entity)
	}
	if len(report.Skipped) > 0 {
		s.logger.WithContext(ctx).Debug("skipped nil beans in batch save", "skipped", report.Skipped)
	}
	if len(entities) == 0 {
		return report, nil
	}

	ids, err := s.port.SaveAll(ctx, entities)
	if err != nil {
		return BatchReport[K]{}, fmt.Errorf("save %d %s entities: %w", len(entities), s.entity, err)
	}
	report.Keys = ids
	s.logger.WithContext(ctx).Debug("successfully saved entities", "count", len(ids))
	return report, nil
}

// Update loads id, merges bean into it and persists the result.
func (s *Service[K, E, B, D]) Update(ctx context.Context, id K, bean *B) error {
	if repository.IsZeroKey(id) {
		return apperror.InvalidArgument("id")
	}
	if bean == nil {
		return apperror.InvalidArgument("bean")
	}

	entity, err := s.port.Read(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(s.entity, id)
	}
	if err != nil {
		return fmt.Errorf("read %s %v: %w", s.entity, id, err)
	}
	if err := s.mapper.CopyFromBean(entity, bean); err != nil {
		return err
	}

	err = s.port.Update(ctx, id, entity)
	var lockErr *repository.OptimisticLockError
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(s.entity, id)
	case errors.As(err, &lockErr):
		return apperror.Conflict(s.entity, err)
	default:
		return fmt.Errorf("update %s %v: %w", s.entity, id, err)
	}
	s.logger.WithContext(ctx).Debug("successfully updated entity", "entity_id", id)
	return nil
}

// Purge deletes id. Deleting an absent entity is not an error.
func (s *Service[K, E, B, D]) Purge(ctx context.Context, id K) error {
	if repository.IsZeroKey(id) {
		return apperror.InvalidArgument("id")
	}
	if err := s.port.Purge(ctx, id); err != nil {
		return fmt.Errorf("purge %s %v: %w", s.entity, id, err)
	}
	s.logger.WithContext(ctx).Debug("successfully purged entity", "entity_id", id)
	return nil
}

// PurgeAll deletes the given ids, skipping zero and duplicate keys.
func (s *Service[K, E, B, D]) PurgeAll(ctx context.Context, ids []K) error {
	ids = repository.UniqueKeys(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := s.port.PurgeAll(ctx, ids); err != nil {
		return fmt.Errorf("purge %d %s entities: %w", len(ids), s.entity, err)
	}
	s.logger.WithContext(ctx).Debug("successfully purged entities", "count", len(ids))
	return nil
}

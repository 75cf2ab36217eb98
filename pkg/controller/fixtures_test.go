package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
	"github.com/HarshaM0211/jira-software/pkg/repository/memory"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
	"github.com/HarshaM0211/jira-software/pkg/service"
)

type board struct {
	ID      int64
	Name    string
	Columns int
	Version int64
}

func (b *board) GetVersion() int64  { return b.Version }
func (b *board) SetVersion(v int64) { b.Version = v }

type boardBean struct {
	Name    *string `json:"name"`
	Columns *int    `json:"columns"`
}

func (b *boardBean) Validate() error {
	if b.Columns != nil && *b.Columns < 0 {
		return apperror.Validation("columns must not be negative", nil)
	}
	return nil
}

type boardDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Columns int    `json:"columns"`
}

type boardMapper struct{}

func (boardMapper) CreateFromBean(b *boardBean) (*board, error) {
	if b.Name == nil || *b.Name == "" {
		return nil, apperror.Validation("name is required", nil)
	}
	e := &board{Name: *b.Name}
	if b.Columns != nil {
		e.Columns = *b.Columns
	}
	return e, nil
}

func (boardMapper) CopyFromBean(e *board, b *boardBean) error {
	if b.Name != nil {
		e.Name = *b.Name
	}
	if b.Columns != nil {
		e.Columns = *b.Columns
	}
	return nil
}

func (boardMapper) ToDTO(e *board) boardDTO {
	return boardDTO{ID: e.ID, Name: e.Name, Columns: e.Columns}
}

func boardFilter(q query.SearchQuery) (query.Filter, error) {
	var criteria []query.Criteria
	if text := q.FreeText(); text != "" {
		c, err := query.NewEqualsIgnoreCase("name", text, true)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	atLeast, ok, err := q.Int("min_columns")
	if err != nil {
		return nil, err
	}
	if ok {
		c, err := query.NewMin("columns", atLeast)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return query.All(criteria...), nil
}

func newBoardService() *service.Service[int64, board, boardBean, boardDTO] {
	port := memory.NewPort[int64, board](
		repository.IdentityFuncs[int64, board]{
			Get: func(e *board) int64 { return e.ID },
			Set: func(e *board, id int64) { e.ID = id },
		},
		func(e *board, property string) (any, bool) {
			switch property {
			case "id":
				return e.ID, true
			case "name":
				return e.Name, true
			case "columns":
				return int64(e.Columns), true
			}
			return nil, false
		},
		repository.SequenceKeys(),
	)
	return service.New[int64, board, boardBean, boardDTO](port, boardMapper{}, logger.NewNop(),
		service.WithEntityName("board"), service.WithMaxPageSize(10))
}

func newBoardRouter(t *testing.T) (router.Router, *service.Service[int64, board, boardBean, boardDTO]) {
	t.Helper()
	svc := newBoardService()
	r := gorillaadapter.NewRouter()
	NewEntityController[int64, boardBean, boardDTO]("boards", svc, Int64Keys(), boardFilter, logger.NewNop(),
		WithPageSizes(2, 10)).Register(r)
	return r, svc
}

func seedBoards(t *testing.T, svc *service.Service[int64, board, boardBean, boardDTO], names ...string) {
	t.Helper()
	for i, name := range names {
		n, cols := name, i+1
		if _, err := svc.Save(context.Background(), &boardBean{Name: &n, Columns: &cols}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

func do(r router.Router, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	drivedomain "family-drive-go/internal/domain/drive"
	"family-drive-go/internal/storage"
	"family-drive-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	cases := []struct {
		query string
		want  drivedomain.Scope
	}{
		{"", drivedomain.RootScope()},
		{"scope=root&parent_id=f1", drivedomain.RootScope()},
		{"parent_id=f1", drivedomain.FolderScope("f1")},
		{"scope=FOLDER&parent_id=f1", drivedomain.FolderScope("f1")},
		{"scope=all", drivedomain.AllScope()},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/folders?"+tc.query, nil)
			scope, err := parseScope(req, "parent_id")
			require.NoError(t, err)
			assert.Equal(t, tc.want, scope)
		})
	}
}

func TestParseScopeRejects(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/files?scope=folder", nil)
	_, err := parseScope(req, "folder_id")
	assert.EqualError(t, err, "folder_id is required for folder scope")

	req = httptest.NewRequest(http.MethodGet, "/api/files?scope=everything", nil)
	_, err = parseScope(req, "folder_id")
	assert.ErrorIs(t, err, errInvalidScope)
}

func TestParseBoolParam(t *testing.T) {
	value, err := parseBoolParam("", true)
	require.NoError(t, err)
	assert.True(t, value)

	value, err = parseBoolParam("false", true)
	require.NoError(t, err)
	assert.False(t, value)

	_, err = parseBoolParam("maybe", false)
	assert.Error(t, err)
}

func TestFailMapsDomainErrors(t *testing.T) {
	h := &Handlers{log: logger.Discard()}

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{drivedomain.ErrNotInFamily, http.StatusNotFound, "family_not_found"},
		{drivedomain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{drivedomain.ErrFolderNotFound, http.StatusNotFound, "folder_not_found"},
		{drivedomain.ErrParentNotFound, http.StatusNotFound, "folder_not_found"},
		{drivedomain.ErrFileNotFound, http.StatusNotFound, "file_not_found"},
		{drivedomain.ErrFolderCycle, http.StatusBadRequest, "invalid_operation"},
		{fmt.Errorf("wrapped: %w", drivedomain.ErrTooManyFileAssignees), http.StatusBadRequest, "invalid_operation"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.fail(rec, "test", tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
		})
	}
}

type countingObserver struct {
	failures int
}

func (c *countingObserver) ObservePurgeFailures(count int) {
	c.failures += count
}

type brokenStore struct{}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("bucket unavailable")
}

func (brokenStore) Exists(context.Context, string) (bool, error) {
	return false, errors.New("bucket unavailable")
}

func TestPurgeFailuresAreCounted(t *testing.T) {
	observer := &countingObserver{}
	log := logger.Discard()
	h := New(nil, brokenStore{}, storage.NewPurger(brokenStore{}, 2, log), observer, log)

	h.purge(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, 3, observer.failures)

	h.purge(context.Background(), nil)
	assert.Equal(t, 3, observer.failures)
}

func TestBulkResponseShape(t *testing.T) {
	response := toBulkResponse(&drivedomain.BulkResult{
		Results: []drivedomain.BulkItemResult{
			{ID: "a", Status: drivedomain.BulkStatusApplied},
			{ID: "b", Status: drivedomain.BulkStatusSkipped, Reason: "not_found"},
		},
	})

	assert.Equal(t, 1, response.Applied)
	assert.Equal(t, []string{}, response.StorageKeys)
	assert.Equal(t, "not_found", response.Results[1].Reason)
}

func TestFileResponseExposesSingleAssignee(t *testing.T) {
	response := toFileResponse(&drivedomain.File{ID: "f", AssignedTo: []string{"kid"}})
	require.NotNil(t, response.AssignedTo)
	assert.Equal(t, "kid", *response.AssignedTo)
	assert.Equal(t, []string{}, response.Tags)

	response = toFileResponse(&drivedomain.File{ID: "f"})
	assert.Nil(t, response.AssignedTo)
}

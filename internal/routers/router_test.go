package routers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/dao"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testFrontend = fstest.MapFS{
	"frontend/index.html":    {Data: []byte("<html>notes</html>")},
	"frontend/assets/app.js": {Data: []byte("console.log('notes')")},
}

type testServer struct {
	r   *gin.Engine
	app *app.App
	reg *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg, err := app.ParseConfig([]byte("database:\n  path: \"file::memory:\"\n  max-idle-conns: 1\n  max-open-conns: 1\ntracer:\n  enabled: true\n"))
	require.NoError(t, err)

	db, err := dao.NewDBEngine(cfg.Database)
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	reg := prometheus.NewRegistry()
	return &testServer{r: NewRouter(testFrontend, a, reg), app: a, reg: reg}
}

type rpcResponse struct {
	code   int
	raw    string
	header http.Header
	body   map[string]any
}

func (s *testServer) do(t *testing.T, method, target, body string) rpcResponse {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	resp := rpcResponse{code: w.Code, raw: w.Body.String(), header: w.Header()}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.UnmarshalString(resp.raw, &resp.body), resp.raw)
	}
	return resp
}

func (s *testServer) query(t *testing.T, op string, input any) rpcResponse {
	t.Helper()
	target := "/api/trpc/" + op
	if input != nil {
		b, err := sonic.MarshalString(input)
		require.NoError(t, err)
		target += "?input=" + url.QueryEscape(b)
	}
	return s.do(t, http.MethodGet, target, "")
}

func (s *testServer) mutate(t *testing.T, op string, input any) rpcResponse {
	t.Helper()
	b, err := sonic.MarshalString(input)
	require.NoError(t, err)
	return s.do(t, http.MethodPost, "/api/trpc/"+op, b)
}

func (r rpcResponse) data(t *testing.T) map[string]any {
	t.Helper()
	result, ok := r.body["result"].(map[string]any)
	require.True(t, ok, r.raw)
	data, ok := result["data"].(map[string]any)
	require.True(t, ok, r.raw)
	return data
}

func (r rpcResponse) errBody(t *testing.T) map[string]any {
	t.Helper()
	e, ok := r.body["error"].(map[string]any)
	require.True(t, ok, r.raw)
	return e
}

func assertRPCError(t *testing.T, r rpcResponse, status int, name, message, path string) {
	t.Helper()
	assert.Equal(t, status, r.code, r.raw)
	e := r.errBody(t)
	assert.Equal(t, name, e["code"])
	assert.Equal(t, message, e["message"])
	data := e["data"].(map[string]any)
	assert.Equal(t, name, data["code"])
	assert.EqualValues(t, status, data["httpStatus"])
	assert.Equal(t, path, data["path"])
}

func TestRouter_NoteLifecycle(t *testing.T) {
	s := newTestServer(t)

	hello := s.query(t, "getHello", nil)
	require.Equal(t, http.StatusOK, hello.code, hello.raw)
	assert.Equal(t, "success", hello.data(t)["status"])
	assert.Equal(t, app.Version, hello.data(t)["version"])
	assert.NotEmpty(t, hello.data(t)["message"])

	created := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "x"})
	require.Equal(t, http.StatusOK, created.code, created.raw)
	assert.Equal(t, "success", created.data(t)["status"])
	note := created.data(t)["data"].(map[string]any)["note"].(map[string]any)
	id := note["id"].(string)
	assert.Len(t, id, 36)
	assert.Equal(t, "A", note["title"])
	assert.Equal(t, "x", note["content"])
	assert.Equal(t, false, note["published"])
	assert.NotContains(t, note, "category")
	assert.Equal(t, note["createdAt"], note["updatedAt"])

	got := s.query(t, "getNote", map[string]any{"noteId": id})
	require.Equal(t, http.StatusOK, got.code, got.raw)
	assert.Equal(t, note, got.data(t)["note"])

	listed := s.query(t, "getNotes", map[string]any{"limit": 10, "page": 1})
	require.Equal(t, http.StatusOK, listed.code, listed.raw)
	assert.EqualValues(t, 1, listed.data(t)["results"])

	updated := s.mutate(t, "updateNote", map[string]any{"noteId": id, "body": map[string]any{"published": true, "category": "work"}})
	require.Equal(t, http.StatusOK, updated.code, updated.raw)
	un := updated.data(t)["note"].(map[string]any)
	assert.Equal(t, true, un["published"])
	assert.Equal(t, "work", un["category"])
	assert.Equal(t, "A", un["title"])
	assert.Equal(t, note["createdAt"], un["createdAt"])
	assert.Greater(t, un["updatedAt"].(string), note["updatedAt"].(string))

	deleted := s.mutate(t, "deleteNote", map[string]any{"noteId": id})
	require.Equal(t, http.StatusOK, deleted.code, deleted.raw)
	assert.Equal(t, map[string]any{"status": "success"}, deleted.data(t))

	missing := s.query(t, "getNote", map[string]any{"noteId": id})
	assertRPCError(t, missing, http.StatusNotFound, "NOT_FOUND", "No note with that Id exists", "getNote")

	again := s.mutate(t, "deleteNote", map[string]any{"noteId": id})
	assertRPCError(t, again, http.StatusNotFound, "NOT_FOUND", "No note with that Id exists", "deleteNote")
}

func TestRouter_DuplicateTitle(t *testing.T) {
	s := newTestServer(t)

	first := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "x"})
	require.Equal(t, http.StatusOK, first.code, first.raw)

	dup := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "y"})
	assertRPCError(t, dup, http.StatusConflict, "CONFLICT", "Note with that title already exists", "createNote")

	other := s.mutate(t, "createNote", map[string]any{"title": "B", "content": "y"})
	require.Equal(t, http.StatusOK, other.code, other.raw)
	otherID := other.data(t)["data"].(map[string]any)["note"].(map[string]any)["id"]

	rename := s.mutate(t, "updateNote", map[string]any{"noteId": otherID, "body": map[string]any{"title": "A"}})
	assertRPCError(t, rename, http.StatusConflict, "CONFLICT", "Note with that title already exists", "updateNote")
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	malformed := s.do(t, http.MethodPost, "/api/trpc/createNote", "{not json")
	assertRPCError(t, malformed, http.StatusBadRequest, "BAD_REQUEST", "Title is required", "createNote")

	noContent := s.mutate(t, "createNote", map[string]any{"title": "A"})
	assertRPCError(t, noContent, http.StatusBadRequest, "BAD_REQUEST", "Content is required", "createNote")

	wrongType := s.mutate(t, "createNote", map[string]any{"title": 1, "content": "x"})
	assertRPCError(t, wrongType, http.StatusBadRequest, "BAD_REQUEST", "Expected string, received number", "createNote")

	noID := s.query(t, "getNote", nil)
	assertRPCError(t, noID, http.StatusBadRequest, "BAD_REQUEST", "Note id is required", "getNote")

	badLimit := s.query(t, "getNotes", map[string]any{"limit": "ten"})
	assertRPCError(t, badLimit, http.StatusBadRequest, "BAD_REQUEST", "Expected number, received string", "getNotes")
}

func TestRouter_MutationRequiresPost(t *testing.T) {
	s := newTestServer(t)

	for _, op := range []string{"createNote", "updateNote", "deleteNote"} {
		r := s.query(t, op, map[string]any{"title": "A", "content": "x"})
		assertRPCError(t, r, http.StatusMethodNotAllowed, "METHOD_NOT_SUPPORTED",
			fmt.Sprintf(`Unsupported GET-request to mutation procedure at path "%s"`, op), op)
	}

	listed := s.query(t, "getNotes", nil)
	assert.EqualValues(t, 0, listed.data(t)["results"])

	// 读操作接受任意方法
	post := s.mutate(t, "getHello", map[string]any{})
	assert.Equal(t, http.StatusOK, post.code, post.raw)
}

func TestRouter_Pagination(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 12; i++ {
		r := s.mutate(t, "createNote", map[string]any{"title": fmt.Sprintf("note-%02d", i), "content": "c"})
		require.Equal(t, http.StatusOK, r.code, r.raw)
	}

	first := s.query(t, "getNotes", nil)
	require.Equal(t, http.StatusOK, first.code, first.raw)
	assert.EqualValues(t, 10, first.data(t)["results"])
	notes := first.data(t)["notes"].([]any)
	assert.Equal(t, "note-11", notes[0].(map[string]any)["title"])

	second := s.query(t, "getNotes", map[string]any{"limit": 10, "page": 2})
	assert.EqualValues(t, 2, second.data(t)["results"])
	notes = second.data(t)["notes"].([]any)
	assert.Equal(t, "note-00", notes[1].(map[string]any)["title"])

	empty := s.query(t, "getNotes", map[string]any{"limit": 10, "page": 5})
	assert.EqualValues(t, 0, empty.data(t)["results"])
	assert.Equal(t, []any{}, empty.data(t)["notes"])

	// 超大页码不会回绕到第一页
	for _, input := range []string{`{"limit":100,"page":100000000000000000}`, `{"page":1e30}`} {
		r := s.do(t, http.MethodGet, "/api/trpc/getNotes?input="+url.QueryEscape(input), "")
		require.Equal(t, http.StatusOK, r.code, r.raw)
		assert.EqualValues(t, 0, r.data(t)["results"], input)
		assert.Equal(t, []any{}, r.data(t)["notes"], input)
	}
}

func TestRouter_BatchEnvelope(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trpc/createNote?batch=1", strings.NewReader(`{"0":{"title":"A","content":"x"}}`))
	req.Header.Set("Content-Type", "application/json")
	s.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ok []map[string]any
	require.NoError(t, sonic.UnmarshalString(w.Body.String(), &ok))
	require.Len(t, ok, 1)
	assert.Contains(t, ok[0], "result")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/trpc/getNote?batch=1&input="+url.QueryEscape(`{"0":{"noteId":"nope"}}`), nil)
	s.r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	var failed []map[string]any
	require.NoError(t, sonic.UnmarshalString(w.Body.String(), &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, "NOT_FOUND", failed[0]["error"].(map[string]any)["code"])
}

func TestRouter_CorsAndTrace(t *testing.T) {
	s := newTestServer(t)

	pre := s.do(t, http.MethodOptions, "/api/trpc/createNote", "")
	assert.Equal(t, http.StatusNoContent, pre.code)
	assert.Empty(t, pre.raw)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/trpc/getHello", nil)
	req.Header.Set("X-Trace-ID", "trace-1")
	s.r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "trace-1", w.Header().Get("X-Trace-ID"))
}

func TestRouter_NotFoundAndFrontend(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/trpc/nope", "/api", "/api/other"} {
		r := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, r.code, target)
		assert.Equal(t, "Not Found", r.raw, target)
	}

	// 尾部斜杠不重定向
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		for _, target := range []string{"/api/trpc/getHello/", "/api/trpc/createNote/"} {
			r := s.do(t, method, target, "")
			assert.Equal(t, http.StatusNotFound, r.code, method+" "+target)
			assert.Equal(t, "Not Found", r.raw, method+" "+target)
			assert.Empty(t, r.header.Get("Location"), method+" "+target)
		}
	}

	index := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, index.code)
	assert.Equal(t, "<html>notes</html>", index.raw)

	spa := s.do(t, http.MethodGet, "/notes/123", "")
	assert.Equal(t, http.StatusOK, spa.code)
	assert.Equal(t, "<html>notes</html>", spa.raw)

	asset := s.do(t, http.MethodGet, "/assets/app.js", "")
	assert.Equal(t, http.StatusOK, asset.code)
	assert.Equal(t, "console.log('notes')", asset.raw)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)

	r := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "x"})
	require.Equal(t, http.StatusOK, r.code, r.raw)
	s.query(t, "getNote", map[string]any{"noteId": "missing"})
	s.do(t, http.MethodGet, "/api/trpc/nope", "")

	n, err := testutil.GatherAndCount(s.reg, "note_rpc_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := `
# HELP note_rpc_notes Number of notes in the store.
# TYPE note_rpc_notes gauge
note_rpc_notes{store="notes"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(s.reg, strings.NewReader(expected), "note_rpc_notes"))
}

func TestRouter_TitleReuseScenario(t *testing.T) {
	s := newTestServer(t)

	first := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "x"})
	require.Equal(t, http.StatusOK, first.code, first.raw)
	firstNote := first.data(t)["data"].(map[string]any)["note"].(map[string]any)
	assert.Equal(t, false, firstNote["published"])
	firstID := firstNote["id"].(string)

	dup := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "y"})
	assert.Equal(t, http.StatusConflict, dup.code, dup.raw)

	renamed := s.mutate(t, "updateNote", map[string]any{"noteId": firstID, "body": map[string]any{"title": "B"}})
	require.Equal(t, http.StatusOK, renamed.code, renamed.raw)
	assert.Equal(t, "B", renamed.data(t)["note"].(map[string]any)["title"])

	reused := s.mutate(t, "createNote", map[string]any{"title": "A", "content": "z"})
	require.Equal(t, http.StatusOK, reused.code, reused.raw)
	reusedID := reused.data(t)["data"].(map[string]any)["note"].(map[string]any)["id"]

	latest := s.query(t, "getNotes", map[string]any{"limit": 1, "page": 1})
	require.Equal(t, http.StatusOK, latest.code, latest.raw)
	assert.EqualValues(t, 1, latest.data(t)["results"])
	assert.Equal(t, reusedID, latest.data(t)["notes"].([]any)[0].(map[string]any)["id"])

	deleted := s.mutate(t, "deleteNote", map[string]any{"noteId": firstID})
	require.Equal(t, http.StatusOK, deleted.code, deleted.raw)
	assert.Equal(t, map[string]any{"status": "success"}, deleted.data(t))

	gone := s.query(t, "getNote", map[string]any{"noteId": firstID})
	assertRPCError(t, gone, http.StatusNotFound, "NOT_FOUND", "No note with that Id exists", "getNote")
}

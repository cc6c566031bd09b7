package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

const smallDoc = `{"title":"small","slices":[
  {"name":"g","type":"graph","graph":{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"from":"a","to":"b","label":"r"}]}}
]}`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(Config{}, st, nil, nil, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postDoc(t *testing.T, ts *httptest.Server, body any) (*http.Response, okResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out okResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/status/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out okResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.OK)
}

func TestStoreAndRender(t *testing.T) {
	_, ts := newTestServer(t)
	id := store.NewLayoutID()

	resp, out := postDoc(t, ts, map[string]string{
		"parse_data": base64.StdEncoding.EncodeToString([]byte(smallDoc)),
		"uuid":       id,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	assert.True(t, out.OK)
	assert.Equal(t, id, out.UUID)

	svgResp, err := http.Get(ts.URL + "/layouts/" + id + "/svg?width=600")
	require.NoError(t, err)
	defer svgResp.Body.Close()
	body, err := io.ReadAll(svgResp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, svgResp.StatusCode)
	assert.Equal(t, "image/svg+xml", svgResp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), `id="node-0"`)
	assert.Contains(t, string(body), ">r</text>")
}

func TestStoreGeneratesID(t *testing.T) {
	_, ts := newTestServer(t)
	yamlDoc := "slices:\n  - name: s\n    type: string\n    label: hi\n"
	resp, out := postDoc(t, ts, map[string]string{
		"parse_data": base64.StdEncoding.EncodeToString([]byte(yamlDoc)),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	assert.Len(t, out.UUID, 32)
}

func TestStoreRejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t)
	encoded := base64.StdEncoding.EncodeToString([]byte(smallDoc))

	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing parse_data", map[string]string{"uuid": store.NewLayoutID()}, "INVALID_INPUT"},
		{"bad uuid", map[string]string{"parse_data": encoded, "uuid": "../x"}, "INVALID_LAYOUT_ID"},
		{"not base64", map[string]string{"parse_data": "%%%", "uuid": store.NewLayoutID()}, "INVALID_INPUT"},
		{"invalid document", map[string]string{
			"parse_data": base64.StdEncoding.EncodeToString([]byte(`{"slices":[]}`)),
			"uuid":       store.NewLayoutID(),
		}, "INVALID_DOCUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postDoc(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.False(t, out.OK)
			assert.Equal(t, tt.code, out.Code)
		})
	}
}

func TestLayoutNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/layouts/" + store.NewLayoutID() + "/svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/layouts/NOT-HEX/svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type wsReply struct {
	Type         string          `json:"type"`
	Layout       string          `json:"layout"`
	BasedOn      string          `json:"based_on"`
	Instance     int             `json:"instance"`
	CorpusLength int             `json:"corpus_length"`
	Length       int             `json:"length"`
	SVG          string          `json:"svg"`
	Snapshot     json.RawMessage `json:"snapshot"`
	Target       string          `json:"target"`
	Code         string          `json:"code"`
	Nodes        []struct {
		Ordinal int     `json:"ordinal"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
	} `json:"nodes"`
	Edges []struct {
		Class  string `json:"class"`
		Points []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"points"`
	} `json:"edges"`
}

func TestWebsocketStandardLayout(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "")

	var msg wsReply
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgLayout, msg.Type)
	assert.Empty(t, msg.Layout)
	assert.Equal(t, 1, msg.CorpusLength)
	assert.Contains(t, msg.SVG, "The dog barks loudly.")
	assert.NotEmpty(t, msg.Snapshot)
}

func TestWebsocketDrag(t *testing.T) {
	_, ts := newTestServer(t)
	id := store.NewLayoutID()
	resp, out := postDoc(t, ts, map[string]string{
		"parse_data": base64.StdEncoding.EncodeToString([]byte(smallDoc)),
		"uuid":       id,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)

	conn := dial(t, ts, "?id="+id)
	var layout wsReply
	require.NoError(t, conn.ReadJSON(&layout))
	require.Equal(t, MsgLayout, layout.Type)
	assert.Equal(t, id, layout.Layout)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "drag", "phase": "start", "target": "node-0"}))
	var started wsReply
	require.NoError(t, conn.ReadJSON(&started))
	assert.Equal(t, MsgUpdate, started.Type)
	assert.Empty(t, started.Nodes)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "drag", "phase": "drag", "target": "node-0", "dx": 7, "dy": 0}))
	var moved wsReply
	require.NoError(t, conn.ReadJSON(&moved))
	require.Equal(t, MsgUpdate, moved.Type)
	require.Len(t, moved.Nodes, 1)
	assert.Equal(t, 0, moved.Nodes[0].Ordinal)
	require.Len(t, moved.Edges, 1)
	assert.Equal(t, "edge", moved.Edges[0].Class)
	assert.Len(t, moved.Edges[0].Points, 2)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "drag", "phase": "drag", "target": "node-42", "dx": 1}))
	var failed wsReply
	require.NoError(t, conn.ReadJSON(&failed))
	assert.Equal(t, MsgError, failed.Type)
	assert.Equal(t, "NOT_FOUND", failed.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	var malformed wsReply
	require.NoError(t, conn.ReadJSON(&malformed))
	assert.Equal(t, "INVALID_INPUT", malformed.Code)
}

const corpusDoc = `{"instances":[
  {"slices":[{"name":"s","type":"string","label":"the dog sleeps"}]},
  {"slices":[{"name":"s","type":"string","label":"a cat purrs"}]},
  {"slices":[{"name":"s","type":"string","label":"dogs run"}]}
]}`

func storeCorpus(t *testing.T, ts *httptest.Server, data string) string {
	t.Helper()
	resp, out := postDoc(t, ts, map[string]string{
		"parse_data": base64.StdEncoding.EncodeToString([]byte(data)),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	return out.UUID
}

// exchange sends msg and reads n replies.
func exchange(t *testing.T, conn *websocket.Conn, msg any, n int) []wsReply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	replies := make([]wsReply, n)
	for i := range replies {
		require.NoError(t, conn.ReadJSON(&replies[i]))
	}
	return replies
}

func TestStoreCorpus(t *testing.T) {
	_, ts := newTestServer(t)
	resp, out := postDoc(t, ts, map[string]string{
		"parse_data": base64.StdEncoding.EncodeToString([]byte(corpusDoc)),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Error)
	assert.Equal(t, 3, out.Instances)

	svgResp, err := http.Get(ts.URL + "/layouts/" + out.UUID + "/svg?instance=1")
	require.NoError(t, err)
	defer svgResp.Body.Close()
	body, err := io.ReadAll(svgResp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, svgResp.StatusCode)
	assert.Contains(t, string(body), "a cat purrs")

	for _, q := range []string{"?instance=3", "?instance=-1", "?instance=x"} {
		r, err := http.Get(ts.URL + "/layouts/" + out.UUID + "/svg" + q)
		require.NoError(t, err)
		r.Body.Close()
		assert.Equal(t, http.StatusBadRequest, r.StatusCode, q)
	}
}

func TestWebsocketInstances(t *testing.T) {
	_, ts := newTestServer(t)
	id := storeCorpus(t, ts, corpusDoc)

	conn := dial(t, ts, "?id="+id)
	var first wsReply
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, MsgLayout, first.Type)
	assert.Equal(t, 0, first.Instance)
	assert.Equal(t, 3, first.CorpusLength)
	assert.Contains(t, first.SVG, "the dog sleeps")

	second := exchange(t, conn, map[string]any{"type": "instance", "index": 2}, 1)[0]
	require.Equal(t, MsgLayout, second.Type)
	assert.Equal(t, 2, second.Instance)
	assert.Equal(t, id, second.Layout)
	assert.Contains(t, second.SVG, "dogs run")

	bad := exchange(t, conn, map[string]any{"type": "instance", "index": 3}, 1)[0]
	assert.Equal(t, MsgError, bad.Type)
	assert.Equal(t, "INVALID_INPUT", bad.Code)

	// The failed request leaves the current instance in place.
	moved := exchange(t, conn, map[string]any{"type": "drag", "phase": "drag", "target": "node-0", "dx": 3}, 1)[0]
	require.Equal(t, MsgUpdate, moved.Type)
	require.Len(t, moved.Nodes, 1)
}

func TestWebsocketSearch(t *testing.T) {
	s, ts := newTestServer(t)
	id := storeCorpus(t, ts, corpusDoc)

	conn := dial(t, ts, "?id="+id)
	var layout wsReply
	require.NoError(t, conn.ReadJSON(&layout))

	found := exchange(t, conn, map[string]any{"type": "search", "filters": []map[string]string{{"label": "DOG"}}}, 2)
	require.Equal(t, MsgCorpusLength, found[0].Type, found[0].Code)
	assert.Equal(t, 2, found[0].Length)
	require.Equal(t, MsgRoute, found[1].Type)
	result := found[1].Layout
	require.Len(t, result, 32)
	assert.NotEqual(t, id, result)

	stored, err := s.store.Get(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, id, stored.BasedOn)
	require.Len(t, stored.Filters, 1)
	assert.Equal(t, "DOG", stored.Filters[0].Label)

	rconn := dial(t, ts, "?id="+result)
	var rlayout wsReply
	require.NoError(t, rconn.ReadJSON(&rlayout))
	assert.Equal(t, id, rlayout.BasedOn)
	assert.Equal(t, 2, rlayout.CorpusLength)
	assert.Contains(t, rlayout.SVG, "the dog sleeps")

	// Searching a result searches its base.
	again := exchange(t, rconn, map[string]any{"type": "search", "filters": []map[string]string{{"label": "cat"}}}, 2)
	require.Equal(t, MsgRoute, again[1].Type, again[0].Code)
	nested, err := s.store.Get(context.Background(), again[1].Layout)
	require.NoError(t, err)
	assert.Equal(t, id, nested.BasedOn)
	assert.Equal(t, 1, nested.Len())

	cleared := exchange(t, rconn, map[string]any{"type": "clear_search"}, 2)
	assert.Equal(t, MsgCorpusLength, cleared[0].Type)
	assert.Equal(t, 3, cleared[0].Length)
	assert.Equal(t, MsgRoute, cleared[1].Type)
	assert.Equal(t, id, cleared[1].Layout)

	self := exchange(t, conn, map[string]any{"type": "clear_search"}, 1)[0]
	assert.Equal(t, MsgRoute, self.Type)
	assert.Equal(t, id, self.Layout)

	none := exchange(t, conn, map[string]any{"type": "search", "filters": []map[string]string{{"label": "zebra"}}}, 1)[0]
	assert.Equal(t, MsgError, none.Type)
	assert.Equal(t, "NOT_FOUND", none.Code)

	invalid := exchange(t, conn, map[string]any{"type": "search"}, 1)[0]
	assert.Equal(t, "INVALID_INPUT", invalid.Code)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nodecanvas_searches_total{result="hit"} 2`)
	assert.Contains(t, string(body), `nodecanvas_searches_total{result="empty"} 1`)
	assert.Contains(t, string(body), `nodecanvas_searches_total{result="error"} 1`)
}

func TestWebsocketSearchStandardLayout(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dial(t, ts, "")
	var layout wsReply
	require.NoError(t, conn.ReadJSON(&layout))

	found := exchange(t, conn, map[string]any{"type": "search", "filters": []map[string]string{{"slice": "amr", "label": "dog"}}}, 2)
	require.Equal(t, MsgRoute, found[1].Type, found[0].Code)
	stored, err := s.store.Get(context.Background(), found[1].Layout)
	require.NoError(t, err)
	assert.Empty(t, stored.BasedOn)
	assert.Equal(t, 1, stored.Len())

	cleared := exchange(t, conn, map[string]any{"type": "clear_search"}, 1)[0]
	assert.Equal(t, MsgRoute, cleared.Type)
	assert.Empty(t, cleared.Layout)
}

func TestWebsocketSearchWithoutStore(t *testing.T) {
	s := New(Config{}, nil, nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	conn := dial(t, ts, "")
	var layout wsReply
	require.NoError(t, conn.ReadJSON(&layout))
	reply := exchange(t, conn, map[string]any{"type": "search", "filters": []map[string]string{{"label": "dog"}}}, 1)[0]
	assert.Equal(t, MsgError, reply.Type)
	assert.Equal(t, "UNSUPPORTED", reply.Code)
}

func TestWebsocketUnknownLayout(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?id=" + store.NewLayoutID()
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	s, ts := newTestServer(t)
	s.metrics.Install()
	t.Cleanup(observability.Reset)

	resp, err := http.Get(ts.URL + "/status/")
	require.NoError(t, err)
	resp.Body.Close()
	conn := dial(t, ts, "")
	var msg wsReply
	require.NoError(t, conn.ReadJSON(&msg))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `nodecanvas_http_requests_total{method="GET",route="/status/",status="OK"} 1`)
	assert.Contains(t, string(body), "nodecanvas_layout_duration_seconds")
}

func TestListenAndServeShutdown(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	s := New(Config{Addr: "127.0.0.1:0"}, st, nil, nil, log.NewWithOptions(io.Discard, log.Options{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ifbars/s1bridge/internal/config"
	"github.com/ifbars/s1bridge/internal/gameproc"
	"github.com/ifbars/s1bridge/internal/modclient"
	"github.com/ifbars/s1bridge/internal/protocol"
)

// fakeAdder captures registered tools so handlers can be invoked directly.
type fakeAdder struct {
	tools    []mcp.Tool
	handlers map[string]server.ToolHandlerFunc
}

func (f *fakeAdder) AddTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	f.tools = append(f.tools, tool)
	f.handlers[tool.Name] = h
}

type recordedCall struct {
	method  string
	params  map[string]any
	retries int
}

// fakeCaller scripts one response or error per method.
type fakeCaller struct {
	responses map[string]*protocol.Response
	errs      map[string]error
	calls     []recordedCall
	connected bool
}

func (f *fakeCaller) Connect() error    { f.connected = true; return nil }
func (f *fakeCaller) Disconnect()       { f.connected = false }
func (f *fakeCaller) IsConnected() bool { return f.connected }

func (f *fakeCaller) Call(method string, params map[string]any) (*protocol.Response, error) {
	return f.CallWithRetry(method, params, 0)
}

func (f *fakeCaller) CallWithRetry(method string, params map[string]any, maxRetries int) (*protocol.Response, error) {
	f.calls = append(f.calls, recordedCall{method: method, params: params, retries: maxRetries})
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	if resp, ok := f.responses[method]; ok {
		return resp, nil
	}
	return &protocol.Response{ID: 1, Result: []byte(`{}`)}, nil
}

func newCatalog(c Caller) *fakeAdder {
	f := &fakeAdder{handlers: map[string]server.ToolHandlerFunc{}}
	mgr := gameproc.New(config.GameConfig{Executable: "Schedule I.exe"})
	cfg := &config.Config{}

	registerPlayerTools(f, c)
	registerNPCTools(f, c)
	registerItemTools(f, c)
	registerPropertyTools(f, c)
	registerVehicleTools(f, c)
	registerGameStateTools(f, c)
	registerDebugTools(f, c)
	registerLifecycleTools(f, c, mgr, cfg)
	registerDocsTools(f)
	return f
}

func invoke(t *testing.T, f *fakeAdder, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	h, ok := f.handlers[name]
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler %q returned error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestCatalogRegistersAllTools(t *testing.T) {
	f := newCatalog(&fakeCaller{})

	want := []string{
		"s1_get_player", "s1_get_player_inventory", "s1_teleport_player",
		"s1_add_item_to_player", "s1_get_npc", "s1_list_npcs",
		"s1_get_npc_position", "s1_teleport_npc", "s1_set_npc_health",
		"s1_list_items", "s1_get_item", "s1_spawn_item",
		"s1_list_properties", "s1_get_property", "s1_list_vehicles",
		"s1_get_vehicle", "s1_get_game_state", "s1_inspect_object",
		"s1_launch_game", "s1_close_game", "s1_get_game_process_info",
		"s1_search_s1api_docs",
	}
	if len(f.tools) != len(want) {
		t.Fatalf("registered %d tools, want %d", len(f.tools), len(want))
	}
	for _, name := range want {
		if _, ok := f.handlers[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
	for _, tool := range f.tools {
		if tool.InputSchema.Type != "object" {
			t.Errorf("tool %q schema type = %q, want object", tool.Name, tool.InputSchema.Type)
		}
	}
}

func TestPassthroughToolsCallExpectedMethods(t *testing.T) {
	position := map[string]any{"x": 1.0, "y": 2.0, "z": 3.0}

	tests := []struct {
		tool       string
		args       map[string]any
		wantMethod string
		wantParam  string
		wantValue  any
	}{
		{"s1_get_player", nil, "get_player", "", nil},
		{"s1_get_player_inventory", nil, "get_player_inventory", "", nil},
		{"s1_teleport_player", map[string]any{"position": position}, "teleport_player", "position", position},
		{"s1_add_item_to_player", map[string]any{"item_id": "jar"}, "add_item_to_player", "quantity", 1.0},
		{"s1_get_npc", map[string]any{"npc_id": "kyle"}, "get_npc", "npc_id", "kyle"},
		{"s1_list_npcs", map[string]any{"filter": "conscious"}, "list_npcs", "filter", "conscious"},
		{"s1_get_npc_position", map[string]any{"npc_id": "kyle"}, "get_npc_position", "npc_id", "kyle"},
		{"s1_set_npc_health", map[string]any{"npc_id": "kyle", "health": 50.0}, "set_npc_health", "health", 50.0},
		{"s1_list_items", map[string]any{"category": "tools"}, "list_items", "category", "tools"},
		{"s1_get_item", map[string]any{"item_id": "jar"}, "get_item", "item_id", "jar"},
		{"s1_list_properties", nil, "list_properties", "", nil},
		{"s1_get_property", map[string]any{"property_name": "Barn"}, "get_property", "property_name", "Barn"},
		{"s1_list_vehicles", nil, "list_vehicles", "", nil},
		{"s1_get_vehicle", map[string]any{"vehicle_id": "van"}, "get_vehicle", "vehicle_id", "van"},
		{"s1_get_game_state", nil, "get_game_state", "", nil},
		{"s1_inspect_object", map[string]any{"object_name": "Player"}, "inspect_object", "object_type", "GameObject"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			c := &fakeCaller{}
			f := newCatalog(c)

			res := invoke(t, f, tt.tool, tt.args)
			if res.IsError {
				t.Fatalf("result is error: %s", resultText(t, res))
			}
			if len(c.calls) != 1 {
				t.Fatalf("calls = %d, want 1", len(c.calls))
			}
			call := c.calls[0]
			if call.method != tt.wantMethod {
				t.Fatalf("method = %q, want %q", call.method, tt.wantMethod)
			}
			if call.retries != defaultMaxRetries {
				t.Fatalf("retries = %d, want %d", call.retries, defaultMaxRetries)
			}
			if tt.wantParam == "" {
				return
			}
			got := call.params[tt.wantParam]
			switch want := tt.wantValue.(type) {
			case map[string]any:
				gotMap, ok := got.(map[string]any)
				if !ok || gotMap["x"] != want["x"] {
					t.Fatalf("params[%q] = %#v, want %#v", tt.wantParam, got, want)
				}
			default:
				if got != tt.wantValue {
					t.Fatalf("params[%q] = %#v, want %#v", tt.wantParam, got, tt.wantValue)
				}
			}
		})
	}
}

func TestRequiredArgumentErrors(t *testing.T) {
	tests := []struct {
		tool     string
		args     map[string]any
		wantText string
	}{
		{"s1_teleport_player", nil, "position is required"},
		{"s1_add_item_to_player", nil, "item_id is required"},
		{"s1_get_npc", nil, "npc_id is required"},
		{"s1_teleport_npc", map[string]any{"npc_id": "kyle"}, "position is required"},
		{"s1_set_npc_health", map[string]any{"npc_id": "kyle"}, "health is required"},
		{"s1_get_item", nil, "item_id is required"},
		{"s1_spawn_item", map[string]any{"item_id": "jar"}, "position is required"},
		{"s1_get_property", nil, "property_id or property_name is required"},
		{"s1_get_vehicle", nil, "vehicle_id is required"},
		{"s1_inspect_object", nil, "object_name is required"},
		{"s1_launch_game", nil, "version is required"},
		{"s1_launch_game", map[string]any{"version": "weird"}, "invalid version"},
		{"s1_search_s1api_docs", nil, "topic is required"},
		{"s1_search_s1api_docs", map[string]any{"topic": "NPC", "tokens": -1}, "positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.wantText, func(t *testing.T) {
			c := &fakeCaller{}
			f := newCatalog(c)

			res := invoke(t, f, tt.tool, tt.args)
			if !res.IsError {
				t.Fatal("result is not an error")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.wantText) {
				t.Fatalf("text = %q, want substring %q", text, tt.wantText)
			}
			if len(c.calls) != 0 {
				t.Fatalf("game called %d times on invalid input", len(c.calls))
			}
		})
	}
}

func TestApplicationErrorBecomesToolError(t *testing.T) {
	c := &fakeCaller{responses: map[string]*protocol.Response{
		"get_npc": {ID: 1, Error: &protocol.ErrorInfo{Code: -32001, Message: "npc not found"}},
	}}
	f := newCatalog(c)

	res := invoke(t, f, "s1_get_npc", map[string]any{"npc_id": "nobody"})
	if !res.IsError {
		t.Fatal("result is not an error")
	}
	if text := resultText(t, res); text != "npc not found (code: -32001)" {
		t.Fatalf("text = %q", text)
	}
}

func TestConnErrorSuggestsStartingGame(t *testing.T) {
	c := &fakeCaller{errs: map[string]error{
		"get_player": &modclient.ConnError{Op: "dial", Err: errors.New("connection refused")},
	}}
	f := newCatalog(c)

	res := invoke(t, f, "s1_get_player", nil)
	if !res.IsError {
		t.Fatal("result is not an error")
	}
	if text := resultText(t, res); !strings.Contains(text, "Ensure the game is running") {
		t.Fatalf("text = %q", text)
	}
}

func TestResultRenderedAsIndentedJSON(t *testing.T) {
	c := &fakeCaller{responses: map[string]*protocol.Response{
		"get_player": {ID: 1, Result: []byte(`{"health":100,"money":250}`)},
	}}
	f := newCatalog(c)

	text := resultText(t, invoke(t, f, "s1_get_player", nil))
	if !strings.Contains(text, "\n  \"health\": 100") {
		t.Fatalf("text = %q, want indented JSON", text)
	}
}

func TestSpawnItemQuantityHandling(t *testing.T) {
	position := map[string]any{"x": 0.0, "y": 0.0, "z": 0.0}

	c := &fakeCaller{}
	f := newCatalog(c)

	invoke(t, f, "s1_spawn_item", map[string]any{"item_id": "jar", "position": position})
	if _, ok := c.calls[0].params["quantity"]; ok {
		t.Fatal("default quantity sent, want omitted")
	}

	invoke(t, f, "s1_spawn_item", map[string]any{"item_id": "jar", "position": position, "quantity": 3.0})
	if got := c.calls[1].params["quantity"]; got != 3.0 {
		t.Fatalf("quantity = %v, want 3", got)
	}
}

func TestListToolsOmitEmptyFilters(t *testing.T) {
	c := &fakeCaller{}
	f := newCatalog(c)

	invoke(t, f, "s1_list_npcs", nil)
	if _, ok := c.calls[0].params["filter"]; ok {
		t.Fatal("empty filter sent, want omitted")
	}
	invoke(t, f, "s1_list_items", nil)
	if _, ok := c.calls[1].params["category"]; ok {
		t.Fatal("empty category sent, want omitted")
	}
}

func TestDocsSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("## NPC Creation\nUse NPCManager."))
	}))
	defer srv.Close()

	orig := docsBaseURL
	docsBaseURL = srv.URL
	t.Cleanup(func() { docsBaseURL = orig })

	f := newCatalog(&fakeCaller{})

	res := invoke(t, f, "s1_search_s1api_docs", map[string]any{"topic": "NPC Creation", "tokens": 800})
	if res.IsError {
		t.Fatalf("result is error: %s", resultText(t, res))
	}
	if text := resultText(t, res); !strings.Contains(text, "NPCManager") {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(gotQuery, "topic=NPC+Creation") || !strings.Contains(gotQuery, "tokens=800") {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestDocsSearchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n"))
	}))
	defer srv.Close()

	orig := docsBaseURL
	docsBaseURL = srv.URL
	t.Cleanup(func() { docsBaseURL = orig })

	f := newCatalog(&fakeCaller{})

	text := resultText(t, invoke(t, f, "s1_search_s1api_docs", map[string]any{"topic": "nothing"}))
	if !strings.Contains(text, "No documentation found") {
		t.Fatalf("text = %q", text)
	}
}

func TestDocsSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	orig := docsBaseURL
	docsBaseURL = srv.URL
	t.Cleanup(func() { docsBaseURL = orig })

	f := newCatalog(&fakeCaller{})

	res := invoke(t, f, "s1_search_s1api_docs", map[string]any{"topic": "NPC"})
	if !res.IsError {
		t.Fatal("result is not an error")
	}
	if text := resultText(t, res); !strings.Contains(text, "HTTP 502") {
		t.Fatalf("text = %q", text)
	}
}

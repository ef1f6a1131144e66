package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/labelservice"
	"github.com/starford/mathlinks/internal/settings"
	"github.com/starford/mathlinks/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	testutil.Seed(t, store, db, files)

	bus := events.NewBus()
	st, err := settings.NewStore(settings.Default(), bus)
	if err != nil {
		t.Fatal(err)
	}
	svc := labelservice.New(store, db, st, bus, nil)
	t.Cleanup(svc.Close)
	return New(svc, "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "resolve_label":
		result, err = srv.resolveLabel(ctx, req)
	case "get_account_metadata":
		result, err = srv.getAccountMetadata(ctx, req)
	case "update_account_metadata":
		result, err = srv.updateAccountMetadata(ctx, req)
	case "delete_account_metadata":
		result, err = srv.deleteAccountMetadata(ctx, req)
	case "delete_account":
		result, err = srv.deleteAccount(ctx, req)
	case "list_providers":
		result, err = srv.listProviders(ctx, req)
	case "get_mathlink_contract":
		result, err = srv.getMathLinkContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestResolveLabel(t *testing.T) {
	srv := testServer(t, map[string]string{"Note.md": "---\nmathLink: $X$\n---\n"})

	r := callTool(t, srv, "resolve_label", map[string]interface{}{"link": "Note"})
	var res labelservice.LabelResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	if res.Label != "$X$" || res.Target != "Note.md" {
		t.Errorf("result = %+v", res)
	}

	r = callTool(t, srv, "resolve_label", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without link")
	}
}

func TestAccountMetadataTools(t *testing.T) {
	srv := testServer(t, map[string]string{"Note.md": "body ^b1\n"})

	r := callTool(t, srv, "update_account_metadata", map[string]interface{}{
		"caller":   "agent",
		"path":     "Note.md",
		"mathLink": "$A$",
		"blocks":   map[string]interface{}{"b1": "one"},
	})
	if r.IsError {
		t.Fatalf("update: %s", resultText(r))
	}

	r = callTool(t, srv, "resolve_label", map[string]interface{}{"link": "Note#^b1"})
	if !strings.Contains(resultText(r), `"label": "^one"`) {
		t.Errorf("block label = %s", resultText(r))
	}

	r = callTool(t, srv, "get_account_metadata", map[string]interface{}{"caller": "agent", "path": "Note.md"})
	var md labelservice.AccountMetadata
	_ = json.Unmarshal([]byte(resultText(r)), &md)
	if md.Metadata.MathLink == nil || *md.Metadata.MathLink != "$A$" || md.Metadata.MathLinkBlocks["b1"] != "one" {
		t.Errorf("metadata = %+v", md)
	}

	r = callTool(t, srv, "delete_account_metadata", map[string]interface{}{"caller": "agent", "path": "Note.md", "which": "mathLink"})
	if r.IsError {
		t.Fatalf("delete field: %s", resultText(r))
	}
	r = callTool(t, srv, "delete_account_metadata", map[string]interface{}{"caller": "agent", "path": "Note.md", "which": "mathLink"})
	if !r.IsError {
		t.Error("deleting an absent field should fail")
	}

	r = callTool(t, srv, "delete_account", map[string]interface{}{"caller": "agent"})
	if resultText(r) != "deleted account: agent" {
		t.Errorf("delete account = %q", resultText(r))
	}
	r = callTool(t, srv, "get_account_metadata", map[string]interface{}{"caller": "agent", "path": "Note.md"})
	if !r.IsError {
		t.Error("expected error after account deletion")
	}
}

func TestUpdateAccountMetadata_Invalid(t *testing.T) {
	srv := testServer(t, nil)

	r := callTool(t, srv, "update_account_metadata", map[string]interface{}{"caller": "agent", "path": "Note.md"})
	if !r.IsError {
		t.Error("expected error for empty patch")
	}
	r = callTool(t, srv, "update_account_metadata", map[string]interface{}{
		"caller": "agent", "path": "Note.md", "blocks": map[string]interface{}{"b": 3},
	})
	if !r.IsError {
		t.Error("expected error for non-string block label")
	}
	r = callTool(t, srv, "update_account_metadata", map[string]interface{}{
		"caller": "agent", "path": "image.png", "mathLink": "x",
	})
	if !r.IsError {
		t.Error("expected error for non-document path")
	}
}

func TestListProviders(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "list_providers", map[string]interface{}{})
	if !strings.Contains(resultText(r), `"name": "native"`) {
		t.Errorf("providers = %s", resultText(r))
	}
}

func TestContract(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "get_mathlink_contract", nil)
	if resultText(r) != FrontmatterContract {
		t.Error("contract tool should return FrontmatterContract")
	}

	contents, err := srv.readFrontmatterResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != FrontmatterURI || !strings.Contains(tc.Text, "mathLink-blocks") {
		t.Errorf("resource = %+v", contents)
	}
}

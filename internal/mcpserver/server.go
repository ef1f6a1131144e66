// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes MathLinks label tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mathlinks/internal/labelservice"
	"github.com/starford/mathlinks/internal/models"
)

// FrontmatterURI is the resource holding FrontmatterContract.
const FrontmatterURI = "mathlinks://frontmatter"

// Server wraps the MCP server with MathLinks tools.
type Server struct {
	mcp *server.MCPServer
	svc *labelservice.Service
}

// New creates a new MCP server with all MathLinks tools registered.
func New(svc *labelservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"MathLinks",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_label",
		mcp.WithDescription("Resolve the display label of a link, as it would be rendered in the note that contains it."),
		mcp.WithString("link", mcp.Required(), mcp.Description("Link text, e.g. note, folder/note#Heading or note#^block")),
		mcp.WithString("source", mcp.Description("Path of the note containing the link (e.g. folder/note.md)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.resolveLabel)

	s.mcp.AddTool(mcp.NewTool("get_account_metadata",
		mcp.WithDescription("Read the labels a caller registered for a note."),
		mcp.WithString("caller", mcp.Required(), mcp.Description("Caller identity owning the account")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path (must end with .md)")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.getAccountMetadata)

	s.mcp.AddTool(mcp.NewTool("update_account_metadata",
		mcp.WithDescription("Register labels for a note under a caller's account. "+
			"Given fields replace stored ones, missing fields are kept. "+
			"Read the contract first via get_mathlink_contract or the "+FrontmatterURI+" resource."),
		mcp.WithString("caller", mcp.Required(), mcp.Description("Caller identity owning the account")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path (must end with .md)")),
		mcp.WithString("mathLink", mcp.Description("Label for links to the note")),
		mcp.WithObject("blocks", mcp.Description("Block id to label map, replacing the stored one")),
	), s.updateAccountMetadata)

	s.mcp.AddTool(mcp.NewTool("delete_account_metadata",
		mcp.WithDescription("Delete a caller's record for a note, one of its fields (mathLink, mathLink-blocks) or one block label."),
		mcp.WithString("caller", mcp.Required(), mcp.Description("Caller identity owning the account")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path (must end with .md)")),
		mcp.WithString("which", mcp.Description("mathLink, mathLink-blocks or a block id; empty deletes the record")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.deleteAccountMetadata)

	s.mcp.AddTool(mcp.NewTool("delete_account",
		mcp.WithDescription("Delete a caller's account together with all of its labels."),
		mcp.WithString("caller", mcp.Required(), mcp.Description("Caller identity owning the account")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.deleteAccount)

	s.mcp.AddTool(mcp.NewTool("list_providers",
		mcp.WithDescription("List the label providers in the order they are consulted."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.listProviders)

	s.mcp.AddTool(mcp.NewTool("get_mathlink_contract",
		mcp.WithDescription("Returns the MathLinks front-matter contract. "+
			"Call this before writing labels to ensure correct structure."),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.getMathLinkContract)

	// Resource: front-matter contract.
	s.mcp.AddResource(
		mcp.NewResource(FrontmatterURI, "Front-matter Contract",
			mcp.WithResourceDescription("Front-matter keys that set the display label of a note."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontmatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) resolveLabel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := req.RequireString("link")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Label(ctx, link, req.GetString("source", ""))), nil
}

func (s *Server) getAccountMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caller, path, errResult := callerAndPath(req)
	if errResult != nil {
		return errResult, nil
	}
	md, err := s.svc.GetAccountMetadata(ctx, caller, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(md), nil
}

func (s *Server) updateAccountMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caller, path, errResult := callerAndPath(req)
	if errResult != nil {
		return errResult, nil
	}

	var patch models.Metadata
	args := req.GetArguments()
	if v, ok := args["mathLink"].(string); ok {
		patch.MathLink = &v
	}
	if raw, ok := args["blocks"]; ok && raw != nil {
		obj, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("blocks must be an object of block id to label"), nil
		}
		patch.MathLinkBlocks = make(map[string]string, len(obj))
		for id, v := range obj {
			label, ok := v.(string)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("label of block %q must be a string", id)), nil
			}
			patch.MathLinkBlocks[id] = label
		}
	}
	if patch.MathLink == nil && patch.MathLinkBlocks == nil {
		return mcp.NewToolResultError("one of mathLink or blocks is required"), nil
	}

	md, err := s.svc.UpdateAccountMetadata(ctx, caller, path, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(md), nil
}

func (s *Server) deleteAccountMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caller, path, errResult := callerAndPath(req)
	if errResult != nil {
		return errResult, nil
	}
	which := req.GetString("which", "")
	if err := s.svc.DeleteAccountMetadata(ctx, caller, path, which); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if which == "" {
		return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s from %s", which, path)), nil
}

func (s *Server) deleteAccount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caller, err := req.RequireString("caller")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteAccount(ctx, caller); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted account: %s", caller)), nil
}

func (s *Server) listProviders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Providers()), nil
}

func (s *Server) getMathLinkContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readFrontmatterResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FrontmatterURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}

func callerAndPath(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	caller, err := req.RequireString("caller")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	path, err := req.RequireString("path")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return caller, path, nil
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scid-pd-engine/internal/domain"
)

const (
	catalogURI         = "scid://modules"
	modulePrefix       = "scid://modules/"
	profilePrefix      = "scid://profiles/"
	reportPrefix       = "scid://reports/"
	mimeJSON           = "application/json"
	mimeText           = "text/plain"
	moduleURITemplate  = modulePrefix + "{id}"
	profileURITemplate = profilePrefix + "{id}"
	reportURITemplate  = reportPrefix + "{id}"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "modules",
		Title:       "SCID-PD module catalog",
		Description: "Summaries of every interview module.",
		MIMEType:    mimeJSON,
	}, s.readCatalog)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: moduleURITemplate,
		Name:        "module",
		Description: "Full definition of one module, including its questions.",
		MIMEType:    mimeJSON,
	}, s.readModule)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: profileURITemplate,
		Name:        "profile",
		Description: "Profile of an assessment, stored or in progress.",
		MIMEType:    mimeJSON,
	}, s.readProfile)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: reportURITemplate,
		Name:        "report",
		Description: "Text report of an assessment.",
		MIMEType:    mimeText,
	}, s.readReport)
}

func jsonContents(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeJSON, Text: string(data)}},
	}, nil
}

// resourceID extracts the trailing id of a templated URI.
func resourceID(uri, prefix string) (string, bool) {
	id, ok := strings.CutPrefix(uri, prefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (s *Server) readCatalog(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonContents(req.Params.URI, ModuleList{Modules: s.deps.Catalog.Summaries()})
}

func (s *Server) readModule(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, ok := resourceID(uri, modulePrefix)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	module, err := s.deps.Catalog.Module(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return jsonContents(uri, module)
}

func (s *Server) readProfile(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	profile, err := s.profileResource(ctx, uri, profilePrefix)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, profile)
}

func (s *Server) readReport(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	profile, err := s.profileResource(ctx, uri, reportPrefix)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeText, Text: s.deps.Reports.Render(profile)}},
	}, nil
}

func (s *Server) profileResource(ctx context.Context, uri, prefix string) (*domain.Profile, error) {
	id, ok := resourceID(uri, prefix)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	profile, err := s.lookupProfile(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return profile, err
}

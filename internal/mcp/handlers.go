package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
)

// ListModulesParams defines parameters for the list_modules tool
type ListModulesParams struct {
	Cluster string `json:"cluster,omitempty" jsonschema:"restrict the listing to one cluster"`
}

// AssessmentParams identifies an assessment
type AssessmentParams struct {
	AssessmentID string `json:"assessment_id" jsonschema:"id returned by start_assessment"`
}

// AdministerModuleParams defines parameters for the administer_module tool
type AdministerModuleParams struct {
	AssessmentID string           `json:"assessment_id" jsonschema:"id returned by start_assessment"`
	ModuleID     string           `json:"module_id" jsonschema:"module id from list_modules"`
	Responses    domain.Responses `json:"responses" jsonschema:"answers keyed by question id"`
}

// CompleteAssessmentParams defines parameters for the complete_assessment tool
type CompleteAssessmentParams struct {
	AssessmentID   string `json:"assessment_id" jsonschema:"id returned by start_assessment"`
	ClinicianNotes string `json:"clinician_notes,omitempty" jsonschema:"free-text notes attached to the profile"`
}

// StartAssessmentParams takes no arguments
type StartAssessmentParams struct{}

// ModuleList is the list_modules result
type ModuleList struct {
	Modules []domain.ModuleSummary `json:"modules"`
}

func (s *Server) logCall(tool string, fields logrus.Fields) {
	entry := s.logger.WithField("tool", tool)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Info("Tool invoked")
}

func (s *Server) handleListModules(ctx context.Context, req *mcp.CallToolRequest, params ListModulesParams) (*mcp.CallToolResult, any, error) {
	s.logCall("list_modules", logrus.Fields{"cluster": params.Cluster})

	summaries := s.deps.Catalog.Summaries()
	if params.Cluster == "" {
		return nil, ModuleList{Modules: summaries}, nil
	}

	cluster := domain.Cluster(params.Cluster)
	if !cluster.IsValid() {
		return nil, nil, fmt.Errorf("unknown cluster %q", params.Cluster)
	}
	filtered := make([]domain.ModuleSummary, 0, len(summaries))
	for _, m := range summaries {
		if m.Cluster == cluster {
			filtered = append(filtered, m)
		}
	}
	return nil, ModuleList{Modules: filtered}, nil
}

func (s *Server) handleStartAssessment(ctx context.Context, req *mcp.CallToolRequest, _ StartAssessmentParams) (*mcp.CallToolResult, any, error) {
	s.logCall("start_assessment", nil)

	snap, err := s.deps.Sessions.Start()
	if err != nil {
		return nil, nil, err
	}
	return nil, snap, nil
}

func (s *Server) handleGetAssessment(ctx context.Context, req *mcp.CallToolRequest, params AssessmentParams) (*mcp.CallToolResult, any, error) {
	s.logCall("get_assessment", logrus.Fields{"assessment_id": params.AssessmentID})

	snap, err := s.deps.Sessions.Get(params.AssessmentID)
	if err != nil {
		return nil, nil, err
	}
	return nil, snap, nil
}

func (s *Server) handleAdministerModule(ctx context.Context, req *mcp.CallToolRequest, params AdministerModuleParams) (*mcp.CallToolResult, any, error) {
	s.logCall("administer_module", logrus.Fields{
		"assessment_id": params.AssessmentID,
		"module_id":     params.ModuleID,
		"answered":      len(params.Responses),
	})

	result, err := s.deps.Sessions.Administer(params.AssessmentID, params.ModuleID, params.Responses)
	if err != nil {
		return nil, nil, err
	}
	return nil, result, nil
}

func (s *Server) handleCompleteAssessment(ctx context.Context, req *mcp.CallToolRequest, params CompleteAssessmentParams) (*mcp.CallToolResult, any, error) {
	s.logCall("complete_assessment", logrus.Fields{"assessment_id": params.AssessmentID})

	if params.ClinicianNotes != "" {
		if err := s.deps.Sessions.SetNotes(params.AssessmentID, params.ClinicianNotes); err != nil {
			return nil, nil, err
		}
	}
	profile, err := s.deps.Sessions.Complete(ctx, params.AssessmentID)
	if err != nil {
		return nil, nil, err
	}
	return nil, profile, nil
}

// handleRenderReport prefers the stored profile and falls back to the live session.
func (s *Server) handleRenderReport(ctx context.Context, req *mcp.CallToolRequest, params AssessmentParams) (*mcp.CallToolResult, any, error) {
	s.logCall("render_report", logrus.Fields{"assessment_id": params.AssessmentID})

	profile, err := s.lookupProfile(ctx, params.AssessmentID)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: s.deps.Reports.Render(profile)},
		},
	}, nil, nil
}

func (s *Server) lookupProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if s.deps.Profiles != nil {
		profile, err := s.deps.Profiles.GetProfile(ctx, id)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	snap, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, fmt.Errorf("assessment %s: %w", id, domain.ErrNotFound)
	}
	return snap.Profile, nil
}

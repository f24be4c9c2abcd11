package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cast"

	"github.com/scid-pd-engine/internal/domain"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "conduct_module_interview",
		Title:       "Conduct a module interview",
		Description: "Interview guide for one module: the questions in order, how each is answered and when examples or onset age are needed.",
		Arguments: []*mcp.PromptArgument{
			{Name: "module_id", Description: "module id from list_modules", Required: true},
			{Name: "plain_language", Description: "true to use the simplified question wording where available"},
		},
	}, s.promptModuleInterview)

	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "review_assessment",
		Title:       "Review an assessment",
		Description: "Ask for a clinical review of an assessment's report.",
		Arguments: []*mcp.PromptArgument{
			{Name: "assessment_id", Description: "id returned by start_assessment", Required: true},
		},
	}, s.promptReviewAssessment)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (s *Server) promptModuleInterview(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	module, err := s.deps.Catalog.Module(args["module_id"])
	if err != nil {
		return nil, err
	}
	plain := cast.ToBool(args["plain_language"])

	var b strings.Builder
	fmt.Fprintf(&b, "Conduct the %s module of a SCID-PD interview (%s).\n", module.Name, module.ID)
	if module.Description != "" {
		fmt.Fprintf(&b, "%s\n", module.Description)
	}
	fmt.Fprintf(&b, "Ask the questions below in order and record each answer under its question id. "+
		"At least %d core criteria must be met for the module to be positive.\n\n", module.MinimumCriteriaCount)

	for i := range module.Questions {
		q := &module.Questions[i]
		text := q.Text
		if plain && q.SimpleText != "" {
			text = q.SimpleText
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.ID, text)
		fmt.Fprintf(&b, "   Answer: %s\n", answerGuide(q))
		if q.RequiresExamples {
			b.WriteString("   Ask for concrete examples and record them.\n")
		}
		if q.OnsetRelevant {
			b.WriteString("   Record the age at onset.\n")
		}
		if q.HelpText != "" {
			fmt.Fprintf(&b, "   Note: %s\n", q.HelpText)
		}
	}
	b.WriteString("\nWhen every answer is recorded, submit them with the administer_module tool.")

	return userPrompt(fmt.Sprintf("Interview guide for %s", module.Name), b.String()), nil
}

func answerGuide(q *domain.Question) string {
	switch q.ResponseType {
	case domain.ResponseYesNo:
		return "yes or no"
	case domain.ResponseScale:
		return fmt.Sprintf("a number from %g to %g", q.ScaleMin, q.ScaleMax)
	case domain.ResponseSingleChoice, domain.ResponseFrequency:
		if len(q.Options) == 0 {
			return "one option"
		}
		return "one of: " + strings.Join(q.Options, "; ")
	case domain.ResponseMultiChoice:
		return "one or more of: " + strings.Join(q.Options, "; ")
	case domain.ResponseOnsetAge:
		return "age in years"
	case domain.ResponseDate:
		return "a date (YYYY-MM-DD)"
	default:
		return "free text"
	}
}

func (s *Server) promptReviewAssessment(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Arguments["assessment_id"]
	profile, err := s.lookupProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	text := "Review the SCID-PD assessment below as a clinician would. Comment on whether the " +
		"positive modules are supported by pervasive, early-onset patterns, which differential " +
		"diagnoses deserve follow-up, and whether the recommendations fit the overall severity.\n\n" +
		s.deps.Reports.Render(profile)
	return userPrompt(fmt.Sprintf("Clinical review of assessment %s", id), text), nil
}

package api

import (
	"github.com/starford/mathlinks/internal/labelservice"
	"github.com/starford/mathlinks/internal/live"
	"github.com/starford/mathlinks/internal/models"
	"github.com/starford/mathlinks/internal/provider"
	"github.com/starford/mathlinks/internal/suggest"
)

// LabelResponse is the resolved label of one link (aliased from the domain layer).
type LabelResponse = labelservice.LabelResult

// RenderResponse is a document rendered for reading view (aliased from the domain layer).
type RenderResponse = labelservice.RenderedDocument

// AccountMetadataResponse is one account record (aliased from the domain layer).
type AccountMetadataResponse = labelservice.AccountMetadata

// DecorationsResponse wraps the live-preview decorations of an editor state.
type DecorationsResponse struct {
	Decorations []live.Decoration `json:"decorations" validate:"required"`
}

// WidgetEventRequest is a pointer event delivered to a rendered widget.
type WidgetEventRequest struct {
	Widget live.Widget       `json:"widget" validate:"required"`
	Event  live.PointerEvent `json:"event" validate:"required"`
}

// SetMathLinkRequest sets or, with a null value, removes a note's mathLink.
type SetMathLinkRequest struct {
	MathLink *string `json:"mathLink" example:"$\\mathbb{R}$"`
}

// SetMathLinkResponse echoes the applied value and the resulting label.
type SetMathLinkResponse struct {
	Path     string  `json:"path" example:"analysis/reals.md" validate:"required"`
	MathLink *string `json:"mathLink"`
	Label    string  `json:"label"`
}

// OutlineResponse wraps the rendered headings of a note.
type OutlineResponse struct {
	Path  string                      `json:"path" example:"analysis/reals.md" validate:"required"`
	Items []labelservice.OutlineEntry `json:"items" validate:"required"`
}

// SuggestResponse wraps ranked link suggestions.
type SuggestResponse struct {
	Suggestions []suggest.Suggestion `json:"suggestions" validate:"required"`
}

// ProvidersResponse lists the registered providers in consultation order.
type ProvidersResponse struct {
	Providers []provider.Info `json:"providers" validate:"required"`
}

// AccountsResponse lists the callers holding an account.
type AccountsResponse struct {
	Accounts []string `json:"accounts" validate:"required"`
}

// AccountPathsResponse lists the files a caller holds records for.
type AccountPathsResponse struct {
	Caller string   `json:"caller"`
	Paths  []string `json:"paths"`
}

// AccountValueResponse is a single value read from an account record.
type AccountValueResponse struct {
	Path    string `json:"path" validate:"required"`
	BlockID string `json:"block_id,omitempty"`
	Value   string `json:"value"`
	Found   bool   `json:"found"`
}

// MetadataPatch is the body of an account metadata update.
type MetadataPatch = models.Metadata

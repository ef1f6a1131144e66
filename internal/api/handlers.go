package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mathlinks/internal/labelservice"
	"github.com/starford/mathlinks/internal/live"
	"github.com/starford/mathlinks/internal/suggest"
)

// Handler holds API route handlers.
type Handler struct {
	svc *labelservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *labelservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetLabel handles GET /api/label.
//
//	@Summary		Resolve the label of a link
//	@Tags			labels
//	@Produce		json
//	@Param			link	query		string	true	"Link text, e.g. Note#^block"
//	@Param			source	query		string	false	"Path of the note containing the link"
//	@Success		200		{object}	LabelResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/label [get]
func (h *Handler) GetLabel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link := q.Get("link")
	if link == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("link is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Label(r.Context(), link, q.Get("source")))
}

// RenderDocument handles GET /api/render/*.
//
//	@Summary		Render a note for reading view with link labels applied
//	@Tags			labels
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	RenderResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render/{path} [get]
func (h *Handler) RenderDocument(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.RenderDocument(r.Context(), path)
	if err != nil {
		writeServiceError(w, "render document", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Decorations handles POST /api/decorations.
//
//	@Summary		Build live-preview decorations for an editor state
//	@Tags			labels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		live.EditorState	true	"Editor state"
//	@Success		200		{object}	DecorationsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decorations [post]
func (h *Handler) Decorations(w http.ResponseWriter, r *http.Request) {
	var state live.EditorState
	if !decodeJSON(w, r, &state) {
		return
	}
	if !validRanges(len(state.Doc), state.Visible) || !validRanges(len(state.Doc), state.Selection) {
		writeJSON(w, http.StatusBadRequest, errorBody("range out of bounds"))
		return
	}
	decos := h.svc.Decorations(r.Context(), state)
	if decos == nil {
		decos = []live.Decoration{}
	}
	writeJSON(w, http.StatusOK, DecorationsResponse{Decorations: decos})
}

func validRanges(n int, rs []live.Range) bool {
	for _, rg := range rs {
		if rg.From < 0 || rg.To < rg.From || rg.To > n {
			return false
		}
	}
	return true
}

// WidgetEvent handles POST /api/widget-events.
//
//	@Summary		Map a pointer event on a label widget to an editor action
//	@Tags			labels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		WidgetEventRequest	true	"Widget and event"
//	@Success		200		{object}	live.Action
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/widget-events [post]
func (h *Handler) WidgetEvent(w http.ResponseWriter, r *http.Request) {
	var req WidgetEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.WidgetEvent(req.Widget, req.Event))
}

// SetMathLink handles PUT /api/mathlink/*.
//
//	@Summary		Set or remove the mathLink front-matter value of a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string				true	"Note path"
//	@Param			body	body		SetMathLinkRequest	true	"New value, null removes it"
//	@Success		200		{object}	SetMathLinkResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/mathlink/{path} [put]
func (h *Handler) SetMathLink(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req SetMathLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetMathLink(r.Context(), path, req.MathLink); err != nil {
		writeServiceError(w, "set mathLink", err, slog.String("path", path))
		return
	}
	label := h.svc.Label(r.Context(), path, "").Label
	writeJSON(w, http.StatusOK, SetMathLinkResponse{Path: path, MathLink: req.MathLink, Label: label})
}

// Outline handles GET /api/outline/*.
//
//	@Summary		Render the headings of a note
//	@Tags			labels
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	OutlineResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outline/{path} [get]
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	items, err := h.svc.Outline(r.Context(), path)
	if err != nil {
		writeServiceError(w, "outline", err, slog.String("path", path))
		return
	}
	if items == nil {
		items = []labelservice.OutlineEntry{}
	}
	writeJSON(w, http.StatusOK, OutlineResponse{Path: path, Items: items})
}

// Suggest handles GET /api/suggest.
//
//	@Summary		Suggest link targets with their labels
//	@Tags			labels
//	@Produce		json
//	@Param			q		query		string	false	"Fuzzy query"
//	@Param			source	query		string	false	"Path of the note being edited"
//	@Param			limit	query		int		false	"Maximum number of results"
//	@Success		200		{object}	SuggestResponse
//	@Security		BearerAuth
//	@Router			/suggest [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	items, err := h.svc.Suggest(r.Context(), q.Get("q"), q.Get("source"), limit)
	if err != nil {
		writeServiceError(w, "suggest", err)
		return
	}
	if items == nil {
		items = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestions: items})
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get the active MathLinks settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	settings.Settings
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings())
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Replace the MathLinks settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		settings.Settings	true	"Complete settings"
//	@Success		200		{object}	settings.Settings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	next := h.svc.Settings()
	if !decodeJSON(w, r, &next) {
		return
	}
	if err := h.svc.UpdateSettings(r.Context(), next); err != nil {
		writeServiceError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Settings())
}

// ListProviders handles GET /api/providers.
//
//	@Summary		List label providers in consultation order
//	@Tags			providers
//	@Produce		json
//	@Success		200	{object}	ProvidersResponse
//	@Security		BearerAuth
//	@Router			/providers [get]
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProvidersResponse{Providers: h.svc.Providers()})
}

// ListAccounts handles GET /api/accounts.
//
//	@Summary		List callers holding a legacy account
//	@Tags			accounts
//	@Produce		json
//	@Success		200	{object}	AccountsResponse
//	@Security		BearerAuth
//	@Router			/accounts [get]
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AccountsResponse{Accounts: h.svc.Accounts().Identities()})
}

// ListAccountPaths handles GET /api/accounts/{caller}/paths.
//
//	@Summary		List the notes a caller holds metadata records for
//	@Tags			accounts
//	@Produce		json
//	@Param			caller	path		string	true	"Caller identity"
//	@Success		200		{object}	AccountPathsResponse
//	@Failure		403		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/accounts/{caller}/paths [get]
func (h *Handler) ListAccountPaths(w http.ResponseWriter, r *http.Request) {
	caller := chi.URLParam(r, "caller")
	paths, err := h.svc.AccountPaths(r.Context(), caller)
	if err != nil {
		writeServiceError(w, "list account paths", err, slog.String("caller", caller))
		return
	}
	writeJSON(w, http.StatusOK, AccountPathsResponse{Caller: caller, Paths: paths})
}

// GetAccountMetadata handles GET /api/accounts/{caller}/metadata/*.
//
//	@Summary		Read a caller's metadata record, or one value of it
//	@Tags			accounts
//	@Produce		json
//	@Param			caller	path		string	true	"Caller identity"
//	@Param			path	path		string	true	"Note path"
//	@Param			block	query		string	false	"Block id; when set only that label is returned"
//	@Success		200		{object}	AccountMetadataResponse
//	@Failure		403		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/accounts/{caller}/metadata/{path} [get]
func (h *Handler) GetAccountMetadata(w http.ResponseWriter, r *http.Request) {
	caller, path := chi.URLParam(r, "caller"), notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if _, ok := r.URL.Query()["block"]; ok {
		block := r.URL.Query().Get("block")
		v, found, err := h.svc.GetAccountValue(r.Context(), caller, path, block)
		if err != nil {
			writeServiceError(w, "get account value", err, slog.String("caller", caller), slog.String("path", path))
			return
		}
		writeJSON(w, http.StatusOK, AccountValueResponse{Path: path, BlockID: block, Value: v, Found: found})
		return
	}
	md, err := h.svc.GetAccountMetadata(r.Context(), caller, path)
	if err != nil {
		writeServiceError(w, "get account metadata", err, slog.String("caller", caller), slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// UpdateAccountMetadata handles PATCH /api/accounts/{caller}/metadata/*.
//
//	@Summary		Merge fields into a caller's metadata record
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Param			caller	path		string			true	"Caller identity"
//	@Param			path	path		string			true	"Note path"
//	@Param			body	body		MetadataPatch	true	"Fields to set"
//	@Success		200		{object}	AccountMetadataResponse
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/accounts/{caller}/metadata/{path} [patch]
func (h *Handler) UpdateAccountMetadata(w http.ResponseWriter, r *http.Request) {
	caller, path := chi.URLParam(r, "caller"), notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var patch MetadataPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	md, err := h.svc.UpdateAccountMetadata(r.Context(), caller, path, patch)
	if err != nil {
		writeServiceError(w, "update account metadata", err, slog.String("caller", caller), slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// DeleteAccountMetadata handles DELETE /api/accounts/{caller}/metadata/*.
//
//	@Summary		Delete a caller's record, one of its fields, or one block label
//	@Tags			accounts
//	@Param			caller	path	string	true	"Caller identity"
//	@Param			path	path	string	true	"Note path"
//	@Param			which	query	string	false	"mathLink, mathLink-blocks or a block id; empty deletes the record"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/accounts/{caller}/metadata/{path} [delete]
func (h *Handler) DeleteAccountMetadata(w http.ResponseWriter, r *http.Request) {
	caller, path := chi.URLParam(r, "caller"), notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	which := r.URL.Query().Get("which")
	if err := h.svc.DeleteAccountMetadata(r.Context(), caller, path, which); err != nil {
		writeServiceError(w, "delete account metadata", err, slog.String("caller", caller), slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/accounts/{caller}.
//
//	@Summary		Delete a caller's account and its provider
//	@Tags			accounts
//	@Param			caller	path	string	true	"Caller identity"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/accounts/{caller} [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller := chi.URLParam(r, "caller")
	if err := h.svc.DeleteAccount(r.Context(), caller); err != nil {
		writeServiceError(w, "delete account", err, slog.String("caller", caller))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

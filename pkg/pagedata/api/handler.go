package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// ActionPrefix is prepended to the posted vcv-action to form the action name.
const ActionPrefix = "vcv:ajax:"

// adminNonceSuffix marks actions restricted to authenticated actors.
const adminNonceSuffix = ":adminNonce"

const defaultMaxBodyBytes = 32 << 20

// ErrorResponse is the body of requests rejected before dispatch
type ErrorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// AjaxHandler serves editor actions over HTTP
type AjaxHandler struct {
	dispatcher   *Dispatcher
	auth         *jwtauth.JWTAuth
	logger       *slog.Logger
	maxBodyBytes int64
}

// HandlerOption configures the handler
type HandlerOption func(*AjaxHandler)

// WithTokenAuth verifies bearer tokens with ta
func WithTokenAuth(ta *jwtauth.JWTAuth) HandlerOption {
	return func(h *AjaxHandler) {
		h.auth = ta
	}
}

// WithHandlerLogger sets the logger
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *AjaxHandler) {
		h.logger = logger
	}
}

// WithMaxBodyBytes limits request bodies
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *AjaxHandler) {
		h.maxBodyBytes = n
	}
}

// NewAjaxHandler creates a handler dispatching through d
func NewAjaxHandler(d *Dispatcher, opts ...HandlerOption) *AjaxHandler {
	h := &AjaxHandler{
		dispatcher:   d,
		logger:       slog.Default(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the routes for editor actions
func (h *AjaxHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestSizeLimitMiddleware(h.maxBodyBytes))
	if h.auth != nil {
		r.Use(jwtauth.Verifier(h.auth))
		r.Use(ActorMiddleware)
	}

	r.Post("/", h.Ajax)
	return r
}

// Ajax dispatches the posted vcv-action
func (h *AjaxHandler) Ajax(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.logger.Warn("Invalid editor request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Message: "invalid form body"})
		return
	}

	action := strings.TrimSpace(r.Form.Get(pagedata.FieldAction))
	if action == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Message: "vcv-action is required"})
		return
	}
	name := ActionPrefix + action

	ctx := r.Context()
	if strings.HasSuffix(name, adminNonceSuffix) && pagedata.ActorFromContext(ctx) == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Message: "authentication required"})
		return
	}

	req := pagedata.NewFormRequest(r.Form)
	payload := pagedata.Payload{}
	if req.Exists(pagedata.FieldSourceID) {
		payload["sourceId"] = req.Input(pagedata.FieldSourceID)
	}

	response, ok := h.dispatcher.Dispatch(ctx, name, req, pagedata.Response{}, payload)
	if !ok {
		h.logger.Debug("Unknown editor action", "action", name, "request_id", RequestIDFromContext(ctx))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Message: "unknown action"})
		return
	}
	if response == nil {
		response = pagedata.Response{}
	}

	render.JSON(w, r, response)
}

func (h *AjaxHandler) parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(h.maxBodyBytes)
	}
	return r.ParseForm()
}

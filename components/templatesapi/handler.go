package templatesapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/templates"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type saveRequest struct {
	Name string   `json:"name"`
	Vans []string `json:"vans"`
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a net/http handler from a pre-constructed Options
// value. Request paths are matched relative to opts.RoutePath.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{opts: opts, logger: opts.Logger}
	return h
}

type handler struct {
	opts   Options
	logger *zap.Logger
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	// Names may contain an encoded "/", so routing works on the escaped path
	// and only the item segment is decoded.
	rel, ok := relativePath(r.URL.EscapedPath(), h.opts.RoutePath)
	if !ok {
		writeError(w, StatusError{Code: http.StatusNotFound})
		return
	}

	switch {
	case rel == documentPath:
		h.serveDocument(w, r)
	case rel == collectionPath || rel == collectionPath+"/":
		h.serveCollection(w, r)
	case strings.HasPrefix(rel, collectionPath+"/"):
		segment := strings.TrimPrefix(rel, collectionPath+"/")
		if strings.Contains(segment, "/") {
			writeError(w, StatusError{Code: http.StatusNotFound})
			return
		}
		name, err := url.PathUnescape(segment)
		if err != nil || strings.TrimSpace(name) == "" {
			writeError(w, StatusError{Code: http.StatusNotFound})
			return
		}
		h.serveItem(w, r, name)
	default:
		writeError(w, StatusError{Code: http.StatusNotFound})
	}
}

func (h *handler) serveDocument(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	doc, err := Document()
	if err != nil {
		h.logger.Error("openapi document unavailable", zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError})
		return
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(raw)
}

func (h *handler) serveCollection(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}
	store, ok := h.store(w)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		list := store.List(r.Context())
		if list == nil {
			list = []templates.Template{}
		}
		writeJSON(w, r, http.StatusOK, dataResponse{Data: list})
		return
	}

	req, err := h.decodeSave(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := store.Save(r.Context(), req.Name, req.Vans)
	if err != nil {
		var validation *templates.ValidationError
		if errors.As(err, &validation) {
			writeError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: errors.New(validation.Message)})
			return
		}
		h.logger.Error("save template", zap.String("name", req.Name), zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError})
		return
	}
	w.Header().Set("Location", joinPath(h.opts.RoutePath, collectionPath)+"/"+url.PathEscape(saved.Name))
	writeJSON(w, r, http.StatusCreated, dataResponse{Data: saved})
}

func (h *handler) serveItem(w http.ResponseWriter, r *http.Request, name string) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead, http.MethodDelete) {
		return
	}
	store, ok := h.store(w)
	if !ok {
		return
	}

	if r.Method == http.MethodDelete {
		removed, err := store.Delete(r.Context(), name)
		if err != nil {
			h.logger.Error("delete template", zap.String("name", name), zap.Error(err))
			writeError(w, StatusError{Code: http.StatusInternalServerError})
			return
		}
		if !removed {
			writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("template %q not found", name)})
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	tpl, found := store.Get(r.Context(), name)
	if !found {
		writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("template %q not found", name)})
		return
	}
	writeJSON(w, r, http.StatusOK, dataResponse{Data: tpl})
}

func (h *handler) decodeSave(w http.ResponseWriter, r *http.Request) (saveRequest, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return saveRequest{}, StatusError{Code: http.StatusRequestEntityTooLarge}
		}
		return saveRequest{}, StatusError{Code: http.StatusBadRequest, Err: err}
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return saveRequest{}, StatusError{Code: http.StatusBadRequest, Err: errors.New("request body must be JSON")}
	}

	doc, err := Document()
	if err != nil {
		h.logger.Error("openapi document unavailable", zap.Error(err))
		return saveRequest{}, StatusError{Code: http.StatusInternalServerError}
	}
	schema, err := templateSchema(doc)
	if err != nil {
		h.logger.Error("template schema unavailable", zap.Error(err))
		return saveRequest{}, StatusError{Code: http.StatusInternalServerError}
	}
	if err := validateBody(schema, body); err != nil {
		return saveRequest{}, StatusError{Code: http.StatusUnprocessableEntity, Err: err}
	}

	var req saveRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return saveRequest{}, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	return req, nil
}

func (h *handler) store(w http.ResponseWriter) (Store, bool) {
	if h.opts.Store == nil {
		h.logger.Error("templates handler has no store")
		writeError(w, StatusError{Code: http.StatusServiceUnavailable})
		return nil, false
	}
	return h.opts.Store, true
}

func relativePath(requestPath, root string) (string, bool) {
	root = strings.TrimRight(root, "/")
	if root == "" {
		return requestPath, true
	}
	if requestPath != root && !strings.HasPrefix(requestPath, root+"/") {
		return "", false
	}
	return strings.TrimPrefix(requestPath, root), true
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, StatusError{Code: http.StatusMethodNotAllowed})
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if r != nil && r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	writeJSON(w, nil, code, errorResponse{Error: err.Error()})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		writeError(w, StatusError{Code: http.StatusForbidden})
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	writeError(w, StatusError{Code: code})
}

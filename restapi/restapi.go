// Package restapi is an optional HTTP adapter over package registry: the
// thinnest possible translation from net/http onto the registry's
// verbs, using stdlib http.ServeMux method+path routing rather than a
// third-party router.
package restapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rantoniello/mediaprocessors/registry"
	"github.com/rantoniello/mediaprocessors/status"
	"github.com/rantoniello/mediaprocessors/wire"
)

// Handler binds a *registry.Registry to net/http.
type Handler struct {
	mux *http.ServeMux
	reg *registry.Registry
}

// New builds a Handler for reg, routed under reg.Prefix().
func New(reg *registry.Registry) *Handler {
	h := &Handler{reg: reg, mux: http.NewServeMux()}
	prefix := "/" + reg.Prefix()

	h.mux.HandleFunc("POST "+prefix, h.handlePost)
	h.mux.HandleFunc("GET "+prefix, h.handleList)
	h.mux.HandleFunc("GET "+prefix+"/{id}", h.handleInstanceGet)
	h.mux.HandleFunc("PUT "+prefix+"/{id}", h.handleInstancePut)
	h.mux.HandleFunc("DELETE "+prefix+"/{id}", h.handleDelete)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func writeEnvelope(w http.ResponseWriter, m wire.Method, st status.Status, data interface{}) {
	env := wire.NewEnvelope(m, st, data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Code)
	_ = json.NewEncoder(w).Encode(env)
}

func readBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	buf, _ := io.ReadAll(r.Body)
	return strings.TrimSpace(string(buf))
}

// typeNameFromQuery extracts proc_name/type from the query string or
// body settings for POST, which needs a type name distinct from the
// settings payload itself.
func typeNameFromQuery(r *http.Request, body string) string {
	if n := r.URL.Query().Get("proc_name"); n != "" {
		return n
	}
	if n, ok := wire.Field(body, "proc_name"); ok {
		return n
	}
	return ""
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	body := readBody(r)
	typeName := typeNameFromQuery(r, body)
	if typeName == "" {
		writeEnvelope(w, wire.MethodPOST, status.Invalid, nil)
		return
	}
	reply, st := h.reg.POST(typeName, body)
	var data interface{}
	if st.Ok() {
		_ = json.Unmarshal([]byte(reply), &data)
	}
	writeEnvelope(w, wire.MethodPOST, st, data)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	reply, st := h.reg.GET(filter)
	var data interface{}
	if st.Ok() {
		_ = json.Unmarshal([]byte(reply), &data)
	}
	writeEnvelope(w, wire.MethodGET, st, data)
}

func slotFromPath(r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	raw = strings.TrimSuffix(raw, ".json")
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (h *Handler) handleInstanceGet(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotFromPath(r)
	if !ok {
		writeEnvelope(w, wire.MethodGET, status.Invalid, nil)
		return
	}
	data, st := h.reg.PerInstanceOpt(slot, registry.TagInstanceGet, "")
	writeEnvelope(w, wire.MethodGET, st, data)
}

func (h *Handler) handleInstancePut(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotFromPath(r)
	if !ok {
		writeEnvelope(w, wire.MethodPUT, status.Invalid, nil)
		return
	}
	body := readBody(r)
	data, st := h.reg.PerInstanceOpt(slot, registry.TagInstancePut, body)
	writeEnvelope(w, wire.MethodPUT, st, data)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	slot, ok := slotFromPath(r)
	if !ok {
		writeEnvelope(w, wire.MethodDELETE, status.Invalid, nil)
		return
	}
	st := h.reg.DeleteSlot(slot)
	writeEnvelope(w, wire.MethodDELETE, st, nil)
}

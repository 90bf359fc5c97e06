package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pagesmith/pkg/auth"
	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/export"
	"github.com/matzehuels/pagesmith/pkg/project"
	"github.com/matzehuels/pagesmith/pkg/render"
)

// =============================================================================
// Auth
// =============================================================================

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), sessionFrom(r.Context()).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Projects
// =============================================================================

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := s.projects.ListProjects(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req project.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.CreateProject(r.Context(), userFrom(r.Context()).ID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.GetProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var req project.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.SaveProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.DeleteProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Elements
// =============================================================================

type elementResponse struct {
	Project *project.Project `json:"project"`
	Element *element.Element `json:"element,omitempty"`
	Changed bool             `json:"changed"`
}

func (s *Server) handleAddElement(w http.ResponseWriter, r *http.Request) {
	var partial element.Element
	if err := decodeJSON(w, r, &partial); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, added, err := s.projects.AddElement(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), partial)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, elementResponse{Project: p, Element: &added, Changed: true})
}

func (s *Server) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	var patch element.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, id, elementID := userFrom(r.Context()).ID, chi.URLParam(r, "id"), chi.URLParam(r, "elementID")
	p, changed, err := s.projects.UpdateElement(r.Context(), owner, id, elementID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := elementResponse{Project: p, Changed: changed}
	if e, ok := element.Find(p.Elements, elementID); ok {
		resp.Element = e
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveElement(w http.ResponseWriter, r *http.Request) {
	owner, id, elementID := userFrom(r.Context()).ID, chi.URLParam(r, "id"), chi.URLParam(r, "elementID")
	p, changed, err := s.projects.RemoveElement(r.Context(), owner, id, elementID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, elementResponse{Project: p, Changed: changed})
}

// =============================================================================
// Export and preview
// =============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.GetProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a, hit, err := s.exports.Export(r.Context(), p.Elements, export.Options{Format: format, Title: p.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", a.MIMEType+"; charset=utf-8")
	h.Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(a.Content)))
	h.Set("X-Cache", cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	w.Write(a.Content)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	vp, err := render.ParseViewport(r.URL.Query().Get("viewport"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.GetProject(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, hit, err := s.exports.Preview(r.Context(), p.Elements, export.PreviewOptions{Viewport: vp, Title: p.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// =============================================================================
// Templates
// =============================================================================

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ts, err := s.projects.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.projects.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.CreateFromTemplate(r.Context(), userFrom(r.Context()).ID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

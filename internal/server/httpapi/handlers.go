package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/logging"
	"github.com/dmitrijs2005/docme/internal/server/models"
)

type UserService interface {
	Authenticator
	Register(ctx context.Context, req api.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req api.LoginRequest) (string, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type FolderService interface {
	Changes(ctx context.Context, userID string) ([]api.Folder, error)
	Create(ctx context.Context, userID string, f api.Folder) error
	Update(ctx context.Context, userID, id string, f api.Folder) error
	Delete(ctx context.Context, userID, id string) error
}

type DocumentService interface {
	Changes(ctx context.Context, userID string) ([]api.Document, error)
	Create(ctx context.Context, userID string, d api.Document) error
	Update(ctx context.Context, userID, id string, d api.Document) error
	Delete(ctx context.Context, userID, id string) error
}

type ImageService interface {
	NewUpload(ctx context.Context, userID string) (*api.ImageUpload, error)
}

// Handlers serves the REST API on top of the services.
type Handlers struct {
	users     UserService
	folders   FolderService
	documents DocumentService
	images    ImageService
	logger    logging.Logger
}

func NewHandlers(us UserService, fs FolderService, ds DocumentService, is ImageService, l logging.Logger) *Handlers {
	return &Handlers{users: us, folders: fs, documents: ds, images: is, logger: l}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse(msg))
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.users.Register(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.RegisterResponse{Message: "user created"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	u, err := h.users.Me(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UserResponse{Data: api.User{Username: u.UserName, Name: u.Name, Email: u.Email}})
}

func (h *Handlers) FolderChanges(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	out, err := h.folders.Changes(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var f api.Folder
	if !decodeJSON(w, r, &f) {
		return
	}
	if err := h.folders.Create(r.Context(), userID, f); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handlers) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var f api.Folder
	if !decodeJSON(w, r, &f) {
		return
	}
	if err := h.folders.Update(r.Context(), userID, chi.URLParam(r, "id"), f); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.folders.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DocumentChanges(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	out, err := h.documents.Changes(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var d api.Document
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := h.documents.Create(r.Context(), userID, d); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var d api.Document
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := h.documents.Update(r.Context(), userID, chi.URLParam(r, "id"), d); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.documents.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CreateImageUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	up, err := h.images.NewUpload(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

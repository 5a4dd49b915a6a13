package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// Handler exposes HTTP endpoints for user and welcome-email operations.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the user endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Show)
	r.Put("/users/{id}", h.Update)
	r.Patch("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
	r.Post("/users/{id}/send-welcome-email", h.SendWelcomeEmail)
}

type emailPayload struct {
	ID    *int64 `json:"id"`
	Email string `json:"email"`
}

// UserRequest is the body of create and update calls.
type UserRequest struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	PhoneNumber *string        `json:"phone_number"`
	Emails      []emailPayload `json:"emails"`
}

// Input trims strings, turns an empty phone number into null and resolves each
// email entry to ExistingEmail (id present) or NewEmail.
func (req UserRequest) Input() Input {
	in := Input{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if req.PhoneNumber != nil {
		if p := strings.TrimSpace(*req.PhoneNumber); p != "" {
			in.PhoneNumber = &p
		}
	}
	if req.Emails != nil {
		in.Emails = make([]entity.EmailEntry, 0, len(req.Emails))
		for _, e := range req.Emails {
			addr := strings.TrimSpace(e.Email)
			if e.ID != nil {
				in.Emails = append(in.Emails, entity.ExistingEmail{ID: *e.ID, Email: addr})
				continue
			}
			in.Emails = append(in.Emails, entity.NewEmail{Email: addr})
		}
	}
	return in
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list users.")
		return
	}
	if users == nil {
		users = []entity.User{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": users})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Create(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, err, "Failed to create user.")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"data": u})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Show(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to load user.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req UserRequest
	if !h.decode(w, r, &req) {
		return
	}
	u, err := h.svc.Update(r.Context(), id, req.Input())
	if err != nil {
		h.writeError(w, err, "Failed to update user.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete user.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendWelcomeEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	u, err := h.svc.SendWelcomeEmail(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "An error occurred while queuing the email.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome email has been queued for user " + u.FullName() + ".",
	})
}

// userID parses the {id} path segment. Anything that is not a positive integer
// cannot name a user, so it is answered like a missing one.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, ErrNotFound, "")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Debugw("invalid user payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON payload.", "error": err.Error()})
		return false
	}
	return true
}

// writeError maps service errors to status codes; failMsg is used for 500s.
func (h *Handler) writeError(w http.ResponseWriter, err error, failMsg string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  verr.Fields,
		})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found."})
	case errors.Is(err, ErrNoEmailAddresses):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User has no email addresses."})
	default:
		h.logger.Errorw("request failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": failMsg, "error": err.Error()})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

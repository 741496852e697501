package user

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/identity"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/user"
)

type Handler struct {
	svc      *user.Service
	accounts identity.Provider
}

func NewHandler(svc *user.Service, accounts identity.Provider) *Handler {
	return &Handler{svc: svc, accounts: accounts}
}

// PublicRoutes are reachable without a token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *Handler) Routes(r chi.Router) {
	r.Patch("/edit-user", h.update)
	r.Get("/saldo", h.balance)
	r.Get("/user", h.account)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type userResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Photo    *string `json:"photo"`
	Saldo    float64 `json:"saldo"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !render.Decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), user.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, "all fields are required")
		case errors.Is(err, user.ErrInvalidEmail):
			render.Error(w, http.StatusBadRequest, "use a valid email")
		case errors.Is(err, identity.ErrEmailTaken):
			render.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrInvalidPassword):
			render.Error(w, http.StatusBadRequest, identity.ErrInvalidPassword.Error())
		default:
			slog.Error("failed to register user", "error", err)
			render.Error(w, http.StatusInternalServerError, "error registering user")
		}

		return
	}

	render.JSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User: userResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Photo:    u.Photo,
			Saldo:    transaction.Major(u.Balance),
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		render.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			render.Error(w, http.StatusUnauthorized, err.Error())
			return
		}

		slog.Error("failed to sign in", "error", err)
		render.Error(w, http.StatusInternalServerError, err.Error())

		return
	}

	render.JSON(w, http.StatusOK, loginResponse{Token: token})
}

type updateRequest struct {
	Username *string `json:"username"`
	Photo    *string `json:"photo"`
}

type updatedFields struct {
	Username *string `json:"username,omitempty"`
	Photo    *string `json:"photo,omitempty"`
}

type updateResponse struct {
	Message       string        `json:"message"`
	UpdatedFields updatedFields `json:"updatedFields"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !render.Decode(w, r, &req) {
		return
	}

	fields, err := h.svc.UpdateProfile(r.Context(), auth.UserID(r.Context()), user.UpdateParams{
		Username: req.Username,
		Photo:    req.Photo,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNothingToUpdate):
			render.Error(w, http.StatusBadRequest, "at least one of username or photo must be provided")
		case errors.Is(err, user.ErrNotFound):
			render.Error(w, http.StatusNotFound, err.Error())
		default:
			slog.Error("failed to update user", "error", err)
			render.Error(w, http.StatusInternalServerError, err.Error())
		}

		return
	}

	render.JSON(w, http.StatusOK, updateResponse{
		Message:       "User updated successfully",
		UpdatedFields: updatedFields(fields),
	})
}

type balanceResponse struct {
	Message string  `json:"message"`
	Saldo   float64 `json:"saldo"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Balance(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			render.Error(w, http.StatusNotFound, err.Error())
			return
		}

		render.Error(w, http.StatusInternalServerError, err.Error())

		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{
		Message: "Saldo retrieved successfully",
		Saldo:   transaction.Major(b),
	})
}

type accountResponse struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PhotoURL     *string    `json:"photoURL"`
	CreatedAt    time.Time  `json:"creationTime"`
	LastSignInAt *time.Time `json:"lastSignInTime"`
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.GetAccount(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		slog.Error("failed to fetch account", "error", err)
		render.Error(w, http.StatusInternalServerError, "error fetching user data")

		return
	}

	render.JSON(w, http.StatusOK, accountResponse{
		UID:          a.ID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		PhotoURL:     a.PhotoURL,
		CreatedAt:    a.CreatedAt,
		LastSignInAt: a.LastSignInAt,
	})
}

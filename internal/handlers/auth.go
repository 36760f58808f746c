package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/events"
	"github.com/jobboard/apiserver/internal/present"
	"github.com/jobboard/apiserver/internal/services"
	"github.com/jobboard/apiserver/types"
)

const (
	formFieldAvatar    = "profileImage"
	maxMultipartMemory = 8 << 20
)

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// AuthHandler provides account endpoints.
type AuthHandler struct {
	userService   *services.UserService
	avatarService *services.AvatarService
	tokens        *auth.TokenProvider
	codec         IDCodec
	events        events.Publisher
}

func NewAuthHandler(
	userService *services.UserService,
	avatarService *services.AvatarService,
	tokens *auth.TokenProvider,
	codec IDCodec,
	publisher events.Publisher,
) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		avatarService: avatarService,
		tokens:        tokens,
		codec:         codec,
		events:        publisher,
	}
}

// AuthRouter registers account routes. limiter guards register and login
// and may be nil.
func AuthRouter(r chi.Router, handler *AuthHandler, limiter func(http.Handler) http.Handler) {
	authMiddleware := RequireAuth(handler.tokens)
	credentials := r
	if limiter != nil {
		credentials = r.With(limiter)
	}

	credentials.Post("/register", handler.Register)
	credentials.Post("/login", handler.Login)
	r.With(authMiddleware).Get("/profile", handler.Profile)
	r.Get("/users", handler.ListUsers)
	r.Route("/users/{id}", func(r chi.Router) {
		r.With(DecodeID(handler.codec, "id"), authMiddleware).Put("/", handler.UpdateUser)
		r.With(DecodeID(handler.codec, "id"), authMiddleware).Put("/avatar", handler.UploadAvatar)
		r.With(DecodeID(handler.codec, "id")).Get("/avatar", handler.GetAvatar)
	})
}

// RequireAuth rejects requests without a valid bearer token before any
// other work is done.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			principal, err := tokens.Verify(tokenString)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err == nil {
				if principal, err := tokens.Verify(tokenString); err == nil {
					r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), services.Registration{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		CPF:      req.CPF,
		Number:   req.Number,
		Gender:   req.Gender,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.events.Publish(r.Context(), events.UserRegistered, resp.User)
	writeData(w, http.StatusCreated, "user registered", resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Identificator, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "login successful", resp)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.userService.GetByID(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", present.User(h.codec, user))
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.userService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    present.Users(h.codec, users),
		Meta:    &PageMeta{Page: page, Limit: limit, Total: total},
	})
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch types.UserPatch
	if err := decodeJSON(w, r, &patch, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.userService.Update(r.Context(), principal, pathID(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "user updated", present.User(h.codec, user))
}

// UploadAvatar stores the multipart file profileImage as the user's avatar.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(formFieldAvatar)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeServiceError(w, r, apperr.MissingFields(formFieldAvatar))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid profileImage")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, services.MaxAvatarBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}

	id := pathID(r, "id")
	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.avatarService.Upload(r.Context(), principal, id, h.codec.Encode(id), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "profile image updated", present.User(h.codec, user))
}

func (h *AuthHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.avatarService.Open(r.Context(), pathID(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *AuthHandler) authResponse(user types.User) (AuthResponse, error) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, User: present.User(h.codec, user)}, nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
	Number   string `json:"number"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identificator string `json:"identificator"`
	Password      string `json:"password"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  present.UserPayload `json:"user"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

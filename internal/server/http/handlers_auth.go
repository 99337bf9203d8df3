package httpserver

import (
	"net/http"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/result"
)

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, result.Of(h.deps.Auth.SignUp(r.Context(), req.Name, req.Email, req.Password)))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, result.Of(h.deps.Auth.SignIn(r.Context(), req.Email, req.Password, clientIP(r))))
}

// refresh and signOut report any bad body as INVALID_TOKEN: the token is
// the only input.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, errs.InvalidToken())
		return
	}
	respond(w, http.StatusOK, result.Of(h.deps.Auth.Refresh(r.Context(), req.RefreshToken)))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, errs.InvalidToken())
		return
	}
	res := result.Map(result.Of(h.deps.Auth.SignOut(r.Context(), req.RefreshToken)), func(ok bool) successResponse {
		return successResponse{Success: ok}
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromCtx(r.Context())
	respond(w, http.StatusOK, result.Of[model.UserInfo](h.deps.Auth.Me(r.Context(), p.UserID)))
}

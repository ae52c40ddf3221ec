package usersim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/useradminclient/lib/mycontext"
	"github.com/MarcGrol/useradminclient/lib/myerrors"
	"github.com/MarcGrol/useradminclient/lib/myhttp"
	"github.com/MarcGrol/useradminclient/lib/mylog"
	"github.com/MarcGrol/useradminclient/lib/mystore"
	"github.com/MarcGrol/useradminclient/lib/mytime"
	"github.com/MarcGrol/useradminclient/lib/myuuid"
)

// webService is a stand-in for the user-identity product backend, meant for
// development and contract tests of the admin client.
type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(userStore mystore.Store[User], sessionStore mystore.Store[refreshSession],
	signingKey []byte, accessTTL time.Duration, refreshTTL time.Duration,
	nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	return &webService{
		service: newService(userStore, sessionStore, signingKey, accessTTL, refreshTTL, nower, uuider),
		logger:  mylog.New("usersim"),
	}
}

func NewSessionStore(c context.Context) (mystore.Store[refreshSession], func(), error) {
	return mystore.New[refreshSession](c)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/oauth2/token", s.tokenPage()).Methods("POST")

	router.HandleFunc("/users", s.listUsersPage()).Methods("GET")
	router.HandleFunc("/users", s.createUserPage()).Methods("POST")
	router.HandleFunc("/users/{userUID}", s.getUserPage()).Methods("GET")
	router.HandleFunc("/users/{userUID}", s.updateUserPage()).Methods("PUT")
	router.HandleFunc("/users/{userUID}", s.patchUserPage()).Methods("PATCH")
	router.HandleFunc("/users/{userUID}", s.deleteUserPage()).Methods("DELETE")
	router.HandleFunc("/users/{userUID}/approve", s.approveUserPage()).Methods("POST")
}

func (s *webService) tokenPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req, err := parseTokenRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		resp, err := s.service.issueToken(c, req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, resp)
	}
}

func parseTokenRequest(r *http.Request) (tokenRequest, error) {
	req := tokenRequest{}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		err := r.ParseForm()
		if err != nil {
			return req, myerrors.NewInvalidInputError(fmt.Errorf("error parsing form: %s", err))
		}
		err = formcodec.NewDecoder().Decode(&req, r.Form)
		if err != nil {
			return req, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
		}
		return req, nil
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return req, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err))
	}

	return req, nil
}

// authenticated wraps a handler with the bearer-token check that makes the
// simulator return the 401s the client needs to recover from
func (s *webService) authenticated(next func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		authorization := r.Header.Get("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			responseWriter.WriteError(c, w, 3, myerrors.NewUnauthorizedError(fmt.Errorf("missing bearer token")))
			return
		}

		userUID, err := s.service.validateAccessToken(strings.TrimPrefix(authorization, "Bearer "))
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		next(c, userUID, w, r)
	}
}

func (s *webService) listUsersPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		req := ListUsersRequest{}
		err := formcodec.NewDecoder().Decode(&req, r.URL.Query())
		if err != nil {
			responseWriter.WriteError(c, w, 5, myerrors.NewInvalidInputError(fmt.Errorf("error decoding query: %s", err)))
			return
		}

		users, err := s.service.listUsers(c, req)
		if err != nil {
			responseWriter.WriteError(c, w, 6, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, users)
	})
}

func (s *webService) getUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		user, err := s.service.getUser(c, mux.Vars(r)["userUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 7, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, user)
	})
}

func (s *webService) createUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		user := User{}
		err := json.NewDecoder(r.Body).Decode(&user)
		if err != nil {
			responseWriter.WriteError(c, w, 8, myerrors.NewInvalidInputError(fmt.Errorf("error parsing user: %s", err)))
			return
		}

		created, err := s.service.createUser(c, user)
		if err != nil {
			responseWriter.WriteError(c, w, 9, err)
			return
		}

		responseWriter.Write(c, w, http.StatusCreated, created)
	})
}

func (s *webService) updateUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		user := User{}
		err := json.NewDecoder(r.Body).Decode(&user)
		if err != nil {
			responseWriter.WriteError(c, w, 10, myerrors.NewInvalidInputError(fmt.Errorf("error parsing user: %s", err)))
			return
		}

		updated, err := s.service.updateUser(c, mux.Vars(r)["userUID"], user)
		if err != nil {
			responseWriter.WriteError(c, w, 11, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, updated)
	})
}

func (s *webService) patchUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		patch := User{}
		err := json.NewDecoder(r.Body).Decode(&patch)
		if err != nil {
			responseWriter.WriteError(c, w, 12, myerrors.NewInvalidInputError(fmt.Errorf("error parsing patch: %s", err)))
			return
		}

		patched, err := s.service.patchUser(c, mux.Vars(r)["userUID"], patch)
		if err != nil {
			responseWriter.WriteError(c, w, 13, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, patched)
	})
}

func (s *webService) approveUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		approved, err := s.service.approveUser(c, mux.Vars(r)["userUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 14, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, approved)
	})
}

func (s *webService) deleteUserPage() http.HandlerFunc {
	return s.authenticated(func(c context.Context, userUID string, w http.ResponseWriter, r *http.Request) {
		responseWriter := myhttp.NewWriter(s.logger)

		err := s.service.deleteUser(c, mux.Vars(r)["userUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 15, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "user removed"})
	})
}

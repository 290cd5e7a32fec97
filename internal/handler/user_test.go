package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/handler"
	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/pkg/auth"
	"github.com/lucas-podkowa/library-service/pkg/validate"

	service_mocks "github.com/lucas-podkowa/library-service/internal/handler/mocks"
)

func TestHandler_Authorize(t *testing.T) {
	t.Parallel()

	t.Run("token carries the profile", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().
			Authenticate(gomock.Any(), model.AuthRequest{Email: "ana@mail.com", Password: "secreto"}).
			Return(model.User{ID: 7, Name: "Ana", Email: "ana@mail.com", Role: auth.RoleReader}, nil)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.Validator = validate.NewCustomValidator()
		e.POST("/authorize", h.Authorize)

		r := httptest.NewRequest(http.MethodPost, "/authorize",
			strings.NewReader(`{"email":"ana@mail.com","password":"secreto"}`))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp model.AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.AccessToken)

		claims := new(auth.Claims)
		token, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return auth.JWTKey, nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
		require.Equal(t, 7, claims.Profile.UserID)
		require.Equal(t, auth.RoleReader, claims.Profile.Role)
	})

	t.Run("err. bad credentials", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().
			Authenticate(gomock.Any(), model.AuthRequest{Email: "ana@mail.com", Password: "wrong"}).
			Return(model.User{}, errs.ErrForbidden)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.Validator = validate.NewCustomValidator()
		e.POST("/authorize", h.Authorize)

		r := httptest.NewRequest(http.MethodPost, "/authorize",
			strings.NewReader(`{"email":"ana@mail.com","password":"wrong"}`))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().
			RegisterUser(gomock.Any(), model.RegisterRequest{Name: "Ana", Email: "ana@mail.com", Password: "secreto"}).
			Return(model.User{ID: 7, Name: "Ana", Email: "ana@mail.com", Role: auth.RoleReader}, nil)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.Validator = validate.NewCustomValidator()
		e.POST("/register", h.Register)

		r := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"name":"Ana","email":"ana@mail.com","password":"secreto"}`))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("err. short password", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.Validator = validate.NewCustomValidator()
		e.POST("/register", h.Register)

		r := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"name":"Ana","email":"ana@mail.com","password":"abc"}`))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("err. email taken", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().
			RegisterUser(gomock.Any(), gomock.Any()).
			Return(model.User{}, errs.ErrEmailExists)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.Validator = validate.NewCustomValidator()
		e.POST("/register", h.Register)

		r := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"name":"Ana","email":"ana@mail.com","password":"secreto"}`))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusConflict, w.Code)
	})
}

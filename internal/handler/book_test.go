package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/internal/handler"
	"github.com/lucas-podkowa/library-service/internal/model"
	"github.com/lucas-podkowa/library-service/pkg/validate"

	service_mocks "github.com/lucas-podkowa/library-service/internal/handler/mocks"
)

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	book := model.Book{
		ID:     3,
		Title:  "Cien años de soledad",
		Author: "Gabriel García Márquez",
		Genre:  "Novela",
		Year:   1967,
		Stock:  2,
	}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().GetBook(gomock.Any(), 3).Return(book, nil)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.GET("/books/:id", h.GetBook)

		r := httptest.NewRequest(http.MethodGet, "/books/3", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t,
			`{"id":3,"title":"Cien años de soledad","author":"Gabriel García Márquez","publisher":"","year":1967,"genre":"Novela","stock":2}`,
			strings.Trim(w.Body.String(), "\n"))
	})

	t.Run("err. not found", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		svc := service_mocks.NewMockLibraryService(c)
		svc.EXPECT().GetBook(gomock.Any(), 9).Return(model.Book{}, errs.ErrNotFound)
		h := handler.New(svc, zap.NewNop())

		e := echo.New()
		e.GET("/books/:id", h.GetBook)

		r := httptest.NewRequest(http.MethodGet, "/books/9", http.NoBody)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_UpdateStock(t *testing.T) {
	t.Parallel()
	patched := model.Book{ID: 3, Title: "Rayuela", Author: "Julio Cortázar", Stock: 5}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	delta := 2
	absolute := 5

	tests := []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "delta ok",
			body: `{"delta":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					UpdateStock(gomock.Any(), librarianPrincipal, 3, model.UpdateStockRequest{Delta: &delta}).
					Return(patched, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":3,"title":"Rayuela","author":"Julio Cortázar","publisher":"","year":0,"genre":"","stock":5}`,
			},
		},
		{
			name: "absolute ok",
			body: `{"stock":5}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					UpdateStock(gomock.Any(), librarianPrincipal, 3, model.UpdateStockRequest{Stock: &absolute}).
					Return(patched, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":3,"title":"Rayuela","author":"Julio Cortázar","publisher":"","year":0,"genre":"","stock":5}`,
			},
		},
		{
			name:         "err. neither field",
			body:         `{}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name:         "err. both fields",
			body:         `{"delta":2,"stock":5}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name: "err. would go negative",
			body: `{"delta":2}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					UpdateStock(gomock.Any(), librarianPrincipal, 3, model.UpdateStockRequest{Delta: &delta}).
					Return(model.Book{}, errs.ErrInsufficientStock)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"insufficient stock"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLibraryService(c)
			tt.mockBehavior(svc)
			h := handler.New(svc, zap.NewNop())

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.PATCH("/books/:id/stock", h.UpdateStock, withPrincipal(librarianPrincipal))

			r := httptest.NewRequest(http.MethodPatch, "/books/3/stock", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

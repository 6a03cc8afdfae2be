package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/facturas/internal/archive"
	"github.com/MrJamesThe3rd/facturas/internal/auth"
	"github.com/MrJamesThe3rd/facturas/internal/export"
	facturasHttp "github.com/MrJamesThe3rd/facturas/internal/http"
	exportHandler "github.com/MrJamesThe3rd/facturas/internal/http/export"
	incomeHandler "github.com/MrJamesThe3rd/facturas/internal/http/income"
	invoiceHandler "github.com/MrJamesThe3rd/facturas/internal/http/invoice"
	sessionHandler "github.com/MrJamesThe3rd/facturas/internal/http/session"
	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

func newRouter(t *testing.T) (http.Handler, *invoice.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	blobs := invoice.NewMockBlobStore(ctrl)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	var (
		authn          = auth.New("admin", string(hash), "secret", time.Hour)
		invoiceService = invoice.NewService(repo, blobs, nil)
		incomeService  = income.NewService(income.NewMockRepository(ctrl), invoiceService, importer.NewService(), income.DefaultOtherExpenseFloor)
		archiveBuilder = archive.NewBuilder(invoiceService, blobs)
		exportService  = export.NewService(invoiceService, incomeService, archiveBuilder)
	)

	router := facturasHttp.New(
		authn,
		[]string{"http://localhost:5173"},
		sessionHandler.NewHandler(authn),
		invoiceHandler.NewHandler(invoiceService, 1<<20),
		incomeHandler.NewHandler(incomeService),
		exportHandler.NewHandler(exportService, archiveBuilder),
	)

	return router, repo
}

func TestRouter_AuthGate(t *testing.T) {
	router, _ := newRouter(t)

	for _, path := range []string{"/api/v1/invoices/", "/api/v1/income/2026", "/api/v1/export/2026/archive.zip"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SessionFlow(t *testing.T) {
	router, repo := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/", strings.NewReader(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/", strings.NewReader(`{"password":"hunter2"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	repo.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/", nil)
	req.AddCookie(cookies[0])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestRouter_IncomeMounted(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/", strings.NewReader(`{"password":"hunter2"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := rec.Result().Cookies()[0]

	type testCase struct {
		name   string
		method string
		path   string
		want   int
	}

	tests := []testCase{
		{name: "SummaryBadYear", method: http.MethodGet, path: "/api/v1/income/26", want: http.StatusBadRequest},
		{name: "UnknownSubroute", method: http.MethodGet, path: "/api/v1/income/2026/nope", want: http.StatusNotFound},
		{name: "WrongMethod", method: http.MethodDelete, path: "/api/v1/income/2026", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.AddCookie(cookie)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/media"
	"github.com/marketplace-api/internal/domain"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
	"github.com/marketplace-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMediaSvc struct{ mock.Mock }

func (m *mockMediaSvc) Upload(ctx context.Context, in media.UploadInput) (*domain.Asset, error) {
	args := m.Called(ctx, in)
	if a, _ := args.Get(0).(*domain.Asset); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMediaSvc) Delete(ctx context.Context, publicID, requesterID string, isAdmin bool) error {
	return m.Called(ctx, publicID, requesterID, isAdmin).Error(0)
}
func (m *mockMediaSvc) Get(ctx context.Context, publicID string) (*domain.Asset, error) {
	args := m.Called(ctx, publicID)
	if a, _ := args.Get(0).(*domain.Asset); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func newUploadRouter(svc *mockMediaSvc) http.Handler {
	h := NewUploadHandler(svc)
	r := chi.NewRouter()
	r.Post("/v1/upload/image", h.UploadImage)
	r.Post("/v1/upload/document", h.UploadDocument)
	r.Delete("/v1/upload/{publicId}", h.Delete)
	return r
}

func multipartRequest(t *testing.T, path, filename, contentType string, claims *jwtinfra.Claims) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, claims))
	}
	return req
}

func TestUploadImage_NoClaims(t *testing.T) {
	router := newUploadRouter(&mockMediaSvc{})
	req := multipartRequest(t, "/v1/upload/image", "a.png", "image/png", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUploadImage_RoutesClass(t *testing.T) {
	svc := &mockMediaSvc{}
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in media.UploadInput) bool {
		return in.Class == domain.MediaClassImage && in.UploaderID == "a1" &&
			in.Filename == "a.png" && in.ContentType == "image/png"
	})).Return(&domain.Asset{PublicID: "p1"}, nil)

	router := newUploadRouter(svc)
	req := multipartRequest(t, "/v1/upload/image", "a.png", "image/png",
		&jwtinfra.Claims{AccountID: "a1", Role: domain.RoleSeller})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestUploadDocument_TooLargeMapsTo413(t *testing.T) {
	svc := &mockMediaSvc{}
	svc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrPayloadTooLarge)

	router := newUploadRouter(svc)
	req := multipartRequest(t, "/v1/upload/document", "big.pdf", "application/pdf",
		&jwtinfra.Claims{AccountID: "a1", Role: domain.RoleSeller})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestUploadImage_UnavailableMapsTo503(t *testing.T) {
	svc := &mockMediaSvc{}
	svc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrUnavailable)

	router := newUploadRouter(svc)
	req := multipartRequest(t, "/v1/upload/image", "a.png", "image/png",
		&jwtinfra.Claims{AccountID: "a1", Role: domain.RoleCustomer})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestUploadDelete_PassesAdminFlag(t *testing.T) {
	svc := &mockMediaSvc{}
	svc.On("Delete", mock.Anything, "p1", "admin-1", true).Return(nil)

	router := newUploadRouter(svc)
	req := httptest.NewRequest(http.MethodDelete, "/v1/upload/p1", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey,
		&jwtinfra.Claims{AccountID: "admin-1", Role: domain.RoleAdmin}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

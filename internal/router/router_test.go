package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"mobilehub/internal/config"
	"mobilehub/internal/db"
	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type testAPI struct {
	server     *httptest.Server
	adminToken string
	userToken  string
	otherToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	database, err := db.InitDB(db.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database, db.DriverSQLite, zerolog.Nop()))
	require.NoError(t, db.SeedCatalog(database, zerolog.Nop()))

	bucket, err := services.OpenBucket("")
	require.NoError(t, err)

	cfg := config.Config{JWTSecret: testSecret, RateLimitRPS: 1000, RateLimitBurst: 1000}
	srv := httptest.NewServer(SetupRouter(database, bucket, cfg, zerolog.Nop()))
	t.Cleanup(func() {
		srv.Close()
		bucket.Close()
		database.Close()
	})

	tokens := services.NewTokenService(testSecret, zerolog.Nop())
	admin, _ := tokens.GenerateToken(1, "admin@mobilehub.com", models.RoleAdmin)
	user, _ := tokens.GenerateToken(2, "user@mobilehub.com", models.RoleUser)
	other, _ := tokens.GenerateToken(3, "other@mobilehub.com", models.RoleUser)
	return &testAPI{server: srv, adminToken: admin, userToken: user, otherToken: other}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ProductsArePublicButWritesNeedAdmin(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decode(t, resp, &products)
	assert.NotEmpty(t, products)

	newProduct := models.Product{Name: "Pixel Fold", Price: 1799, Stock: 3, Category: "Smartphones"}
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodPost, "/products", "", newProduct).StatusCode)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/products", api.userToken, newProduct).StatusCode)

	resp = api.do(t, http.MethodPost, "/products", api.adminToken, newProduct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)

	created.Stock = 10
	resp = api.do(t, http.MethodPut, "/products/"+strconv.Itoa(created.ID), api.adminToken, created)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	invalid := models.Product{Name: "Bad", Price: -5}
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/products", api.adminToken, invalid).StatusCode)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, "/products/"+strconv.Itoa(created.ID), api.adminToken, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/products/"+strconv.Itoa(created.ID), "", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/products/abc", "", nil).StatusCode)
}

func TestRouter_CategoryValidation(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/categories", api.adminToken, models.Category{Name: "Wearables"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/categories", api.adminToken, models.Category{Name: "Wearables", Description: "Watches and bands"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Category
	decode(t, resp, &created)

	resp = api.do(t, http.MethodGet, "/categories/"+strconv.Itoa(created.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_CartIsOwnerScoped(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/cart", "", nil).StatusCode)

	resp := api.do(t, http.MethodPost, "/cart", api.userToken, models.CreateCartItemRequest{ProductID: 1, Quantity: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.CartItem
	decode(t, resp, &item)
	assert.Equal(t, 10.0, item.Product.Price)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/cart/"+strconv.Itoa(item.ID), api.otherToken, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/cart/"+strconv.Itoa(item.ID), api.otherToken, nil).StatusCode)

	resp = api.do(t, http.MethodPatch, "/cart/"+strconv.Itoa(item.ID), api.userToken, models.UpdateCartItemRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &item)
	assert.Equal(t, 4, item.Quantity)

	var others []models.CartItem
	resp = api.do(t, http.MethodGet, "/cart", api.otherToken, nil)
	decode(t, resp, &others)
	assert.Empty(t, others)
}

func TestRouter_PlaceOrderEmptiesCart(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/orders", api.userToken, nil).StatusCode)

	api.do(t, http.MethodPost, "/cart", api.userToken, models.CreateCartItemRequest{ProductID: 1, Quantity: 2})

	resp := api.do(t, http.MethodPost, "/orders", api.userToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, 20.0, order.Total)

	var items []models.CartItem
	decode(t, api.do(t, http.MethodGet, "/cart", api.userToken, nil), &items)
	assert.Empty(t, items)

	var orders []models.Order
	decode(t, api.do(t, http.MethodGet, "/orders", api.userToken, nil), &orders)
	assert.Len(t, orders, 1)
}

func (a *testAPI) upload(t *testing.T, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.adminToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Upload(t *testing.T) {
	api := newTestAPI(t)

	resp := api.upload(t, "test-image.png", "", []byte("test image content"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var uploaded models.UploadResponse
	decode(t, resp, &uploaded)
	assert.Regexp(t, `^/uploads/\d+-test-image\.png$`, uploaded.ImageURL)

	served := api.do(t, http.MethodGet, uploaded.ImageURL, "", nil)
	require.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, "image/png", served.Header.Get("Content-Type"))
	assert.Equal(t, "default-src 'none'", served.Header.Get("Content-Security-Policy"))
	content, _ := io.ReadAll(served.Body)
	assert.Equal(t, "test image content", string(content))
}

func TestRouter_ServedSVGCannotRunScripts(t *testing.T) {
	api := newTestAPI(t)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

	resp := api.upload(t, "logo.svg", "image/svg+xml", svg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var uploaded models.UploadResponse
	decode(t, resp, &uploaded)

	served := api.do(t, http.MethodGet, uploaded.ImageURL, "", nil)
	require.Equal(t, http.StatusOK, served.StatusCode)
	assert.Equal(t, "default-src 'none'", served.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", served.Header.Get("X-Content-Type-Options"))
}

func TestRouter_UploadRejections(t *testing.T) {
	api := newTestAPI(t)

	resp := api.upload(t, "test.txt", "text/plain", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.NotEmpty(t, body["error"])

	resp = api.upload(t, "large-image.png", "image/png", make([]byte, 6*1024*1024))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = map[string]string{}
	decode(t, resp, &body)
	assert.Contains(t, body["error"], "File size too large")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodGet, "/products", "", nil)

	resp := api.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	content, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(content), `route="/products"`))
}

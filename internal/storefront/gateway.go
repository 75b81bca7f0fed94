package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"mobilehub/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	PlaceholderImage   = "https://via.placeholder.com/150"
	defaultHTTPTimeout = 10 * time.Second
)

// TokenSource yields the bearer token for the next request. An empty token
// sends the request unauthenticated.
type TokenSource func() string

// Gateway is the REST client for the collection API.
type Gateway struct {
	baseURL string
	client  *http.Client
	token   TokenSource
	logger  zerolog.Logger
}

func NewGateway(baseURL string, client *http.Client, token TokenSource, logger zerolog.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		token:   token,
		logger:  logger,
	}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (g *Gateway) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	contentType := ""
	if in != nil {
		contentType = "application/json"
	}
	return g.do(ctx, method, path, contentType, body, out)
}

func (g *Gateway) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("op", op).Msg("Request failed")
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	g.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload apiError
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Message
		if msg == "" {
			msg = payload.Error
		}
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (g *Gateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := g.doJSON(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (g *Gateway) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := g.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (g *Gateway) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	var created models.Product
	if err := g.doJSON(ctx, http.MethodPost, "/products", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id int, product models.Product) (*models.Product, error) {
	var updated models.Product
	if err := g.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id int) error {
	return g.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// SaveProduct creates product when it has no id and updates it otherwise.
// An empty image is replaced by the placeholder.
func (g *Gateway) SaveProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	if strings.TrimSpace(product.Image) == "" {
		product.Image = PlaceholderImage
	}
	if product.ID == 0 {
		return g.CreateProduct(ctx, product)
	}
	return g.UpdateProduct(ctx, product.ID, product)
}

func (g *Gateway) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := g.doJSON(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (g *Gateway) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var category models.Category
	if err := g.doJSON(ctx, http.MethodGet, fmt.Sprintf("/categories/%d", id), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (g *Gateway) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	var created models.Category
	if err := g.doJSON(ctx, http.MethodPost, "/categories", category, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (g *Gateway) UpdateCategory(ctx context.Context, id int, category models.Category) (*models.Category, error) {
	var updated models.Category
	if err := g.doJSON(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), category, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (g *Gateway) DeleteCategory(ctx context.Context, id int) error {
	return g.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}

// SaveCategory trims both fields and then creates or updates category.
func (g *Gateway) SaveCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	category.Description = strings.TrimSpace(category.Description)
	if category.ID == 0 {
		return g.CreateCategory(ctx, category)
	}
	return g.UpdateCategory(ctx, category.ID, category)
}

func (g *Gateway) ListCartItems(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := g.doJSON(ctx, http.MethodGet, "/cart", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (g *Gateway) CreateCartItem(ctx context.Context, req models.CreateCartItemRequest) (*models.CartItem, error) {
	var item models.CartItem
	if err := g.doJSON(ctx, http.MethodPost, "/cart", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (g *Gateway) PatchCartItem(ctx context.Context, id, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	req := models.UpdateCartItemRequest{Quantity: quantity}
	if err := g.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/cart/%d", id), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (g *Gateway) DeleteCartItem(ctx context.Context, id int) error {
	return g.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", id), nil, nil)
}

func (g *Gateway) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := g.doJSON(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (g *Gateway) PlaceOrder(ctx context.Context) (*models.Order, error) {
	var order models.Order
	if err := g.doJSON(ctx, http.MethodPost, "/orders", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UploadImage posts data as the multipart field "image" and returns the
// stored image URL.
func (g *Gateway) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	var resp models.UploadResponse
	if err := g.do(ctx, http.MethodPost, "/upload", mw.FormDataContentType(), &body, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

type Catalog struct {
	Products   []models.Product
	Categories []models.Category
}

// LoadCatalog fetches products and categories in parallel.
func (g *Gateway) LoadCatalog(ctx context.Context) (*Catalog, error) {
	var catalog Catalog
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		products, err := g.ListProducts(ctx)
		catalog.Products = products
		return err
	})
	eg.Go(func() error {
		categories, err := g.ListCategories(ctx)
		catalog.Categories = categories
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

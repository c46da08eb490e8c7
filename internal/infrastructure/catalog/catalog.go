package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/jimlawless/whereami"
)

// Service — read-only клиент сервиса каталога. Этот сервис никогда не пишет
// в каталог: он лишь узнаёт текущее состояние товаров для (пере)индексации.
type Service struct {
	httpClient *http.Client
	cfg        *config.CatalogCfg
}

func NewService(cfg *config.CatalogCfg) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

type productRow struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Image     string   `json:"image"`
	Colors    []string `json:"colors"`
	Occasions []string `json:"occasions"`
	Tags      []string `json:"tags"`
	Enabled   bool     `json:"enabled"`
	ShopID    string   `json:"shop_id"`
}

type listResponse struct {
	Products []productRow `json:"products"`
}

// GetProduct возвращает товар каталога или e.ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, productID int64, shopID string) (*usecase.CatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/products/%d", s.cfg.BaseURL, productID)
	if shopID != "" {
		endpoint += "?shop_id=" + url.QueryEscape(shopID)
	}

	resp, err := s.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, e.ErrProductNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("catalog returned status %d", resp.StatusCode))
	}

	var row productRow
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	product := toCatalogProduct(row)
	return &product, nil
}

// ListProducts возвращает страницу товаров каталога.
func (s *Service) ListProducts(ctx context.Context, req *usecase.ListProductsReq) ([]usecase.CatalogProduct, error) {
	query := url.Values{}
	if req.ShopID != "" {
		query.Set("shop_id", req.ShopID)
	}
	query.Set("enabled_only", strconv.FormatBool(req.EnabledOnly))
	query.Set("limit", strconv.Itoa(req.Limit))
	query.Set("offset", strconv.Itoa(req.Offset))

	resp, err := s.doGet(ctx, s.cfg.BaseURL+"/products?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("catalog returned status %d", resp.StatusCode))
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products := make([]usecase.CatalogProduct, 0, len(parsed.Products))
	for _, row := range parsed.Products {
		products = append(products, toCatalogProduct(row))
	}

	return products, nil
}

func (s *Service) doGet(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if s.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.ApiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return resp, nil
}

func toCatalogProduct(row productRow) usecase.CatalogProduct {
	return usecase.CatalogProduct{
		ID:        row.ID,
		Name:      row.Name,
		Price:     row.Price,
		Image:     row.Image,
		Colors:    row.Colors,
		Occasions: row.Occasions,
		Tags:      row.Tags,
		Enabled:   row.Enabled,
		ShopID:    row.ShopID,
	}
}

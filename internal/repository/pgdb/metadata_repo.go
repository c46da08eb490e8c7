package pgdb

import (
	"context"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/bloomlane/visual-search/internal/domain"
	"github.com/bloomlane/visual-search/internal/repository/pgdb/converter"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// MetadataRepo реализует хранилище метаданных проиндексированных товаров
// поверх PostgreSQL. Ключ — id товара, upsert идемпотентен.
type MetadataRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductImageConverter
}

func NewMetadataRepo(pool *pgxpool.Pool, conv converter.ProductImageConverter) *MetadataRepo {
	return &MetadataRepo{
		pool: pool,
		conv: conv,
	}
}

const upsertQuery = `
	INSERT INTO product_images
		(product_id, name, price, image_key, colors, occasions, tags, shop_id, indexed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (product_id)
	DO UPDATE SET
		name = EXCLUDED.name,
		price = EXCLUDED.price,
		image_key = EXCLUDED.image_key,
		colors = EXCLUDED.colors,
		occasions = EXCLUDED.occasions,
		tags = EXCLUDED.tags,
		shop_id = EXCLUDED.shop_id,
		indexed_at = EXCLUDED.indexed_at,
		updated_at = NOW()
`

// execer покрывает pgxpool.Pool и pgx.Tx, чтобы один и тот же upsert
// работал и напрямую, и внутри транзакции батча.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Upsert записывает метаданные одного товара.
func (m *MetadataRepo) Upsert(ctx context.Context, record *domain.ProductImageRecord) error {
	if err := m.upsert(ctx, m.pool, record); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// UpsertMany пишет записи батча в одной транзакции: либо все записи батча
// видны, либо ни одна.
func (m *MetadataRepo) UpsertMany(ctx context.Context, records []*domain.ProductImageRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.pool)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	pgTx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	for _, record := range records {
		if err := m.upsert(ctx, pgTx, record); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (m *MetadataRepo) upsert(ctx context.Context, db execer, record *domain.ProductImageRecord) error {
	model := m.conv.ToModel(record)

	_, err := db.Exec(ctx, upsertQuery,
		model.ProductID, model.Name, model.Price, model.ImageKey,
		model.Colors, model.Occasions, model.Tags, model.ShopID, model.IndexedAt,
	)

	return err
}

// GetMany возвращает найденные записи по id товаров. Отсутствующие id не
// попадают в результат и не считаются ошибкой.
func (m *MetadataRepo) GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductImageRecord, error) {
	query := `
		SELECT product_id, name, price, image_key, colors, occasions, tags, shop_id, indexed_at, updated_at
		FROM product_images
		WHERE product_id = ANY($1)
	`

	rows, err := m.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[int64]domain.ProductImageRecord, len(ids))
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result[model.ProductID] = *m.conv.ToEntity(model)
	}

	return result, nil
}

// List возвращает страницу проиндексированных записей в стабильном порядке
// по id товара. Пустой shopID — записи всех магазинов.
func (m *MetadataRepo) List(ctx context.Context, shopID string, limit, offset int) ([]domain.ProductImageRecord, error) {
	query := `
		SELECT product_id, name, price, image_key, colors, occasions, tags, shop_id, indexed_at, updated_at
		FROM product_images
		WHERE $1 = '' OR shop_id = $1
		ORDER BY product_id
		LIMIT $2 OFFSET $3
	`

	rows, err := m.pool.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.ProductImageRecord, 0, limit)
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *m.conv.ToEntity(model))
	}

	return result, nil
}

func (m *MetadataRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := m.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_images`).Scan(&count)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// LastIndexedAt возвращает момент последней индексации или nil для пустой
// таблицы.
func (m *MetadataRepo) LastIndexedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := m.pool.QueryRow(ctx, `SELECT MAX(indexed_at) FROM product_images`).Scan(&last)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return last, nil
}

func scanModel(rows pgx.Rows) (*converter.ProductImageModel, error) {
	var model converter.ProductImageModel
	err := rows.Scan(
		&model.ProductID, &model.Name, &model.Price, &model.ImageKey,
		&model.Colors, &model.Occasions, &model.Tags, &model.ShopID,
		&model.IndexedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

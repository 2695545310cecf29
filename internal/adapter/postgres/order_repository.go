package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YelzhanWeb/cafe/internal/domain"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// insertError maps a unique violation to domain.ErrDuplicate.
func insertError(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", what, pgErr.ConstraintName, domain.ErrDuplicate)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}

type orderRepository struct {
	db  DB
	now func() time.Time
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db, now: time.Now}
}

const orderColumns = `id, number, user_id, order_type, table_number, customer_name, customer_email,
	customer_phone, special_instructions, subtotal, tax, total, status, payment_method,
	created_at, updated_at, ready_at, completed_at, cancelled_at`

func scanOrder(row Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.Type, &o.TableNumber, &o.Customer.Name, &o.Customer.Email,
		&o.Customer.Phone, &o.SpecialInstructions, &o.Subtotal, &o.Tax, &o.Total, &o.Status, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt, &o.ReadyAt, &o.CompletedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	o.Customer.SpecialInstructions = o.SpecialInstructions
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (number, user_id, order_type, table_number, customer_name, customer_email,
		                    customer_phone, special_instructions, subtotal, tax, total, status,
		                    payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.Number, order.UserID, order.Type, order.TableNumber, order.Customer.Name, order.Customer.Email,
		order.Customer.Phone, order.SpecialInstructions, order.Subtotal, order.Tax, order.Total, order.Status,
		order.PaymentMethod, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return insertError("order", err)
	}

	for i := range order.Items {
		itemQuery := `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		it := &order.Items[i]
		err = tx.QueryRow(ctx, itemQuery,
			order.ID, it.MenuItemID, it.Name, it.Quantity, it.UnitPrice, it.TotalPrice,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		it.OrderID = order.ID
	}

	logQuery := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err = tx.Exec(ctx, logQuery, order.ID, order.Status, "order-service", order.CreatedAt); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]*domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("order_type = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryOrders(ctx, query, args...)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int) ([]*domain.Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int]*domain.Order, len(orders))
	ids := make([]int, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	query := `SELECT id, order_id, menu_item_id, name, quantity, unit_price, total_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2, ready_at = $3, completed_at = $4, cancelled_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query,
		order.Status, order.UpdatedAt, order.ReadyAt, order.CompletedAt, order.CancelledAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", order.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StatusLog
	for rows.Next() {
		var log domain.StatusLog
		if err := rows.Scan(&log.ID, &log.OrderID, &log.Status, &log.ChangedBy, &log.ChangedAt, &log.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// GenerateOrderNumber numbers orders per UTC day starting at 1, one past the
// highest number issued so far. Concurrent callers can get the same number;
// Create then fails with domain.ErrDuplicate.
func (r *orderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	now := r.now().UTC()
	prefix := domain.FormatOrderNumber(now, 0)
	prefix = prefix[:len(prefix)-4]

	var last int
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM $2) AS INTEGER)), 0) FROM orders WHERE number LIKE $1`
	if err := r.db.QueryRow(ctx, query, prefix+"%", len(prefix)+1).Scan(&last); err != nil {
		return "", fmt.Errorf("failed to read last order number: %w", err)
	}

	return domain.FormatOrderNumber(now, last+1), nil
}

func (r *orderRepository) LogStatus(ctx context.Context, orderID int, status domain.Status, changedBy string, notes *string) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, orderID, status, changedBy, r.now(), notes); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

// Stats counts orders created since dayStart, per status, and sums the
// revenue of the completed ones.
func (r *orderRepository) Stats(ctx context.Context, dayStart time.Time) (*domain.OrderStats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at >= $1
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.OrderStats{TotalRevenue: decimal.Zero, StatusCounts: make(map[domain.Status]int)}
	for rows.Next() {
		var (
			status  domain.Status
			count   int
			revenue decimal.Decimal
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan order stats: %w", err)
		}
		stats.StatusCounts[status] = count
		stats.TodayOrders += count
		if status == domain.StatusCompleted {
			stats.TotalRevenue = revenue
		}
	}
	return stats, rows.Err()
}

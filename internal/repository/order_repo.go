package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// dbtx covers the read methods shared by *sql.DB and *sql.Tx so order
// reads work both standalone and inside a transaction.
type dbtx interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

const orderSelect = `
        SELECT id, order_number, buyer_id, status, total_amount,
               shipping_address, shipping_city, shipping_zip, shipping_phone,
               created_at, updated_at
        FROM orders`

func scanOrder(row interface{ Scan(...interface{}) error }, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.BuyerID,
		&order.Status,
		&order.TotalAmount,
		&order.ShippingAddress,
		&order.ShippingCity,
		&order.ShippingZip,
		&order.ShippingPhone,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

// CreateOrder runs the whole checkout write set in one transaction:
// the order row, one order_items row per cart line, a guarded stock
// decrement per product and finally the cart drain. Any failure rolls
// everything back. The results are named so the deferred commit can
// overwrite them; without that, a commit failure would be reported as
// success.
func (r *postgresOrderRepository) CreateOrder(order *domain.Order) (created *domain.Order, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Repository: Failed to begin checkout transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Repository: Recovered from panic, rolling back checkout transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Repository: Rolling back checkout transaction: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback checkout transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Repository: Failed to commit checkout transaction: %v", cErr)
				created = nil
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	orderQuery := `
        INSERT INTO orders (id, order_number, buyer_id, status, total_amount,
                            shipping_address, shipping_city, shipping_zip, shipping_phone)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`

	order.ID = uuid.New()
	err = tx.QueryRow(orderQuery,
		order.ID, order.OrderNumber, order.BuyerID, order.Status, order.TotalAmount,
		order.ShippingAddress, order.ShippingCity, order.ShippingZip, order.ShippingPhone,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "orders_order_number_key" {
			r.log.Warnf("Repository: Order number collision for %s", order.OrderNumber)
			return nil, domain.Errorf(domain.ECONFLICT, "Order number already exists")
		}
		r.log.Errorf("Repository: Failed to insert order for buyer %s: %v", order.BuyerID, err)
		return nil, fmt.Errorf("could not create order entry: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_at_purchase)
        VALUES ($1, $2, $3, $4, $5, $6)`
	stockQuery := `
        UPDATE products
        SET stock = stock - $2, updated_at = NOW()
        WHERE id = $1 AND stock >= $2`

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()

		_, err = tx.Exec(itemQuery, item.ID, order.ID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtPurchase)
		if err != nil {
			r.log.Errorf("Repository: Failed to insert order item (product %s) for order %s: %v", item.ProductID, order.ID, err)
			return nil, fmt.Errorf("could not create order item: %w", err)
		}

		var result sql.Result
		result, err = tx.Exec(stockQuery, item.ProductID, item.Quantity)
		if err != nil {
			r.log.Errorf("Repository: Failed to decrement stock for product %s: %v", item.ProductID, err)
			return nil, fmt.Errorf("could not decrement stock: %w", err)
		}

		var affected int64
		affected, err = result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("could not check stock update result: %w", err)
		}
		if affected == 0 {
			// Stock moved between validation and here. Re-read inside
			// the transaction so the error reports what is actually left.
			var available int
			readErr := tx.QueryRow(`SELECT stock FROM products WHERE id = $1`, item.ProductID).Scan(&available)
			if errors.Is(readErr, sql.ErrNoRows) {
				err = domain.ErrProductNotFound
				return nil, err
			}
			if readErr != nil {
				err = fmt.Errorf("could not re-read stock: %w", readErr)
				return nil, err
			}
			err = domain.Errorf(domain.EINSUFFICIENTSTOCK,
				"Not enough stock for '%s'. Only %d available", item.ProductName, available)
			return nil, err
		}
	}

	if _, err = tx.Exec(`DELETE FROM cart_items WHERE user_id = $1`, order.BuyerID); err != nil {
		r.log.Errorf("Repository: Failed to clear cart for buyer %s during checkout: %v", order.BuyerID, err)
		return nil, fmt.Errorf("could not clear cart: %w", err)
	}

	r.log.Infof("Repository: Order %s (%s) created with %d items for buyer %s",
		order.ID, order.OrderNumber, len(order.Items), order.BuyerID)
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(id uuid.UUID) (*domain.Order, error) {
	order := &domain.Order{}

	err := scanOrder(r.db.QueryRow(orderSelect+` WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %s not found", id)
			return nil, domain.ErrOrderNotFound
		}
		r.log.Errorf("Repository: Failed to get order by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(r.db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(q dbtx, orderID uuid.UUID) ([]domain.OrderItem, error) {
	itemsQuery := `
        SELECT id, product_id, product_name, quantity, price_at_purchase
        FROM order_items
        WHERE order_id = $1
        ORDER BY id`

	rows, err := q.Query(itemsQuery, orderID)
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for order %s: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase); err != nil {
			r.log.Errorf("Repository: Failed to scan order item row for order %s: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *postgresOrderRepository) ListOrdersByBuyerID(buyerID uuid.UUID, limit, offset int) ([]domain.Order, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE buyer_id = $1`, buyerID).Scan(&total); err != nil {
		r.log.Errorf("Repository: Failed to count orders for buyer %s: %v", buyerID, err)
		return nil, 0, fmt.Errorf("could not count orders: %w", err)
	}

	query := orderSelect + ` WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	orders, err := r.queryOrders(query, buyerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *postgresOrderRepository) ListAllOrders(status domain.OrderStatus, limit, offset int) ([]domain.Order, int, error) {
	var (
		total int
		err   error
	)

	if status == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&total)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&total)
	}
	if err != nil {
		r.log.Errorf("Repository: Failed to count orders: %v", err)
		return nil, 0, fmt.Errorf("could not count orders: %w", err)
	}

	var orders []domain.Order
	if status == "" {
		orders, err = r.queryOrders(orderSelect+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		orders, err = r.queryOrders(orderSelect+` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *postgresOrderRepository) queryOrders(query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	orderIDs := []string{}
	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			r.log.Errorf("Repository: Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID.String())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemsQuery := `
        SELECT order_id, id, product_id, product_name, quantity, price_at_purchase
        FROM order_items
        WHERE order_id = ANY($1::uuid[])
        ORDER BY order_id, id`

	itemRows, err := r.db.Query(itemsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for %d orders: %v", len(orderIDs), err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[uuid.UUID][]domain.OrderItem)
	for itemRows.Next() {
		var (
			orderID uuid.UUID
			item    domain.OrderItem
		)
		if err := itemRows.Scan(&orderID, &item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase); err != nil {
			r.log.Errorf("Repository: Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		itemsMap[orderID] = append(itemsMap[orderID], item)
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	return orders, nil
}

// UpdateOrderStatus only applies when the order is still in the from
// status, so two admins racing on the same order cannot both win. The
// updated row comes back through RETURNING, so the response reflects
// this transition and never a later concurrent one.
func (r *postgresOrderRepository) UpdateOrderStatus(id uuid.UUID, from, to domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = $3, updated_at = NOW()
        WHERE id = $1 AND status = $2
        RETURNING id, order_number, buyer_id, status, total_amount,
                  shipping_address, shipping_city, shipping_zip, shipping_phone,
                  created_at, updated_at`

	order := &domain.Order{}
	err := scanOrder(r.db.QueryRow(query, id, from, to), order)
	if errors.Is(err, sql.ErrNoRows) {
		var current domain.OrderStatus
		readErr := r.db.QueryRow(`SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(readErr, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		if readErr != nil {
			return nil, fmt.Errorf("could not re-read order status: %w", readErr)
		}
		r.log.Warnf("Repository: Order %s moved from %s to %s concurrently", id, from, current)
		return nil, domain.Errorf(domain.ECONFLICT, "Order was modified concurrently, please retry")
	}
	if err != nil {
		r.log.Errorf("Repository: Failed to update status for order %s: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}

	items, err := r.getOrderItems(r.db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	r.log.Infof("Repository: Order %s status updated from %s to %s", id, from, to)
	return order, nil
}

// CancelOrder flips the order to cancelled and gives every ordered
// quantity back to its product, in one transaction. The status guard
// repeats the cancellable check so a concurrent ship cannot be undone.
// Results are named for the same commit-failure reason as CreateOrder.
func (r *postgresOrderRepository) CancelOrder(id uuid.UUID) (cancelled *domain.Order, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Repository: Failed to begin cancel transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Repository: Rolling back cancel transaction: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback cancel transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Repository: Failed to commit cancel transaction: %v", cErr)
				cancelled = nil
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	cancelQuery := `
        UPDATE orders
        SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status IN ('pending', 'paid', 'processing')`

	var result sql.Result
	result, err = tx.Exec(cancelQuery, id, domain.StatusCancelled)
	if err != nil {
		r.log.Errorf("Repository: Failed to cancel order %s: %v", id, err)
		return nil, fmt.Errorf("could not cancel order: %w", err)
	}

	var affected int64
	affected, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not check cancel result: %w", err)
	}
	if affected == 0 {
		var current domain.OrderStatus
		readErr := tx.QueryRow(`SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(readErr, sql.ErrNoRows) {
			err = domain.ErrOrderNotFound
			return nil, err
		}
		if readErr != nil {
			err = fmt.Errorf("could not re-read order status: %w", readErr)
			return nil, err
		}
		err = domain.Errorf(domain.EINVALIDSTATE, "Cannot cancel order with status: %s", current)
		return nil, err
	}

	restoreQuery := `
        UPDATE products p
        SET stock = p.stock + oi.quantity, updated_at = NOW()
        FROM order_items oi
        WHERE oi.order_id = $1 AND p.id = oi.product_id`

	if _, err = tx.Exec(restoreQuery, id); err != nil {
		r.log.Errorf("Repository: Failed to restore stock for cancelled order %s: %v", id, err)
		return nil, fmt.Errorf("could not restore stock: %w", err)
	}

	order := &domain.Order{}
	err = scanOrder(tx.QueryRow(orderSelect+` WHERE id = $1`, id), order)
	if err != nil {
		return nil, fmt.Errorf("could not re-read cancelled order: %w", err)
	}

	var items []domain.OrderItem
	items, err = r.getOrderItems(tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	r.log.Infof("Repository: Order %s cancelled, stock restored for %d items", id, len(order.Items))
	return order, nil
}

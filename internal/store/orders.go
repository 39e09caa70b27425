package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/foxglove-games/greatwork/internal/model"
)

// EnqueueOrder inserts a new follow-up order ( unified order
// queue: recruitment followups, offer timeouts, mentorship ticks,
// symposium reminders, sideways-effect followups...).
func (s *Store) EnqueueOrder(o model.Order) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO orders (order_type, actor_id, subject_id, payload, status, scheduled_at, source_table, source_id, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderType, o.ActorID, o.SubjectID, marshalJSON(o.Payload), string(orderStatusOr(o.Status, model.OrderPending)),
		nullTimePtr(o.ScheduledAt), o.SourceTable, o.SourceID, marshalJSON(o.Result),
	)
	if err != nil {
		return 0, fmt.Errorf("store: enqueue order %s: %w", o.OrderType, err)
	}
	return res.LastInsertId()
}

func orderStatusOr(s model.OrderStatus, def model.OrderStatus) model.OrderStatus {
	if s == "" {
		return def
	}
	return s
}

// FetchDueOrders returns every pending order scheduled at or before
// now, oldest first, for the dispatcher's digest tick to claim.
func (s *Store) FetchDueOrders(now time.Time) ([]model.Order, error) {
	rows, err := s.db.Query(
		`SELECT id, order_type, actor_id, subject_id, payload, status, scheduled_at, created_at, updated_at, source_table, source_id, result
		 FROM orders WHERE status = 'pending' AND (scheduled_at IS NULL OR scheduled_at <= ?) ORDER BY created_at ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: fetch due orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// OrderByID returns a single order row.
func (s *Store) OrderByID(id int64) (*model.Order, error) {
	row := s.db.QueryRow(
		`SELECT id, order_type, actor_id, subject_id, payload, status, scheduled_at, created_at, updated_at, source_table, source_id, result
		 FROM orders WHERE id = ?`, id,
	)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: order by id %d: %w", id, err)
	}
	return o, nil
}

// UpdateOrderStatus transitions an order's status and, for a terminal
// status, records its result payload.
func (s *Store) UpdateOrderStatus(id int64, status model.OrderStatus, result map[string]any) error {
	_, err := s.db.Exec(
		`UPDATE orders SET status = ?, result = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), marshalJSON(result), id,
	)
	if err != nil {
		return fmt.Errorf("store: update order status %d: %w", id, err)
	}
	return nil
}

func scanOrders(rows *sql.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		o, err := scanOrderGeneric(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row *sql.Row) (*model.Order, error) {
	return scanOrderGeneric(row)
}

func scanOrderGeneric(row scannable) (*model.Order, error) {
	var o model.Order
	var payload, result string
	var status string
	var scheduledAt sql.NullTime
	if err := row.Scan(&o.ID, &o.OrderType, &o.ActorID, &o.SubjectID, &payload, &status,
		&scheduledAt, &o.CreatedAt, &o.UpdatedAt, &o.SourceTable, &o.SourceID, &result); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.ScheduledAt = timePtrFromNull(scheduledAt)
	o.Payload = map[string]any{}
	_ = unmarshalJSON(payload, &o.Payload)
	o.Result = map[string]any{}
	_ = unmarshalJSON(result, &o.Result)
	return &o, nil
}

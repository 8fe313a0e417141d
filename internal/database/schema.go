package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  Every statement is idempotent.
//
// reservations.active_slot is NULL for non-active rows, and MySQL allows
// any number of NULLs in a unique index, so uq_reservations_active_slot
// only constrains active reservations: one per (show_id, slot_id).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
    id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    email          VARCHAR(255)    NOT NULL,
    points_balance BIGINT          NOT NULL DEFAULT 0,
    created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE KEY uq_accounts_email (email),
    CONSTRAINT chk_accounts_points CHECK (points_balance >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
    id          BIGINT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
    movie_title VARCHAR(255)     NOT NULL,
    show_date   CHAR(10)         NOT NULL,
    show_time   CHAR(5)          NOT NULL,
    base_price  BIGINT           NOT NULL,
    slot_rows   TINYINT UNSIGNED NOT NULL,
    slot_cols   TINYINT UNSIGNED NOT NULL,
    vip_rows    TINYINT UNSIGNED NOT NULL DEFAULT 2,
    status      VARCHAR(16)      NOT NULL DEFAULT 'SCHEDULED',
    UNIQUE KEY uq_shows_reference (movie_title, show_date, show_time),
    CONSTRAINT chk_shows_rows CHECK (slot_rows BETWEEN 1 AND 26),
    CONSTRAINT chk_shows_base CHECK (base_price >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS products (
    id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name      VARCHAR(255)    NOT NULL,
    price     BIGINT          NOT NULL,
    is_active TINYINT(1)      NOT NULL DEFAULT 1,
    CONSTRAINT chk_products_price CHECK (price >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
    id             BIGINT UNSIGNED  NOT NULL AUTO_INCREMENT PRIMARY KEY,
    checkout_id    CHAR(36)         NOT NULL,
    account_id     BIGINT UNSIGNED  NULL,
    show_id        BIGINT UNSIGNED  NOT NULL,
    slot_id        VARCHAR(8)       NOT NULL,
    vehicle_class  VARCHAR(32)      NOT NULL,
    tier           ENUM('economy','standard','vip') NOT NULL,
    attendee_count TINYINT UNSIGNED NOT NULL,
    price          BIGINT           NOT NULL,
    status         ENUM('active','used','cancelled') NOT NULL DEFAULT 'active',
    created_at     DATETIME         NOT NULL,
    active_slot    VARCHAR(40) GENERATED ALWAYS AS (IF(status = 'active', CONCAT(show_id, ':', slot_id), NULL)) STORED,
    UNIQUE KEY uq_reservations_active_slot (active_slot),
    KEY idx_reservations_show_slot (show_id, slot_id),
    KEY idx_reservations_checkout (checkout_id),
    CONSTRAINT fk_reservations_show FOREIGN KEY (show_id) REFERENCES shows (id),
    CONSTRAINT fk_reservations_account FOREIGN KEY (account_id) REFERENCES accounts (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
    id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    checkout_id  CHAR(36)        NOT NULL,
    account_id   BIGINT UNSIGNED NULL,
    total_amount BIGINT          NOT NULL,
    status       ENUM('pending','preparing','delivered','cancelled') NOT NULL DEFAULT 'pending',
    location     VARCHAR(255)    NULL,
    created_at   DATETIME        NOT NULL,
    KEY idx_orders_checkout (checkout_id),
    CONSTRAINT fk_orders_account FOREIGN KEY (account_id) REFERENCES accounts (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    order_id   BIGINT UNSIGNED NOT NULL,
    product_id BIGINT UNSIGNED NOT NULL,
    name       VARCHAR(255)    NOT NULL,
    price      BIGINT          NOT NULL,
    quantity   INT UNSIGNED    NOT NULL,
    CONSTRAINT chk_order_items_quantity CHECK (quantity >= 1),
    CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
    CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    account_id BIGINT UNSIGNED NULL,
    broadcast  TINYINT(1)      NOT NULL DEFAULT 0,
    title      VARCHAR(255)    NOT NULL,
    message    TEXT            NOT NULL,
    type       VARCHAR(32)     NOT NULL,
    created_at DATETIME        NOT NULL,
    KEY idx_notifications_account (account_id, created_at),
    KEY idx_notifications_broadcast (broadcast, created_at),
    CONSTRAINT chk_notifications_audience CHECK (broadcast = 0 OR account_id IS NULL)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS checkout_requests (
    idempotency_key VARCHAR(128)    NOT NULL PRIMARY KEY,
    account_id      BIGINT UNSIGNED NULL,
    receipt         JSON            NULL,
    created_at      DATETIME        NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

package database

import "database/sql"

// InitSchema creates the application tables if they do not exist. The
// statements are idempotent so running them on every startup is safe.
// orders.stripe_session_id carries a UNIQUE index: a duplicate-key error on
// insert is the idempotency signal for payment reconciliation.
func InitSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			is_admin TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			kind ENUM('content','product') NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			category VARCHAR(64) NOT NULL DEFAULT '',
			author VARCHAR(255) NOT NULL,
			status ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
			download_link VARCHAR(1024) NOT NULL DEFAULT '',
			downloads BIGINT UNSIGNED NOT NULL DEFAULT 0,
			isbn VARCHAR(32) NOT NULL DEFAULT '',
			publisher VARCHAR(255) NOT NULL DEFAULT '',
			publication_year INT NOT NULL DEFAULT 0,
			pages INT NOT NULL DEFAULT 0,
			price DECIMAL(10,2) NOT NULL DEFAULT 0,
			book_condition VARCHAR(16) NOT NULL DEFAULT '',
			stock INT NOT NULL DEFAULT 0,
			images MEDIUMTEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_listings_kind_status (kind, status, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			stripe_session_id VARCHAR(255) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			ship_line1 VARCHAR(255) NOT NULL DEFAULT '',
			ship_line2 VARCHAR(255) NOT NULL DEFAULT '',
			ship_city VARCHAR(128) NOT NULL DEFAULT '',
			ship_state VARCHAR(128) NOT NULL DEFAULT '',
			ship_postal_code VARCHAR(32) NOT NULL DEFAULT '',
			ship_country VARCHAR(8) NOT NULL DEFAULT '',
			total VARCHAR(32) NOT NULL,
			status ENUM('pending','completed','cancelled') NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_orders_session (stripe_session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT UNSIGNED NOT NULL,
			product_id BIGINT UNSIGNED NOT NULL,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			quantity INT NOT NULL,
			KEY idx_order_items_order (order_id),
			CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id)
		)`,
		`CREATE TABLE IF NOT EXISTS book_submissions (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			isbn VARCHAR(32) NOT NULL DEFAULT '',
			publisher VARCHAR(255) NOT NULL DEFAULT '',
			publication_year INT NOT NULL DEFAULT 0,
			category VARCHAR(64) NOT NULL DEFAULT '',
			book_condition VARCHAR(16) NOT NULL,
			description TEXT,
			images MEDIUMTEXT,
			seller_name VARCHAR(255) NOT NULL,
			seller_email VARCHAR(255) NOT NULL,
			seller_phone VARCHAR(64) NOT NULL DEFAULT '',
			status ENUM('pending','reviewed','offered','accepted','rejected','completed') NOT NULL DEFAULT 'pending',
			offer_amount DECIMAL(10,2) NULL,
			notes TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_submissions_seller (seller_email)
		)`,
		`CREATE TABLE IF NOT EXISTS blogs (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			content MEDIUMTEXT NOT NULL,
			excerpt TEXT,
			type ENUM('blog','news') NOT NULL DEFAULT 'blog',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

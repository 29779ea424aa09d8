package db

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_id  BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(25) NOT NULL,
		last_name  VARCHAR(20) NOT NULL,
		email      VARCHAR(80) NOT NULL,
		birth_date DATE NOT NULL,
		UNIQUE KEY uq_authors_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS books (
		book_id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		title            VARCHAR(20) NOT NULL,
		genre            VARCHAR(20) NOT NULL,
		editorial        VARCHAR(20) NOT NULL,
		publication_date DATE NOT NULL,
		author_id        BIGINT NOT NULL,
		UNIQUE KEY uq_books_author_title (author_id, title),
		CONSTRAINT fk_books_author FOREIGN KEY (author_id) REFERENCES authors(author_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS students (
		student_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(25) NOT NULL,
		last_name  VARCHAR(20) NOT NULL,
		email      VARCHAR(80) NOT NULL,
		phone      CHAR(8) NOT NULL,
		career     VARCHAR(65) NOT NULL,
		code       CHAR(10) NOT NULL,
		UNIQUE KEY uq_students_email (email),
		UNIQUE KEY uq_students_phone (phone),
		UNIQUE KEY uq_students_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS inventories (
		inventory_id     BIGINT AUTO_INCREMENT PRIMARY KEY,
		book_id          BIGINT NOT NULL,
		total_copies     INT NOT NULL,
		available_copies INT NOT NULL,
		borrowed_copies  INT NOT NULL DEFAULT 0,
		observations     VARCHAR(25) NULL,
		last_updated     DATETIME NOT NULL,
		UNIQUE KEY uq_inventories_book (book_id),
		CONSTRAINT fk_inventories_book FOREIGN KEY (book_id) REFERENCES books(book_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id      BIGINT AUTO_INCREMENT PRIMARY KEY,
		loan_ulid    CHAR(26) NOT NULL,
		student_id   BIGINT NOT NULL,
		book_id      BIGINT NOT NULL,
		date_loan    DATE NOT NULL,
		due_date     DATE NOT NULL,
		amount       DECIMAL(6,2) NOT NULL DEFAULT 0,
		state        VARCHAR(10) NOT NULL,
		observations VARCHAR(25) NULL,
		UNIQUE KEY uq_loans_ulid (loan_ulid),
		KEY idx_loans_book_state (book_id, state),
		KEY idx_loans_student_state (student_id, state),
		CONSTRAINT fk_loans_student FOREIGN KEY (student_id) REFERENCES students(student_id),
		CONSTRAINT fk_loans_book FOREIGN KEY (book_id) REFERENCES books(book_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS returns (
		return_id    BIGINT AUTO_INCREMENT PRIMARY KEY,
		return_ulid  CHAR(26) NOT NULL,
		loan_id      BIGINT NOT NULL,
		date_return  DATE NOT NULL,
		observations VARCHAR(25) NULL,
		penalty      DECIMAL(6,2) NOT NULL DEFAULT 0,
		UNIQUE KEY uq_returns_ulid (return_ulid),
		UNIQUE KEY uq_returns_loan (loan_id),
		CONSTRAINT fk_returns_loan FOREIGN KEY (loan_id) REFERENCES loans(loan_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		author_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		birth_date DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		book_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title            TEXT NOT NULL,
		genre            TEXT NOT NULL,
		editorial        TEXT NOT NULL,
		publication_date DATE NOT NULL,
		author_id        INTEGER NOT NULL REFERENCES authors(author_id),
		UNIQUE (author_id, title)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		student_id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		phone      TEXT NOT NULL UNIQUE,
		career     TEXT NOT NULL,
		code       TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS inventories (
		inventory_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		book_id          INTEGER NOT NULL UNIQUE REFERENCES books(book_id),
		total_copies     INTEGER NOT NULL,
		available_copies INTEGER NOT NULL,
		borrowed_copies  INTEGER NOT NULL DEFAULT 0,
		observations     TEXT NULL,
		last_updated     DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		loan_ulid    TEXT NOT NULL UNIQUE,
		student_id   INTEGER NOT NULL REFERENCES students(student_id),
		book_id      INTEGER NOT NULL REFERENCES books(book_id),
		date_loan    DATE NOT NULL,
		due_date     DATE NOT NULL,
		amount       DECIMAL(6,2) NOT NULL DEFAULT 0,
		state        TEXT NOT NULL,
		observations TEXT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_book_state ON loans (book_id, state)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_student_state ON loans (student_id, state)`,
	`CREATE TABLE IF NOT EXISTS returns (
		return_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		return_ulid  TEXT NOT NULL UNIQUE,
		loan_id      INTEGER NOT NULL UNIQUE REFERENCES loans(loan_id),
		date_return  DATE NOT NULL,
		observations TEXT NULL,
		penalty      DECIMAL(6,2) NOT NULL DEFAULT 0
	)`,
}

// Migrate はテーブルが無ければ作る。何度実行しても結果は同じ
func Migrate(ctx context.Context, d *DB) error {
	stmts := mysqlSchema
	if d.Dialect == DialectSQLite {
		stmts = sqliteSchema
	}
	for i, q := range stmts {
		if _, err := d.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

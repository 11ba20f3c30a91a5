package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB открывает базу и создаёт схему. _txlock=immediate: транзакция
// создания брони берёт write-lock сразу, конкурирующие создания
// сериализуются вместо гонки чтение-запись.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Пользователи
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            telegram_id INTEGER UNIQUE NOT NULL,
            username TEXT NOT NULL DEFAULT '',
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'client',
            city_id INTEGER REFERENCES cities(id),
            rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Города
		`CREATE TABLE IF NOT EXISTS cities (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            region TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT 1
        )`,

		// Бани
		`CREATE TABLE IF NOT EXISTS banyas (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL REFERENCES users(id),
            city_id INTEGER NOT NULL REFERENCES cities(id),
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            price_per_hour REAL NOT NULL DEFAULT 0,
            min_hours INTEGER NOT NULL DEFAULT 1,
            max_guests INTEGER NOT NULL DEFAULT 1,
            opening_time TEXT NOT NULL DEFAULT '09:00',
            closing_time TEXT NOT NULL DEFAULT '23:00',
            has_russian_banya BOOLEAN NOT NULL DEFAULT 0,
            has_finnish_sauna BOOLEAN NOT NULL DEFAULT 0,
            has_hammam BOOLEAN NOT NULL DEFAULT 0,
            has_infrared_sauna BOOLEAN NOT NULL DEFAULT 0,
            has_pool BOOLEAN NOT NULL DEFAULT 0,
            has_jacuzzi BOOLEAN NOT NULL DEFAULT 0,
            has_cold_plunge BOOLEAN NOT NULL DEFAULT 0,
            has_salt_room BOOLEAN NOT NULL DEFAULT 0,
            has_rest_room BOOLEAN NOT NULL DEFAULT 0,
            has_billiards BOOLEAN NOT NULL DEFAULT 0,
            has_karaoke BOOLEAN NOT NULL DEFAULT 0,
            has_bbq BOOLEAN NOT NULL DEFAULT 0,
            has_parking BOOLEAN NOT NULL DEFAULT 0,
            provides_veniks BOOLEAN NOT NULL DEFAULT 0,
            provides_towels BOOLEAN NOT NULL DEFAULT 0,
            provides_robes BOOLEAN NOT NULL DEFAULT 0,
            provides_food BOOLEAN NOT NULL DEFAULT 0,
            provides_drinks BOOLEAN NOT NULL DEFAULT 0,
            rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            is_verified BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Фотографии бань (только метаданные, хранение снаружи)
		`CREATE TABLE IF NOT EXISTS banya_photos (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            banya_id INTEGER NOT NULL REFERENCES banyas(id),
            url TEXT NOT NULL,
            is_main BOOLEAN NOT NULL DEFAULT 0,
            sort_order INTEGER NOT NULL DEFAULT 0
        )`,

		// Мастера
		`CREATE TABLE IF NOT EXISTS bath_masters (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER UNIQUE NOT NULL REFERENCES users(id),
            bio TEXT NOT NULL DEFAULT '',
            experience_years INTEGER NOT NULL DEFAULT 0,
            price_per_session REAL NOT NULL DEFAULT 0,
            session_duration_minutes INTEGER NOT NULL DEFAULT 60,
            specializes_russian BOOLEAN NOT NULL DEFAULT 0,
            specializes_finnish BOOLEAN NOT NULL DEFAULT 0,
            specializes_hammam BOOLEAN NOT NULL DEFAULT 0,
            specializes_massage BOOLEAN NOT NULL DEFAULT 0,
            specializes_scrub BOOLEAN NOT NULL DEFAULT 0,
            specializes_aromatherapy BOOLEAN NOT NULL DEFAULT 0,
            can_visit_home BOOLEAN NOT NULL DEFAULT 0,
            home_visit_price REAL,
            rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0,
            is_available BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Связка мастер-баня
		`CREATE TABLE IF NOT EXISTS banya_bath_masters (
            banya_id INTEGER NOT NULL REFERENCES banyas(id),
            bath_master_id INTEGER NOT NULL REFERENCES bath_masters(id),
            PRIMARY KEY (banya_id, bath_master_id)
        )`,

		// Бронирования
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL REFERENCES users(id),
            banya_id INTEGER REFERENCES banyas(id),
            bath_master_id INTEGER REFERENCES bath_masters(id),
            booking_type TEXT NOT NULL,
            date DATETIME NOT NULL,
            start_time TEXT NOT NULL,
            duration_hours INTEGER NOT NULL,
            guests_count INTEGER NOT NULL DEFAULT 1,
            client_address TEXT NOT NULL DEFAULT '',
            banya_price REAL,
            master_price REAL,
            total_price REAL NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            client_confirmed TEXT NOT NULL DEFAULT 'pending',
            banya_confirmed TEXT NOT NULL DEFAULT 'pending',
            master_confirmed TEXT NOT NULL DEFAULT 'pending',
            cancelled_by TEXT NOT NULL DEFAULT '',
            cancellation_reason TEXT NOT NULL DEFAULT '',
            user_notes TEXT NOT NULL DEFAULT '',
            version INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Отзывы
		`CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER UNIQUE NOT NULL REFERENCES bookings(id),
            user_id INTEGER NOT NULL REFERENCES users(id),
            banya_id INTEGER REFERENCES banyas(id),
            bath_master_id INTEGER REFERENCES bath_masters(id),
            rating INTEGER NOT NULL,
            comment TEXT NOT NULL DEFAULT '',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Очередь выгрузки в реестр
		`CREATE TABLE IF NOT EXISTS ledger_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_banyas_city_id ON banyas(city_id)`,
		`CREATE INDEX IF NOT EXISTS idx_banyas_owner_id ON banyas(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_banya_date ON bookings(banya_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_master_date ON bookings(bath_master_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_queue_status ON ledger_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TokenAttempt is one audited tokenization attempt. The token value
// itself is never persisted.
type TokenAttempt struct {
	ID            int64     `json:"id"`
	RequestID     string    `json:"request_id"`
	Variant       string    `json:"variant"`
	MerchantID    string    `json:"merchant_id"`
	Endpoint      string    `json:"endpoint"`
	Successful    bool      `json:"successful"`
	ErrorCode     string    `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	SecureService string    `json:"secure_service,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SQLiteStore handles persistent storage of token attempt audit records
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if it's a busy error
		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			// Not a retry-able error
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewSQLiteStore creates a new SQLite store optimized for multiple processes
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// SQLite connection string with multi-process optimizations
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for multi-replica environment
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.optimizeForMultiProcess(); err != nil {
		log.Printf("Warning: Failed to apply optimizations: %v", err)
	}

	log.Printf("SQLite store initialized at: %s (multi-process optimized)", dbPath)
	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS token_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		variant TEXT NOT NULL,
		merchant_id TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		successful INTEGER NOT NULL DEFAULT 0,
		error_code TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		secure_service TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(request_id)
	);

	CREATE INDEX IF NOT EXISTS idx_variant_created ON token_attempts(variant, created_at);
	CREATE INDEX IF NOT EXISTS idx_merchant ON token_attempts(merchant_id);
	`

	_, err := s.db.Exec(query)
	return err
}

// optimizeForMultiProcess applies SQLite optimizations for multi-process access
func (s *SQLiteStore) optimizeForMultiProcess() error {
	optimizations := []string{
		"PRAGMA journal_mode = WAL;",    // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL;",  // Balance between safety and speed
		"PRAGMA cache_size = 1000;",     // Increase cache size
		"PRAGMA busy_timeout = 30000;",  // 30 second timeout for lock waits
		"PRAGMA temp_store = memory;",   // Store temp tables in memory
		"PRAGMA mmap_size = 268435456;", // 256MB memory mapping
		"PRAGMA optimize;",              // Optimize database
	}

	for _, pragma := range optimizations {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	// Test WAL mode is actually enabled
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	log.Printf("SQLite journal mode: %s", journalMode)
	return nil
}

// SaveAttempt records a token attempt
func (s *SQLiteStore) SaveAttempt(attempt TokenAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	if attempt.Variant == "" {
		return fmt.Errorf("variant is required")
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO token_attempts (request_id, variant, merchant_id, endpoint, successful, error_code, error_message, secure_service)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id)
		DO UPDATE SET
			successful = excluded.successful,
			error_code = excluded.error_code,
			error_message = excluded.error_message,
			secure_service = excluded.secure_service
		`

		_, err := s.db.Exec(query, attempt.RequestID, attempt.Variant, attempt.MerchantID,
			attempt.Endpoint, attempt.Successful, attempt.ErrorCode, attempt.ErrorMessage, attempt.SecureService)
		if err != nil {
			return fmt.Errorf("failed to save token attempt: %w", err)
		}

		return nil
	}, 3) // Max 3 retries
}

// GetAttempt loads a token attempt by request ID
func (s *SQLiteStore) GetAttempt(requestID string) (*TokenAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attempt TokenAttempt
	err := s.retryOperation(func() error {
		query := `
		SELECT id, request_id, variant, merchant_id, endpoint, successful, error_code, error_message, secure_service, created_at
		FROM token_attempts
		WHERE request_id = ?
		`

		err := s.db.QueryRow(query, requestID).Scan(
			&attempt.ID, &attempt.RequestID, &attempt.Variant, &attempt.MerchantID,
			&attempt.Endpoint, &attempt.Successful, &attempt.ErrorCode, &attempt.ErrorMessage,
			&attempt.SecureService, &attempt.CreatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("no attempt found for request: %s", requestID)
			}
			return fmt.Errorf("failed to load token attempt: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListRecentAttempts loads the most recent attempts for a variant
func (s *SQLiteStore) ListRecentAttempts(variant string, limit int) ([]TokenAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var attempts []TokenAttempt
	err := s.retryOperation(func() error {
		query := `
		SELECT id, request_id, variant, merchant_id, endpoint, successful, error_code, error_message, secure_service, created_at
		FROM token_attempts
		WHERE variant = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
		`

		rows, err := s.db.Query(query, variant, limit)
		if err != nil {
			return fmt.Errorf("failed to query token attempts: %w", err)
		}
		defer rows.Close()

		attempts = attempts[:0]
		for rows.Next() {
			var attempt TokenAttempt
			if err := rows.Scan(
				&attempt.ID, &attempt.RequestID, &attempt.Variant, &attempt.MerchantID,
				&attempt.Endpoint, &attempt.Successful, &attempt.ErrorCode, &attempt.ErrorMessage,
				&attempt.SecureService, &attempt.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			attempts = append(attempts, attempt)
		}

		if err = rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// DeleteOlderThan removes audit records past the retention window and
// returns the number of rows removed.
func (s *SQLiteStore) DeleteOlderThan(retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention)

	var removed int64
	err := s.retryOperation(func() error {
		result, err := s.db.Exec(`DELETE FROM token_attempts WHERE created_at < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("failed to delete old attempts: %w", err)
		}

		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	return removed, err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStats returns database statistics
func (s *SQLiteStore) GetStats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var totalAttempts int
	err := s.db.QueryRow("SELECT COUNT(*) FROM token_attempts").Scan(&totalAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to count total attempts: %w", err)
	}
	stats["total_attempts"] = totalAttempts

	var successfulAttempts int
	err = s.db.QueryRow("SELECT COUNT(*) FROM token_attempts WHERE successful = 1").Scan(&successfulAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to count successful attempts: %w", err)
	}
	stats["successful_attempts"] = successfulAttempts

	var uniqueVariants int
	err = s.db.QueryRow("SELECT COUNT(DISTINCT variant) FROM token_attempts").Scan(&uniqueVariants)
	if err != nil {
		return nil, fmt.Errorf("failed to count unique variants: %w", err)
	}
	stats["unique_variants"] = uniqueVariants

	// Database file size
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}

	stats["db_path"] = s.path

	return stats, nil
}

package shield

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/aodacheck/dbopen"
)

const defaultMaintenanceMessage = "Service under maintenance, please try again shortly."

// MaintenanceMode answers 503 while the maintenance row (see Schema) is
// active. The flag is cached in memory and refreshed by StartReloader. A
// missing table or row means maintenance is off.
type MaintenanceMode struct {
	db      *sql.DB
	active  atomic.Bool
	message atomic.Value // string
	exclude []string     // path prefixes that bypass maintenance
}

// NewMaintenanceMode creates a maintenance switch. Paths matching any of
// excludePrefixes are never blocked.
func NewMaintenanceMode(db *sql.DB, excludePrefixes ...string) *MaintenanceMode {
	m := &MaintenanceMode{
		db:      db,
		exclude: excludePrefixes,
	}
	m.message.Store(defaultMaintenanceMessage)
	m.Reload()
	return m
}

// Active reports whether maintenance mode is currently on.
func (m *MaintenanceMode) Active() bool {
	return m.active.Load()
}

// Message returns the current maintenance message.
func (m *MaintenanceMode) Message() string {
	s, _ := m.message.Load().(string)
	return s
}

// StartReloader reloads the flag every 5 seconds until done is closed.
func (m *MaintenanceMode) StartReloader(done <-chan struct{}) {
	tick := time.NewTicker(5 * time.Second)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				m.Reload()
			}
		}
	}()
}

// Reload reads the flag from the database.
func (m *MaintenanceMode) Reload() {
	var active int
	var message string
	err := m.db.QueryRow(`SELECT active, message FROM maintenance WHERE id = 1`).Scan(&active, &message)
	if err != nil {
		if m.active.Load() {
			slog.Info("maintenance: flag cleared (table missing or empty)")
		}
		m.active.Store(false)
		return
	}

	was := m.active.Load()
	m.active.Store(active == 1)
	if message != "" {
		m.message.Store(message)
	}

	switch {
	case active == 1 && !was:
		slog.Warn("maintenance: mode enabled", "message", message)
	case active != 1 && was:
		slog.Info("maintenance: mode disabled")
	}
}

// Middleware blocks requests with a 503 JSON body while maintenance is on.
func (m *MaintenanceMode) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.active.Load() {
			next.ServeHTTP(w, r)
			return
		}
		for _, prefix := range m.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Retry-After", "300")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": m.Message()})
	})
}

// SetMaintenance writes the maintenance row. An empty message restores the
// default. Running servers pick the change up on their next reload.
func SetMaintenance(ctx context.Context, db *sql.DB, active bool, message string) error {
	if message == "" {
		message = defaultMaintenanceMessage
	}
	flag := 0
	if active {
		flag = 1
	}
	_, err := dbopen.Exec(ctx, db,
		`INSERT INTO maintenance (id, active, message) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET active = excluded.active, message = excluded.message`,
		flag, message)
	if err != nil {
		return fmt.Errorf("shield: set maintenance: %w", err)
	}
	return nil
}

package zscaler

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/eliteGoblin/zwatch/internal/domain"
)

// eventTimeLayout matches the client's notification timestamps, e.g.
// "Wed, Aug 20 2025 14:02:09". The client appends a meridiem to its
// 24-hour clock; parseEventTime strips it before parsing.
const eventTimeLayout = "Mon, Jan 2 2006 15:04:05"

const eventQuery = `
	SELECT
		Time,
		NotificationName
	FROM ZAppNotifications
	WHERE NotificationName LIKE 'Internet Security %'
`

// statusByEvent maps notification names to the feature state. The
// client emits "Disabled" while the feature is engaged, so it counts
// as on.
var statusByEvent = map[string]domain.SecurityStatus{
	"Internet Security Up":       domain.SecurityOn,
	"Internet Security Disabled": domain.SecurityOn,
	"Internet Security Enabled":  domain.SecurityOn,
	"Internet Security On":       domain.SecurityOn,
	"Internet Security Off":      domain.SecurityOff,
}

// AppDBProbe implements domain.SecurityProbe by reading the newest
// Internet Security event from the client's notification database.
type AppDBProbe struct {
	dbPath string
	logger *zap.Logger
}

// NewAppDBProbe creates a probe for the invoking user's client database.
func NewAppDBProbe(logger *zap.Logger) *AppDBProbe {
	home, _ := os.UserHomeDir()
	return NewAppDBProbeWithPath(AppDBPath(home), logger)
}

// NewAppDBProbeWithPath creates a probe for a specific database file (for testing).
func NewAppDBProbeWithPath(dbPath string, logger *zap.Logger) *AppDBProbe {
	return &AppDBProbe{dbPath: dbPath, logger: logger}
}

type securityEvent struct {
	Name string
	At   time.Time
}

// Check reads the latest event. A missing database or an empty event log
// means the client has not recorded anything yet: that is
// SecurityUnknown, not an error. An event this probe cannot interpret is
// an error.
func (p *AppDBProbe) Check(ctx context.Context) (domain.SecurityStatus, error) {
	if _, err := os.Stat(p.dbPath); err != nil {
		p.logger.Warn("client database not found", zap.String("path", p.dbPath))
		return domain.SecurityUnknown, nil
	}

	db, err := sql.Open("sqlite", "file:"+p.dbPath+"?mode=ro")
	if err != nil {
		return domain.SecurityUnknown, fmt.Errorf("opening client database: %w", err)
	}
	defer db.Close()

	latest, found, err := p.latestEvent(ctx, db)
	if err != nil {
		return domain.SecurityUnknown, err
	}
	if !found {
		p.logger.Warn("no Internet Security events in client database",
			zap.String("path", p.dbPath))
		return domain.SecurityUnknown, nil
	}

	p.logger.Info("latest security event",
		zap.String("event", latest.Name),
		zap.Time("at", latest.At))

	status, ok := statusByEvent[latest.Name]
	if !ok {
		return domain.SecurityUnknown, fmt.Errorf("unsupported notification name %q", latest.Name)
	}
	return status, nil
}

// latestEvent scans all matching rows and keeps the newest by parsed
// timestamp. Row order in the table is not trustworthy: Time is stored
// as text that does not sort chronologically.
func (p *AppDBProbe) latestEvent(ctx context.Context, db *sql.DB) (securityEvent, bool, error) {
	rows, err := db.QueryContext(ctx, eventQuery)
	if err != nil {
		return securityEvent{}, false, fmt.Errorf("querying client database: %w", err)
	}
	defer rows.Close()

	var (
		latest securityEvent
		found  bool
	)
	for rows.Next() {
		var rawTime, name string
		if err := rows.Scan(&rawTime, &name); err != nil {
			return securityEvent{}, false, fmt.Errorf("scanning notification row: %w", err)
		}

		at, err := parseEventTime(rawTime)
		if err != nil {
			return securityEvent{}, false, err
		}

		if !found || at.After(latest.At) {
			latest = securityEvent{Name: name, At: at}
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return securityEvent{}, false, fmt.Errorf("reading notification rows: %w", err)
	}
	return latest, found, nil
}

// parseEventTime parses the client's timestamp format. The trailing
// AM/PM carries no information next to the 24-hour clock and Go's
// parser rejects the combination, so it is dropped.
func parseEventTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(raw, " AM"), " PM")
	at, err := time.Parse(eventTimeLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing event time %q: %w", raw, err)
	}
	return at, nil
}

// Ensure AppDBProbe implements domain.SecurityProbe.
var _ domain.SecurityProbe = (*AppDBProbe)(nil)

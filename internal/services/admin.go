package services

import (
	"fmt"
	"strconv"
	"strings"

	"alfredoptarigan/resume-match-bot/internal/models"
)

const (
	defaultLogLimit      = 10
	summaryLookbackHours = 24
)

// AdminService answers the operator log commands. In any non-production
// environment access is open; in production the command must carry the
// configured password. The password check is a plain string comparison, and
// the lockout settings in config are loaded but not applied here.
type AdminService interface {
	HandleLogs(args []string, userID, chatID int64) string
	HandleLogSummary(args []string, userID, chatID int64) string
}

type adminService struct {
	logService LogService
	password   string
	production bool
}

func NewAdminService(logService LogService, password string, production bool) AdminService {
	return &adminService{
		logService: logService,
		password:   password,
		production: production,
	}
}

// HandleLogs implements AdminService.
func (a *adminService) HandleLogs(args []string, userID, chatID int64) string {
	limit := defaultLogLimit
	password := ""

	switch {
	case len(args) >= 2:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return msgLogsUsage
		}
		limit = n
		password = args[1]
	case len(args) == 1:
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		} else {
			password = args[0]
		}
	}

	reply, granted := a.authorize("/logs", password, msgLogsUsage,
		map[string]interface{}{"limit": limit}, userID, chatID)
	if !granted {
		return reply
	}

	entries, err := a.logService.QueryRecent(limit)
	if err != nil {
		return msgLogsUnavailable
	}

	return formatLogEntries(entries)
}

// HandleLogSummary implements AdminService.
func (a *adminService) HandleLogSummary(args []string, userID, chatID int64) string {
	password := ""
	if len(args) >= 1 {
		password = args[0]
	}

	reply, granted := a.authorize("/logsummary", password, msgLogSummaryUsage,
		map[string]interface{}{"hours": summaryLookbackHours}, userID, chatID)
	if !granted {
		return reply
	}

	summary, err := a.logService.Summarize(summaryLookbackHours)
	if err != nil {
		return msgLogsUnavailable
	}

	return summary
}

// authorize returns the denial reply and whether access was granted. Granted
// and denied attempts are both audited; a missing password in production
// yields usage help with no audit entry.
func (a *adminService) authorize(command, password, usage string, metadata map[string]interface{}, userID, chatID int64) (string, bool) {
	metadata["command"] = command

	if !a.production {
		a.logService.Append(models.LevelInfo, "admin_access_granted",
			command+" (open environment)", metadata, userID, chatID)
		return "", true
	}

	if password == "" {
		return usage, false
	}

	if password != a.password {
		a.logService.Append(models.LevelWarn, "admin_access_denied",
			"wrong password for "+command, metadata, userID, chatID)
		return msgAdminDenied, false
	}

	a.logService.Append(models.LevelInfo, "admin_access_granted", command, metadata, userID, chatID)
	return "", true
}

func formatLogEntries(entries []models.LogEntry) string {
	if len(entries) == 0 {
		return "No log entries recorded yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Last %d log entries:\n", len(entries))

	for _, entry := range entries {
		fmt.Fprintf(&b, "\n[%s] %s %s", entry.Level, entry.CreatedAt.Format("02 Jan 15:04:05"), entry.EventName)
		if entry.Message != "" {
			fmt.Fprintf(&b, ": %s", entry.Message)
		}
	}

	return b.String()
}

package utils

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// ImportReason is the points history reason of imported opening balances
const ImportReason = "csv import"

// PointsCreditor credits points to a user
type PointsCreditor interface {
	Credit(ctx context.Context, userID string, delta int, reason, actorID string) (int, error)
}

// ImportResult summarises one import run
type ImportResult struct {
	TotalRows      int      `json:"totalRows"`
	UsersCreated   int      `json:"usersCreated"`
	UsersSkipped   int      `json:"usersSkipped"`
	PointsCredited int      `json:"pointsCredited"`
	Errors         []string `json:"errors"`
}

// UserImporter loads users from a CSV export of the app database.
// Opening balances go through the points ledger so they appear in the history.
type UserImporter struct {
	userRepo repositories.UserRepository
	ledger   PointsCreditor
}

// NewUserImporter creates a new UserImporter
func NewUserImporter(userRepo repositories.UserRepository, ledger PointsCreditor) *UserImporter {
	return &UserImporter{
		userRepo: userRepo,
		ledger:   ledger,
	}
}

// ImportUsers reads a header row and one user per row. Users that already
// exist are skipped untouched, so running the same file twice is harmless.
// Bad rows are reported in the result and do not stop the import.
func (i *UserImporter) ImportUsers(ctx context.Context, r io.Reader, actorID string) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := findColumnIndex(header, []string{"ID", "User ID", "UID", "_id"})
	if idIdx == -1 {
		return nil, errors.New("user id column not found in CSV")
	}
	nameIdx := findColumnIndex(header, []string{"Name", "Display Name"})
	emailIdx := findColumnIndex(header, []string{"Email", "E-mail"})
	tierIdx := findColumnIndex(header, []string{"Tier", "Seal", "Level"})
	premiumIdx := findColumnIndex(header, []string{"Premium", "Is Premium"})
	tokenIdx := findColumnIndex(header, []string{"Push Token", "FCM Token", "Notification Address"})
	pointsIdx := findColumnIndex(header, []string{"Points", "Balance"})

	result := &ImportResult{Errors: []string{}}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error reading row: %v", err))
			continue
		}
		result.TotalRows++
		line := result.TotalRows

		user, points, err := parseUserRow(row, idIdx, nameIdx, emailIdx, tierIdx, premiumIdx, tokenIdx, pointsIdx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		if err := i.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				result.UsersSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		result.UsersCreated++

		if points > 0 {
			if _, err := i.ledger.Credit(ctx, user.ID, points, ImportReason, actorID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: points: %v", line, err))
				continue
			}
			result.PointsCredited += points
		}
	}

	log.WithFields(log.Fields{
		"rows":    result.TotalRows,
		"created": result.UsersCreated,
		"skipped": result.UsersSkipped,
		"errors":  len(result.Errors),
	}).Info("User import finished")
	return result, nil
}

func parseUserRow(row []string, idIdx, nameIdx, emailIdx, tierIdx, premiumIdx, tokenIdx, pointsIdx int) (*models.User, int, error) {
	cell := func(idx int) string {
		if idx == -1 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	id := cell(idIdx)
	if id == "" {
		return nil, 0, errors.New("no user id found")
	}

	tier := models.Tier(strings.ToLower(cell(tierIdx)))
	if !tier.Valid() {
		return nil, 0, fmt.Errorf("invalid tier: %s", cell(tierIdx))
	}
	if tier == "" {
		tier = models.TierNone
	}

	var points int
	if raw := cell(pointsIdx); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 0 {
			return nil, 0, fmt.Errorf("invalid points: %s", raw)
		}
		points = p
	}

	return &models.User{
		ID:                  id,
		Name:                cell(nameIdx),
		Email:               cell(emailIdx),
		Tier:                tier,
		IsPremium:           parseYes(cell(premiumIdx)),
		NotificationAddress: cell(tokenIdx),
	}, points, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func parseYes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

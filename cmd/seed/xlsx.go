package main

import (
	"fmt"
	"strings"

	"github.com/samaraie/linktree-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

type adminRow struct {
	Email    string
	Name     string
	Role     model.UserRole
	Password string
}

// readAdminsFromXLSX reads the first sheet. Row 1 is the header, columns are
// email, name, role, password. An empty role means editor.
func readAdminsFromXLSX(filePath string) ([]adminRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var admins []adminRow
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		// excelize trims trailing empty cells
		for len(row) < 4 {
			row = append(row, "")
		}

		email := model.NormalizeEmail(row[0])
		name := strings.TrimSpace(row[1])
		role := model.UserRole(strings.ToLower(strings.TrimSpace(row[2])))
		password := row[3]

		if email == "" || name == "" || password == "" {
			skippedCount++
			continue
		}
		if role == "" {
			role = model.RoleEditor
		}
		if seen[email] {
			skippedCount++
			continue
		}
		seen[email] = true

		admins = append(admins, adminRow{
			Email:    email,
			Name:     name,
			Role:     role,
			Password: password,
		})
	}

	fmt.Printf("  Rows: %d, accounts: %d, skipped: %d\n", len(rows)-1, len(admins), skippedCount)
	return admins, nil
}

// backend/src/cmd/transfer.go
package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/security/validation"
)

func requireUser(db *sql.DB, userID int64) error {
	if userID <= 0 {
		return errors.New("--user is required")
	}
	if _, err := model.GetUserByID(db, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %d not found", userID)
		}
		return err
	}
	return nil
}

func newImportCmd() *cobra.Command {
	var userID int64
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import purchases for a user from a CSV, JSON or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				f, err := validation.ValidateUploadExtension(path)
				if err != nil {
					return err
				}
				format = f
			}
			sourceFormat, err := importer.ParseSourceFormat(format)
			if err != nil {
				return err
			}

			a, err := newApp(config.Cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireUser(a.db, userID); err != nil {
				return err
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := validation.ValidateFileContent(file, string(sourceFormat)); err != nil {
				return err
			}

			outcome, err := a.importExport.Import(cmd.Context(), userID, sourceFormat, file)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]interface{}{
				"summary": outcome.Summary,
				"errors":  outcome.Errors,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if outcome.AllFailed() {
				return errors.New("no records were imported")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "ID of the user who owns the imported purchases")
	cmd.Flags().StringVar(&format, "format", "", "csv, json or xlsx (default: from the file extension)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var userID int64
	var format, from, to, category, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's purchases to a CSV, JSON or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceFormat, err := importer.ParseSourceFormat(format)
			if err != nil {
				return err
			}
			filter := models.PurchaseFilter{Category: category}
			if from != "" {
				d, err := models.ParseDate(from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				filter.StartDate = &d
			}
			if to != "" {
				d, err := models.ParseDate(to)
				if err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				filter.EndDate = &d
			}

			a, err := newApp(config.Cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireUser(a.db, userID); err != nil {
				return err
			}

			result, err := a.importExport.Export(cmd.Context(), userID, sourceFormat, filter)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(result.Data)
				return err
			}
			if output == "" {
				output = result.Filename
			} else if info, statErr := os.Stat(output); statErr == nil && info.IsDir() {
				output = filepath.Join(output, result.Filename)
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d purchases to %s\n", result.Count, output)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "ID of the user whose purchases are exported")
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json or xlsx")
	cmd.Flags().StringVar(&from, "from", "", "first purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory, '-' for stdout (default: purchases_<date>.<format>)")
	return cmd
}

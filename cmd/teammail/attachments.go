package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/welldanyogia/webrana-teammail-backend/internal/database"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
)

var attachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "Inspect stored attachments",
}

var failedLimit int

var attachmentsFailedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List attachment parts whose storage failed",
	Long:  "Prints attachments recorded with status failed, oldest first, so they can be retried or cleaned up",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close(db)

		failed, err := repository.NewAttachmentRepository(db).ListFailed(cmd.Context(), failedLimit)
		if err != nil {
			return fmt.Errorf("failed to list attachments: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tFILENAME\tCREATED\tERROR")
		for _, a := range failed {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.EmailID, a.Filename, a.CreatedAt.Format("2006-01-02 15:04:05"), a.Error)
		}
		return w.Flush()
	},
}

func init() {
	attachmentsFailedCmd.Flags().IntVar(&failedLimit, "limit", 50, "maximum number of rows to print")
	attachmentsCmd.AddCommand(attachmentsFailedCmd)
	rootCmd.AddCommand(attachmentsCmd)
}

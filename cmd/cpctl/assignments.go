package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/afu9/controlplane/pkg/controlpack"
)

var (
	assignIssueID    string
	assignPackID     string
	assignPackName   string
	assignReason     string
	assignAssignedBy string
	listAll          bool
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Attach a control pack to an issue",
	RunE:  runAssign,
}

var assignDefaultCmd = &cobra.Command{
	Use:   "assign-default",
	Short: "Attach the well-known default control pack to an issue",
	RunE:  runAssignDefault,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List an issue's control pack assignments",
	RunE:  runList,
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <assignment-id>",
	Short: "Revoke a control pack assignment",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevoke,
}

var setStatusCmd = &cobra.Command{
	Use:   "set-status <assignment-id> <status>",
	Short: "Set an assignment's lifecycle status",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetStatus,
}

func init() {
	assignCmd.Flags().StringVar(&assignIssueID, "issue", "", "Issue ID (required)")
	assignCmd.Flags().StringVar(&assignPackID, "pack-id", "", "Control pack ID (required)")
	assignCmd.Flags().StringVar(&assignPackName, "pack-name", "", "Control pack display name (required)")
	assignCmd.Flags().StringVar(&assignReason, "reason", "", "Free-text assignment reason")
	assignCmd.Flags().StringVar(&assignAssignedBy, "assigned-by", "", "Assigning actor (default: system)")

	assignDefaultCmd.Flags().StringVar(&assignIssueID, "issue", "", "Issue ID (required)")
	assignDefaultCmd.Flags().StringVar(&assignAssignedBy, "assigned-by", "", "Assigning actor (default: system)")

	listCmd.Flags().StringVar(&assignIssueID, "issue", "", "Issue ID (required)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include revoked and suspended assignments")

	_ = assignCmd.MarkFlagRequired("issue")
	_ = assignCmd.MarkFlagRequired("pack-id")
	_ = assignCmd.MarkFlagRequired("pack-name")
	_ = assignDefaultCmd.MarkFlagRequired("issue")
	_ = listCmd.MarkFlagRequired("issue")
}

func runAssign(cmd *cobra.Command, args []string) error {
	store, err := newAssignmentStore()
	if err != nil {
		return err
	}

	row, err := store.Assign(cmd.Context(), controlpack.AssignmentInput{
		IssueID:    assignIssueID,
		PackID:     assignPackID,
		PackName:   assignPackName,
		AssignedBy: assignAssignedBy,
		Reason:     assignReason,
	})
	if err != nil {
		return err
	}
	return printAssignments([]controlpack.ControlPackAssignment{*row})
}

func runAssignDefault(cmd *cobra.Command, args []string) error {
	store, err := newAssignmentStore()
	if err != nil {
		return err
	}

	row, err := store.AssignDefault(cmd.Context(), assignIssueID, assignAssignedBy)
	if err != nil {
		return err
	}
	return printAssignments([]controlpack.ControlPackAssignment{*row})
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := newAssignmentStore()
	if err != nil {
		return err
	}

	var rows []controlpack.ControlPackAssignment
	if listAll {
		rows, err = store.ListAll(cmd.Context(), assignIssueID)
	} else {
		rows, err = store.ListActive(cmd.Context(), assignIssueID)
	}
	if err != nil {
		return err
	}
	return printAssignments(rows)
}

func runRevoke(cmd *cobra.Command, args []string) error {
	store, err := newAssignmentStore()
	if err != nil {
		return err
	}
	if err := store.Revoke(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Assignment %s revoked\n", args[0])
	return nil
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	store, err := newAssignmentStore()
	if err != nil {
		return err
	}
	if err := store.UpdateStatus(cmd.Context(), args[0], controlpack.AssignmentStatus(args[1])); err != nil {
		return err
	}
	fmt.Printf("Assignment %s set to %s\n", args[0], args[1])
	return nil
}

func printAssignments(rows []controlpack.ControlPackAssignment) error {
	headers := []string{"ID", "Issue", "Pack", "Name", "Status", "Assigned By", "Created"}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			r.ID, r.IssueID, r.ControlPackID, r.ControlPackName,
			string(r.Status), r.AssignedBy, r.CreatedAt.Format(time.RFC3339),
		})
	}
	return printOutput(rows, headers, table)
}

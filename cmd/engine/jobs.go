package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

var gradeWrapperCmd = &cobra.Command{
	Use:   "grade-wrapper",
	Short: "Grade every ungraded submission of a wrapper",
	RunE: func(cmd *cobra.Command, args []string) error {
		wrapperID, _ := cmd.Flags().GetUint("wrapper")
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		queued, err := a.services.Grading().GradeWrapper(cmd.Context(), wrapperID)
		if err != nil {
			return err
		}
		a.services.Grading().Wait()
		return printJSON(cmd, map[string]interface{}{"wrapper_id": wrapperID, "queued": queued})
	},
}

var regradeCoreCmd = &cobra.Command{
	Use:   "regrade-core",
	Short: "Rebuild every analysis of a core",
	RunE: func(cmd *cobra.Command, args []string) error {
		coreID, _ := cmd.Flags().GetUint("core")
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.services.Grading().ReGradeCore(cmd.Context(), coreID)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var recalibrateCmd = &cobra.Command{
	Use:   "recalibrate-question",
	Short: "Recompute the time window and level of a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, _ := cmd.Flags().GetUint("question")
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.services.Calibration().RecalibrateQuestion(cmd.Context(), questionID)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-analysis",
	Short: "Write a core or wrapper analysis to an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &models.ExportRequest{Format: "xlsx", IncludeMarks: true, IncludeQuestions: true}
		if cmd.Flags().Changed("core") {
			id, _ := cmd.Flags().GetUint("core")
			req.CoreID = &id
		}
		if cmd.Flags().Changed("wrapper") {
			id, _ := cmd.Flags().GetUint("wrapper")
			req.WrapperID = &id
		}
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		data, err := a.services.Export().ExportAnalysis(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import-questions",
	Short: "Load a csv or xlsx question sheet into the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.services.Import().ImportQuestions(cmd.Context(), file, path)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	gradeWrapperCmd.Flags().Uint("wrapper", 0, "Wrapper ID")
	_ = gradeWrapperCmd.MarkFlagRequired("wrapper")

	regradeCoreCmd.Flags().Uint("core", 0, "Core ID")
	_ = regradeCoreCmd.MarkFlagRequired("core")

	recalibrateCmd.Flags().Uint("question", 0, "Question ID")
	_ = recalibrateCmd.MarkFlagRequired("question")

	importCmd.Flags().String("file", "", "Question sheet (.csv or .xlsx)")
	_ = importCmd.MarkFlagRequired("file")

	exportCmd.Flags().Uint("core", 0, "Core ID")
	exportCmd.Flags().Uint("wrapper", 0, "Wrapper ID")
	exportCmd.Flags().String("out", "analysis.xlsx", "Output file")
	exportCmd.MarkFlagsOneRequired("core", "wrapper")
	exportCmd.MarkFlagsMutuallyExclusive("core", "wrapper")
}

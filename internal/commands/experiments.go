package commands

import (
	"fmt"
	"mime"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lab-notebook-client/internal/dto"
	"lab-notebook-client/internal/entity"
)

var (
	expTitle      string
	expHypothesis string
	expMaterials  string
	expMethods    string
	expResults    string
	expConclusion string
	expReferences string
	expStatus     string
	expSteps      []string

	stepDescription string
	stepObservation string
	stepStartedAt   string
	stepCompletedAt string

	attachFile        string
	attachDescription string
)

var experimentsCmd = &cobra.Command{
	Use:     "experiments",
	Aliases: []string{"exp"},
	Short:   "Manage structured experiments",
}

var experimentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.FetchExperiments(cmd.Context()); err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		state := container.Notebook.State()
		if len(state.Experiments) == 0 {
			color.Yellow("No experiments yet")
			return nil
		}
		for _, e := range state.Experiments {
			fmt.Printf("%s  %-12s  %s\n", e.Id, statusLabel(e.Status), e.Title)
		}
		return nil
	}),
}

var experimentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one experiment with steps and attachments",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.FetchExperiment(cmd.Context(), args[0]); err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		e := container.Notebook.State().CurrentExperiment
		color.Cyan("%s  (%s)", e.Title, statusLabel(e.Status))
		fmt.Printf("hypothesis: %s\n", e.Hypothesis)
		fmt.Printf("methods:    %s\n", e.Methods)
		printOptional("materials", e.Materials)
		printOptional("results", e.Results)
		printOptional("conclusion", e.Conclusion)
		printOptional("references", e.References)
		if e.CompletedAt != nil {
			fmt.Printf("completed:  %s\n", e.CompletedAt.Format("2006-01-02 15:04"))
		}

		if len(e.Steps) > 0 {
			color.Yellow("steps:")
			for _, st := range e.Steps {
				fmt.Printf("  %2d. [%s] %s\n", st.StepNumber, st.Id, st.Description)
				if st.Observation != nil && *st.Observation != "" {
					fmt.Printf("      observed: %s\n", *st.Observation)
				}
			}
		}
		if len(e.Attachments) > 0 {
			color.Yellow("attachments:")
			for _, a := range e.Attachments {
				fmt.Printf("  [%s] %s (%s)\n", a.Id, a.FileName, a.FileType)
			}
		}
		return nil
	}),
}

var experimentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an experiment, optionally with inline steps",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.CreateExperimentRequest{
			Title:      expTitle,
			Hypothesis: expHypothesis,
			Materials:  expMaterials,
			Methods:    expMethods,
			References: expReferences,
		}
		for _, desc := range expSteps {
			req.Steps = append(req.Steps, dto.CreateStepInline{Description: desc})
		}
		if err := validate.Struct(req); err != nil {
			return err
		}

		experiment, err := container.Notebook.CreateExperiment(cmd.Context(), &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		color.Green("Created experiment %s with %d step(s)", experiment.Id, len(experiment.Steps))
		return nil
	}),
}

var experimentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an experiment (only the given flags change)",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.UpdateExperimentRequest{}
		setIfChanged(cmd, "title", &req.Title, &expTitle)
		setIfChanged(cmd, "hypothesis", &req.Hypothesis, &expHypothesis)
		setIfChanged(cmd, "materials", &req.Materials, &expMaterials)
		setIfChanged(cmd, "methods", &req.Methods, &expMethods)
		setIfChanged(cmd, "results", &req.Results, &expResults)
		setIfChanged(cmd, "conclusion", &req.Conclusion, &expConclusion)
		setIfChanged(cmd, "references", &req.References, &expReferences)
		setIfChanged(cmd, "status", &req.Status, &expStatus)
		if err := validate.Struct(req); err != nil {
			return err
		}

		experiment, err := container.Notebook.UpdateExperiment(cmd.Context(), args[0], &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		color.Green("Updated experiment %s (status %s)", experiment.Id, experiment.Status)
		return nil
	}),
}

var experimentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an experiment",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.DeleteExperiment(cmd.Context(), args[0]); err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}
		color.Green("Deleted experiment %s", args[0])
		return nil
	}),
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Manage the ordered steps of an experiment",
}

var stepsAddCmd = &cobra.Command{
	Use:   "add <experiment-id>",
	Short: "Append a step (the server assigns its number)",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.CreateStepRequest{Description: stepDescription, Observation: stepObservation}
		if err := validate.Struct(req); err != nil {
			return err
		}

		step, err := container.Notebook.AddStep(cmd.Context(), args[0], &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		color.Green("Added step %d (%s)", step.StepNumber, step.Id)
		return nil
	}),
}

var stepsUpdateCmd = &cobra.Command{
	Use:   "update <experiment-id> <step-id>",
	Short: "Update a step (only the given flags change)",
	Args:  cobra.ExactArgs(2),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.UpdateStepRequest{}
		setIfChanged(cmd, "description", &req.Description, &stepDescription)
		setIfChanged(cmd, "observation", &req.Observation, &stepObservation)
		setIfChanged(cmd, "started-at", &req.StartedAt, &stepStartedAt)
		setIfChanged(cmd, "completed-at", &req.CompletedAt, &stepCompletedAt)

		step, err := container.Notebook.UpdateStep(cmd.Context(), args[0], args[1], &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		color.Green("Updated step %d (%s)", step.StepNumber, step.Id)
		return nil
	}),
}

var stepsDeleteCmd = &cobra.Command{
	Use:   "delete <experiment-id> <step-id>",
	Short: "Delete a step",
	Args:  cobra.ExactArgs(2),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.DeleteStep(cmd.Context(), args[0], args[1]); err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}
		color.Green("Deleted step %s", args[1])
		return nil
	}),
}

var attachmentsCmd = &cobra.Command{
	Use:   "attachments",
	Short: "Manage experiment attachments",
}

var attachmentsAddCmd = &cobra.Command{
	Use:   "add <experiment-id>",
	Short: "Register a file attachment on an experiment",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		fileName := filepath.Base(attachFile)
		fileType := mime.TypeByExtension(filepath.Ext(fileName))
		if fileType == "" {
			fileType = "application/octet-stream"
		}

		req := dto.CreateAttachmentRequest{
			FileName: fileName,
			FileType: fileType,
			// Storage keys must survive same-named uploads.
			FilePath:    fmt.Sprintf("uploads/%s-%s", uuid.New(), fileName),
			Description: attachDescription,
		}
		if err := validate.Struct(req); err != nil {
			return err
		}

		attachment, err := container.Notebook.AddAttachment(cmd.Context(), args[0], &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}

		color.Green("Attached %s (%s)", attachment.FileName, attachment.Id)
		return nil
	}),
}

var attachmentsDeleteCmd = &cobra.Command{
	Use:   "delete <experiment-id> <attachment-id>",
	Short: "Delete an attachment",
	Args:  cobra.ExactArgs(2),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.DeleteAttachment(cmd.Context(), args[0], args[1]); err != nil {
			color.Red("%s", container.Notebook.State().ExperimentError)
			return err
		}
		color.Green("Deleted attachment %s", args[1])
		return nil
	}),
}

// setIfChanged copies a flag value into a partial-update field only
// when the user actually passed the flag, keeping unset fields out of
// the payload entirely.
func setIfChanged(cmd *cobra.Command, flag string, dst **string, src *string) {
	if cmd.Flags().Changed(flag) {
		*dst = src
	}
}

func statusLabel(s entity.ExperimentStatus) string {
	switch s {
	case entity.ExperimentStatusCompleted:
		return color.GreenString(string(s))
	case entity.ExperimentStatusFailed:
		return color.RedString(string(s))
	case entity.ExperimentStatusInProgress:
		return color.YellowString(string(s))
	default:
		return string(s)
	}
}

func printOptional(label string, value *string) {
	if value != nil && *value != "" {
		fmt.Printf("%-11s %s\n", label+":", *value)
	}
}

func init() {
	for _, c := range []*cobra.Command{experimentsCreateCmd, experimentsUpdateCmd} {
		c.Flags().StringVar(&expTitle, "title", "", "experiment title")
		c.Flags().StringVar(&expHypothesis, "hypothesis", "", "hypothesis under test")
		c.Flags().StringVar(&expMaterials, "materials", "", "materials used")
		c.Flags().StringVar(&expMethods, "methods", "", "procedure description")
		c.Flags().StringVar(&expReferences, "references", "", "literature references")
	}
	experimentsCreateCmd.Flags().StringArrayVar(&expSteps, "step", nil, "inline step description (repeatable)")
	experimentsCreateCmd.MarkFlagRequired("title")
	experimentsCreateCmd.MarkFlagRequired("hypothesis")
	experimentsCreateCmd.MarkFlagRequired("methods")

	experimentsUpdateCmd.Flags().StringVar(&expResults, "results", "", "observed results")
	experimentsUpdateCmd.Flags().StringVar(&expConclusion, "conclusion", "", "conclusion drawn")
	experimentsUpdateCmd.Flags().StringVar(&expStatus, "status", "", "planned|in_progress|completed|failed")

	for _, c := range []*cobra.Command{stepsAddCmd, stepsUpdateCmd} {
		c.Flags().StringVarP(&stepDescription, "description", "d", "", "what this step does")
		c.Flags().StringVarP(&stepObservation, "observation", "o", "", "what was observed")
	}
	stepsAddCmd.MarkFlagRequired("description")
	stepsUpdateCmd.Flags().StringVar(&stepStartedAt, "started-at", "", "RFC 3339 start timestamp")
	stepsUpdateCmd.Flags().StringVar(&stepCompletedAt, "completed-at", "", "RFC 3339 completion timestamp")

	attachmentsAddCmd.Flags().StringVarP(&attachFile, "file", "f", "", "path of the file to register")
	attachmentsAddCmd.Flags().StringVar(&attachDescription, "description", "", "attachment description")
	attachmentsAddCmd.MarkFlagRequired("file")

	stepsCmd.AddCommand(stepsAddCmd)
	stepsCmd.AddCommand(stepsUpdateCmd)
	stepsCmd.AddCommand(stepsDeleteCmd)
	attachmentsCmd.AddCommand(attachmentsAddCmd)
	attachmentsCmd.AddCommand(attachmentsDeleteCmd)

	experimentsCmd.AddCommand(experimentsListCmd)
	experimentsCmd.AddCommand(experimentsShowCmd)
	experimentsCmd.AddCommand(experimentsCreateCmd)
	experimentsCmd.AddCommand(experimentsUpdateCmd)
	experimentsCmd.AddCommand(experimentsDeleteCmd)
	experimentsCmd.AddCommand(stepsCmd)
	experimentsCmd.AddCommand(attachmentsCmd)
}

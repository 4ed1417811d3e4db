package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lab-notebook-client/internal/dto"
	"lab-notebook-client/internal/entity"
)

var (
	noteTitle   string
	noteContent string
	noteTags    []string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage free-form notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.FetchNotes(cmd.Context()); err != nil {
			color.Red("%s", container.Notebook.State().NoteError)
			return err
		}

		state := container.Notebook.State()
		if len(state.Notes) == 0 {
			color.Yellow("No notes yet")
			return nil
		}
		for _, n := range state.Notes {
			printNoteLine(&n)
		}
		return nil
	}),
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.FetchNote(cmd.Context(), args[0]); err != nil {
			color.Red("%s", container.Notebook.State().NoteError)
			return err
		}

		note := container.Notebook.State().CurrentNote
		color.Cyan("%s", note.Title)
		if len(note.Tags) > 0 {
			color.Yellow("tags: %s", strings.Join(note.Tags, ", "))
		}
		fmt.Println(note.Content)
		fmt.Printf("created %s, updated %s\n", note.CreatedAt.Format("2006-01-02 15:04"), note.UpdatedAt.Format("2006-01-02 15:04"))
		return nil
	}),
}

var notesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.CreateNoteRequest{Title: noteTitle, Content: noteContent, Tags: noteTags}
		if err := validate.Struct(req); err != nil {
			return err
		}

		note, err := container.Notebook.CreateNote(cmd.Context(), &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().NoteError)
			return err
		}

		color.Green("Created note %s", note.Id)
		return nil
	}),
}

var notesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a note (only the given flags change)",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.UpdateNoteRequest{}
		if cmd.Flags().Changed("title") {
			req.Title = &noteTitle
		}
		if cmd.Flags().Changed("content") {
			req.Content = &noteContent
		}
		if cmd.Flags().Changed("tag") {
			req.Tags = noteTags
		}

		note, err := container.Notebook.UpdateNote(cmd.Context(), args[0], &req)
		if err != nil {
			color.Red("%s", container.Notebook.State().NoteError)
			return err
		}

		color.Green("Updated note %s", note.Id)
		return nil
	}),
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if err := container.Notebook.DeleteNote(cmd.Context(), args[0]); err != nil {
			color.Red("%s", container.Notebook.State().NoteError)
			return err
		}
		color.Green("Deleted note %s", args[0])
		return nil
	}),
}

func printNoteLine(n *entity.Note) {
	tags := ""
	if len(n.Tags) > 0 {
		tags = "  [" + strings.Join(n.Tags, ", ") + "]"
	}
	fmt.Printf("%s  %s%s\n", n.Id, n.Title, tags)
}

func init() {
	for _, c := range []*cobra.Command{notesCreateCmd, notesUpdateCmd} {
		c.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
		c.Flags().StringVarP(&noteContent, "content", "c", "", "note body")
		c.Flags().StringArrayVar(&noteTags, "tag", nil, "tag (repeatable)")
	}
	notesCreateCmd.MarkFlagRequired("title")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesCreateCmd)
	notesCmd.AddCommand(notesUpdateCmd)
	notesCmd.AddCommand(notesDeleteCmd)
}

package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-notebook-client/internal/dto"
	"lab-notebook-client/internal/entity"
	"lab-notebook-client/internal/pkg/logger"
)

const (
	noteN1 = `{"id":"n1","user_id":"u1","title":"T","content":"C","tags":["x"],"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-01T10:00:00Z"}`
	noteN2 = `{"id":"n2","user_id":"u1","title":"Second","content":"More","tags":[],"created_at":"2024-03-02T10:00:00Z","updated_at":"2024-03-02T10:00:00Z"}`

	expE1 = `{"id":"e1","user_id":"u1","title":"Yeast growth","hypothesis":"H","materials":null,"methods":"M","results":null,` +
		`"conclusion":null,"references":null,"status":"planned","started_at":null,"completed_at":null,` +
		`"steps":[{"id":"s1","experiment_id":"e1","step_number":1,"description":"Prepare culture","observation":null,` +
		`"started_at":null,"completed_at":null,"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-01T10:00:00Z"}],` +
		`"attachments":[],"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-01T10:00:00Z"}`
)

func newNotebookStore(t *testing.T, mux *http.ServeMux) INotebookStore {
	t.Helper()
	return NewNotebookStore(newStoreAPI(t, mux), logger.NewNopLogger())
}

func strptr(s string) *string { return &s }

// ---- Notes ----

func TestFetchNotesIsIdempotent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, `[`+noteN1+`,`+noteN2+`]`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))
	first := s.State().Notes
	require.NoError(t, s.FetchNotes(ctx))
	second := s.State().Notes

	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
	assert.Equal(t, "n1", second[0].Id)
	assert.Equal(t, []string{"x"}, second[0].Tags)
}

func TestFetchNotesDecodesNaiveServerTimestamps(t *testing.T) {
	// The backend serializes datetimes without a zone suffix.
	payload := `[{"id":"n3","user_id":"u1","title":"T","content":"C","tags":[],` +
		`"created_at":"2024-03-01T10:00:00.123456","updated_at":"2024-03-01T10:00:05"}]`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, payload))
	s := newNotebookStore(t, mux)

	require.NoError(t, s.FetchNotes(context.Background()))

	state := s.State()
	require.Len(t, state.Notes, 1)
	assert.Empty(t, state.NoteError)
	assert.True(t, state.Notes[0].CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)))
	assert.True(t, state.Notes[0].UpdatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC)))
}

func TestFetchNotesFailureKeepsPreviousList(t *testing.T) {
	broken := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		if broken {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"db down"}`))
			return
		}
		w.Write([]byte(`[` + noteN1 + `]`))
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))
	broken = true
	require.Error(t, s.FetchNotes(ctx))

	state := s.State()
	assert.Len(t, state.Notes, 1)
	assert.Equal(t, "db down", state.NoteError)
	assert.False(t, state.IsLoadingNotes)
}

func TestFetchNoteSetsCurrentWithoutTouchingList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes/n1", jsonHandler(http.StatusOK, noteN1))
	s := newNotebookStore(t, mux)

	require.NoError(t, s.FetchNote(context.Background(), "n1"))

	state := s.State()
	require.NotNil(t, state.CurrentNote)
	assert.Equal(t, "n1", state.CurrentNote.Id)
	assert.Empty(t, state.Notes)
}

func TestCreateNotePrependsAndSelects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[` + noteN2 + `]`))
			return
		}
		w.Write([]byte(noteN1))
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))

	note, err := s.CreateNote(ctx, &dto.CreateNoteRequest{Title: "T", Content: "C", Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "n1", note.Id)

	state := s.State()
	require.Len(t, state.Notes, 2)
	assert.Equal(t, "n1", state.Notes[0].Id) // head of list
	assert.Equal(t, "n2", state.Notes[1].Id)
	require.NotNil(t, state.CurrentNote)
	assert.Equal(t, "n1", state.CurrentNote.Id)
	assert.Empty(t, state.NoteError)
}

func TestCreateNoteFailureLeavesCacheUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[` + noteN2 + `]`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Title is required"}`))
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))

	_, err := s.CreateNote(ctx, &dto.CreateNoteRequest{Content: "C"})
	require.Error(t, err)

	state := s.State()
	assert.Len(t, state.Notes, 1)
	assert.Nil(t, state.CurrentNote)
	assert.Equal(t, "Title is required", state.NoteError)
}

func TestUpdateNoteTakesServerResponseVerbatim(t *testing.T) {
	updated := `{"id":"n1","user_id":"u1","title":"Renamed","content":"C2","tags":["x","y"],` +
		`"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-05T09:30:00Z"}`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, `[`+noteN1+`,`+noteN2+`]`))
	mux.HandleFunc("/api/notes/n1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(noteN1))
		case http.MethodPut:
			w.Write([]byte(updated))
		}
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))
	require.NoError(t, s.FetchNote(ctx, "n1"))

	note, err := s.UpdateNote(ctx, "n1", &dto.UpdateNoteRequest{Title: strptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", note.Title)

	state := s.State()
	var cached *entity.Note
	count := 0
	for i := range state.Notes {
		if state.Notes[i].Id == "n1" {
			cached = &state.Notes[i]
			count++
		}
	}
	require.Equal(t, 1, count)
	// No stale field survives: content and tags came from the response
	// even though the request only changed the title.
	assert.Equal(t, "C2", cached.Content)
	assert.Equal(t, []string{"x", "y"}, cached.Tags)
	assert.Equal(t, "2024-03-05T09:30:00Z", cached.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))

	require.NotNil(t, state.CurrentNote)
	assert.Equal(t, "Renamed", state.CurrentNote.Title)
}

func TestDeleteSelectedNoteClearsSelection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, `[`+noteN1+`,`+noteN2+`]`))
	mux.HandleFunc("/api/notes/n1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(noteN1))
		case http.MethodDelete:
			w.Write([]byte(`{"message":"deleted"}`))
		}
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))
	require.NoError(t, s.FetchNote(ctx, "n1"))
	require.NoError(t, s.DeleteNote(ctx, "n1"))

	state := s.State()
	assert.Nil(t, state.CurrentNote)
	for _, n := range state.Notes {
		assert.NotEqual(t, "n1", n.Id)
	}
	assert.Len(t, state.Notes, 1)
}

func TestDeleteUnselectedNoteKeepsSelection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, `[`+noteN1+`,`+noteN2+`]`))
	mux.HandleFunc("/api/notes/n1", jsonHandler(http.StatusOK, noteN1))
	mux.HandleFunc("/api/notes/n2", jsonHandler(http.StatusOK, `{"message":"deleted"}`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchNotes(ctx))
	require.NoError(t, s.FetchNote(ctx, "n1"))
	require.NoError(t, s.DeleteNote(ctx, "n2"))

	state := s.State()
	require.NotNil(t, state.CurrentNote)
	assert.Equal(t, "n1", state.CurrentNote.Id)
}

func TestSetCurrentNoteAndClearNoteError(t *testing.T) {
	s := newNotebookStore(t, http.NewServeMux())

	s.SetCurrentNote(&entity.Note{Id: "n9", Title: "manual"})
	require.NotNil(t, s.State().CurrentNote)
	assert.Equal(t, "n9", s.State().CurrentNote.Id)

	s.SetCurrentNote(nil)
	assert.Nil(t, s.State().CurrentNote)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusNotFound, `{"error":"nope"}`))
	s2 := newNotebookStore(t, mux)
	require.Error(t, s2.FetchNotes(context.Background()))
	assert.Equal(t, "nope", s2.State().NoteError)
	s2.ClearNoteError()
	assert.Empty(t, s2.State().NoteError)
}

// ---- Experiments ----

func TestCreateExperimentPrependsAndSelects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(expE1))
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiments(ctx))

	experiment, err := s.CreateExperiment(ctx, &dto.CreateExperimentRequest{
		Title:      "Yeast growth",
		Hypothesis: "H",
		Methods:    "M",
		Steps:      []dto.CreateStepInline{{Description: "Prepare culture"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", experiment.Id)
	require.Len(t, experiment.Steps, 1)
	assert.Equal(t, 1, experiment.Steps[0].StepNumber)

	state := s.State()
	require.Len(t, state.Experiments, 1)
	require.NotNil(t, state.CurrentExperiment)
	assert.Equal(t, "e1", state.CurrentExperiment.Id)
}

func TestUpdateExperimentStatusReflectsServerTimestamps(t *testing.T) {
	completed := `{"id":"e1","user_id":"u1","title":"Yeast growth","hypothesis":"H","materials":null,"methods":"M",` +
		`"results":"grew","conclusion":null,"references":null,"status":"completed","started_at":"2024-03-01T10:00:00Z",` +
		`"completed_at":"2024-03-07T18:00:00Z","steps":[],"attachments":[],` +
		`"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-07T18:00:00Z"}`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments", jsonHandler(http.StatusOK, `[`+expE1+`]`))
	mux.HandleFunc("/api/experiments/e1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(expE1))
		case http.MethodPut:
			w.Write([]byte(completed))
		}
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiments(ctx))
	require.NoError(t, s.FetchExperiment(ctx, "e1"))

	status := "completed"
	_, err := s.UpdateExperiment(ctx, "e1", &dto.UpdateExperimentRequest{Status: &status})
	require.NoError(t, err)

	// Both status and the server-computed completion timestamp land in
	// the cache; the client guessed neither.
	state := s.State()
	assert.Equal(t, entity.ExperimentStatusCompleted, state.Experiments[0].Status)
	require.NotNil(t, state.Experiments[0].CompletedAt)
	assert.Equal(t, "2024-03-07T18:00:00Z", state.Experiments[0].CompletedAt.Format("2006-01-02T15:04:05Z07:00"))
	require.NotNil(t, state.CurrentExperiment)
	assert.Equal(t, entity.ExperimentStatusCompleted, state.CurrentExperiment.Status)
}

func TestDeleteSelectedExperimentClearsSelection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments", jsonHandler(http.StatusOK, `[`+expE1+`]`))
	mux.HandleFunc("/api/experiments/e1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(expE1))
		case http.MethodDelete:
			w.Write([]byte(`{"message":"deleted"}`))
		}
	})
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiments(ctx))
	require.NoError(t, s.FetchExperiment(ctx, "e1"))
	require.NoError(t, s.DeleteExperiment(ctx, "e1"))

	state := s.State()
	assert.Empty(t, state.Experiments)
	assert.Nil(t, state.CurrentExperiment)
}

// ---- Steps & Attachments ----

func TestAddStepSplicesIntoListAndSelection(t *testing.T) {
	newStep := `{"id":"s2","experiment_id":"e1","step_number":2,"description":"Incubate","observation":null,` +
		`"started_at":null,"completed_at":null,"created_at":"2024-03-02T10:00:00Z","updated_at":"2024-03-02T10:00:00Z"}`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments", jsonHandler(http.StatusOK, `[`+expE1+`]`))
	mux.HandleFunc("/api/experiments/e1", jsonHandler(http.StatusOK, expE1))
	mux.HandleFunc("/api/experiments/e1/steps", jsonHandler(http.StatusCreated, newStep))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiments(ctx))
	require.NoError(t, s.FetchExperiment(ctx, "e1"))

	step, err := s.AddStep(ctx, "e1", &dto.CreateStepRequest{Description: "Incubate"})
	require.NoError(t, err)
	assert.Equal(t, 2, step.StepNumber)

	state := s.State()
	require.Len(t, state.Experiments[0].Steps, 2)
	assert.Equal(t, []int{1, 2}, []int{state.Experiments[0].Steps[0].StepNumber, state.Experiments[0].Steps[1].StepNumber})
	require.NotNil(t, state.CurrentExperiment)
	require.Len(t, state.CurrentExperiment.Steps, 2)
	assert.Equal(t, "s2", state.CurrentExperiment.Steps[1].Id)
}

func TestUpdateStepReplacesById(t *testing.T) {
	updatedStep := `{"id":"s1","experiment_id":"e1","step_number":1,"description":"Prepare culture","observation":"turbid",` +
		`"started_at":"2024-03-02T08:00:00Z","completed_at":null,"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-02T08:00:00Z"}`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments/e1", jsonHandler(http.StatusOK, expE1))
	mux.HandleFunc("/api/experiments/e1/steps/s1", jsonHandler(http.StatusOK, updatedStep))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiment(ctx, "e1"))

	step, err := s.UpdateStep(ctx, "e1", "s1", &dto.UpdateStepRequest{Observation: strptr("turbid")})
	require.NoError(t, err)
	require.NotNil(t, step.Observation)

	state := s.State()
	require.NotNil(t, state.CurrentExperiment)
	require.Len(t, state.CurrentExperiment.Steps, 1)
	require.NotNil(t, state.CurrentExperiment.Steps[0].Observation)
	assert.Equal(t, "turbid", *state.CurrentExperiment.Steps[0].Observation)
}

func TestDeleteStepRemovesFromParent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments/e1", jsonHandler(http.StatusOK, expE1))
	mux.HandleFunc("/api/experiments/e1/steps/s1", jsonHandler(http.StatusOK, `{"message":"deleted"}`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiment(ctx, "e1"))
	require.NoError(t, s.DeleteStep(ctx, "e1", "s1"))

	state := s.State()
	require.NotNil(t, state.CurrentExperiment)
	assert.Empty(t, state.CurrentExperiment.Steps)
}

func TestAddAndDeleteAttachment(t *testing.T) {
	attachment := `{"id":"a1","experiment_id":"e1","file_name":"gel.png","file_type":"image/png",` +
		`"file_path":"uploads/abc-gel.png","description":null,"created_at":"2024-03-03T10:00:00Z"}`

	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments/e1", jsonHandler(http.StatusOK, expE1))
	mux.HandleFunc("/api/experiments/e1/attachments", jsonHandler(http.StatusCreated, attachment))
	mux.HandleFunc("/api/experiments/e1/attachments/a1", jsonHandler(http.StatusOK, `{"message":"deleted"}`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiment(ctx, "e1"))

	got, err := s.AddAttachment(ctx, "e1", &dto.CreateAttachmentRequest{FileName: "gel.png", FileType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "a1", got.Id)
	require.Len(t, s.State().CurrentExperiment.Attachments, 1)

	require.NoError(t, s.DeleteAttachment(ctx, "e1", "a1"))
	assert.Empty(t, s.State().CurrentExperiment.Attachments)
}

func TestAddStepFailureLeavesParentUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/experiments/e1", jsonHandler(http.StatusOK, expE1))
	mux.HandleFunc("/api/experiments/e1/steps", jsonHandler(http.StatusBadRequest, `{"error":"Description is required"}`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.NoError(t, s.FetchExperiment(ctx, "e1"))

	_, err := s.AddStep(ctx, "e1", &dto.CreateStepRequest{})
	require.Error(t, err)

	state := s.State()
	require.Len(t, state.CurrentExperiment.Steps, 1)
	assert.Equal(t, "Description is required", state.ExperimentError)
}

func TestSnapshotSlicesAreIsolated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusOK, `[`+noteN1+`]`))
	s := newNotebookStore(t, mux)

	require.NoError(t, s.FetchNotes(context.Background()))
	snap := s.State()
	snap.Notes[0].Title = "tampered"
	assert.Equal(t, "T", s.State().Notes[0].Title)
}

func TestNoteAndExperimentErrorsAreIndependent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notes", jsonHandler(http.StatusInternalServerError, `{"error":"notes down"}`))
	mux.HandleFunc("/api/experiments", jsonHandler(http.StatusOK, `[]`))
	s := newNotebookStore(t, mux)

	ctx := context.Background()
	require.Error(t, s.FetchNotes(ctx))
	require.NoError(t, s.FetchExperiments(ctx))

	state := s.State()
	assert.Equal(t, "notes down", state.NoteError)
	assert.Empty(t, state.ExperimentError)
}

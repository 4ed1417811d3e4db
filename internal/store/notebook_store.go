package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lab-notebook-client/internal/client"
	"lab-notebook-client/internal/dto"
	"lab-notebook-client/internal/entity"
	"lab-notebook-client/internal/pkg/logger"
)

const moduleNotebook = "notebook_store"

// NotebookState is a point-in-time snapshot of the cached collections.
// The notes and experiments sections are independent: each has its own
// list, selection pointer, loading flag and error slot.
type NotebookState struct {
	Notes          []entity.Note
	CurrentNote    *entity.Note
	IsLoadingNotes bool
	NoteError      string

	Experiments          []entity.Experiment
	CurrentExperiment    *entity.Experiment
	IsLoadingExperiments bool
	ExperimentError      string
}

// INotebookStore keeps the cached notes and experiments in lock-step
// with the last acknowledged server response. Mutations never merge or
// guess client-side: a successful write replaces the cached entity with
// the server's returned representation verbatim. On failure the cache
// is left untouched, the error is recorded for display, and the error
// is returned so the caller can decide flow.
type INotebookStore interface {
	State() NotebookState

	FetchNotes(ctx context.Context) error
	FetchNote(ctx context.Context, id string) error
	CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*entity.Note, error)
	UpdateNote(ctx context.Context, id string, req *dto.UpdateNoteRequest) (*entity.Note, error)
	DeleteNote(ctx context.Context, id string) error
	SetCurrentNote(note *entity.Note)
	ClearNoteError()

	FetchExperiments(ctx context.Context) error
	FetchExperiment(ctx context.Context, id string) error
	CreateExperiment(ctx context.Context, req *dto.CreateExperimentRequest) (*entity.Experiment, error)
	UpdateExperiment(ctx context.Context, id string, req *dto.UpdateExperimentRequest) (*entity.Experiment, error)
	DeleteExperiment(ctx context.Context, id string) error
	SetCurrentExperiment(experiment *entity.Experiment)
	ClearExperimentError()

	AddStep(ctx context.Context, experimentId string, req *dto.CreateStepRequest) (*entity.ExperimentStep, error)
	UpdateStep(ctx context.Context, experimentId, stepId string, req *dto.UpdateStepRequest) (*entity.ExperimentStep, error)
	DeleteStep(ctx context.Context, experimentId, stepId string) error
	AddAttachment(ctx context.Context, experimentId string, req *dto.CreateAttachmentRequest) (*entity.ExperimentAttachment, error)
	DeleteAttachment(ctx context.Context, experimentId, attachmentId string) error
}

type notebookStore struct {
	mu     sync.RWMutex
	api    client.IAPIClient
	logger logger.ILogger
	state  NotebookState
}

func NewNotebookStore(api client.IAPIClient, log logger.ILogger) INotebookStore {
	return &notebookStore{api: api, logger: log}
}

func (s *notebookStore) State() NotebookState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	st.Notes = append([]entity.Note(nil), s.state.Notes...)
	st.Experiments = append([]entity.Experiment(nil), s.state.Experiments...)
	if st.CurrentNote != nil {
		n := *st.CurrentNote
		st.CurrentNote = &n
	}
	if st.CurrentExperiment != nil {
		e := *st.CurrentExperiment
		st.CurrentExperiment = &e
	}
	return st
}

// ---- Notes ----

func (s *notebookStore) beginNotes() {
	s.mu.Lock()
	s.state.IsLoadingNotes = true
	s.state.NoteError = ""
	s.mu.Unlock()
}

func (s *notebookStore) failNotes(err error, fallback string) {
	s.state.IsLoadingNotes = false
	s.state.NoteError = client.ErrorMessage(err, fallback)
	s.logger.Warn(moduleNotebook, fallback, map[string]interface{}{"error": err.Error()})
}

func (s *notebookStore) FetchNotes(ctx context.Context) error {
	s.beginNotes()

	var notes []entity.Note
	err := s.api.Get(ctx, "/api/notes", &notes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Previous list stays untouched.
		s.failNotes(err, "Failed to fetch notes")
		return err
	}

	s.state.IsLoadingNotes = false
	s.state.Notes = notes
	return nil
}

func (s *notebookStore) FetchNote(ctx context.Context, id string) error {
	s.beginNotes()

	var note entity.Note
	err := s.api.Get(ctx, "/api/notes/"+id, &note)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failNotes(err, "Failed to fetch note")
		return err
	}

	// Only the selection moves; the list cache is not altered.
	s.state.IsLoadingNotes = false
	s.state.CurrentNote = &note
	return nil
}

func (s *notebookStore) CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*entity.Note, error) {
	s.beginNotes()

	var note entity.Note
	err := s.api.Post(ctx, "/api/notes", req, &note)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failNotes(err, "Failed to create note")
		return nil, err
	}

	s.state.IsLoadingNotes = false
	s.state.Notes = append([]entity.Note{note}, s.state.Notes...)
	current := note
	s.state.CurrentNote = &current
	return &note, nil
}

func (s *notebookStore) UpdateNote(ctx context.Context, id string, req *dto.UpdateNoteRequest) (*entity.Note, error) {
	s.beginNotes()

	var note entity.Note
	err := s.api.Put(ctx, "/api/notes/"+id, req, &note)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failNotes(err, "Failed to update note")
		return nil, err
	}

	s.state.IsLoadingNotes = false
	for i := range s.state.Notes {
		if s.state.Notes[i].Id == id {
			s.state.Notes[i] = note
			break
		}
	}
	if s.state.CurrentNote != nil && s.state.CurrentNote.Id == id {
		current := note
		s.state.CurrentNote = &current
	}
	return &note, nil
}

func (s *notebookStore) DeleteNote(ctx context.Context, id string) error {
	s.beginNotes()

	var res dto.DeleteResponse
	err := s.api.Delete(ctx, "/api/notes/"+id, &res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failNotes(err, "Failed to delete note")
		return err
	}

	s.state.IsLoadingNotes = false
	notes := make([]entity.Note, 0, len(s.state.Notes))
	for _, n := range s.state.Notes {
		if n.Id != id {
			notes = append(notes, n)
		}
	}
	s.state.Notes = notes
	if s.state.CurrentNote != nil && s.state.CurrentNote.Id == id {
		s.state.CurrentNote = nil
	}
	return nil
}

func (s *notebookStore) SetCurrentNote(note *entity.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if note == nil {
		s.state.CurrentNote = nil
		return
	}
	n := *note
	s.state.CurrentNote = &n
}

func (s *notebookStore) ClearNoteError() {
	s.mu.Lock()
	s.state.NoteError = ""
	s.mu.Unlock()
}

// ---- Experiments ----

func (s *notebookStore) beginExperiments() {
	s.mu.Lock()
	s.state.IsLoadingExperiments = true
	s.state.ExperimentError = ""
	s.mu.Unlock()
}

func (s *notebookStore) failExperiments(err error, fallback string) {
	s.state.IsLoadingExperiments = false
	s.state.ExperimentError = client.ErrorMessage(err, fallback)
	s.logger.Warn(moduleNotebook, fallback, map[string]interface{}{"error": err.Error()})
}

func (s *notebookStore) FetchExperiments(ctx context.Context) error {
	s.beginExperiments()

	var experiments []entity.Experiment
	err := s.api.Get(ctx, "/api/experiments", &experiments)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to fetch experiments")
		return err
	}

	s.state.IsLoadingExperiments = false
	s.state.Experiments = experiments
	return nil
}

func (s *notebookStore) FetchExperiment(ctx context.Context, id string) error {
	s.beginExperiments()

	var experiment entity.Experiment
	err := s.api.Get(ctx, "/api/experiments/"+id, &experiment)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to fetch experiment")
		return err
	}

	s.state.IsLoadingExperiments = false
	s.state.CurrentExperiment = &experiment
	return nil
}

func (s *notebookStore) CreateExperiment(ctx context.Context, req *dto.CreateExperimentRequest) (*entity.Experiment, error) {
	s.beginExperiments()

	var experiment entity.Experiment
	err := s.api.Post(ctx, "/api/experiments", req, &experiment)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to create experiment")
		return nil, err
	}

	s.state.IsLoadingExperiments = false
	s.state.Experiments = append([]entity.Experiment{experiment}, s.state.Experiments...)
	current := experiment
	s.state.CurrentExperiment = &current
	return &experiment, nil
}

func (s *notebookStore) UpdateExperiment(ctx context.Context, id string, req *dto.UpdateExperimentRequest) (*entity.Experiment, error) {
	s.beginExperiments()

	var experiment entity.Experiment
	err := s.api.Put(ctx, "/api/experiments/"+id, req, &experiment)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to update experiment")
		return nil, err
	}

	// The server's returned representation wins wholesale. Fields it
	// computed on its own (updated_at, completed_at on a status change)
	// arrive here, never a client-side guess.
	s.state.IsLoadingExperiments = false
	for i := range s.state.Experiments {
		if s.state.Experiments[i].Id == id {
			s.state.Experiments[i] = experiment
			break
		}
	}
	if s.state.CurrentExperiment != nil && s.state.CurrentExperiment.Id == id {
		current := experiment
		s.state.CurrentExperiment = &current
	}
	return &experiment, nil
}

func (s *notebookStore) DeleteExperiment(ctx context.Context, id string) error {
	s.beginExperiments()

	var res dto.DeleteResponse
	err := s.api.Delete(ctx, "/api/experiments/"+id, &res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to delete experiment")
		return err
	}

	s.state.IsLoadingExperiments = false
	experiments := make([]entity.Experiment, 0, len(s.state.Experiments))
	for _, e := range s.state.Experiments {
		if e.Id != id {
			experiments = append(experiments, e)
		}
	}
	s.state.Experiments = experiments
	if s.state.CurrentExperiment != nil && s.state.CurrentExperiment.Id == id {
		s.state.CurrentExperiment = nil
	}
	return nil
}

func (s *notebookStore) SetCurrentExperiment(experiment *entity.Experiment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if experiment == nil {
		s.state.CurrentExperiment = nil
		return
	}
	e := *experiment
	s.state.CurrentExperiment = &e
}

func (s *notebookStore) ClearExperimentError() {
	s.mu.Lock()
	s.state.ExperimentError = ""
	s.mu.Unlock()
}

// ---- Steps & Attachments ----
//
// Sub-resource mutations follow the same contract scoped to the parent
// experiment: the server's returned sub-resource is spliced into the
// cached parent (list entry and current pointer alike). Step order is
// whatever the server-assigned step numbers say; the client never
// renumbers.

// applyToExperiment rewrites the cached copies of one experiment. fn
// must treat Steps/Attachments as copy-on-write: replace the slice,
// never mutate it in place, so previously handed-out snapshots stay
// stable. Caller holds the write lock.
func (s *notebookStore) applyToExperiment(id string, fn func(*entity.Experiment)) {
	for i := range s.state.Experiments {
		if s.state.Experiments[i].Id == id {
			fn(&s.state.Experiments[i])
			break
		}
	}
	if s.state.CurrentExperiment != nil && s.state.CurrentExperiment.Id == id {
		fn(s.state.CurrentExperiment)
	}
}

func (s *notebookStore) AddStep(ctx context.Context, experimentId string, req *dto.CreateStepRequest) (*entity.ExperimentStep, error) {
	s.beginExperiments()

	var step entity.ExperimentStep
	err := s.api.Post(ctx, fmt.Sprintf("/api/experiments/%s/steps", experimentId), req, &step)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to add step")
		return nil, err
	}

	s.state.IsLoadingExperiments = false
	s.applyToExperiment(experimentId, func(e *entity.Experiment) {
		steps := make([]entity.ExperimentStep, 0, len(e.Steps)+1)
		steps = append(steps, e.Steps...)
		steps = append(steps, step)
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
		e.Steps = steps
	})
	return &step, nil
}

func (s *notebookStore) UpdateStep(ctx context.Context, experimentId, stepId string, req *dto.UpdateStepRequest) (*entity.ExperimentStep, error) {
	s.beginExperiments()

	var step entity.ExperimentStep
	err := s.api.Put(ctx, fmt.Sprintf("/api/experiments/%s/steps/%s", experimentId, stepId), req, &step)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to update step")
		return nil, err
	}

	s.state.IsLoadingExperiments = false
	s.applyToExperiment(experimentId, func(e *entity.Experiment) {
		steps := append([]entity.ExperimentStep(nil), e.Steps...)
		for i := range steps {
			if steps[i].Id == stepId {
				steps[i] = step
				break
			}
		}
		sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
		e.Steps = steps
	})
	return &step, nil
}

func (s *notebookStore) DeleteStep(ctx context.Context, experimentId, stepId string) error {
	s.beginExperiments()

	var res dto.DeleteResponse
	err := s.api.Delete(ctx, fmt.Sprintf("/api/experiments/%s/steps/%s", experimentId, stepId), &res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to delete step")
		return err
	}

	s.state.IsLoadingExperiments = false
	s.applyToExperiment(experimentId, func(e *entity.Experiment) {
		steps := make([]entity.ExperimentStep, 0, len(e.Steps))
		for _, st := range e.Steps {
			if st.Id != stepId {
				steps = append(steps, st)
			}
		}
		e.Steps = steps
	})
	return nil
}

func (s *notebookStore) AddAttachment(ctx context.Context, experimentId string, req *dto.CreateAttachmentRequest) (*entity.ExperimentAttachment, error) {
	s.beginExperiments()

	var attachment entity.ExperimentAttachment
	err := s.api.Post(ctx, fmt.Sprintf("/api/experiments/%s/attachments", experimentId), req, &attachment)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to add attachment")
		return nil, err
	}

	s.state.IsLoadingExperiments = false
	s.applyToExperiment(experimentId, func(e *entity.Experiment) {
		attachments := make([]entity.ExperimentAttachment, 0, len(e.Attachments)+1)
		attachments = append(attachments, e.Attachments...)
		attachments = append(attachments, attachment)
		e.Attachments = attachments
	})
	return &attachment, nil
}

func (s *notebookStore) DeleteAttachment(ctx context.Context, experimentId, attachmentId string) error {
	s.beginExperiments()

	var res dto.DeleteResponse
	err := s.api.Delete(ctx, fmt.Sprintf("/api/experiments/%s/attachments/%s", experimentId, attachmentId), &res)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failExperiments(err, "Failed to delete attachment")
		return err
	}

	s.state.IsLoadingExperiments = false
	s.applyToExperiment(experimentId, func(e *entity.Experiment) {
		attachments := make([]entity.ExperimentAttachment, 0, len(e.Attachments))
		for _, a := range e.Attachments {
			if a.Id != attachmentId {
				attachments = append(attachments, a)
			}
		}
		e.Attachments = attachments
	})
	return nil
}

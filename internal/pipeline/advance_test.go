package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/fields"
	"github.com/austenknu/TalentTriage/internal/scoring"
	"github.com/austenknu/TalentTriage/internal/types"
)

// fakeStore is an in-memory Store for exercising stage logic.
type fakeStore struct {
	uploads map[uuid.UUID]*types.Upload
	resumes map[uuid.UUID]*types.ParsedResume
	jobs    map[uuid.UUID]*types.JobDescription
	scores  map[[2]uuid.UUID]*types.CandidateScore

	distance     float64
	embedWrites  int
	markErrCalls int
	failMarkErr  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploads: map[uuid.UUID]*types.Upload{},
		resumes: map[uuid.UUID]*types.ParsedResume{},
		jobs:    map[uuid.UUID]*types.JobDescription{},
		scores:  map[[2]uuid.UUID]*types.CandidateScore{},
	}
}

func (f *fakeStore) GetUpload(_ context.Context, id uuid.UUID) (*types.Upload, error) {
	return f.uploads[id], nil
}

func (f *fakeStore) SetUploadStatus(_ context.Context, id uuid.UUID, status string) error {
	if u := f.uploads[id]; u != nil {
		u.Status = status
	}
	return nil
}

func (f *fakeStore) MarkUploadError(_ context.Context, id uuid.UUID, message string) error {
	f.markErrCalls++
	if f.failMarkErr {
		return errors.New("annotation write failed")
	}
	if u := f.uploads[id]; u != nil {
		u.Status = types.StatusError
		u.ErrorMessage = &message
	}
	return nil
}

func (f *fakeStore) UpsertParsedResume(_ context.Context, r *types.ParsedResume) error {
	if existing := f.resumes[r.CandidateID]; existing != nil {
		emb := existing.Embedding
		cp := *r
		cp.Embedding = emb
		f.resumes[r.CandidateID] = &cp
		return nil
	}
	cp := *r
	f.resumes[r.CandidateID] = &cp
	return nil
}

func (f *fakeStore) GetParsedResume(_ context.Context, candidateID uuid.UUID) (*types.ParsedResume, error) {
	return f.resumes[candidateID], nil
}

func (f *fakeStore) GetResumeByUpload(_ context.Context, uploadID uuid.UUID) (*types.ParsedResume, error) {
	for _, r := range f.resumes {
		if r.UploadID == uploadID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SetResumeEmbedding(_ context.Context, candidateID uuid.UUID, vec pgvector.Vector) error {
	r := f.resumes[candidateID]
	if r != nil && r.Embedding == nil {
		r.Embedding = &vec
		f.embedWrites++
	}
	return nil
}

func (f *fakeStore) ResumeDistance(_ context.Context, _ uuid.UUID, _ pgvector.Vector) (float64, error) {
	return f.distance, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.JobDescription, error) {
	return f.jobs[id], nil
}

func (f *fakeStore) SetJobEmbedding(_ context.Context, id uuid.UUID, vec pgvector.Vector) error {
	j := f.jobs[id]
	if j != nil && j.Embedding == nil {
		j.Embedding = &vec
	}
	return nil
}

func (f *fakeStore) GetScore(_ context.Context, candidateID, jobID uuid.UUID) (*types.CandidateScore, error) {
	return f.scores[[2]uuid.UUID{candidateID, jobID}], nil
}

func (f *fakeStore) UpsertScore(_ context.Context, sc *types.CandidateScore) error {
	cp := *sc
	f.scores[[2]uuid.UUID{sc.CandidateID, sc.JobID}] = &cp
	return nil
}

func (f *fakeStore) NextStoredUpload(_ context.Context) (*uuid.UUID, error) {
	for id, u := range f.uploads {
		if u.Status == types.StatusStored {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) NextUnembeddedResume(_ context.Context) (*uuid.UUID, error) {
	for id, r := range f.resumes {
		if r.Embedding == nil {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) NextUnembeddedJob(_ context.Context) (*uuid.UUID, error) {
	for id, j := range f.jobs {
		if j.Embedding == nil {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

// NextUnscored mirrors the SQL claim: both embeddings present, no score yet.
func (f *fakeStore) NextUnscored(_ context.Context) (*uuid.UUID, *uuid.UUID, error) {
	for id, r := range f.resumes {
		if r.Embedding == nil {
			continue
		}
		j := f.jobs[r.JobID]
		if j == nil || j.Embedding == nil {
			continue
		}
		if f.scores[[2]uuid.UUID{id, r.JobID}] == nil {
			id, jobID := id, r.JobID
			return &id, &jobID, nil
		}
	}
	return nil, nil, nil
}

type fakeBlobs struct {
	files map[string][]byte
}

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte) error {
	f.files[key] = data
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("read failed")
	}
	return data, nil
}

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) Extract(_ []byte, _ string) (string, error) {
	return f.text, f.err
}

type fakeFields struct {
	profile *fields.Profile
	err     error
	calls   int
}

func (f *fakeFields) Extract(_ context.Context, _ string) (*fields.Profile, error) {
	f.calls++
	return f.profile, f.err
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.vec, f.err
}

type env struct {
	store    *fakeStore
	blobs    *fakeBlobs
	text     *fakeTextExtractor
	primary  *fakeFields
	fallback *fakeFields
	embedder *fakeEmbedder
	advancer *Advancer
	uploadID uuid.UUID
	jobID    uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:    newFakeStore(),
		blobs:    &fakeBlobs{files: map[string][]byte{}},
		text:     &fakeTextExtractor{text: "resume text body"},
		primary:  &fakeFields{profile: &fields.Profile{Name: "Jane Doe", Skills: []string{"go"}}},
		fallback: &fakeFields{profile: &fields.Profile{Email: "jane@example.com"}},
		embedder: &fakeEmbedder{vec: []float32{0.1, 0.2}},
		uploadID: uuid.New(),
		jobID:    uuid.New(),
	}
	e.advancer = NewAdvancer(
		e.store, e.blobs, e.text, e.primary, e.fallback, e.embedder,
		scoring.DefaultThresholds(), zap.NewNop(),
	)
	e.store.uploads[e.uploadID] = &types.Upload{
		ID:       e.uploadID,
		JobID:    e.jobID,
		FileKey:  "resumes/a.pdf",
		MimeType: "application/pdf",
		Status:   types.StatusStored,
	}
	e.blobs.files["resumes/a.pdf"] = []byte("%PDF-fake")
	e.store.jobs[e.jobID] = &types.JobDescription{
		ID:                 e.jobID,
		Title:              "Backend Engineer",
		Description:        "build services",
		RequiredSkills:     []string{"go"},
		MinYearsExperience: 5,
	}
	return e
}

func (e *env) candidateID(t *testing.T) uuid.UUID {
	t.Helper()
	r, err := e.store.GetResumeByUpload(context.Background(), e.uploadID)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r.CandidateID
}

func TestAdvanceParse_HappyPath(t *testing.T) {
	e := newEnv(t)

	r, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, types.StatusParsed, e.store.uploads[e.uploadID].Status)
	assert.Equal(t, "Jane Doe", r.Name)
	assert.Equal(t, "resume text body", r.RawText)
	assert.Equal(t, e.uploadID, r.UploadID)
	assert.Equal(t, 0, e.fallback.calls)
}

func TestAdvanceParse_SkipReturnsExistingResume(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)

	again, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, first.CandidateID, again.CandidateID)
	assert.Equal(t, 1, e.primary.calls)
}

func TestAdvanceParse_UnknownUploadIsPermanent(t *testing.T) {
	e := newEnv(t)

	_, err := e.advancer.AdvanceParse(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsPermanent(err))

	var depErr *DependencyNotFoundError
	assert.ErrorAs(t, err, &depErr)
}

func TestAdvanceParse_BlobFailureIsTransient(t *testing.T) {
	e := newEnv(t)
	delete(e.blobs.files, "resumes/a.pdf")

	_, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.Error(t, err)
	assert.False(t, IsPermanent(err))

	u := e.store.uploads[e.uploadID]
	assert.Equal(t, types.StatusError, u.Status)
	require.NotNil(t, u.ErrorMessage)
	assert.Contains(t, *u.ErrorMessage, "blob")
}

func TestAdvanceParse_RetryAfterTransientFailureRecovers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	delete(e.blobs.files, "resumes/a.pdf")

	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.Error(t, err)
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)

	e.blobs.files["resumes/a.pdf"] = []byte("%PDF-fake")
	r, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, types.StatusParsed, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceParse_ExtractionFailureAnnotatesUpload(t *testing.T) {
	e := newEnv(t)
	cause := errors.New("garbled file")
	e.text.err = cause

	_, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceParse_EmptyTextIsPermanent(t *testing.T) {
	e := newEnv(t)
	e.text.text = ""

	_, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)
	assert.Equal(t, 0, e.primary.calls)
}

func TestAdvanceParse_AnnotationFailureDoesNotMaskCause(t *testing.T) {
	e := newEnv(t)
	cause := errors.New("garbled file")
	e.text.err = cause
	e.store.failMarkErr = true

	_, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, e.store.markErrCalls)
}

func TestAdvanceParse_FallsBackWhenPrimaryFails(t *testing.T) {
	e := newEnv(t)
	e.primary.err = errors.New("model unavailable")

	r, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "jane@example.com", r.Email)
	assert.Equal(t, 1, e.fallback.calls)
}

func TestAdvanceParse_FallsBackWhenPrimaryYieldsNoName(t *testing.T) {
	e := newEnv(t)
	e.primary.profile = &fields.Profile{Skills: []string{"go"}}

	_, err := e.advancer.AdvanceParse(context.Background(), e.uploadID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.fallback.calls)
}

func TestAdvanceParse_ReparseKeepsCandidateID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	first := e.candidateID(t)

	// Force a second parse of the same upload.
	e.store.uploads[e.uploadID].Status = types.StatusStored
	_, err = e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)

	assert.Equal(t, first, e.candidateID(t))
}

func TestAdvanceEmbedResume_SetsEmbeddingAndStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)

	r, err := e.advancer.AdvanceEmbedResume(ctx, e.candidateID(t))
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.True(t, r.HasEmbedding())
	assert.Equal(t, types.StatusEmbedded, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceEmbedResume_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	cid := e.candidateID(t)

	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)
	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)

	assert.Equal(t, 1, e.embedder.calls)
	assert.Equal(t, 1, e.store.embedWrites)
	assert.Equal(t, types.StatusEmbedded, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceEmbedResume_EmptyTextIsPermanent(t *testing.T) {
	e := newEnv(t)
	cid := uuid.New()
	e.store.resumes[cid] = &types.ParsedResume{
		CandidateID: cid,
		JobID:       e.jobID,
		UploadID:    e.uploadID,
	}

	_, err := e.advancer.AdvanceEmbedResume(context.Background(), cid)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)
	assert.Equal(t, 0, e.embedder.calls)
}

func TestAdvanceEmbedResume_FailureAnnotatesUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	e.embedder.err = errors.New("rate limited")

	_, err = e.advancer.AdvanceEmbedResume(ctx, e.candidateID(t))
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceEmbedJob_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	j, err := e.advancer.AdvanceEmbedJob(ctx, e.jobID)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.True(t, j.HasEmbedding())

	j, err = e.advancer.AdvanceEmbedJob(ctx, e.jobID)
	require.NoError(t, err)
	assert.True(t, j.HasEmbedding())

	assert.Equal(t, 1, e.embedder.calls)
}

func TestAdvanceScore_HappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.distance = 0.2

	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	cid := e.candidateID(t)
	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)
	_, err = e.advancer.AdvanceEmbedJob(ctx, e.jobID)
	require.NoError(t, err)

	sc, err := e.advancer.AdvanceScore(ctx, cid, e.jobID)
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.InDelta(t, 0.8, sc.SemanticScore, 1e-9)
	assert.Equal(t, types.StatusScored, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceScore_JobEmbeddingRaceDoesNotBrickUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.distance = 0.2
	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	cid := e.candidateID(t)
	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)

	// The job embedding has not landed yet; scoring must step aside
	// without annotating the upload.
	_, err = e.advancer.AdvanceScore(ctx, cid, e.jobID)
	require.Error(t, err)
	assert.Equal(t, types.StatusEmbedded, e.store.uploads[e.uploadID].Status)
	assert.Nil(t, e.store.uploads[e.uploadID].ErrorMessage)
	assert.Equal(t, 0, e.store.markErrCalls)

	_, err = e.advancer.AdvanceEmbedJob(ctx, e.jobID)
	require.NoError(t, err)

	sc, err := e.advancer.AdvanceScore(ctx, cid, e.jobID)
	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, types.StatusScored, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceScore_UnknownJobAnnotatesUpload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	cid := e.candidateID(t)
	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)

	_, err = e.advancer.AdvanceScore(ctx, cid, uuid.New())
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, types.StatusError, e.store.uploads[e.uploadID].Status)
}

func TestAdvanceScore_RescoreOverwrites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.store.distance = 0.2

	_, err := e.advancer.AdvanceParse(ctx, e.uploadID)
	require.NoError(t, err)
	cid := e.candidateID(t)
	_, err = e.advancer.AdvanceEmbedResume(ctx, cid)
	require.NoError(t, err)
	_, err = e.advancer.AdvanceEmbedJob(ctx, e.jobID)
	require.NoError(t, err)
	_, err = e.advancer.AdvanceScore(ctx, cid, e.jobID)
	require.NoError(t, err)

	e.store.distance = 0.6
	sc, err := e.advancer.AdvanceScore(ctx, cid, e.jobID)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, sc.SemanticScore, 1e-9)
	assert.Len(t, e.store.scores, 1)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(&InputMissingError{What: "text"}))
	assert.True(t, IsPermanent(&DependencyNotFoundError{What: "job"}))
	assert.False(t, IsPermanent(errors.New("network blip")))
	assert.False(t, IsPermanent(nil))

	wrapped := fmt.Errorf("stage failed: %w", &InputMissingError{What: "text"})
	assert.True(t, IsPermanent(wrapped))
}

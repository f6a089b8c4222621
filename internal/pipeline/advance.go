package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/blob"
	"github.com/austenknu/TalentTriage/internal/embed"
	"github.com/austenknu/TalentTriage/internal/fields"
	"github.com/austenknu/TalentTriage/internal/scoring"
	"github.com/austenknu/TalentTriage/internal/types"
)

// fallbackTargetYears is used for experience scaling when the job does not
// specify a minimum.
const fallbackTargetYears = 3.0

// Advancer runs individual pipeline stages. All dependencies are explicit so
// stages can be exercised with fakes.
type Advancer struct {
	store      Store
	blobs      blob.Store
	extractor  TextExtractor
	fields     fields.Extractor
	fallback   fields.Extractor
	embedder   embed.Embedder
	thresholds scoring.Thresholds
	log        *zap.Logger
}

// NewAdvancer wires a stage advancer. fallback handles field extraction when
// the primary extractor fails or yields no usable name; pass nil to disable.
func NewAdvancer(
	st Store,
	blobs blob.Store,
	extractor TextExtractor,
	primary, fallback fields.Extractor,
	embedder embed.Embedder,
	thresholds scoring.Thresholds,
	log *zap.Logger,
) *Advancer {
	return &Advancer{
		store:      st,
		blobs:      blobs,
		extractor:  extractor,
		fields:     primary,
		fallback:   fallback,
		embedder:   embedder,
		thresholds: thresholds,
		log:        log,
	}
}

// AdvanceParse extracts text and structured fields from a stored upload,
// moves it to parsed, and returns the resulting résumé. Uploads already past
// this stage return their existing résumé unchanged. An errored upload is
// re-parsed, so a dispatcher retry after a transient failure can recover it.
func (a *Advancer) AdvanceParse(ctx context.Context, uploadID uuid.UUID) (*types.ParsedResume, error) {
	u, err := a.store.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &DependencyNotFoundError{What: "upload", ID: uploadID}
	}
	if statusRank(u.Status) >= statusRank(types.StatusParsed) {
		a.log.Debug("upload already parsed, skipping",
			zap.String("upload_id", uploadID.String()),
			zap.String("status", u.Status))
		return a.store.GetResumeByUpload(ctx, uploadID)
	}

	data, err := a.blobs.Get(ctx, u.FileKey)
	if err != nil {
		return nil, a.failUpload(ctx, uploadID,
			fmt.Errorf("failed to download blob %s: %w", u.FileKey, err))
	}

	text, err := a.extractor.Extract(data, u.MimeType)
	if err != nil {
		return nil, a.failUpload(ctx, uploadID, err)
	}
	if text == "" {
		return nil, a.failUpload(ctx, uploadID,
			&InputMissingError{What: "extracted text", ID: uploadID})
	}

	profile := a.extractFields(ctx, text)

	resume := &types.ParsedResume{
		CandidateID:    uuid.New(),
		JobID:          u.JobID,
		UploadID:       u.ID,
		RawText:        text,
		Name:           profile.Name,
		Email:          profile.Email,
		Phone:          profile.Phone,
		Skills:         profile.Skills,
		WorkExperience: profile.WorkExperience,
		Education:      profile.Education,
		TotalYearsExp:  profile.TotalYearsExp,
	}

	// A re-parse keeps the candidate identity from the first parse.
	existing, err := a.store.GetResumeByUpload(ctx, uploadID)
	if err != nil {
		return nil, a.failUpload(ctx, uploadID, err)
	}
	if existing != nil {
		resume.CandidateID = existing.CandidateID
	}

	if err := a.store.UpsertParsedResume(ctx, resume); err != nil {
		return nil, a.failUpload(ctx, uploadID, err)
	}
	if err := a.store.SetUploadStatus(ctx, uploadID, types.StatusParsed); err != nil {
		return nil, a.failUpload(ctx, uploadID, err)
	}

	a.log.Info("parsed upload",
		zap.String("upload_id", uploadID.String()),
		zap.String("candidate_id", resume.CandidateID.String()),
		zap.Int("skills", len(resume.Skills)))
	return resume, nil
}

// extractFields runs the primary extractor and falls back to the secondary
// when it errors or produces no usable name. With no fallback configured a
// primary failure yields an empty profile; parse still succeeds on raw text.
func (a *Advancer) extractFields(ctx context.Context, text string) *fields.Profile {
	profile, err := a.fields.Extract(ctx, text)
	if err == nil && profile.HasName() {
		return profile
	}
	if err != nil {
		a.log.Warn("primary field extraction failed", zap.Error(err))
	} else {
		a.log.Warn("primary field extraction returned no name")
	}

	if a.fallback == nil {
		if profile != nil {
			return profile
		}
		return &fields.Profile{}
	}

	fb, fbErr := a.fallback.Extract(ctx, text)
	if fbErr != nil || fb == nil {
		a.log.Warn("fallback field extraction failed", zap.Error(fbErr))
		return &fields.Profile{}
	}
	return fb
}

// AdvanceEmbedResume embeds the parsed résumé text, moves the owning upload
// to embedded, and returns the résumé. An already-set embedding is never
// recomputed.
func (a *Advancer) AdvanceEmbedResume(ctx context.Context, candidateID uuid.UUID) (*types.ParsedResume, error) {
	r, err := a.store.GetParsedResume(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &DependencyNotFoundError{What: "parsed resume", ID: candidateID}
	}

	if !r.HasEmbedding() {
		if r.RawText == "" {
			return nil, a.failUpload(ctx, r.UploadID,
				&InputMissingError{What: "resume text", ID: candidateID})
		}
		vec, err := a.embedder.Embed(ctx, r.RawText)
		if err != nil {
			return nil, a.failUpload(ctx, r.UploadID, err)
		}
		pv := pgvector.NewVector(vec)
		if err := a.store.SetResumeEmbedding(ctx, candidateID, pv); err != nil {
			return nil, a.failUpload(ctx, r.UploadID, err)
		}
		r.Embedding = &pv
	}

	if err := a.advanceUploadStatus(ctx, r.UploadID, types.StatusEmbedded); err != nil {
		return nil, err
	}
	return r, nil
}

// AdvanceEmbedJob embeds the job description and returns it. No upload is
// annotated on failure since job embedding is not owned by any single upload.
func (a *Advancer) AdvanceEmbedJob(ctx context.Context, jobID uuid.UUID) (*types.JobDescription, error) {
	j, err := a.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, &DependencyNotFoundError{What: "job", ID: jobID}
	}
	if j.HasEmbedding() {
		return j, nil
	}
	if j.Description == "" {
		return nil, &InputMissingError{What: "job description text", ID: jobID}
	}

	vec, err := a.embedder.Embed(ctx, j.Title+"\n\n"+j.Description)
	if err != nil {
		return nil, err
	}
	pv := pgvector.NewVector(vec)
	if err := a.store.SetJobEmbedding(ctx, jobID, pv); err != nil {
		return nil, err
	}
	j.Embedding = &pv

	a.log.Info("embedded job description", zap.String("job_id", jobID.String()))
	return j, nil
}

// AdvanceScore computes and persists the composite score for a candidate
// against a job, moves the owning upload to scored, and returns the score.
// A missing embedding on either side is an ordering condition, not a data
// failure: the error propagates without annotating the upload, and the pair
// is picked up again once the embedding lands.
func (a *Advancer) AdvanceScore(ctx context.Context, candidateID, jobID uuid.UUID) (*types.CandidateScore, error) {
	r, err := a.store.GetParsedResume(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &DependencyNotFoundError{What: "parsed resume", ID: candidateID}
	}
	if !r.HasEmbedding() {
		return nil, &DependencyNotFoundError{What: "resume embedding", ID: candidateID}
	}

	j, err := a.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, a.failUpload(ctx, r.UploadID, err)
	}
	if j == nil {
		return nil, a.failUpload(ctx, r.UploadID,
			&DependencyNotFoundError{What: "job", ID: jobID})
	}
	if !j.HasEmbedding() {
		return nil, &DependencyNotFoundError{What: "job embedding", ID: jobID}
	}

	distance, err := a.store.ResumeDistance(ctx, candidateID, *j.Embedding)
	if err != nil {
		return nil, a.failUpload(ctx, r.UploadID, err)
	}

	target := j.MinYearsExperience
	if target <= 0 {
		target = fallbackTargetYears
	}

	sc := scoring.Score(scoring.Inputs{
		Resume:      r,
		Job:         j,
		Distance:    distance,
		TargetYears: target,
		Thresholds:  a.thresholds,
	})
	if err := a.store.UpsertScore(ctx, &sc); err != nil {
		return nil, a.failUpload(ctx, r.UploadID, err)
	}
	if err := a.advanceUploadStatus(ctx, r.UploadID, types.StatusScored); err != nil {
		return nil, a.failUpload(ctx, r.UploadID, err)
	}

	a.log.Info("scored candidate",
		zap.String("candidate_id", candidateID.String()),
		zap.String("job_id", jobID.String()),
		zap.Float64("composite", sc.CompositeScore),
		zap.String("category", sc.Category))
	return &sc, nil
}

// advanceUploadStatus moves the upload forward without ever regressing a
// later status. A stage completing successfully on a dispatcher retry moves
// an errored upload back onto the forward chain.
func (a *Advancer) advanceUploadStatus(ctx context.Context, uploadID uuid.UUID, status string) error {
	u, err := a.store.GetUpload(ctx, uploadID)
	if err != nil {
		return err
	}
	if u == nil {
		return &DependencyNotFoundError{What: "upload", ID: uploadID}
	}
	if statusRank(u.Status) >= statusRank(status) {
		return nil
	}
	return a.store.SetUploadStatus(ctx, uploadID, status)
}

func statusRank(status string) int {
	switch status {
	case types.StatusStored:
		return 0
	case types.StatusParsed:
		return 1
	case types.StatusEmbedded:
		return 2
	case types.StatusScored:
		return 3
	default:
		return -1
	}
}

// failUpload records the failure on the owning upload before propagating it.
// An annotation failure is logged but never masks the original error.
func (a *Advancer) failUpload(ctx context.Context, uploadID uuid.UUID, cause error) error {
	if markErr := a.store.MarkUploadError(ctx, uploadID, cause.Error()); markErr != nil {
		a.log.Error("failed to mark upload as errored",
			zap.String("upload_id", uploadID.String()),
			zap.Error(markErr))
	}
	return fmt.Errorf("upload %s: %w", uploadID, cause)
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/types"
)

// maxUploadBytes bounds a single multipart upload request.
const maxUploadBytes = 32 << 20

// decodeJSON strictly decodes a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// CreateJobRequest is the body for POST /jobs.
type CreateJobRequest struct {
	Title              string   `json:"title" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	RequiredSkills     []string `json:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills"`
	MinYearsExperience float64  `json:"min_years_experience" validate:"gte=0"`
	PreferredEducation []string `json:"preferred_education"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &types.JobDescription{
		ID:                 uuid.New(),
		Title:              req.Title,
		Description:        req.Description,
		RequiredSkills:     req.RequiredSkills,
		PreferredSkills:    req.PreferredSkills,
		MinYearsExperience: req.MinYearsExperience,
		PreferredEducation: req.PreferredEducation,
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.log.Error("failed to create job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if err := s.tasks.Publish(r.Context(), queue.Task{Task: queue.TaskEmbedJob, JobID: job.ID}); err != nil {
		// The sweeper will pick the job up; intake already succeeded.
		s.log.Warn("failed to enqueue job embedding", zap.Error(err))
	}

	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.log.Error("failed to get job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpload accepts one or more résumé files under the multipart field
// "files", stores each blob, records the upload, and enqueues parsing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		s.log.Error("failed to get job", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "no files provided")
		return
	}

	var uploads []*types.Upload
	for _, fh := range files {
		u, err := s.acceptFile(r, jobID, fh)
		if err != nil {
			s.log.Error("failed to accept upload",
				zap.String("filename", fh.Filename),
				zap.Error(err))
			s.errorResponse(w, http.StatusInternalServerError,
				fmt.Sprintf("failed to accept %s", fh.Filename))
			return
		}
		uploads = append(uploads, u)
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{"uploads": uploads})
}

func (s *Server) acceptFile(r *http.Request, jobID uuid.UUID, fh *multipart.FileHeader) (*types.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	uploadID := uuid.New()
	key := fmt.Sprintf("%s/%s%s", jobID, uploadID, strings.ToLower(filepath.Ext(fh.Filename)))
	if err := s.blobs.Put(r.Context(), key, data); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	upload := &types.Upload{
		ID:               uploadID,
		JobID:            jobID,
		FileKey:          key,
		OriginalFilename: fh.Filename,
		MimeType:         detectMime(fh, data),
		FileSize:         int64(len(data)),
		Status:           types.StatusStored,
	}
	if err := s.store.CreateUpload(r.Context(), upload); err != nil {
		return nil, err
	}

	if err := s.tasks.Publish(r.Context(), queue.Task{Task: queue.TaskParse, UploadID: uploadID}); err != nil {
		// Stored uploads are swept into the pipeline even if enqueueing fails.
		s.log.Warn("failed to enqueue parse task",
			zap.String("upload_id", uploadID.String()),
			zap.Error(err))
	}
	return upload, nil
}

// detectMime prefers the client-declared content type, falling back to
// extension and content sniffing.
func detectMime(fh *multipart.FileHeader, data []byte) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	}
	return http.DetectContentType(data)
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid upload id")
		return
	}
	upload, err := s.store.GetUpload(r.Context(), id)
	if err != nil {
		s.log.Error("failed to get upload", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to get upload")
		return
	}
	if upload == nil {
		s.errorResponse(w, http.StatusNotFound, "upload not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, upload)
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	uploads, err := s.store.ListUploadsByJob(r.Context(), jobID)
	if err != nil {
		s.log.Error("failed to list uploads", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	if uploads == nil {
		uploads = []types.Upload{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"uploads": uploads})
}

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	ranked, err := s.store.ListRankedCandidates(r.Context(), jobID)
	if err != nil {
		s.log.Error("failed to list scores", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list scores")
		return
	}
	if ranked == nil {
		ranked = []types.RankedCandidate{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"candidates": ranked})
}

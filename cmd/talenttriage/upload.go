package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/types"
)

var uploadJobID string

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload resume files for a job",
	Long:  "Store one or more resume files against a job and enqueue parsing for each.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadJobID, "job", "", "Job ID the resumes apply to (required)")
	uploadCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(uploadJobID)
	if err != nil {
		return fmt.Errorf("invalid job ID: %w", err)
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		ext := strings.ToLower(filepath.Ext(path))
		uploadID := uuid.New()
		key := fmt.Sprintf("%s/%s%s", jobID, uploadID, ext)
		if err := a.blobs.Put(ctx, key, data); err != nil {
			return err
		}

		mimeType := mime.TypeByExtension(ext)
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		upload := &types.Upload{
			ID:               uploadID,
			JobID:            jobID,
			FileKey:          key,
			OriginalFilename: filepath.Base(path),
			MimeType:         mimeType,
			FileSize:         int64(len(data)),
			Status:           types.StatusStored,
		}
		if err := a.store.CreateUpload(ctx, upload); err != nil {
			return err
		}
		if err := a.queue.Publish(ctx, queue.Task{Task: queue.TaskParse, UploadID: uploadID}); err != nil {
			return fmt.Errorf("upload %s stored but parsing could not be enqueued: %w", uploadID, err)
		}

		fmt.Fprintf(os.Stdout, "Uploaded %s as %s\n", filepath.Base(path), uploadID)
	}
	return nil
}

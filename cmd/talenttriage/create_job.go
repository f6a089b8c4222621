package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/austenknu/TalentTriage/internal/queue"
	"github.com/austenknu/TalentTriage/internal/types"
)

var (
	jobTitle     string
	jobDescFile  string
	jobRequired  []string
	jobPreferred []string
	jobMinYears  float64
	jobEducation []string
)

var createJobCmd = &cobra.Command{
	Use:   "create-job",
	Short: "Register a job description",
	Long:  "Register a job description from a text file and enqueue its embedding.",
	RunE:  runCreateJob,
}

func init() {
	createJobCmd.Flags().StringVar(&jobTitle, "title", "", "Job title (required)")
	createJobCmd.Flags().StringVarP(&jobDescFile, "description-file", "f", "", "Path to a text file with the job description (required)")
	createJobCmd.Flags().StringSliceVar(&jobRequired, "required-skills", nil, "Required skills")
	createJobCmd.Flags().StringSliceVar(&jobPreferred, "preferred-skills", nil, "Preferred skills")
	createJobCmd.Flags().Float64Var(&jobMinYears, "min-years", 0, "Minimum years of experience")
	createJobCmd.Flags().StringSliceVar(&jobEducation, "preferred-education", nil, "Preferred education keywords")

	createJobCmd.MarkFlagRequired("title")
	createJobCmd.MarkFlagRequired("description-file")

	rootCmd.AddCommand(createJobCmd)
}

func runCreateJob(cmd *cobra.Command, _ []string) error {
	desc, err := os.ReadFile(jobDescFile)
	if err != nil {
		return fmt.Errorf("failed to read description file: %w", err)
	}
	if strings.TrimSpace(string(desc)) == "" {
		return fmt.Errorf("description file is empty")
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	job := &types.JobDescription{
		ID:                 uuid.New(),
		Title:              jobTitle,
		Description:        string(desc),
		RequiredSkills:     jobRequired,
		PreferredSkills:    jobPreferred,
		MinYearsExperience: jobMinYears,
		PreferredEducation: jobEducation,
	}
	if err := a.store.CreateJob(ctx, job); err != nil {
		return err
	}
	if err := a.queue.Publish(ctx, queue.Task{Task: queue.TaskEmbedJob, JobID: job.ID}); err != nil {
		return fmt.Errorf("job created but embedding could not be enqueued: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Created job %s\n", job.ID)
	return nil
}

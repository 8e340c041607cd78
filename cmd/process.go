package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/progress"
	"github.com/finsift/finsift/internal/queue"
	"github.com/finsift/finsift/internal/walker"
)

var processCmd = &cobra.Command{
	Use:   "process [directory]",
	Short: "Batch-process every document in a directory",
	Long: `Walks a directory for supported documents (pdf, png, jpg, jpeg,
webp, txt), uploads each one through the processing pipeline, and
reports per-file progress and a final summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("app", "", "application id to file the documents under (required)")
	processCmd.Flags().StringSlice("include", nil, "glob patterns to include (default: config)")
	processCmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude (appended to config)")
	processCmd.MarkFlagRequired("app")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	appID, _ := cmd.Flags().GetString("app")
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(include) == 0 {
		include = cfg.Ingest.Include
	}
	exclude = append(append([]string{}, cfg.Ingest.Exclude...), exclude...)

	files, err := walker.Walk(walker.Config{
		RootDir:     args[0],
		Include:     include,
		Exclude:     exclude,
		MaxFileSize: cfg.Ingest.MaxFileSize,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No supported documents found.")
		return nil
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	// Drive the bar from queue notifications; each terminal job is one
	// unit of progress.
	done := make(chan struct{}, len(files))
	settled := 0
	unsubscribe := st.queue.Notify(func(j queue.Job) {
		switch j.Status {
		case queue.StatusCompleted:
			settled++
			reporter.Update(settled, j.Filename)
			done <- struct{}{}
		case queue.StatusError:
			settled++
			reporter.Update(settled, fmt.Sprintf("%s: %s", j.Filename, j.Error))
			done <- struct{}{}
		}
	})
	defer unsubscribe()

	enqueued := 0
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", f.RelPath, err)
			continue
		}
		if _, err := st.queue.Enqueue(queue.FileUpload{
			OwnerID:  localOwner,
			Filename: f.RelPath,
			MimeType: f.MimeType,
			Data:     data,
		}, appID); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", f.RelPath, err)
			continue
		}
		enqueued++
	}

	for i := 0; i < enqueued; i++ {
		<-done
	}
	reporter.Finish()

	completed := st.queue.CompletedCount()
	failed := st.queue.ErrorCount()
	fmt.Printf("Processed %d document(s): %d completed, %d failed\n", enqueued, completed, failed)
	if failed > 0 {
		for _, j := range st.queue.Jobs() {
			if j.Status == queue.StatusError {
				fmt.Printf("  %s: %s\n", j.Filename, j.Error)
			}
		}
	}
	return nil
}

package commands

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// DrainOutput holds the result of a drain run for JSON output.
type DrainOutput struct {
	DrainID   string `json:"drain_id"`
	Processed int    `json:"processed"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Requeued  int    `json:"requeued"`
	Duration  string `json:"duration"`
}

// NewDrainCmd creates the drain command.
func NewDrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Push pending outbox tasks to the remote workspace",
		Long: `Run one drain over the outbox queue.

Pending tasks are pushed in priority order; each failure burns one
retry and is recorded in the sync log. Only one drain runs at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrain(cmd.Context())
		},
	}

	return cmd
}

func runDrain(ctx context.Context) error {
	formatter := GetFormatter()
	container := GetContainer()

	manager, err := container.Manager()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var spinner *output.Spinner
	if formatter.Format() != output.FormatJSON {
		spinner = output.NewSpinner("Draining outbox queue...")
		spinner.Start()
	}

	result, err := manager.Drain(ctx)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Drain failed")
		}
		if errors.Is(err, domainErrors.ErrDrainInProgress) {
			return errors.New("another drain is already running")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	out := DrainOutput{
		DrainID:   result.DrainID,
		Processed: result.Processed,
		Completed: result.Completed,
		Failed:    result.Failed,
		Requeued:  result.Requeued,
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}

	if out.Processed == 0 {
		formatter.Info("Queue is empty, nothing to push")
		return nil
	}

	formatter.Success("Drain %s finished in %s", out.DrainID, out.Duration)
	formatter.Item("Processed", strconv.Itoa(out.Processed))
	formatter.Item("Completed", strconv.Itoa(out.Completed))
	formatter.Item("Failed", strconv.Itoa(out.Failed))
	if out.Requeued > 0 {
		formatter.Item("Requeued", strconv.Itoa(out.Requeued))
	}
	return nil
}

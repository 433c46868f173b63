/*
Package cli provides command-line interface utilities for the dataquery
command.

The cli package includes result-set output formatters, progress
reporters for long exports, and common CLI helpers.

Output Formatting:

The cli package supports multiple output formats (table, JSON, CSV) for
displaying query results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Progress Reporting:

For long-running exports, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalRows)
	for i := 0; i < totalRows; i++ {
		// Write a row
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext()
	defer stop()
*/
package cli

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nonsonwune/seedgen/logger"
	"github.com/nonsonwune/seedgen/preview"
)

func displayMenu(w io.Writer) {
	color.New(color.FgCyan).Fprintln(w, "\n=== Timetable Seed Generator ===")
	fmt.Fprintln(w, "1. Generate Seed Script")
	fmt.Fprintln(w, "2. Inspect Source File")
	fmt.Fprintln(w, "3. Export Rejected Rows")
	fmt.Fprintln(w, "4. Apply Seed Script to Database")
	fmt.Fprintln(w, "5. Preview Dataset over HTTP")
	fmt.Fprintln(w, "6. Exit")
	fmt.Fprint(w, "\nEnter your choice (1-6): ")
}

// runMenu is the interactive mode used when seedgen is started without a subcommand.
func (a *app) runMenu(ctx context.Context, in io.Reader, w io.Writer) error {
	reader := bufio.NewReader(in)
	red := color.New(color.FgRed)

	for {
		displayMenu(w)
		choice, err := reader.ReadString('\n')
		if err != nil && choice == "" {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			report, script, err := a.generate(ctx, w)
			toStdout := a.cfg.Output.Path == "-"
			if report != nil && !toStdout {
				printSummary(w, report, script)
			}
			if err != nil {
				red.Fprintf(w, "Error generating script: %v\n", err)
				continue
			}
			if !toStdout {
				color.New(color.FgGreen).Fprintf(w, "Seed script written to %s\n", a.cfg.Output.Path)
			}
		case "2":
			_, report, err := a.convert(ctx)
			if report != nil {
				printSummary(w, report, nil)
				printIssues(w, report, 20)
			}
			if err != nil {
				red.Fprintf(w, "Error inspecting source: %v\n", err)
			}
		case "3":
			fmt.Fprint(w, "Enter the path for the rejects CSV: ")
			path := readLine(reader)
			if path == "" {
				path = "rejects.csv"
			}
			_, report, err := a.convert(ctx)
			if report == nil {
				red.Fprintf(w, "Error inspecting source: %v\n", err)
				continue
			}
			if err := report.SaveIssues(path); err != nil {
				red.Fprintf(w, "Error writing rejects: %v\n", err)
				continue
			}
			color.New(color.FgGreen).Fprintf(w, "%d issues written to %s\n", len(report.Issues), path)
		case "4":
			data, report, err := a.convert(ctx)
			if err != nil {
				red.Fprintf(w, "Error converting source: %v\n", err)
				continue
			}
			script, err := a.build(data, report)
			if err != nil {
				red.Fprintf(w, "Error building script: %v\n", err)
				continue
			}
			printSummary(w, report, script)
			fmt.Fprint(w, "Proceed with apply? (y/n): ")
			if !strings.EqualFold(readLine(reader), "y") {
				fmt.Fprintln(w, "Apply cancelled.")
				continue
			}
			if err := a.apply(ctx, w, script); err != nil {
				red.Fprintf(w, "Error applying script: %v\n", err)
			}
		case "5":
			data, report, err := a.convert(ctx)
			if err != nil {
				red.Fprintf(w, "Error converting source: %v\n", err)
				continue
			}
			color.New(color.FgCyan).Fprintf(w, "Preview on http://localhost:%s/api/v1 (Ctrl+C to stop)\n", a.cfg.Server.Port)
			srv := preview.NewServer(data, report, a.cfg.Server.Mode, logger.Get())
			return srv.Run(ctx, ":"+a.cfg.Server.Port)
		case "6":
			color.New(color.FgGreen).Fprintln(w, "Goodbye!")
			return nil
		default:
			red.Fprintln(w, "Invalid choice. Please try again.")
		}
	}
}

// readLine reads one trimmed line from r.
func readLine(r io.Reader) string {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	line, _ := br.ReadString('\n')
	return strings.TrimSpace(line)
}

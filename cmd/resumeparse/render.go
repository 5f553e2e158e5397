package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/types"
)

type output struct {
	Result *processor.ParseResult `json:"result"`
	Jobs   []types.JobMatch       `json:"jobs,omitempty"`
}

func writeJSON(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, out output) {
	r := out.Result.Record

	fmt.Fprintf(w, "===== %s =====\n", r.Name)
	fmt.Fprintf(w, "Email:    %s\n", orDash(r.Email))
	fmt.Fprintf(w, "Phone:    %s\n", orDash(r.Phone))
	fmt.Fprintf(w, "Location: %s\n", orDash(r.Location))
	fmt.Fprintf(w, "Skills:   %s\n", orDash(strings.Join(r.Skills, ", ")))
	fmt.Fprintf(w, "\nSummary\n  %s\n", r.Summary)

	if len(r.Experience) > 0 {
		fmt.Fprintln(w, "\nExperience")
		for _, e := range r.Experience {
			fmt.Fprintf(w, "  - %s", e.Title)
			if e.Company != "" {
				fmt.Fprintf(w, " @ %s", e.Company)
			}
			fmt.Fprintf(w, " (%s - %s)\n", orDash(e.StartDate), e.DisplayEndDate())
			if e.Description != "" {
				fmt.Fprintf(w, "    %s\n", e.Description)
			}
		}
	}

	if len(r.Education) > 0 {
		fmt.Fprintln(w, "\nEducation")
		for _, e := range r.Education {
			fmt.Fprintf(w, "  - %s, %s (%s - %s)\n", e.Degree, e.Institution, orDash(e.StartDate), orDash(e.EndDate))
		}
	}

	if len(out.Jobs) > 0 {
		fmt.Fprintln(w, "\nMatching jobs")
		for _, j := range out.Jobs {
			fmt.Fprintf(w, "  [%3d%%] %s at %s (%s)\n", j.MatchPercentage, j.Title, j.Company, j.Location)
			for _, reason := range j.MatchReasons {
				fmt.Fprintf(w, "         %s\n", reason)
			}
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

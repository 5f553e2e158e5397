package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"resume-flow-go/internal/processor"
	"resume-flow-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutput() output {
	return output{
		Result: &processor.ParseResult{
			SubmissionUUID: "0190c1a2-0000-7000-8000-000000000000",
			FileName:       "resume.txt",
			Record: &types.ResumeRecord{
				Name:   "John Smith",
				Email:  "john@x.com",
				Skills: []string{"Javascript", "React"},
				Experience: []types.ExperienceEntry{
					{Title: "Senior Developer", Company: "Acme", StartDate: "Jan 2020", EndDate: "", Description: "Built things."},
				},
				Education: []types.EducationEntry{
					{Degree: "Bachelor of Science", Institution: "MIT", StartDate: "2011", EndDate: "2015"},
				},
				Summary: "Engineer.",
			},
		},
		Jobs: []types.JobMatch{
			{
				JobListing:      types.JobListing{Title: "Frontend Developer", Company: "TechCorp", Location: "Remote"},
				MatchPercentage: 100,
				MatchReasons:    []string{"You have all 2 of the required skills for this position"},
			},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	writeText(&buf, sampleOutput())
	out := buf.String()

	assert.Contains(t, out, "===== John Smith =====")
	assert.Contains(t, out, "Phone:    -")
	assert.Contains(t, out, "Skills:   Javascript, React")
	assert.Contains(t, out, "Senior Developer @ Acme (Jan 2020 - Present)")
	assert.Contains(t, out, "Bachelor of Science, MIT (2011 - 2015)")
	assert.Contains(t, out, "[100%] Frontend Developer at TechCorp (Remote)")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleOutput()))

	var decoded output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "John Smith", decoded.Result.Record.Name)
	require.Len(t, decoded.Jobs, 1)
	assert.Equal(t, 100, decoded.Jobs[0].MatchPercentage)
}

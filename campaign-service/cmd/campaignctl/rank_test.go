package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

const recordsJSON = `[
  {"id": "closed", "fields": {"Name": "Navidad", "Start Date": "2024-11-01", "Event Date": "2024-12-20"}},
  {"id": "soon", "fields": {"Name": "Reyes", "Start Date": "2025-07-01", "Total Letters": 5}},
  {"id": "open", "fields": {"Name": "Nino", "Start Date": "2025-06-01", "Receiving Deadline": "2025-06-30", "Total Letters": "10", "Adopters": ["a", "b", "c"]}}
]`

const recordsYAML = `
- id: closed
  fields:
    Name: Navidad
    Start Date: 2024-11-01
    Event Date: 2024-12-20
- id: open
  fields:
    Name: Nino
    Start Date: 2025-06-01
    Receiving Deadline: 2025-06-30
    Total Letters: 4
    Adopted Letters: "1"
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRankTable(t *testing.T) {
	path := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "", "rank", "--input", path, "--today", "2025-06-15")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Equal(t, []string{"open", "Active", "2025-06-01", "7", "Nino"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"soon", "Upcoming", "2025-07-01", "5", "Reyes"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"closed", "Closed", "2024-11-01", "0", "Navidad"}, strings.Fields(lines[3]))
}

func TestRankStatusFilterFromStdin(t *testing.T) {
	out, err := run(t, recordsJSON, "rank", "--input", "-", "--today", "2025-06-15", "--status", "upcoming", "--json")
	require.NoError(t, err)

	var views []models.CampaignView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "soon", views[0].ID)
	assert.Equal(t, "Upcoming", views[0].Status)
}

func TestRankYAMLDatesStayOnTheirDay(t *testing.T) {
	path := writeFile(t, "records.yaml", recordsYAML)

	out, err := run(t, "", "rank", "--input", path, "--today", "2025-06-30", "--json")
	require.NoError(t, err)

	var views []models.CampaignView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "open", views[0].ID)
	assert.Equal(t, "Active", views[0].Status)
	require.NotNil(t, views[0].ReceivingDeadline)
	assert.Equal(t, "2025-06-30", *views[0].ReceivingDeadline)
	assert.Equal(t, 3, views[0].AvailableLetters)
	assert.Equal(t, "Closed", views[1].Status)
}

func TestRankErrors(t *testing.T) {
	_, err := run(t, "", "rank")
	assert.Error(t, err, "missing --input")

	path := writeFile(t, "records.json", recordsJSON)
	_, err = run(t, "", "rank", "--input", path, "--today", "not-a-day")
	assert.ErrorContains(t, err, "invalid --today")

	_, err = run(t, "", "rank", "--input", path, "--tz", "Mars/Olympus")
	assert.ErrorContains(t, err, "load --tz")

	bad := writeFile(t, "records.json", `[{"fields": {}}]`)
	_, err = run(t, "", "rank", "--input", bad)
	assert.ErrorContains(t, err, "has no id")
}
